// Package gov implements the single-governor access-control state machine
// shared by every privileged setter: a current governor, a pending governor
// proposed by the current one, and a two-phase handoff completed by the
// pending governor accepting.
package gov

import (
	"errors"

	"veledger/core/events"
	"veledger/core/types"
)

var (
	ErrNilState     = errors.New("gov: state not configured")
	ErrNotGovernor  = errors.New("gov: caller is not the governor")
	ErrNotPending   = errors.New("gov: caller is not the pending governor")
	ErrLocked       = errors.New("gov: governance is locked")
	ErrZeroGovernor = errors.New("gov: governor is the zero address")
	ErrNoPendingSet = errors.New("gov: no pending governor")
)

// State describes the persistence surface of the governance machine.
type State interface {
	GovCurrent() (types.Address, bool, error)
	SetGovCurrent(addr types.Address) error
	GovPending() (types.Address, bool, error)
	SetGovPending(addr types.Address) error
	DeleteGovPending() error
	GovLocked() (bool, error)
	SetGovLocked() error
}

// Engine is the governance handoff machine.
type Engine struct {
	state   State
	emitter events.Emitter
}

// NewEngine constructs a governance engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state State) { e.state = state }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

// Initialize seeds the first governor. Only effective while no governor is
// set; later changes go through the two-phase handoff.
func (e *Engine) Initialize(governor types.Address) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if governor.IsZero() {
		return ErrZeroGovernor
	}
	if _, ok, err := e.state.GovCurrent(); err != nil {
		return err
	} else if ok {
		return ErrNotGovernor
	}
	return e.state.SetGovCurrent(governor)
}

// Governance returns the current governor.
func (e *Engine) Governance() (types.Address, error) {
	if e == nil || e.state == nil {
		return types.Address{}, ErrNilState
	}
	current, _, err := e.state.GovCurrent()
	return current, err
}

// PendingGovernance returns the pending governor, the zero address if none.
func (e *Engine) PendingGovernance() (types.Address, error) {
	if e == nil || e.state == nil {
		return types.Address{}, ErrNilState
	}
	pending, _, err := e.state.GovPending()
	return pending, err
}

// RequireGovernor errors unless caller is the current governor and
// governance is not locked.
func (e *Engine) RequireGovernor(caller types.Address) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	locked, err := e.state.GovLocked()
	if err != nil {
		return err
	}
	if locked {
		return ErrLocked
	}
	current, ok, err := e.state.GovCurrent()
	if err != nil {
		return err
	}
	if !ok || current != caller {
		return ErrNotGovernor
	}
	return nil
}

// SetPendingGovernance proposes a handoff. Governor-only.
func (e *Engine) SetPendingGovernance(caller, pending types.Address) error {
	if err := e.RequireGovernor(caller); err != nil {
		return err
	}
	if err := e.state.SetGovPending(pending); err != nil {
		return err
	}
	current, _, err := e.state.GovCurrent()
	if err != nil {
		return err
	}
	e.emit(events.GovPending{Current: current, Pending: pending})
	return nil
}

// AcceptGovernance completes the handoff. Only the pending governor may
// accept; the pending slot clears in the same step.
func (e *Engine) AcceptGovernance(caller types.Address) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	locked, err := e.state.GovLocked()
	if err != nil {
		return err
	}
	if locked {
		return ErrLocked
	}
	pending, ok, err := e.state.GovPending()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoPendingSet
	}
	if pending != caller {
		return ErrNotPending
	}
	old, _, err := e.state.GovCurrent()
	if err != nil {
		return err
	}
	if err := e.state.SetGovCurrent(pending); err != nil {
		return err
	}
	if err := e.state.DeleteGovPending(); err != nil {
		return err
	}
	e.emit(events.GovTransferred{OldGovernor: old, NewGovernor: pending})
	return nil
}

// LockGovernance permanently closes the handoff machine. Governor-only and
// irreversible; every RequireGovernor call fails afterwards.
func (e *Engine) LockGovernance(caller types.Address) error {
	if err := e.RequireGovernor(caller); err != nil {
		return err
	}
	if err := e.state.DeleteGovPending(); err != nil {
		return err
	}
	if err := e.state.SetGovLocked(); err != nil {
		return err
	}
	e.emit(events.GovLocked{})
	return nil
}
