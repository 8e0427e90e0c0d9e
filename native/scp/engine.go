// Package scp implements the points ledger: a non-transferable-by-holder
// balance ledger with refundable and non-refundable partitions, moved only
// by authorized mover contracts.
package scp

import (
	"errors"
	"math/big"

	"veledger/core/events"
	"veledger/core/types"
)

var (
	ErrNilState            = errors.New("scp: state not configured")
	ErrNotMover            = errors.New("scp: caller is not an authorized mover")
	ErrInvalidAmount       = errors.New("scp: amount must be positive")
	ErrInsufficientBalance = errors.New("scp: insufficient balance")
	ErrNotRefundable       = errors.New("scp: amount exceeds refundable balance")
	ErrBelowRequiredFloor  = errors.New("scp: withdrawal would breach required minimum")
	ErrApproveDisabled     = errors.New("scp: approvals are disabled")
)

// State describes the persistence surface of the points ledger.
type State interface {
	ScpBalance(addr types.Address) (*big.Int, error)
	SetScpBalance(addr types.Address, amount *big.Int) error
	ScpNonRefundable(addr types.Address) (*big.Int, error)
	SetScpNonRefundable(addr types.Address, amount *big.Int) error
	ScpTotalSupply() (*big.Int, error)
	SetScpTotalSupply(amount *big.Int) error
	ScpIsMover(addr types.Address) (bool, error)
	SetScpMover(addr types.Address, allowed bool) error
}

// Retainer imposes a minimum point balance on specific accounts. Retainers
// are live plugins: the floor is queried at withdrawal time, never cached.
type Retainer interface {
	Name() string
	MinScpRequired(account types.Address) (*big.Int, error)
}

// Engine is the points ledger. Every balance move is gated on the caller
// being a registered mover; holders cannot move their own points.
type Engine struct {
	state     State
	emitter   events.Emitter
	retainers []Retainer
}

// NewEngine constructs a points ledger engine with a no-op emitter.
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

// AddRetainer registers a minimum-balance plugin.
func (e *Engine) AddRetainer(r Retainer) {
	if r == nil {
		return
	}
	e.retainers = append(e.retainers, r)
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) requireMover(caller types.Address) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	ok, err := e.state.ScpIsMover(caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMover
	}
	return nil
}

func validAmount(amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	return new(big.Int).Set(amount), nil
}

// SetMover adds or removes a mover. Governance gates the caller.
func (e *Engine) SetMover(addr types.Address, allowed bool) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	return e.state.SetScpMover(addr, allowed)
}

// Mint credits points to an account. Non-refundable mints raise the
// non-refundable watermark in lockstep.
func (e *Engine) Mint(caller, account types.Address, amount *big.Int, isRefundable bool) error {
	if err := e.requireMover(caller); err != nil {
		return err
	}
	amt, err := validAmount(amount)
	if err != nil {
		return err
	}
	bal, err := e.state.ScpBalance(account)
	if err != nil {
		return err
	}
	if err := e.state.SetScpBalance(account, new(big.Int).Add(bal, amt)); err != nil {
		return err
	}
	if !isRefundable {
		nr, err := e.state.ScpNonRefundable(account)
		if err != nil {
			return err
		}
		if err := e.state.SetScpNonRefundable(account, new(big.Int).Add(nr, amt)); err != nil {
			return err
		}
	}
	supply, err := e.state.ScpTotalSupply()
	if err != nil {
		return err
	}
	if err := e.state.SetScpTotalSupply(new(big.Int).Add(supply, amt)); err != nil {
		return err
	}
	e.emit(events.ScpMinted{Account: account, Amount: amt, Refundable: isRefundable})
	return nil
}

// debit lowers an account's balance, consuming the non-refundable partition
// first, and returns how much non-refundable was consumed.
func (e *Engine) debit(account types.Address, amt *big.Int) (*big.Int, error) {
	bal, err := e.state.ScpBalance(account)
	if err != nil {
		return nil, err
	}
	if bal.Cmp(amt) < 0 {
		return nil, ErrInsufficientBalance
	}
	nr, err := e.state.ScpNonRefundable(account)
	if err != nil {
		return nil, err
	}
	consumedNR := new(big.Int).Set(nr)
	if consumedNR.Cmp(amt) > 0 {
		consumedNR = new(big.Int).Set(amt)
	}
	if err := e.state.SetScpBalance(account, new(big.Int).Sub(bal, amt)); err != nil {
		return nil, err
	}
	if consumedNR.Sign() > 0 {
		if err := e.state.SetScpNonRefundable(account, new(big.Int).Sub(nr, consumedNR)); err != nil {
			return nil, err
		}
	}
	return consumedNR, nil
}

// Burn destroys points held by an account, non-refundable first.
func (e *Engine) Burn(caller, account types.Address, amount *big.Int) error {
	if err := e.requireMover(caller); err != nil {
		return err
	}
	amt, err := validAmount(amount)
	if err != nil {
		return err
	}
	if _, err := e.debit(account, amt); err != nil {
		return err
	}
	supply, err := e.state.ScpTotalSupply()
	if err != nil {
		return err
	}
	if err := e.state.SetScpTotalSupply(new(big.Int).Sub(supply, amt)); err != nil {
		return err
	}
	e.emit(events.ScpBurned{Account: account, Amount: amt})
	return nil
}

// Transfer moves points between accounts. The non-refundable portion moves
// in lockstep with the balance so callers requiring a non-refundable float
// keep their guarantee.
func (e *Engine) Transfer(caller, from, to types.Address, amount *big.Int) error {
	if err := e.requireMover(caller); err != nil {
		return err
	}
	amt, err := validAmount(amount)
	if err != nil {
		return err
	}
	movedNR, err := e.debit(from, amt)
	if err != nil {
		return err
	}
	toBal, err := e.state.ScpBalance(to)
	if err != nil {
		return err
	}
	if err := e.state.SetScpBalance(to, new(big.Int).Add(toBal, amt)); err != nil {
		return err
	}
	if movedNR.Sign() > 0 {
		toNR, err := e.state.ScpNonRefundable(to)
		if err != nil {
			return err
		}
		if err := e.state.SetScpNonRefundable(to, new(big.Int).Add(toNR, movedNR)); err != nil {
			return err
		}
	}
	e.emit(events.ScpTransferred{From: from, To: to, Amount: amt})
	return nil
}

// MinScpRequired sums the minimum-balance requirements every registered
// retainer imposes on the account.
func (e *Engine) MinScpRequired(account types.Address) (*big.Int, error) {
	total := big.NewInt(0)
	for _, r := range e.retainers {
		minimum, err := r.MinScpRequired(account)
		if err != nil {
			return nil, err
		}
		if minimum != nil {
			total.Add(total, minimum)
		}
	}
	return total, nil
}

// Withdraw burns refundable points out of an account. The amount is limited
// to the refundable partition and the post-withdraw balance may not fall
// below the live retainer floor.
func (e *Engine) Withdraw(caller, account types.Address, amount *big.Int) error {
	if err := e.requireMover(caller); err != nil {
		return err
	}
	amt, err := validAmount(amount)
	if err != nil {
		return err
	}
	bal, err := e.state.ScpBalance(account)
	if err != nil {
		return err
	}
	nr, err := e.state.ScpNonRefundable(account)
	if err != nil {
		return err
	}
	refundable := new(big.Int).Sub(bal, nr)
	if refundable.Cmp(amt) < 0 {
		return ErrNotRefundable
	}
	required, err := e.MinScpRequired(account)
	if err != nil {
		return err
	}
	remaining := new(big.Int).Sub(bal, amt)
	if remaining.Cmp(required) < 0 {
		return ErrBelowRequiredFloor
	}
	if err := e.state.SetScpBalance(account, remaining); err != nil {
		return err
	}
	supply, err := e.state.ScpTotalSupply()
	if err != nil {
		return err
	}
	if err := e.state.SetScpTotalSupply(new(big.Int).Sub(supply, amt)); err != nil {
		return err
	}
	e.emit(events.ScpWithdrawn{Account: account, Amount: amt})
	return nil
}

// BalanceOf returns the account's full point balance.
func (e *Engine) BalanceOf(account types.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.ScpBalance(account)
}

// NonRefundableOf returns the non-refundable partition of the balance.
func (e *Engine) NonRefundableOf(account types.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.ScpNonRefundable(account)
}

// TotalSupply returns the outstanding points supply.
func (e *Engine) TotalSupply() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.ScpTotalSupply()
}

// Allowance is intentionally neutered: holders cannot delegate spending.
func (e *Engine) Allowance(types.Address, types.Address) *big.Int {
	return big.NewInt(0)
}

// Approve is intentionally neutered: only movers can move balances.
func (e *Engine) Approve(types.Address, types.Address, *big.Int) error {
	return ErrApproveDisabled
}
