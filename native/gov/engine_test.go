package gov

import (
	"errors"
	"testing"

	"veledger/core/types"
)

type mockState struct {
	current    types.Address
	currentSet bool
	pending    types.Address
	pendingSet bool
	locked     bool
}

func (m *mockState) GovCurrent() (types.Address, bool, error) {
	return m.current, m.currentSet, nil
}

func (m *mockState) SetGovCurrent(addr types.Address) error {
	m.current, m.currentSet = addr, true
	return nil
}

func (m *mockState) GovPending() (types.Address, bool, error) {
	return m.pending, m.pendingSet, nil
}

func (m *mockState) SetGovPending(addr types.Address) error {
	m.pending, m.pendingSet = addr, true
	return nil
}

func (m *mockState) DeleteGovPending() error {
	m.pending, m.pendingSet = types.Address{}, false
	return nil
}

func (m *mockState) GovLocked() (bool, error) { return m.locked, nil }

func (m *mockState) SetGovLocked() error {
	m.locked = true
	return nil
}

func addr(b byte) types.Address {
	var a types.Address
	a[19] = b
	return a
}

func newTestEngine(t *testing.T) (*Engine, *mockState) {
	t.Helper()
	state := &mockState{}
	engine := NewEngine()
	engine.SetState(state)
	return engine, state
}

func TestInitializeSeedsOnce(t *testing.T) {
	engine, _ := newTestEngine(t)
	alice, bob := addr(1), addr(2)

	if err := engine.Initialize(types.Address{}); !errors.Is(err, ErrZeroGovernor) {
		t.Fatalf("zero governor err = %v, want ErrZeroGovernor", err)
	}
	if err := engine.Initialize(alice); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := engine.Initialize(bob); !errors.Is(err, ErrNotGovernor) {
		t.Fatalf("re-initialize err = %v, want ErrNotGovernor", err)
	}
	current, err := engine.Governance()
	if err != nil {
		t.Fatalf("governance: %v", err)
	}
	if current != alice {
		t.Fatalf("governor = %x, want %x", current, alice)
	}
}

func TestRequireGovernor(t *testing.T) {
	engine, _ := newTestEngine(t)
	alice, bob := addr(1), addr(2)

	if err := engine.RequireGovernor(alice); !errors.Is(err, ErrNotGovernor) {
		t.Fatalf("uninitialized err = %v, want ErrNotGovernor", err)
	}
	if err := engine.Initialize(alice); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := engine.RequireGovernor(alice); err != nil {
		t.Fatalf("require governor: %v", err)
	}
	if err := engine.RequireGovernor(bob); !errors.Is(err, ErrNotGovernor) {
		t.Fatalf("outsider err = %v, want ErrNotGovernor", err)
	}
}

func TestTwoPhaseHandoff(t *testing.T) {
	engine, _ := newTestEngine(t)
	alice, bob, carol := addr(1), addr(2), addr(3)
	if err := engine.Initialize(alice); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if err := engine.AcceptGovernance(bob); !errors.Is(err, ErrNoPendingSet) {
		t.Fatalf("accept without pending err = %v, want ErrNoPendingSet", err)
	}
	if err := engine.SetPendingGovernance(bob, bob); !errors.Is(err, ErrNotGovernor) {
		t.Fatalf("pending by outsider err = %v, want ErrNotGovernor", err)
	}
	if err := engine.SetPendingGovernance(alice, bob); err != nil {
		t.Fatalf("set pending: %v", err)
	}

	pending, err := engine.PendingGovernance()
	if err != nil {
		t.Fatalf("pending governance: %v", err)
	}
	if pending != bob {
		t.Fatalf("pending = %x, want %x", pending, bob)
	}

	// Alice still governs until bob accepts.
	if err := engine.RequireGovernor(alice); err != nil {
		t.Fatalf("proposer lost governance before accept: %v", err)
	}
	if err := engine.AcceptGovernance(carol); !errors.Is(err, ErrNotPending) {
		t.Fatalf("accept by outsider err = %v, want ErrNotPending", err)
	}
	if err := engine.AcceptGovernance(bob); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if err := engine.RequireGovernor(bob); err != nil {
		t.Fatalf("new governor rejected: %v", err)
	}
	if err := engine.RequireGovernor(alice); !errors.Is(err, ErrNotGovernor) {
		t.Fatalf("old governor err = %v, want ErrNotGovernor", err)
	}
	pending, err = engine.PendingGovernance()
	if err != nil {
		t.Fatalf("pending governance: %v", err)
	}
	if !pending.IsZero() {
		t.Fatalf("pending slot not cleared: %x", pending)
	}
}

func TestProposalCanBeReplaced(t *testing.T) {
	engine, _ := newTestEngine(t)
	alice, bob, carol := addr(1), addr(2), addr(3)
	if err := engine.Initialize(alice); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := engine.SetPendingGovernance(alice, bob); err != nil {
		t.Fatalf("set pending: %v", err)
	}
	if err := engine.SetPendingGovernance(alice, carol); err != nil {
		t.Fatalf("replace pending: %v", err)
	}
	if err := engine.AcceptGovernance(bob); !errors.Is(err, ErrNotPending) {
		t.Fatalf("stale pending err = %v, want ErrNotPending", err)
	}
	if err := engine.AcceptGovernance(carol); err != nil {
		t.Fatalf("accept: %v", err)
	}
}

func TestLockGovernanceIsTerminal(t *testing.T) {
	engine, state := newTestEngine(t)
	alice, bob := addr(1), addr(2)
	if err := engine.Initialize(alice); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := engine.SetPendingGovernance(alice, bob); err != nil {
		t.Fatalf("set pending: %v", err)
	}
	if err := engine.LockGovernance(bob); !errors.Is(err, ErrNotGovernor) {
		t.Fatalf("lock by outsider err = %v, want ErrNotGovernor", err)
	}
	if err := engine.LockGovernance(alice); err != nil {
		t.Fatalf("lock: %v", err)
	}

	// The pending proposal died with the lock; nothing privileged works.
	if state.pendingSet {
		t.Fatalf("pending slot survived lock")
	}
	if err := engine.RequireGovernor(alice); !errors.Is(err, ErrLocked) {
		t.Fatalf("require after lock err = %v, want ErrLocked", err)
	}
	if err := engine.SetPendingGovernance(alice, bob); !errors.Is(err, ErrLocked) {
		t.Fatalf("set pending after lock err = %v, want ErrLocked", err)
	}
	if err := engine.AcceptGovernance(bob); !errors.Is(err, ErrLocked) {
		t.Fatalf("accept after lock err = %v, want ErrLocked", err)
	}
	if err := engine.LockGovernance(alice); !errors.Is(err, ErrLocked) {
		t.Fatalf("double lock err = %v, want ErrLocked", err)
	}
}

func TestNilStateGuards(t *testing.T) {
	engine := NewEngine()
	if err := engine.Initialize(addr(1)); !errors.Is(err, ErrNilState) {
		t.Fatalf("initialize err = %v, want ErrNilState", err)
	}
	if _, err := engine.Governance(); !errors.Is(err, ErrNilState) {
		t.Fatalf("governance err = %v, want ErrNilState", err)
	}
	if err := engine.RequireGovernor(addr(1)); !errors.Is(err, ErrNilState) {
		t.Fatalf("require err = %v, want ErrNilState", err)
	}
}
