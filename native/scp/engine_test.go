package scp

import (
	"errors"
	"math/big"
	"testing"

	"veledger/core/types"
)

type mockState struct {
	balances      map[types.Address]*big.Int
	nonRefundable map[types.Address]*big.Int
	supply        *big.Int
	movers        map[types.Address]bool
}

func newMockState() *mockState {
	return &mockState{
		balances:      make(map[types.Address]*big.Int),
		nonRefundable: make(map[types.Address]*big.Int),
		supply:        big.NewInt(0),
		movers:        make(map[types.Address]bool),
	}
}

func get(m map[types.Address]*big.Int, addr types.Address) *big.Int {
	if v, ok := m[addr]; ok {
		return new(big.Int).Set(v)
	}
	return big.NewInt(0)
}

func (s *mockState) ScpBalance(addr types.Address) (*big.Int, error) {
	return get(s.balances, addr), nil
}
func (s *mockState) SetScpBalance(addr types.Address, amount *big.Int) error {
	s.balances[addr] = new(big.Int).Set(amount)
	return nil
}
func (s *mockState) ScpNonRefundable(addr types.Address) (*big.Int, error) {
	return get(s.nonRefundable, addr), nil
}
func (s *mockState) SetScpNonRefundable(addr types.Address, amount *big.Int) error {
	s.nonRefundable[addr] = new(big.Int).Set(amount)
	return nil
}
func (s *mockState) ScpTotalSupply() (*big.Int, error) { return new(big.Int).Set(s.supply), nil }
func (s *mockState) SetScpTotalSupply(amount *big.Int) error {
	s.supply = new(big.Int).Set(amount)
	return nil
}
func (s *mockState) ScpIsMover(addr types.Address) (bool, error) { return s.movers[addr], nil }
func (s *mockState) SetScpMover(addr types.Address, allowed bool) error {
	if !allowed {
		delete(s.movers, addr)
		return nil
	}
	s.movers[addr] = true
	return nil
}

type fixedRetainer struct {
	name    string
	minimum map[types.Address]*big.Int
}

func (r *fixedRetainer) Name() string { return r.name }

func (r *fixedRetainer) MinScpRequired(account types.Address) (*big.Int, error) {
	if minimum, ok := r.minimum[account]; ok {
		return new(big.Int).Set(minimum), nil
	}
	return big.NewInt(0), nil
}

var (
	mover = types.Address{0x01}
	alice = types.Address{0x0A}
	bob   = types.Address{0x0B}
)

func newTestEngine() (*Engine, *mockState) {
	engine := NewEngine()
	state := newMockState()
	engine.SetState(state)
	state.movers[mover] = true
	return engine, state
}

func balance(t *testing.T, engine *Engine, addr types.Address) int64 {
	t.Helper()
	bal, err := engine.BalanceOf(addr)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return bal.Int64()
}

func TestOnlyMoversMove(t *testing.T) {
	engine, _ := newTestEngine()

	if err := engine.Mint(alice, alice, big.NewInt(10), true); !errors.Is(err, ErrNotMover) {
		t.Fatalf("mint err = %v, want ErrNotMover", err)
	}
	if err := engine.Mint(mover, alice, big.NewInt(10), true); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := engine.Transfer(alice, alice, bob, big.NewInt(5)); !errors.Is(err, ErrNotMover) {
		t.Fatalf("transfer err = %v, want ErrNotMover", err)
	}
	if err := engine.Burn(alice, alice, big.NewInt(5)); !errors.Is(err, ErrNotMover) {
		t.Fatalf("burn err = %v, want ErrNotMover", err)
	}
	if err := engine.Withdraw(alice, alice, big.NewInt(5)); !errors.Is(err, ErrNotMover) {
		t.Fatalf("withdraw err = %v, want ErrNotMover", err)
	}
}

func TestNonRefundableMintBlocksWithdraw(t *testing.T) {
	engine, _ := newTestEngine()

	if err := engine.Mint(mover, alice, big.NewInt(100), false); err != nil {
		t.Fatalf("mint: %v", err)
	}
	// none of a non-refundable mint can ever be withdrawn
	if err := engine.Withdraw(mover, alice, big.NewInt(50)); !errors.Is(err, ErrNotRefundable) {
		t.Fatalf("err = %v, want ErrNotRefundable", err)
	}
	if got := balance(t, engine, alice); got != 100 {
		t.Fatalf("balance = %d, want 100", got)
	}
}

func TestRefundableMintFullyWithdrawable(t *testing.T) {
	engine, _ := newTestEngine()

	if err := engine.Mint(mover, alice, big.NewInt(100), true); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := engine.Withdraw(mover, alice, big.NewInt(100)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got := balance(t, engine, alice); got != 0 {
		t.Fatalf("balance = %d, want 0", got)
	}
	supply, _ := engine.TotalSupply()
	if supply.Sign() != 0 {
		t.Fatalf("supply = %s, want 0", supply)
	}
}

func TestMixedPartitionsWithdrawOnlyRefundable(t *testing.T) {
	engine, _ := newTestEngine()

	if err := engine.Mint(mover, alice, big.NewInt(60), false); err != nil {
		t.Fatalf("mint nr: %v", err)
	}
	if err := engine.Mint(mover, alice, big.NewInt(40), true); err != nil {
		t.Fatalf("mint r: %v", err)
	}
	if err := engine.Withdraw(mover, alice, big.NewInt(41)); !errors.Is(err, ErrNotRefundable) {
		t.Fatalf("err = %v, want ErrNotRefundable", err)
	}
	if err := engine.Withdraw(mover, alice, big.NewInt(40)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got := balance(t, engine, alice); got != 60 {
		t.Fatalf("balance = %d, want 60", got)
	}
	nr, _ := engine.NonRefundableOf(alice)
	if nr.Int64() != 60 {
		t.Fatalf("non-refundable = %s, want 60", nr)
	}
}

func TestBurnConsumesNonRefundableFirst(t *testing.T) {
	engine, _ := newTestEngine()

	if err := engine.Mint(mover, alice, big.NewInt(60), false); err != nil {
		t.Fatalf("mint nr: %v", err)
	}
	if err := engine.Mint(mover, alice, big.NewInt(40), true); err != nil {
		t.Fatalf("mint r: %v", err)
	}
	if err := engine.Burn(mover, alice, big.NewInt(50)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	nr, _ := engine.NonRefundableOf(alice)
	if nr.Int64() != 10 {
		t.Fatalf("non-refundable = %s, want 10", nr)
	}
	if got := balance(t, engine, alice); got != 50 {
		t.Fatalf("balance = %d, want 50", got)
	}
	if err := engine.Burn(mover, alice, big.NewInt(100)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
}

func TestTransferMovesNonRefundableInLockstep(t *testing.T) {
	engine, _ := newTestEngine()

	if err := engine.Mint(mover, alice, big.NewInt(60), false); err != nil {
		t.Fatalf("mint nr: %v", err)
	}
	if err := engine.Mint(mover, alice, big.NewInt(40), true); err != nil {
		t.Fatalf("mint r: %v", err)
	}
	// 70 out: 60 non-refundable + 10 refundable
	if err := engine.Transfer(mover, alice, bob, big.NewInt(70)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	aliceNR, _ := engine.NonRefundableOf(alice)
	if aliceNR.Sign() != 0 {
		t.Fatalf("alice nr = %s, want 0", aliceNR)
	}
	bobNR, _ := engine.NonRefundableOf(bob)
	if bobNR.Int64() != 60 {
		t.Fatalf("bob nr = %s, want 60", bobNR)
	}
	if got := balance(t, engine, bob); got != 70 {
		t.Fatalf("bob balance = %d, want 70", got)
	}
}

func TestRetainerFloorsAreQueriedLive(t *testing.T) {
	engine, _ := newTestEngine()
	retainer := &fixedRetainer{
		name:    "cover",
		minimum: map[types.Address]*big.Int{alice: big.NewInt(30)},
	}
	engine.AddRetainer(retainer)

	if err := engine.Mint(mover, alice, big.NewInt(100), true); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := engine.Withdraw(mover, alice, big.NewInt(80)); !errors.Is(err, ErrBelowRequiredFloor) {
		t.Fatalf("err = %v, want ErrBelowRequiredFloor", err)
	}
	if err := engine.Withdraw(mover, alice, big.NewInt(70)); err != nil {
		t.Fatalf("withdraw to floor: %v", err)
	}

	// the floor is live: dropping the requirement frees the rest
	retainer.minimum[alice] = big.NewInt(0)
	if err := engine.Withdraw(mover, alice, big.NewInt(30)); err != nil {
		t.Fatalf("withdraw after floor drop: %v", err)
	}
	if got := balance(t, engine, alice); got != 0 {
		t.Fatalf("balance = %d, want 0", got)
	}
}

func TestMultipleRetainersSum(t *testing.T) {
	engine, _ := newTestEngine()
	engine.AddRetainer(&fixedRetainer{name: "a", minimum: map[types.Address]*big.Int{alice: big.NewInt(20)}})
	engine.AddRetainer(&fixedRetainer{name: "b", minimum: map[types.Address]*big.Int{alice: big.NewInt(15)}})

	required, err := engine.MinScpRequired(alice)
	if err != nil {
		t.Fatalf("required: %v", err)
	}
	if required.Int64() != 35 {
		t.Fatalf("required = %s, want 35", required)
	}
}

func TestApprovalsAreNeutered(t *testing.T) {
	engine, _ := newTestEngine()
	if got := engine.Allowance(alice, bob); got.Sign() != 0 {
		t.Fatalf("allowance = %s, want 0", got)
	}
	if err := engine.Approve(alice, bob, big.NewInt(10)); !errors.Is(err, ErrApproveDisabled) {
		t.Fatalf("err = %v, want ErrApproveDisabled", err)
	}
}
