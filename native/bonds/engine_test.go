package bonds

import (
	"errors"
	"math/big"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"veledger/core/types"
)

type mockState struct {
	markets map[string]*Market
	bonds   map[string]map[uint64]*Bond
	nextID  map[string]uint64
	signers map[types.Address]bool
}

func newMockState() *mockState {
	return &mockState{
		markets: make(map[string]*Market),
		bonds:   make(map[string]map[uint64]*Bond),
		nextID:  make(map[string]uint64),
		signers: make(map[types.Address]bool),
	}
}

func (s *mockState) BondsMarket(teller string) (*Market, bool, error) {
	market, ok := s.markets[teller]
	if !ok {
		return nil, false, nil
	}
	return market.Clone(), true, nil
}

func (s *mockState) SetBondsMarket(teller string, m *Market) error {
	s.markets[teller] = m.Clone()
	return nil
}

func (s *mockState) BondsGetBond(teller string, id uint64) (*Bond, bool, error) {
	bond, ok := s.bonds[teller][id]
	if !ok {
		return nil, false, nil
	}
	return bond.Clone(), true, nil
}

func (s *mockState) BondsPutBond(teller string, id uint64, b *Bond) error {
	if s.bonds[teller] == nil {
		s.bonds[teller] = make(map[uint64]*Bond)
	}
	s.bonds[teller][id] = b.Clone()
	return nil
}

func (s *mockState) BondsDeleteBond(teller string, id uint64) error {
	delete(s.bonds[teller], id)
	return nil
}

func (s *mockState) BondsNextID(teller string) (uint64, error) { return s.nextID[teller], nil }
func (s *mockState) BondsSetNextID(teller string, id uint64) error {
	s.nextID[teller] = id
	return nil
}

func (s *mockState) BondsIsPriceSigner(addr types.Address) (bool, error) {
	return s.signers[addr], nil
}

func (s *mockState) BondsSetPriceSigner(addr types.Address, allowed bool) error {
	if !allowed {
		delete(s.signers, addr)
		return nil
	}
	s.signers[addr] = true
	return nil
}

type transfer struct {
	symbol string
	from   types.Address
	to     types.Address
	amount *big.Int
}

// mockBank records movements without balance accounting; the engine's own
// routing is under test, not overdraft handling.
type mockBank struct {
	transfers []transfer
	minted    map[string]*big.Int
	approves  int
}

func newMockBank() *mockBank {
	return &mockBank{minted: make(map[string]*big.Int)}
}

func (b *mockBank) Transfer(symbol string, from, to types.Address, amount *big.Int) error {
	b.transfers = append(b.transfers, transfer{symbol, from, to, new(big.Int).Set(amount)})
	return nil
}

func (b *mockBank) TransferFrom(symbol string, spender, owner, to types.Address, amount *big.Int) error {
	return b.Transfer(symbol, owner, to, amount)
}

func (b *mockBank) Approve(symbol string, owner, spender types.Address, amount *big.Int) error {
	b.approves++
	return nil
}

func (b *mockBank) Mint(symbol string, caller, to types.Address, amount *big.Int) error {
	if b.minted[symbol] == nil {
		b.minted[symbol] = big.NewInt(0)
	}
	b.minted[symbol].Add(b.minted[symbol], amount)
	return nil
}

type mockLedger struct {
	nextLockID uint64
	created    []*big.Int
}

func (l *mockLedger) CreateLock(caller, recipient types.Address, amount *big.Int, end uint64) (uint64, error) {
	l.nextLockID++
	l.created = append(l.created, new(big.Int).Set(amount))
	return l.nextLockID, nil
}

const baseTime uint64 = 1_700_000_000

var (
	alice        = types.Address{0x0A}
	underwriting = types.Address{0xD0}
	dao          = types.Address{0xDA}

	oneE18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

func newTestEngine() (*Engine, *mockState, *mockBank, *uint64) {
	engine := NewEngine("dai", "DAI", "SOLACE")
	state := newMockState()
	bank := newMockBank()
	engine.SetState(state)
	engine.SetBank(bank)
	engine.SetLedger(&mockLedger{})
	engine.SetAddresses(underwriting, dao)
	now := baseTime
	engine.SetNowFunc(func() uint64 { return now })
	return engine, state, bank, &now
}

func defaultTerms() Terms {
	return Terms{
		StartPrice:        new(big.Int).Mul(big.NewInt(2), oneE18),
		MinimumPrice:      big.NewInt(1),
		MaxPayout:         big.NewInt(1_000_000),
		PriceAdjNum:       big.NewInt(0),
		PriceAdjDenom:     big.NewInt(1),
		Capacity:          big.NewInt(1_000_000),
		CapacityIsPayout:  false,
		StartTime:         baseTime,
		EndTime:           baseTime + 30*24*3600,
		GlobalVestingTerm: 1000,
		HalfLife:          3600,
	}
}

func mustSetTerms(t *testing.T, engine *Engine, terms Terms) {
	t.Helper()
	if err := engine.SetTerms(terms); err != nil {
		t.Fatalf("set terms: %v", err)
	}
}

func TestSetTermsValidation(t *testing.T) {
	engine, _, _, _ := newTestEngine()

	bad := func(mutate func(*Terms)) Terms {
		terms := defaultTerms()
		mutate(&terms)
		return terms
	}
	cases := []struct {
		name  string
		terms Terms
	}{
		{"zero start price", bad(func(t *Terms) { t.StartPrice = big.NewInt(0) })},
		{"nil minimum", bad(func(t *Terms) { t.MinimumPrice = nil })},
		{"zero adj denom", bad(func(t *Terms) { t.PriceAdjDenom = big.NewInt(0) })},
		{"zero half-life", bad(func(t *Terms) { t.HalfLife = 0 })},
		{"end before start", bad(func(t *Terms) { t.EndTime = t.StartTime })},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := engine.SetTerms(tc.terms); !errors.Is(err, ErrInvalidTerms) {
				t.Fatalf("err = %v, want ErrInvalidTerms", err)
			}
		})
	}
}

func TestSetTermsPreservesPauseAndFee(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	mustSetTerms(t, engine, defaultTerms())
	if err := engine.SetFees(250); err != nil {
		t.Fatalf("set fees: %v", err)
	}
	if err := engine.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}

	mustSetTerms(t, engine, defaultTerms())
	market, err := engine.Market()
	if err != nil {
		t.Fatalf("market: %v", err)
	}
	if !market.Paused {
		t.Fatal("pause flag lost across term replacement")
	}
	if market.ProtocolFeeBps != 250 {
		t.Fatalf("fee = %d, want 250", market.ProtocolFeeBps)
	}
}

func TestDepositGates(t *testing.T) {
	engine, _, _, now := newTestEngine()

	_, err := engine.Deposit(alice, alice, big.NewInt(100), nil, false)
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("err = %v, want ErrNotInitialized", err)
	}

	mustSetTerms(t, engine, defaultTerms())

	if err := engine.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := engine.Deposit(alice, alice, big.NewInt(100), nil, false); !errors.Is(err, ErrPaused) {
		t.Fatalf("err = %v, want ErrPaused", err)
	}
	if err := engine.Unpause(); err != nil {
		t.Fatalf("unpause: %v", err)
	}

	*now = baseTime + 31*24*3600
	if _, err := engine.Deposit(alice, alice, big.NewInt(100), nil, false); !errors.Is(err, ErrConcluded) {
		t.Fatalf("err = %v, want ErrConcluded", err)
	}

	*now = baseTime
	if _, err := engine.Deposit(alice, alice, big.NewInt(0), nil, false); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestDepositPayoutAndRouting(t *testing.T) {
	engine, _, bank, _ := newTestEngine()
	mustSetTerms(t, engine, defaultTerms())
	if err := engine.SetFees(500); err != nil { // 5%
		t.Fatalf("set fees: %v", err)
	}

	receipt, err := engine.Deposit(alice, alice, big.NewInt(1000), nil, false)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	// price 2e18: 1000 in, 500 out
	if receipt.Payout.Int64() != 500 {
		t.Fatalf("payout = %s, want 500", receipt.Payout)
	}
	if receipt.BondID != 1 {
		t.Fatalf("bond id = %d, want 1", receipt.BondID)
	}
	if bank.minted["SOLACE"].Int64() != 500 {
		t.Fatalf("minted = %s, want 500", bank.minted["SOLACE"])
	}
	if len(bank.transfers) != 2 {
		t.Fatalf("transfers = %d, want 2", len(bank.transfers))
	}
	fee, rest := bank.transfers[0], bank.transfers[1]
	if fee.to != dao || fee.amount.Int64() != 50 {
		t.Fatalf("fee leg = %+v", fee)
	}
	if rest.to != underwriting || rest.amount.Int64() != 950 {
		t.Fatalf("underwriting leg = %+v", rest)
	}
}

func TestDepositBumpsPrice(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	terms := defaultTerms()
	// each payout unit bumps the next price by 1e15
	terms.PriceAdjNum = big.NewInt(1_000_000_000_000_000)
	terms.PriceAdjDenom = big.NewInt(1)
	mustSetTerms(t, engine, terms)

	before, _ := engine.CurrentPrice()
	if _, err := engine.Deposit(alice, alice, big.NewInt(1000), nil, false); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	after, _ := engine.CurrentPrice()
	if after.Cmp(before) <= 0 {
		t.Fatalf("price did not rise: %s -> %s", before, after)
	}
	bump := new(big.Int).Sub(after, before)
	want := new(big.Int).Mul(big.NewInt(500), terms.PriceAdjNum)
	if bump.Cmp(want) != 0 {
		t.Fatalf("bump = %s, want %s", bump, want)
	}
}

func TestDepositPriceFloor(t *testing.T) {
	engine, _, _, now := newTestEngine()
	terms := defaultTerms()
	terms.MinimumPrice = new(big.Int).Set(oneE18)
	mustSetTerms(t, engine, terms)

	// far past many half-lives the decayed price would be ~0; the floor holds
	*now = baseTime + 100*3600
	price, err := engine.CurrentPrice()
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if price.Cmp(terms.MinimumPrice) != 0 {
		t.Fatalf("price = %s, want floor %s", price, terms.MinimumPrice)
	}
}

func TestDepositCapacityInPrincipalUnits(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	terms := defaultTerms()
	terms.Capacity = big.NewInt(1500)
	terms.CapacityIsPayout = false
	mustSetTerms(t, engine, terms)

	if _, err := engine.Deposit(alice, alice, big.NewInt(1000), nil, false); err != nil {
		t.Fatalf("first deposit: %v", err)
	}
	_, err := engine.Deposit(alice, alice, big.NewInt(1000), nil, false)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
	// a deposit that fits the remainder still goes through
	if _, err := engine.Deposit(alice, alice, big.NewInt(500), nil, false); err != nil {
		t.Fatalf("remainder deposit: %v", err)
	}
}

func TestDepositCapacityInPayoutUnits(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	terms := defaultTerms()
	terms.Capacity = big.NewInt(600) // payout units; price 2e18 halves amounts
	terms.CapacityIsPayout = true
	mustSetTerms(t, engine, terms)

	if _, err := engine.Deposit(alice, alice, big.NewInt(1000), nil, false); err != nil {
		t.Fatalf("first deposit (payout 500): %v", err)
	}
	_, err := engine.Deposit(alice, alice, big.NewInt(1000), nil, false)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
}

func TestDepositSlippageAndMaxPayout(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	terms := defaultTerms()
	terms.MaxPayout = big.NewInt(400)
	mustSetTerms(t, engine, terms)

	_, err := engine.Deposit(alice, alice, big.NewInt(1000), nil, false)
	if !errors.Is(err, ErrMaxPayout) {
		t.Fatalf("err = %v, want ErrMaxPayout", err)
	}
	_, err = engine.Deposit(alice, alice, big.NewInt(700), big.NewInt(400), false)
	if !errors.Is(err, ErrSlippage) {
		t.Fatalf("err = %v, want ErrSlippage", err)
	}
	if _, err := engine.Deposit(alice, alice, big.NewInt(700), big.NewInt(350), false); err != nil {
		t.Fatalf("deposit: %v", err)
	}
}

func TestDepositZeroMaxPayoutRejectsAll(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	terms := defaultTerms()
	terms.MaxPayout = big.NewInt(0)
	mustSetTerms(t, engine, terms)

	// a zero cap means no payout clears the gate, not an unbounded market
	for _, in := range []int64{2, 1000} {
		if _, err := engine.Deposit(alice, alice, big.NewInt(in), nil, false); !errors.Is(err, ErrMaxPayout) {
			t.Fatalf("deposit %d err = %v, want ErrMaxPayout", in, err)
		}
	}
}

func TestDepositStakeCreatesLock(t *testing.T) {
	engine, state, bank, _ := newTestEngine()
	ledger := &mockLedger{}
	engine.SetLedger(ledger)
	mustSetTerms(t, engine, defaultTerms())

	receipt, err := engine.Deposit(alice, alice, big.NewInt(1000), nil, true)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if receipt.LockID != 1 || receipt.BondID != 0 {
		t.Fatalf("receipt = %+v, want lock 1 and no bond", receipt)
	}
	if len(ledger.created) != 1 || ledger.created[0].Int64() != 500 {
		t.Fatalf("lock created = %v, want [500]", ledger.created)
	}
	if bank.approves != 1 {
		t.Fatalf("approves = %d, want 1", bank.approves)
	}
	if len(state.bonds["dai"]) != 0 {
		t.Fatal("staked deposit must not create a bond record")
	}
}

func TestClaimVestingSchedule(t *testing.T) {
	engine, state, bank, now := newTestEngine()
	mustSetTerms(t, engine, defaultTerms())

	receipt, err := engine.Deposit(alice, alice, big.NewInt(1000), nil, false)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	id := receipt.BondID

	if _, err := engine.ClaimPayout(types.Address{0x0B}, id); !errors.Is(err, ErrNotBondOwner) {
		t.Fatalf("err = %v, want ErrNotBondOwner", err)
	}

	// at vesting start nothing is eligible; claiming zero is not an error
	claimed, err := engine.ClaimPayout(alice, id)
	if err != nil {
		t.Fatalf("claim at start: %v", err)
	}
	if claimed.Sign() != 0 {
		t.Fatalf("claimed = %s, want 0", claimed)
	}

	// 40% through the term, 40% of the payout is eligible
	*now = baseTime + 400
	claimed, err = engine.ClaimPayout(alice, id)
	if err != nil {
		t.Fatalf("claim mid-vest: %v", err)
	}
	if claimed.Int64() != 200 {
		t.Fatalf("claimed = %s, want 200", claimed)
	}

	// claiming again at the same instant pays nothing more
	claimed, err = engine.ClaimPayout(alice, id)
	if err != nil {
		t.Fatalf("repeat claim: %v", err)
	}
	if claimed.Sign() != 0 {
		t.Fatalf("repeat claimed = %s, want 0", claimed)
	}

	// fully vested: the remainder arrives and the record is deleted
	*now = baseTime + 2000
	claimed, err = engine.ClaimPayout(alice, id)
	if err != nil {
		t.Fatalf("final claim: %v", err)
	}
	if claimed.Int64() != 300 {
		t.Fatalf("final claimed = %s, want 300", claimed)
	}
	if _, ok := state.bonds["dai"][id]; ok {
		t.Fatal("fully claimed bond must be deleted")
	}
	if _, err := engine.ClaimPayout(alice, id); !errors.Is(err, ErrBondNotFound) {
		t.Fatalf("err = %v, want ErrBondNotFound", err)
	}

	total := big.NewInt(0)
	for _, tr := range bank.transfers {
		if tr.symbol == "SOLACE" && tr.to == alice {
			total.Add(total, tr.amount)
		}
	}
	if total.Int64() != 500 {
		t.Fatalf("total payout = %s, want 500", total)
	}
}

func TestDepositSignedConvertsPrincipalValue(t *testing.T) {
	engine, _, _, now := newTestEngine()
	terms := defaultTerms()
	terms.StartPrice = new(big.Int).Set(oneE18) // 1:1 quote per payout
	mustSetTerms(t, engine, terms)

	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer := types.BytesToAddress(ethcrypto.PubkeyToAddress(key.PublicKey).Bytes())
	if err := engine.SetPriceSigner(signer, true); err != nil {
		t.Fatalf("set signer: %v", err)
	}

	// principal worth 3 quote units each
	price := new(big.Int).Mul(big.NewInt(3), oneE18)
	deadline := *now + 60
	digest := PriceDigest("DAI", price, deadline)
	sig, err := ethcrypto.Sign(digest, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	receipt, err := engine.DepositSigned(alice, alice, big.NewInt(100), nil, false, price, deadline, sig)
	if err != nil {
		t.Fatalf("deposit signed: %v", err)
	}
	// 100 principal * 3 value / price 1.0 = 300 payout
	if receipt.Payout.Int64() != 300 {
		t.Fatalf("payout = %s, want 300", receipt.Payout)
	}
}

func TestDepositSignedRejectsBadAttestations(t *testing.T) {
	engine, _, _, now := newTestEngine()
	mustSetTerms(t, engine, defaultTerms())

	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	price := new(big.Int).Set(oneE18)
	deadline := *now + 60
	sig, err := ethcrypto.Sign(PriceDigest("DAI", price, deadline), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	// signer never registered
	_, err = engine.DepositSigned(alice, alice, big.NewInt(100), nil, false, price, deadline, sig)
	if !errors.Is(err, ErrUnknownSigner) {
		t.Fatalf("err = %v, want ErrUnknownSigner", err)
	}

	signer := types.BytesToAddress(ethcrypto.PubkeyToAddress(key.PublicKey).Bytes())
	if err := engine.SetPriceSigner(signer, true); err != nil {
		t.Fatalf("set signer: %v", err)
	}

	// expired deadline
	*now = deadline + 1
	_, err = engine.DepositSigned(alice, alice, big.NewInt(100), nil, false, price, deadline, sig)
	if !errors.Is(err, ErrPriceExpired) {
		t.Fatalf("err = %v, want ErrPriceExpired", err)
	}
	*now = baseTime

	// tampered price no longer matches the signature
	tampered := new(big.Int).Mul(big.NewInt(2), oneE18)
	_, err = engine.DepositSigned(alice, alice, big.NewInt(100), nil, false, tampered, deadline, sig)
	if err == nil {
		t.Fatal("tampered attestation accepted")
	}

	// revoked signer
	if err := engine.SetPriceSigner(signer, false); err != nil {
		t.Fatalf("revoke signer: %v", err)
	}
	_, err = engine.DepositSigned(alice, alice, big.NewInt(100), nil, false, price, deadline, sig)
	if !errors.Is(err, ErrUnknownSigner) {
		t.Fatalf("err = %v, want ErrUnknownSigner", err)
	}
}

func TestFeeCap(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	mustSetTerms(t, engine, defaultTerms())
	if err := engine.SetFees(MaxFeeBps + 1); !errors.Is(err, ErrFeeTooHigh) {
		t.Fatalf("err = %v, want ErrFeeTooHigh", err)
	}
	if err := engine.SetFees(MaxFeeBps); err != nil {
		t.Fatalf("set fees at cap: %v", err)
	}
}
