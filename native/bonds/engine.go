package bonds

import (
	"math/big"
	"time"

	"veledger/core/events"
	"veledger/core/types"
	"veledger/native/token"
)

// State describes the persistence surface of one teller instance plus the
// shared price-signer set.
type State interface {
	BondsMarket(teller string) (*Market, bool, error)
	SetBondsMarket(teller string, m *Market) error
	BondsGetBond(teller string, id uint64) (*Bond, bool, error)
	BondsPutBond(teller string, id uint64, b *Bond) error
	BondsDeleteBond(teller string, id uint64) error
	BondsNextID(teller string) (uint64, error)
	BondsSetNextID(teller string, id uint64) error
	BondsIsPriceSigner(addr types.Address) (bool, error)
	BondsSetPriceSigner(addr types.Address, allowed bool) error
}

// Bank is the token surface the teller consumes: principal pulls, payout
// custody, and the depository mint capability.
type Bank interface {
	Transfer(symbol string, from, to types.Address, amount *big.Int) error
	TransferFrom(symbol string, spender, owner, to types.Address, amount *big.Int) error
	Approve(symbol string, owner, spender types.Address, amount *big.Int) error
	Mint(symbol string, caller, to types.Address, amount *big.Int) error
}

// Ledger is the lock ledger surface used for the stake-on-deposit option.
type Ledger interface {
	CreateLock(caller, recipient types.Address, amount *big.Int, end uint64) (uint64, error)
}

// Engine sells vesting claims on newly minted payout tokens at a decaying
// price. Each purchase consumes capacity atomically and pushes the next
// price up proportional to its payout, so demand raises the curve while time
// decays it.
type Engine struct {
	state   State
	bank    Bank
	ledger  Ledger
	emitter events.Emitter
	nowFn   func() uint64

	name            string
	principalSymbol string
	payoutSymbol    string
	vault           types.Address
	underwriting    types.Address
	dao             types.Address
}

// NewEngine constructs a teller named name selling payoutSymbol for
// principalSymbol.
func NewEngine(name, principalSymbol, payoutSymbol string) *Engine {
	return &Engine{
		emitter:         events.NoopEmitter{},
		nowFn:           func() uint64 { return uint64(time.Now().Unix()) },
		name:            name,
		principalSymbol: principalSymbol,
		payoutSymbol:    payoutSymbol,
		vault:           token.ModuleAddress("bonds/" + name + "/vault"),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state State) { e.state = state }

// SetBank configures the token ledger the teller settles through.
func (e *Engine) SetBank(bank Bank) { e.bank = bank }

// SetLedger configures the lock ledger used for staked deposits.
func (e *Engine) SetLedger(ledger Ledger) { e.ledger = ledger }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source. Nil restores the wall clock.
func (e *Engine) SetNowFunc(now func() uint64) {
	if now == nil {
		e.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	e.nowFn = now
}

// SetAddresses points the teller at its principal destinations. Governance
// gates the caller.
func (e *Engine) SetAddresses(underwriting, dao types.Address) {
	e.underwriting = underwriting
	e.dao = dao
}

// Name returns the teller instance name.
func (e *Engine) Name() string { return e.name }

// Vault returns the teller module address holding vesting payout custody.
func (e *Engine) Vault() types.Address { return e.vault }

// PrincipalSymbol returns the token the teller sells bonds for.
func (e *Engine) PrincipalSymbol() string { return e.principalSymbol }

// PayoutSymbol returns the token the teller mints and vests.
func (e *Engine) PayoutSymbol() string { return e.payoutSymbol }

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() uint64 {
	if e == nil || e.nowFn == nil {
		return uint64(time.Now().Unix())
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if e.bank == nil {
		return ErrNilBank
	}
	return nil
}

func validateTerms(t Terms) error {
	if t.StartPrice == nil || t.StartPrice.Sign() <= 0 {
		return ErrInvalidTerms
	}
	if t.MinimumPrice == nil || t.MinimumPrice.Sign() < 0 {
		return ErrInvalidTerms
	}
	if t.MaxPayout == nil || t.MaxPayout.Sign() < 0 {
		return ErrInvalidTerms
	}
	if t.PriceAdjNum == nil || t.PriceAdjNum.Sign() < 0 {
		return ErrInvalidTerms
	}
	if t.PriceAdjDenom == nil || t.PriceAdjDenom.Sign() <= 0 {
		return ErrInvalidTerms
	}
	if t.Capacity == nil || t.Capacity.Sign() < 0 {
		return ErrInvalidTerms
	}
	if t.HalfLife == 0 {
		return ErrInvalidTerms
	}
	if t.EndTime <= t.StartTime {
		return ErrInvalidTerms
	}
	return nil
}

// SetTerms replaces the full term set and reseeds the price and capacity
// accumulators. The pause flag and fee survive a term replacement.
func (e *Engine) SetTerms(terms Terms) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := validateTerms(terms); err != nil {
		return err
	}
	existing, ok, err := e.state.BondsMarket(e.name)
	if err != nil {
		return err
	}
	market := &Market{
		Terms:           terms,
		TermsSet:        true,
		NextPrice:       new(big.Int).Set(terms.StartPrice),
		RemainingCap:    new(big.Int).Set(terms.Capacity),
		LastPriceUpdate: e.now(),
	}
	if ok {
		market.Paused = existing.Paused
		market.ProtocolFeeBps = existing.ProtocolFeeBps
	}
	if err := e.state.SetBondsMarket(e.name, market); err != nil {
		return err
	}
	e.emit(events.BondTermsSet{
		StartPrice:   terms.StartPrice,
		MinimumPrice: terms.MinimumPrice,
		Capacity:     terms.Capacity,
		StartTime:    terms.StartTime,
		EndTime:      terms.EndTime,
	})
	return nil
}

// SetFees sets the protocol fee carve-out in basis points, capped at 10000.
func (e *Engine) SetFees(bps uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if bps > MaxFeeBps {
		return ErrFeeTooHigh
	}
	market, ok, err := e.state.BondsMarket(e.name)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotInitialized
	}
	market.ProtocolFeeBps = bps
	if err := e.state.SetBondsMarket(e.name, market); err != nil {
		return err
	}
	e.emit(events.BondFeesSet{ProtocolFeeBps: bps})
	return nil
}

// Pause closes the deposit gate.
func (e *Engine) Pause() error {
	return e.setPaused(true)
}

// Unpause reopens the deposit gate.
func (e *Engine) Unpause() error {
	return e.setPaused(false)
}

func (e *Engine) setPaused(paused bool) error {
	if err := e.ready(); err != nil {
		return err
	}
	market, ok, err := e.state.BondsMarket(e.name)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotInitialized
	}
	if market.Paused == paused {
		return nil
	}
	market.Paused = paused
	if err := e.state.SetBondsMarket(e.name, market); err != nil {
		return err
	}
	if paused {
		e.emit(events.BondPaused{})
	} else {
		e.emit(events.BondUnpaused{})
	}
	return nil
}

// CurrentPrice returns the decayed price a deposit would observe right now,
// floored at the minimum.
func (e *Engine) CurrentPrice() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	market, ok, err := e.state.BondsMarket(e.name)
	if err != nil {
		return nil, err
	}
	if !ok || !market.TermsSet {
		return nil, ErrNotInitialized
	}
	return e.priceAt(market, e.now()), nil
}

func (e *Engine) priceAt(market *Market, now uint64) *big.Int {
	elapsed := uint64(0)
	if now > market.LastPriceUpdate {
		elapsed = now - market.LastPriceUpdate
	}
	price := DecayedPrice(market.NextPrice, elapsed, market.HalfLife)
	if price.Cmp(market.MinimumPrice) < 0 {
		price = new(big.Int).Set(market.MinimumPrice)
	}
	return price
}

// Deposit sells a bond: principal in, a vesting claim (or an immediate
// four-year-capped stake) out. Price, capacity and the bond record move in
// one atomic step; the caller's minAmountOut is a floor on the payout.
func (e *Engine) Deposit(caller, depositor types.Address, amount, minAmountOut *big.Int, stake bool) (*DepositReceipt, error) {
	return e.deposit(caller, depositor, amount, amount, minAmountOut, stake)
}

// deposit runs the purchase with valueIn being the principal amount already
// converted into the quote denomination (identical to amount for the stable
// path, oracle-attested for DepositSigned).
func (e *Engine) deposit(caller, depositor types.Address, amount, valueIn, minAmountOut *big.Int, stake bool) (*DepositReceipt, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	now := e.now()
	market, ok, err := e.state.BondsMarket(e.name)
	if err != nil {
		return nil, err
	}
	if !ok || !market.TermsSet {
		return nil, ErrNotInitialized
	}
	if market.Paused {
		return nil, ErrPaused
	}
	if now < market.StartTime {
		return nil, ErrNotStarted
	}
	if now > market.EndTime {
		return nil, ErrConcluded
	}

	price := e.priceAt(market, now)
	if price.Sign() == 0 {
		return nil, ErrZeroPrice
	}
	payout := new(big.Int).Mul(payoutScale, valueIn)
	payout.Quo(payout, price)

	// capacity is consumed atomically with the price write below; the
	// processor serialises deposits so the read-decide-write is one unit.
	var consumed *big.Int
	if market.CapacityIsPayout {
		consumed = payout
	} else {
		consumed = amount
	}
	if market.RemainingCap.Cmp(consumed) < 0 {
		return nil, ErrCapacityExceeded
	}
	if payout.Cmp(market.MaxPayout) > 0 {
		return nil, ErrMaxPayout
	}
	if minAmountOut != nil && minAmountOut.Cmp(payout) > 0 {
		return nil, ErrSlippage
	}

	market.RemainingCap = new(big.Int).Sub(market.RemainingCap, consumed)
	bump := new(big.Int).Mul(payout, market.PriceAdjNum)
	bump.Quo(bump, market.PriceAdjDenom)
	market.NextPrice = new(big.Int).Add(price, bump)
	market.LastPriceUpdate = now
	if err := e.state.SetBondsMarket(e.name, market); err != nil {
		return nil, err
	}

	// principal routing: fee to the DAO, remainder to underwriting.
	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(market.ProtocolFeeBps))
	fee.Quo(fee, new(big.Int).SetUint64(MaxFeeBps))
	if fee.Sign() > 0 {
		if err := e.bank.TransferFrom(e.principalSymbol, e.vault, caller, e.dao, fee); err != nil {
			return nil, err
		}
	}
	rest := new(big.Int).Sub(amount, fee)
	if rest.Sign() > 0 {
		if err := e.bank.TransferFrom(e.principalSymbol, e.vault, caller, e.underwriting, rest); err != nil {
			return nil, err
		}
	}

	// payout is pulled from the depository: the teller is the registered
	// minter and never mints directly.
	if err := e.bank.Mint(e.payoutSymbol, e.vault, e.vault, payout); err != nil {
		return nil, err
	}

	receipt := &DepositReceipt{Payout: payout, Principal: new(big.Int).Set(amount)}
	if stake {
		if e.ledger == nil {
			return nil, ErrNilLedger
		}
		lockerVault := token.ModuleAddress("locker/escrow")
		if err := e.bank.Approve(e.payoutSymbol, e.vault, lockerVault, payout); err != nil {
			return nil, err
		}
		// end of zero: the stake is withdrawable immediately but accrues
		// the base staking weight, matching the original stake option.
		lockID, err := e.ledger.CreateLock(e.vault, depositor, payout, 0)
		if err != nil {
			return nil, err
		}
		receipt.LockID = lockID
		e.emit(events.BondStaked{Teller: e.name, LockID: lockID, Depositor: depositor, Principal: amount, Payout: payout})
		return receipt, nil
	}

	next, err := e.state.BondsNextID(e.name)
	if err != nil {
		return nil, err
	}
	bondID := next + 1
	if err := e.state.BondsSetNextID(e.name, bondID); err != nil {
		return nil, err
	}
	bond := &Bond{
		Owner:                depositor,
		PayoutAmount:         payout,
		PayoutAlreadyClaimed: big.NewInt(0),
		PrincipalPaid:        new(big.Int).Set(amount),
		VestingStart:         now,
		LocalVestingTerm:     market.GlobalVestingTerm,
	}
	if err := e.state.BondsPutBond(e.name, bondID, bond); err != nil {
		return nil, err
	}
	receipt.BondID = bondID
	e.emit(events.BondCreated{
		Teller:      e.name,
		BondID:      bondID,
		Depositor:   depositor,
		Principal:   amount,
		Payout:      payout,
		VestingTerm: bond.LocalVestingTerm,
	})
	return receipt, nil
}

// ClaimPayout pays the vested slice of a bond to its owner. The bond record
// is deleted only when the term has elapsed and the full payout has been
// claimed in the same call.
func (e *Engine) ClaimPayout(caller types.Address, bondID uint64) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	bond, ok, err := e.state.BondsGetBond(e.name, bondID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBondNotFound
	}
	if bond.Owner != caller {
		return nil, ErrNotBondOwner
	}
	now := e.now()
	eligible := bond.EligiblePayout(now)
	if eligible.Sign() > 0 {
		bond.PayoutAlreadyClaimed = new(big.Int).Add(bond.PayoutAlreadyClaimed, eligible)
	}
	remaining := new(big.Int).Sub(bond.PayoutAmount, bond.PayoutAlreadyClaimed)
	done := bond.Vested(now) && remaining.Sign() == 0
	if done {
		if err := e.state.BondsDeleteBond(e.name, bondID); err != nil {
			return nil, err
		}
	} else {
		if err := e.state.BondsPutBond(e.name, bondID, bond); err != nil {
			return nil, err
		}
	}
	if eligible.Sign() > 0 {
		if err := e.bank.Transfer(e.payoutSymbol, e.vault, bond.Owner, eligible); err != nil {
			return nil, err
		}
		e.emit(events.BondPayoutClaimed{Teller: e.name, BondID: bondID, Claimer: caller, Amount: eligible, Remaining: remaining})
	}
	if done {
		e.emit(events.BondRedeemed{BondID: bondID, Owner: bond.Owner})
	}
	return eligible, nil
}

// GetBond returns a copy of the bond record.
func (e *Engine) GetBond(bondID uint64) (*Bond, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	bond, ok, err := e.state.BondsGetBond(e.name, bondID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBondNotFound
	}
	return bond.Clone(), nil
}

// Market returns a copy of the current market state.
func (e *Engine) Market() (*Market, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	market, ok, err := e.state.BondsMarket(e.name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	return market.Clone(), nil
}
