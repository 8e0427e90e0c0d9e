package bonds

import (
	"math/big"

	"veledger/core/types"
)

// MaxFeeBps caps the protocol fee carve-out.
const MaxFeeBps uint64 = 10_000

// payoutScale is the fixed-point unit price quotes are denominated in:
// price is principal units per 1e18 payout units.
var payoutScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Terms are the governance-set parameters of one sale epoch.
type Terms struct {
	StartPrice        *big.Int
	MinimumPrice      *big.Int
	MaxPayout         *big.Int
	PriceAdjNum       *big.Int
	PriceAdjDenom     *big.Int
	Capacity          *big.Int
	CapacityIsPayout  bool
	StartTime         uint64
	EndTime           uint64
	GlobalVestingTerm uint64
	HalfLife          uint64
}

// Market is the full mutable sale state of a teller: the terms plus the
// price/capacity accumulators they seed. Capacity only ever decreases within
// an epoch; NextPrice only rises across purchases, decaying between them.
type Market struct {
	Terms
	TermsSet        bool
	Paused          bool
	NextPrice       *big.Int
	RemainingCap    *big.Int
	LastPriceUpdate uint64
	ProtocolFeeBps  uint64
}

// Clone returns a deep copy of the market state.
func (m *Market) Clone() *Market {
	if m == nil {
		return nil
	}
	out := *m
	out.StartPrice = cloneBig(m.StartPrice)
	out.MinimumPrice = cloneBig(m.MinimumPrice)
	out.MaxPayout = cloneBig(m.MaxPayout)
	out.PriceAdjNum = cloneBig(m.PriceAdjNum)
	out.PriceAdjDenom = cloneBig(m.PriceAdjDenom)
	out.Capacity = cloneBig(m.Capacity)
	out.NextPrice = cloneBig(m.NextPrice)
	out.RemainingCap = cloneBig(m.RemainingCap)
	return &out
}

// Bond is one purchaser's vesting claim on minted payout tokens.
type Bond struct {
	Owner                types.Address
	PayoutAmount         *big.Int
	PayoutAlreadyClaimed *big.Int
	PrincipalPaid        *big.Int
	VestingStart         uint64
	LocalVestingTerm     uint64
}

// Clone returns a deep copy of the bond.
func (b *Bond) Clone() *Bond {
	if b == nil {
		return nil
	}
	out := *b
	out.PayoutAmount = cloneBig(b.PayoutAmount)
	out.PayoutAlreadyClaimed = cloneBig(b.PayoutAlreadyClaimed)
	out.PrincipalPaid = cloneBig(b.PrincipalPaid)
	return &out
}

// Vested reports whether the bond's vesting term has fully elapsed.
func (b *Bond) Vested(now uint64) bool {
	return now >= b.VestingStart+b.LocalVestingTerm
}

// EligiblePayout returns the claimable slice at the given time: linear in
// elapsed vesting time, the full remainder once the term has elapsed, and
// deterministic for identical timestamps (claiming twice at the same instant
// pays zero the second time).
func (b *Bond) EligiblePayout(now uint64) *big.Int {
	if b == nil || b.PayoutAmount == nil {
		return big.NewInt(0)
	}
	var vested *big.Int
	if b.Vested(now) || b.LocalVestingTerm == 0 {
		vested = new(big.Int).Set(b.PayoutAmount)
	} else {
		elapsed := now - b.VestingStart
		vested = new(big.Int).Mul(b.PayoutAmount, new(big.Int).SetUint64(elapsed))
		vested.Quo(vested, new(big.Int).SetUint64(b.LocalVestingTerm))
	}
	vested.Sub(vested, b.PayoutAlreadyClaimed)
	if vested.Sign() < 0 {
		return big.NewInt(0)
	}
	return vested
}

// DepositReceipt reports the outcome of a deposit: either a vesting bond
// (BondID set) or a direct stake (LockID set), never both.
type DepositReceipt struct {
	BondID    uint64
	LockID    uint64
	Payout    *big.Int
	Principal *big.Int
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
