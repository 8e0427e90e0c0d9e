package events

import (
	"math/big"
	"strconv"

	"veledger/core/types"
)

const (
	// TypeBondCreated is emitted when a deposit opens a vesting bond.
	TypeBondCreated = "bond.created"
	// TypeBondStaked is emitted when a deposit routes its payout straight
	// into the lock ledger instead of a vesting bond.
	TypeBondStaked = "bond.staked"
	// TypeBondPayoutClaimed captures a vested payout claim.
	TypeBondPayoutClaimed = "bond.payoutClaimed"
	// TypeBondRedeemed marks a bond that was fully vested, fully claimed,
	// and deleted.
	TypeBondRedeemed = "bond.redeemed"
	// TypeBondTermsSet is emitted when governance replaces the market terms.
	TypeBondTermsSet = "bond.termsSet"
	// TypeBondPaused and TypeBondUnpaused track the deposit gate.
	TypeBondPaused   = "bond.paused"
	TypeBondUnpaused = "bond.unpaused"
	// TypeBondFeesSet records a protocol fee update.
	TypeBondFeesSet = "bond.feesSet"
)

// BondCreated captures the principal and payout terms of a new bond.
type BondCreated struct {
	Teller      string
	BondID      uint64
	Depositor   types.Address
	Principal   *big.Int
	Payout      *big.Int
	VestingTerm uint64
}

// EventType satisfies the Event interface.
func (BondCreated) EventType() string { return TypeBondCreated }

// Event converts the structured payload into a broadcastable event.
func (e BondCreated) Event() *types.Event {
	return &types.Event{Type: TypeBondCreated, Attributes: map[string]string{
		"teller":      e.Teller,
		"bondId":      strconv.FormatUint(e.BondID, 10),
		"depositor":   e.Depositor.Hex(),
		"principal":   formatAmount(e.Principal),
		"payout":      formatAmount(e.Payout),
		"vestingTerm": strconv.FormatUint(e.VestingTerm, 10),
	}}
}

// BondStaked captures a deposit whose payout was escrowed as a new lock.
type BondStaked struct {
	Teller    string
	LockID    uint64
	Depositor types.Address
	Principal *big.Int
	Payout    *big.Int
}

// EventType satisfies the Event interface.
func (BondStaked) EventType() string { return TypeBondStaked }

// Event converts the structured payload into a broadcastable event.
func (e BondStaked) Event() *types.Event {
	return &types.Event{Type: TypeBondStaked, Attributes: map[string]string{
		"teller":    e.Teller,
		"lockId":    strconv.FormatUint(e.LockID, 10),
		"depositor": e.Depositor.Hex(),
		"principal": formatAmount(e.Principal),
		"payout":    formatAmount(e.Payout),
	}}
}

// BondPayoutClaimed records the vested slice paid out by a claim.
type BondPayoutClaimed struct {
	Teller    string
	BondID    uint64
	Claimer   types.Address
	Amount    *big.Int
	Remaining *big.Int
}

// EventType satisfies the Event interface.
func (BondPayoutClaimed) EventType() string { return TypeBondPayoutClaimed }

// Event converts the structured payload into a broadcastable event.
func (e BondPayoutClaimed) Event() *types.Event {
	return &types.Event{Type: TypeBondPayoutClaimed, Attributes: map[string]string{
		"teller":    e.Teller,
		"bondId":    strconv.FormatUint(e.BondID, 10),
		"claimer":   e.Claimer.Hex(),
		"amount":    formatAmount(e.Amount),
		"remaining": formatAmount(e.Remaining),
	}}
}

// BondRedeemed marks the deletion of a fully vested, fully claimed bond.
type BondRedeemed struct {
	BondID uint64
	Owner  types.Address
}

// EventType satisfies the Event interface.
func (BondRedeemed) EventType() string { return TypeBondRedeemed }

// Event converts the structured payload into a broadcastable event.
func (e BondRedeemed) Event() *types.Event {
	return &types.Event{Type: TypeBondRedeemed, Attributes: map[string]string{
		"bondId": strconv.FormatUint(e.BondID, 10),
		"owner":  e.Owner.Hex(),
	}}
}

// BondTermsSet records the replacement of the teller's market terms.
type BondTermsSet struct {
	StartPrice   *big.Int
	MinimumPrice *big.Int
	Capacity     *big.Int
	StartTime    uint64
	EndTime      uint64
}

// EventType satisfies the Event interface.
func (BondTermsSet) EventType() string { return TypeBondTermsSet }

// Event converts the structured payload into a broadcastable event.
func (e BondTermsSet) Event() *types.Event {
	return &types.Event{Type: TypeBondTermsSet, Attributes: map[string]string{
		"startPrice":   formatAmount(e.StartPrice),
		"minimumPrice": formatAmount(e.MinimumPrice),
		"capacity":     formatAmount(e.Capacity),
		"startTime":    strconv.FormatUint(e.StartTime, 10),
		"endTime":      strconv.FormatUint(e.EndTime, 10),
	}}
}

// BondPaused signals the deposit gate closing.
type BondPaused struct{}

// EventType satisfies the Event interface.
func (BondPaused) EventType() string { return TypeBondPaused }

// Event converts the structured payload into a broadcastable event.
func (BondPaused) Event() *types.Event {
	return &types.Event{Type: TypeBondPaused, Attributes: map[string]string{}}
}

// BondUnpaused signals the deposit gate reopening.
type BondUnpaused struct{}

// EventType satisfies the Event interface.
func (BondUnpaused) EventType() string { return TypeBondUnpaused }

// Event converts the structured payload into a broadcastable event.
func (BondUnpaused) Event() *types.Event {
	return &types.Event{Type: TypeBondUnpaused, Attributes: map[string]string{}}
}

// BondFeesSet records a protocol fee change in basis points.
type BondFeesSet struct {
	ProtocolFeeBps uint64
}

// EventType satisfies the Event interface.
func (BondFeesSet) EventType() string { return TypeBondFeesSet }

// Event converts the structured payload into a broadcastable event.
func (e BondFeesSet) Event() *types.Event {
	return &types.Event{Type: TypeBondFeesSet, Attributes: map[string]string{
		"protocolFeeBps": strconv.FormatUint(e.ProtocolFeeBps, 10),
	}}
}
