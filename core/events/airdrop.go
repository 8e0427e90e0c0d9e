package events

import (
	"math/big"
	"strconv"

	"veledger/core/types"
)

const (
	// TypeAirdropClaimed is emitted on a successful Merkle claim.
	TypeAirdropClaimed = "airdrop.claimed"
	// TypeAirdropRecovered is emitted when governance sweeps the remaining
	// distributor balance.
	TypeAirdropRecovered = "airdrop.recovered"
)

// AirdropClaimed records a one-shot claim. LockID is zero when the claim was
// paid out directly instead of being escrowed as a lock.
type AirdropClaimed struct {
	User   types.Address
	Amount *big.Int
	LockID uint64
}

// EventType satisfies the Event interface.
func (AirdropClaimed) EventType() string { return TypeAirdropClaimed }

// Event converts the structured payload into a broadcastable event.
func (e AirdropClaimed) Event() *types.Event {
	attrs := map[string]string{
		"user":   e.User.Hex(),
		"amount": formatAmount(e.Amount),
	}
	if e.LockID != 0 {
		attrs["lockId"] = strconv.FormatUint(e.LockID, 10)
	}
	return &types.Event{Type: TypeAirdropClaimed, Attributes: attrs}
}

// AirdropRecovered records a governance sweep of unclaimed funds.
type AirdropRecovered struct {
	To     types.Address
	Amount *big.Int
}

// EventType satisfies the Event interface.
func (AirdropRecovered) EventType() string { return TypeAirdropRecovered }

// Event converts the structured payload into a broadcastable event.
func (e AirdropRecovered) Event() *types.Event {
	return &types.Event{Type: TypeAirdropRecovered, Attributes: map[string]string{
		"to":     e.To.Hex(),
		"amount": formatAmount(e.Amount),
	}}
}
