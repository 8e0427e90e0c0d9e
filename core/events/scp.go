package events

import (
	"math/big"
	"strconv"

	"veledger/core/types"
)

const (
	// TypeScpMinted is emitted when a mover credits points to an account.
	TypeScpMinted = "scp.minted"
	// TypeScpBurned is emitted when a mover debits points from an account.
	TypeScpBurned = "scp.burned"
	// TypeScpTransferred captures a mover-driven balance move.
	TypeScpTransferred = "scp.transferred"
	// TypeScpWithdrawn captures a refundable-balance withdrawal.
	TypeScpWithdrawn = "scp.withdrawn"
)

// ScpMinted records a points credit and its refundability.
type ScpMinted struct {
	Account    types.Address
	Amount     *big.Int
	Refundable bool
}

// EventType satisfies the Event interface.
func (ScpMinted) EventType() string { return TypeScpMinted }

// Event converts the structured payload into a broadcastable event.
func (e ScpMinted) Event() *types.Event {
	return &types.Event{Type: TypeScpMinted, Attributes: map[string]string{
		"account":    e.Account.Hex(),
		"amount":     formatAmount(e.Amount),
		"refundable": strconv.FormatBool(e.Refundable),
	}}
}

// ScpBurned records a points debit.
type ScpBurned struct {
	Account types.Address
	Amount  *big.Int
}

// EventType satisfies the Event interface.
func (ScpBurned) EventType() string { return TypeScpBurned }

// Event converts the structured payload into a broadcastable event.
func (e ScpBurned) Event() *types.Event {
	return &types.Event{Type: TypeScpBurned, Attributes: map[string]string{
		"account": e.Account.Hex(),
		"amount":  formatAmount(e.Amount),
	}}
}

// ScpTransferred records a mover-driven balance move between accounts.
type ScpTransferred struct {
	From   types.Address
	To     types.Address
	Amount *big.Int
}

// EventType satisfies the Event interface.
func (ScpTransferred) EventType() string { return TypeScpTransferred }

// Event converts the structured payload into a broadcastable event.
func (e ScpTransferred) Event() *types.Event {
	return &types.Event{Type: TypeScpTransferred, Attributes: map[string]string{
		"from":   e.From.Hex(),
		"to":     e.To.Hex(),
		"amount": formatAmount(e.Amount),
	}}
}

// ScpWithdrawn records a withdrawal of refundable points.
type ScpWithdrawn struct {
	Account types.Address
	Amount  *big.Int
}

// EventType satisfies the Event interface.
func (ScpWithdrawn) EventType() string { return TypeScpWithdrawn }

// Event converts the structured payload into a broadcastable event.
func (e ScpWithdrawn) Event() *types.Event {
	return &types.Event{Type: TypeScpWithdrawn, Attributes: map[string]string{
		"account": e.Account.Hex(),
		"amount":  formatAmount(e.Amount),
	}}
}
