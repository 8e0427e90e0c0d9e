package events

import (
	"math/big"

	"veledger/core/types"
)

const (
	// TypeTokenMinted is emitted when the depository mints payout tokens.
	TypeTokenMinted = "token.minted"
	// TypeTokenMinterSet records a minter capability grant.
	TypeTokenMinterSet = "token.minterSet"
)

// TokenMinted records a depository mint.
type TokenMinted struct {
	Symbol string
	To     types.Address
	Amount *big.Int
}

// EventType satisfies the Event interface.
func (TokenMinted) EventType() string { return TypeTokenMinted }

// Event converts the structured payload into a broadcastable event.
func (e TokenMinted) Event() *types.Event {
	return &types.Event{Type: TypeTokenMinted, Attributes: map[string]string{
		"symbol": e.Symbol,
		"to":     e.To.Hex(),
		"amount": formatAmount(e.Amount),
	}}
}

// TokenMinterSet records the grant of a mint capability for a token.
type TokenMinterSet struct {
	Symbol string
	Minter types.Address
}

// EventType satisfies the Event interface.
func (TokenMinterSet) EventType() string { return TypeTokenMinterSet }

// Event converts the structured payload into a broadcastable event.
func (e TokenMinterSet) Event() *types.Event {
	return &types.Event{Type: TypeTokenMinterSet, Attributes: map[string]string{
		"symbol": e.Symbol,
		"minter": e.Minter.Hex(),
	}}
}
