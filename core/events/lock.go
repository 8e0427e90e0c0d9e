package events

import (
	"math/big"
	"strconv"

	"veledger/core/types"
)

const (
	// TypeLockCreated is emitted when a new lock is opened in the ledger.
	TypeLockCreated = "lock.created"
	// TypeLockUpdated captures amount or duration changes on an existing lock.
	TypeLockUpdated = "lock.updated"
	// TypeLockWithdrawn is emitted on full or partial withdrawal.
	TypeLockWithdrawn = "lock.withdrawn"
	// TypeLockTransferred captures an ownership change with unchanged lock terms.
	TypeLockTransferred = "lock.transferred"
	// TypeLockDelegated records a voting delegation change for a lock.
	TypeLockDelegated = "lock.delegated"
	// TypeLockListenerFailed marks a listener callback that errored and was skipped.
	TypeLockListenerFailed = "lock.listenerFailed"
)

// LockCreated captures the initial terms of a freshly opened lock.
type LockCreated struct {
	LockID uint64
	Owner  types.Address
	Amount *big.Int
	End    uint64
}

// EventType satisfies the Event interface.
func (LockCreated) EventType() string { return TypeLockCreated }

// Event converts the structured payload into a broadcastable event.
func (e LockCreated) Event() *types.Event {
	return &types.Event{Type: TypeLockCreated, Attributes: map[string]string{
		"lockId": strconv.FormatUint(e.LockID, 10),
		"owner":  e.Owner.Hex(),
		"amount": formatAmount(e.Amount),
		"end":    strconv.FormatUint(e.End, 10),
	}}
}

// LockUpdated captures the post-mutation terms of a lock after a top-up or
// extension.
type LockUpdated struct {
	LockID uint64
	Amount *big.Int
	End    uint64
}

// EventType satisfies the Event interface.
func (LockUpdated) EventType() string { return TypeLockUpdated }

// Event converts the structured payload into a broadcastable event.
func (e LockUpdated) Event() *types.Event {
	return &types.Event{Type: TypeLockUpdated, Attributes: map[string]string{
		"lockId": strconv.FormatUint(e.LockID, 10),
		"amount": formatAmount(e.Amount),
		"end":    strconv.FormatUint(e.End, 10),
	}}
}

// LockWithdrawn records tokens leaving the escrow, with the remaining locked
// amount (zero for a full withdrawal, which also burns the lock).
type LockWithdrawn struct {
	LockID    uint64
	Recipient types.Address
	Amount    *big.Int
	Remaining *big.Int
}

// EventType satisfies the Event interface.
func (LockWithdrawn) EventType() string { return TypeLockWithdrawn }

// Event converts the structured payload into a broadcastable event.
func (e LockWithdrawn) Event() *types.Event {
	return &types.Event{Type: TypeLockWithdrawn, Attributes: map[string]string{
		"lockId":    strconv.FormatUint(e.LockID, 10),
		"recipient": e.Recipient.Hex(),
		"amount":    formatAmount(e.Amount),
		"remaining": formatAmount(e.Remaining),
	}}
}

// LockTransferred captures an ownership handoff; the lock terms are unchanged.
type LockTransferred struct {
	LockID   uint64
	OldOwner types.Address
	NewOwner types.Address
}

// EventType satisfies the Event interface.
func (LockTransferred) EventType() string { return TypeLockTransferred }

// Event converts the structured payload into a broadcastable event.
func (e LockTransferred) Event() *types.Event {
	return &types.Event{Type: TypeLockTransferred, Attributes: map[string]string{
		"lockId":   strconv.FormatUint(e.LockID, 10),
		"oldOwner": e.OldOwner.Hex(),
		"newOwner": e.NewOwner.Hex(),
	}}
}

// LockDelegated records a delegatee change for a lock's voting weight.
type LockDelegated struct {
	LockID      uint64
	OldDelegate types.Address
	NewDelegate types.Address
}

// EventType satisfies the Event interface.
func (LockDelegated) EventType() string { return TypeLockDelegated }

// Event converts the structured payload into a broadcastable event.
func (e LockDelegated) Event() *types.Event {
	return &types.Event{Type: TypeLockDelegated, Attributes: map[string]string{
		"lockId":      strconv.FormatUint(e.LockID, 10),
		"oldDelegate": e.OldDelegate.Hex(),
		"newDelegate": e.NewDelegate.Hex(),
	}}
}

// LockListenerFailed reports a listener callback error that was isolated so the
// ledger operation could proceed.
type LockListenerFailed struct {
	LockID   uint64
	Listener string
	Reason   string
}

// EventType satisfies the Event interface.
func (LockListenerFailed) EventType() string { return TypeLockListenerFailed }

// Event converts the structured payload into a broadcastable event.
func (e LockListenerFailed) Event() *types.Event {
	return &types.Event{Type: TypeLockListenerFailed, Attributes: map[string]string{
		"lockId":   strconv.FormatUint(e.LockID, 10),
		"listener": e.Listener,
		"reason":   e.Reason,
	}}
}
