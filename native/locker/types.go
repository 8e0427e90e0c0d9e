package locker

import (
	"math/big"

	"veledger/core/types"
)

const (
	// SecondsPerWeek is the granularity lock ends are rounded down to.
	SecondsPerWeek uint64 = 7 * 24 * 60 * 60
	// MaxLockDuration caps how far in the future a lock may end.
	MaxLockDuration uint64 = 4 * 365 * 24 * 60 * 60 // 4 years
)

// Lock is an escrowed position: an amount of the escrow token and the unix
// time it unlocks. End of zero means the position was never time-locked.
type Lock struct {
	Amount *big.Int
	End    uint64
}

// ZeroLock returns an empty lock snapshot, used as the "old" side of creation
// notifications.
func ZeroLock() *Lock {
	return &Lock{Amount: big.NewInt(0)}
}

// Clone returns a deep copy of the lock.
func (l *Lock) Clone() *Lock {
	if l == nil {
		return ZeroLock()
	}
	out := &Lock{End: l.End, Amount: big.NewInt(0)}
	if l.Amount != nil {
		out.Amount = new(big.Int).Set(l.Amount)
	}
	return out
}

// Unlocked reports whether the lock may be withdrawn at the given time.
func (l *Lock) Unlocked(now uint64) bool {
	if l == nil {
		return true
	}
	return now >= l.End
}

// TimeLeft returns the seconds until the lock unlocks, zero if unlocked.
func (l *Lock) TimeLeft(now uint64) uint64 {
	if l == nil || now >= l.End {
		return 0
	}
	return l.End - now
}

// RoundToWeek rounds a unix timestamp down to the nearest week boundary.
func RoundToWeek(ts uint64) uint64 {
	return ts - ts%SecondsPerWeek
}

// Listener receives a synchronous callback for every lock mutation and every
// ownership change. Exactly one of {owner changed, lock changed} holds per
// call, never both.
type Listener interface {
	Name() string
	RegisterLockEvent(lockID uint64, oldOwner, newOwner types.Address, oldLock, newLock *Lock) error
}
