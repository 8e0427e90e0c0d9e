// Package votes derives time-decaying voting power from lock ledger entries.
// Power is a pure function of a lock snapshot and the current time; nothing
// here is cached or persisted.
package votes

import (
	"math/big"
	"time"

	"veledger/core/types"
	"veledger/native/locker"
)

const (
	// UnlockedMultiplierBps is the floor multiplier applied to any locked
	// amount, expired or not (1x).
	UnlockedMultiplierBps uint64 = 10_000
	// MaxLockMultiplierBps is the ceiling multiplier at exactly the maximum
	// remaining duration (4x).
	MaxLockMultiplierBps uint64 = 40_000
)

// PowerOfLock computes the voting power of a single lock snapshot at the
// given time: the base 1x on the locked amount plus a bonus that scales
// linearly with remaining duration up to 3x extra at the four-year cap.
func PowerOfLock(lock *locker.Lock, now uint64) *big.Int {
	if lock == nil || lock.Amount == nil || lock.Amount.Sign() <= 0 {
		return big.NewInt(0)
	}
	base := new(big.Int).Mul(lock.Amount, new(big.Int).SetUint64(UnlockedMultiplierBps))
	base.Quo(base, new(big.Int).SetUint64(10_000))
	timeLeft := lock.TimeLeft(now)
	if timeLeft == 0 {
		return base
	}
	bonus := new(big.Int).Mul(lock.Amount, new(big.Int).SetUint64(timeLeft))
	bonus.Mul(bonus, new(big.Int).SetUint64(MaxLockMultiplierBps-UnlockedMultiplierBps))
	bonus.Quo(bonus, new(big.Int).SetUint64(locker.MaxLockDuration*10_000))
	return base.Add(base, bonus)
}

// Ledger is the read surface of the lock ledger the view aggregates over.
type Ledger interface {
	GetLock(id uint64) (*locker.Lock, error)
	OwnedLocks(owner types.Address) ([]uint64, error)
	DelegatedLocks(delegatee types.Address) ([]uint64, error)
	AllLockIDs() ([]uint64, error)
}

// View exposes account- and ledger-level voting power aggregations. These
// walk every relevant lock and are intended for query paths only, never for
// state-changing logic.
type View struct {
	ledger Ledger
	nowFn  func() uint64
}

// NewView constructs a voting power view over the given lock ledger.
func NewView(ledger Ledger) *View {
	return &View{
		ledger: ledger,
		nowFn:  func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// SetNowFunc overrides the time source. Nil restores the wall clock.
func (v *View) SetNowFunc(now func() uint64) {
	if now == nil {
		v.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	v.nowFn = now
}

// PowerOfLockID returns the voting power of one lock at the current time.
func (v *View) PowerOfLockID(id uint64) (*big.Int, error) {
	lock, err := v.ledger.GetLock(id)
	if err != nil {
		return nil, err
	}
	return PowerOfLock(lock, v.nowFn()), nil
}

func (v *View) sumLocks(ids []uint64) (*big.Int, error) {
	now := v.nowFn()
	total := big.NewInt(0)
	for _, id := range ids {
		lock, err := v.ledger.GetLock(id)
		if err != nil {
			return nil, err
		}
		total.Add(total, PowerOfLock(lock, now))
	}
	return total, nil
}

// PowerOf returns the combined voting power of all locks owned by account.
func (v *View) PowerOf(account types.Address) (*big.Int, error) {
	ids, err := v.ledger.OwnedLocks(account)
	if err != nil {
		return nil, err
	}
	return v.sumLocks(ids)
}

// DelegatedPowerOf returns the combined power of all locks delegated to the
// account, the weight it actually votes with.
func (v *View) DelegatedPowerOf(account types.Address) (*big.Int, error) {
	ids, err := v.ledger.DelegatedLocks(account)
	if err != nil {
		return nil, err
	}
	return v.sumLocks(ids)
}

// TotalPower sums voting power across every live lock.
func (v *View) TotalPower() (*big.Int, error) {
	ids, err := v.ledger.AllLockIDs()
	if err != nil {
		return nil, err
	}
	return v.sumLocks(ids)
}
