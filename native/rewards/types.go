package rewards

import (
	"math/big"

	"veledger/core/types"
	"veledger/native/locker"
)

const (
	// UnlockedMultiplierBps is the stake weight floor for an expired lock (1x).
	UnlockedMultiplierBps uint64 = 10_000
	// MaxStakeMultiplierBps is the stake weight at the four-year cap (2.5x).
	// This curve is configured independently of the 4x voting power curve;
	// the two share a shape, not a constant.
	MaxStakeMultiplierBps uint64 = 25_000
)

// q12 scales the accumulated reward-per-share fixed point.
var q12 = big.NewInt(1_000_000_000_000)

// GlobalState is the shared accumulator driving reward accrual. The
// accumulator advances on every touch, proportional to emission rate and
// elapsed time over total weighted stake, clamped to the emission window.
type GlobalState struct {
	AccRewardPerShare *big.Int // q12-scaled
	LastRewardTime    uint64
	RewardPerSecond   *big.Int
	StartTime         uint64
	EndTime           uint64
	ValueStaked       *big.Int
}

// NewGlobalState returns a zeroed accumulator.
func NewGlobalState() *GlobalState {
	return &GlobalState{
		AccRewardPerShare: big.NewInt(0),
		RewardPerSecond:   big.NewInt(0),
		ValueStaked:       big.NewInt(0),
	}
}

// Clone returns a deep copy.
func (g *GlobalState) Clone() *GlobalState {
	if g == nil {
		return NewGlobalState()
	}
	out := &GlobalState{
		LastRewardTime: g.LastRewardTime,
		StartTime:      g.StartTime,
		EndTime:        g.EndTime,
	}
	out.AccRewardPerShare = cloneOrZero(g.AccRewardPerShare)
	out.RewardPerSecond = cloneOrZero(g.RewardPerSecond)
	out.ValueStaked = cloneOrZero(g.ValueStaked)
	return out
}

// StakedLockInfo mirrors one lock's weighted stake and reward bookkeeping.
// Owner is mirrored from the lock ledger so rewards survive a burn; the
// invariant pending = Value*acc/1e12 - RewardDebt + UnpaidRewards is
// re-established on every touch.
type StakedLockInfo struct {
	Value         *big.Int
	RewardDebt    *big.Int
	UnpaidRewards *big.Int
	Owner         types.Address
}

// NewStakedLockInfo returns a zeroed per-lock record.
func NewStakedLockInfo() *StakedLockInfo {
	return &StakedLockInfo{
		Value:         big.NewInt(0),
		RewardDebt:    big.NewInt(0),
		UnpaidRewards: big.NewInt(0),
	}
}

// Clone returns a deep copy.
func (i *StakedLockInfo) Clone() *StakedLockInfo {
	if i == nil {
		return NewStakedLockInfo()
	}
	return &StakedLockInfo{
		Value:         cloneOrZero(i.Value),
		RewardDebt:    cloneOrZero(i.RewardDebt),
		UnpaidRewards: cloneOrZero(i.UnpaidRewards),
		Owner:         i.Owner,
	}
}

func cloneOrZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// StakeValue computes the weighted stake of a lock snapshot: the amount
// scaled by a multiplier interpolated between 1x (unlocked) and 2.5x (full
// four-year remaining duration).
func StakeValue(lock *locker.Lock, now uint64) *big.Int {
	if lock == nil || lock.Amount == nil || lock.Amount.Sign() <= 0 {
		return big.NewInt(0)
	}
	timeLeft := lock.TimeLeft(now)
	if timeLeft > locker.MaxLockDuration {
		timeLeft = locker.MaxLockDuration
	}
	bonusBps := new(big.Int).SetUint64(MaxStakeMultiplierBps - UnlockedMultiplierBps)
	bonusBps.Mul(bonusBps, new(big.Int).SetUint64(timeLeft))
	bonusBps.Quo(bonusBps, new(big.Int).SetUint64(locker.MaxLockDuration))
	multBps := new(big.Int).Add(new(big.Int).SetUint64(UnlockedMultiplierBps), bonusBps)
	value := new(big.Int).Mul(lock.Amount, multBps)
	return value.Quo(value, new(big.Int).SetUint64(10_000))
}
