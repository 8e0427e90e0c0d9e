package events

import (
	"math/big"
	"strconv"

	"veledger/core/types"
)

const (
	// TypeRewardsHarvested is emitted when accrued staking rewards are paid out.
	TypeRewardsHarvested = "rewards.harvested"
	// TypeRewardsCompounded is emitted when rewards are re-escrowed into the
	// originating lock.
	TypeRewardsCompounded = "rewards.compounded"
	// TypeRewardsRateSet records an emission rate change.
	TypeRewardsRateSet = "rewards.rateSet"
	// TypeRewardsShortfall signals that the rewards pool could not cover a
	// harvest; the remainder stays accrued.
	TypeRewardsShortfall = "rewards.shortfall"
)

// RewardsHarvested records a reward payout for a single lock.
type RewardsHarvested struct {
	LockID uint64
	Owner  types.Address
	Amount *big.Int
}

// EventType satisfies the Event interface.
func (RewardsHarvested) EventType() string { return TypeRewardsHarvested }

// Event converts the structured payload into a broadcastable event.
func (e RewardsHarvested) Event() *types.Event {
	return &types.Event{Type: TypeRewardsHarvested, Attributes: map[string]string{
		"lockId": strconv.FormatUint(e.LockID, 10),
		"owner":  e.Owner.Hex(),
		"amount": formatAmount(e.Amount),
	}}
}

// RewardsCompounded records rewards re-escrowed into the lock that earned them.
type RewardsCompounded struct {
	LockID uint64
	Amount *big.Int
}

// EventType satisfies the Event interface.
func (RewardsCompounded) EventType() string { return TypeRewardsCompounded }

// Event converts the structured payload into a broadcastable event.
func (e RewardsCompounded) Event() *types.Event {
	return &types.Event{Type: TypeRewardsCompounded, Attributes: map[string]string{
		"lockId": strconv.FormatUint(e.LockID, 10),
		"amount": formatAmount(e.Amount),
	}}
}

// RewardsRateSet records a change of the per-second emission rate.
type RewardsRateSet struct {
	RewardPerSecond *big.Int
}

// EventType satisfies the Event interface.
func (RewardsRateSet) EventType() string { return TypeRewardsRateSet }

// Event converts the structured payload into a broadcastable event.
func (e RewardsRateSet) Event() *types.Event {
	return &types.Event{Type: TypeRewardsRateSet, Attributes: map[string]string{
		"rewardPerSecond": formatAmount(e.RewardPerSecond),
	}}
}

// RewardsShortfall records the unpaid remainder left accrued after a harvest
// found the rewards pool short.
type RewardsShortfall struct {
	LockID    uint64
	Requested *big.Int
	Paid      *big.Int
}

// EventType satisfies the Event interface.
func (RewardsShortfall) EventType() string { return TypeRewardsShortfall }

// Event converts the structured payload into a broadcastable event.
func (e RewardsShortfall) Event() *types.Event {
	return &types.Event{Type: TypeRewardsShortfall, Attributes: map[string]string{
		"lockId":    strconv.FormatUint(e.LockID, 10),
		"requested": formatAmount(e.Requested),
		"paid":      formatAmount(e.Paid),
	}}
}
