package state

import (
	"fmt"
	"math/big"

	"veledger/core/types"
	"veledger/native/rewards"
)

// --- points ledger ---

func scpBalanceKey(addr types.Address) string       { return "scp/balance/" + addr.Hex() }
func scpNonRefundableKey(addr types.Address) string { return "scp/non-refundable/" + addr.Hex() }
func scpMoverKey(addr types.Address) string         { return "scp/mover/" + addr.Hex() }

const scpSupplyKey = "scp/supply"

// ScpBalance returns the full point balance of an account.
func (m *Manager) ScpBalance(addr types.Address) (*big.Int, error) {
	return m.loadBigInt(scpBalanceKey(addr))
}

// SetScpBalance stores the full point balance of an account.
func (m *Manager) SetScpBalance(addr types.Address, amount *big.Int) error {
	return m.storeBigInt(scpBalanceKey(addr), amount)
}

// ScpNonRefundable returns the non-refundable partition of a balance.
func (m *Manager) ScpNonRefundable(addr types.Address) (*big.Int, error) {
	return m.loadBigInt(scpNonRefundableKey(addr))
}

// SetScpNonRefundable stores the non-refundable partition of a balance.
func (m *Manager) SetScpNonRefundable(addr types.Address, amount *big.Int) error {
	return m.storeBigInt(scpNonRefundableKey(addr), amount)
}

// ScpTotalSupply returns the outstanding points supply.
func (m *Manager) ScpTotalSupply() (*big.Int, error) {
	return m.loadBigInt(scpSupplyKey)
}

// SetScpTotalSupply stores the outstanding points supply.
func (m *Manager) SetScpTotalSupply(amount *big.Int) error {
	return m.storeBigInt(scpSupplyKey, amount)
}

// ScpIsMover reports whether addr is an authorized mover.
func (m *Manager) ScpIsMover(addr types.Address) (bool, error) {
	return m.loadBool(scpMoverKey(addr))
}

// SetScpMover adds or removes a mover.
func (m *Manager) SetScpMover(addr types.Address, allowed bool) error {
	if !allowed {
		m.deleteRaw(scpMoverKey(addr))
		return nil
	}
	return m.storeBool(scpMoverKey(addr), true)
}

// --- genesis ---

const genesisAppliedKey = "genesis/applied"

// GenesisApplied reports whether one-shot genesis provisioning already ran.
func (m *Manager) GenesisApplied() (bool, error) {
	return m.loadBool(genesisAppliedKey)
}

// SetGenesisApplied marks genesis provisioning as done.
func (m *Manager) SetGenesisApplied() error {
	return m.storeBool(genesisAppliedKey, true)
}

// --- airdrop ---

func airdropClaimedKey(user types.Address) string { return "airdrop/claimed/" + user.Hex() }

// AirdropClaimed reports whether the user has already claimed.
func (m *Manager) AirdropClaimed(user types.Address) (bool, error) {
	return m.loadBool(airdropClaimedKey(user))
}

// SetAirdropClaimed marks the user as claimed.
func (m *Manager) SetAirdropClaimed(user types.Address) error {
	return m.storeBool(airdropClaimedKey(user), true)
}

// --- governance ---

const (
	govCurrentKey = "gov/current"
	govPendingKey = "gov/pending"
	govLockedKey  = "gov/locked"
)

// GovCurrent returns the current governor.
func (m *Manager) GovCurrent() (types.Address, bool, error) {
	return m.loadAddress(govCurrentKey)
}

// SetGovCurrent stores the current governor.
func (m *Manager) SetGovCurrent(addr types.Address) error {
	return m.storeAddress(govCurrentKey, addr)
}

// GovPending returns the pending governor.
func (m *Manager) GovPending() (types.Address, bool, error) {
	return m.loadAddress(govPendingKey)
}

// SetGovPending stores the pending governor.
func (m *Manager) SetGovPending(addr types.Address) error {
	return m.storeAddress(govPendingKey, addr)
}

// DeleteGovPending clears the pending governor slot.
func (m *Manager) DeleteGovPending() error {
	m.deleteRaw(govPendingKey)
	return nil
}

// GovLocked reports whether governance is permanently locked.
func (m *Manager) GovLocked() (bool, error) {
	return m.loadBool(govLockedKey)
}

// SetGovLocked permanently locks governance.
func (m *Manager) SetGovLocked() error {
	return m.storeBool(govLockedKey, true)
}

// --- staking rewards ---

const rewardsGlobalKey = "rewards/global"

func rewardsLockKey(id uint64) string { return fmt.Sprintf("rewards/lock/%d", id) }

type storedRewardsGlobal struct {
	AccRewardPerShare *big.Int
	LastRewardTime    uint64
	RewardPerSecond   *big.Int
	StartTime         uint64
	EndTime           uint64
	ValueStaked       *big.Int
}

type storedStakedLock struct {
	Value         *big.Int
	RewardDebt    *big.Int
	UnpaidRewards *big.Int
	Owner         types.Address
}

// RewardsGlobal loads the shared reward accumulator, zeroed if unset.
func (m *Manager) RewardsGlobal() (*rewards.GlobalState, error) {
	stored := new(storedRewardsGlobal)
	ok, err := m.loadRLP(rewardsGlobalKey, stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return rewards.NewGlobalState(), nil
	}
	return &rewards.GlobalState{
		AccRewardPerShare: bigOrZero(stored.AccRewardPerShare),
		LastRewardTime:    stored.LastRewardTime,
		RewardPerSecond:   bigOrZero(stored.RewardPerSecond),
		StartTime:         stored.StartTime,
		EndTime:           stored.EndTime,
		ValueStaked:       bigOrZero(stored.ValueStaked),
	}, nil
}

// SetRewardsGlobal stores the shared reward accumulator.
func (m *Manager) SetRewardsGlobal(g *rewards.GlobalState) error {
	if g == nil {
		g = rewards.NewGlobalState()
	}
	stored := &storedRewardsGlobal{
		AccRewardPerShare: bigOrZero(g.AccRewardPerShare),
		LastRewardTime:    g.LastRewardTime,
		RewardPerSecond:   bigOrZero(g.RewardPerSecond),
		StartTime:         g.StartTime,
		EndTime:           g.EndTime,
		ValueStaked:       bigOrZero(g.ValueStaked),
	}
	return m.storeRLP(rewardsGlobalKey, stored)
}

// RewardsLockInfo loads the per-lock reward record.
func (m *Manager) RewardsLockInfo(id uint64) (*rewards.StakedLockInfo, bool, error) {
	stored := new(storedStakedLock)
	ok, err := m.loadRLP(rewardsLockKey(id), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &rewards.StakedLockInfo{
		Value:         bigOrZero(stored.Value),
		RewardDebt:    bigOrZero(stored.RewardDebt),
		UnpaidRewards: bigOrZero(stored.UnpaidRewards),
		Owner:         stored.Owner,
	}, true, nil
}

// SetRewardsLockInfo stores the per-lock reward record.
func (m *Manager) SetRewardsLockInfo(id uint64, info *rewards.StakedLockInfo) error {
	if info == nil {
		info = rewards.NewStakedLockInfo()
	}
	stored := &storedStakedLock{
		Value:         bigOrZero(info.Value),
		RewardDebt:    bigOrZero(info.RewardDebt),
		UnpaidRewards: bigOrZero(info.UnpaidRewards),
		Owner:         info.Owner,
	}
	return m.storeRLP(rewardsLockKey(id), stored)
}

// DeleteRewardsLockInfo removes the reward record of a burned lock.
func (m *Manager) DeleteRewardsLockInfo(id uint64) error {
	m.deleteRaw(rewardsLockKey(id))
	return nil
}
