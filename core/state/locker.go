package state

import (
	"fmt"
	"math/big"

	"veledger/core/types"
	"veledger/native/locker"
)

const (
	lockerNextIDKey      = "locker/next-id"
	lockerAllIDsKey      = "locker/all"
	lockerTotalLockedKey = "locker/total-locked"
)

func lockerLockKey(id uint64) string      { return fmt.Sprintf("locker/lock/%d", id) }
func lockerOwnerKey(id uint64) string     { return fmt.Sprintf("locker/owner/%d", id) }
func lockerDelegateeKey(id uint64) string { return fmt.Sprintf("locker/delegatee/%d", id) }
func lockerOwnedKey(addr types.Address) string {
	return "locker/owned/" + addr.Hex()
}
func lockerDelegatedKey(addr types.Address) string {
	return "locker/delegated/" + addr.Hex()
}

type storedLock struct {
	Amount *big.Int
	End    uint64
}

// LockerNextID returns the highest lock id assigned so far.
func (m *Manager) LockerNextID() (uint64, error) {
	return m.loadUint64(lockerNextIDKey)
}

// LockerSetNextID persists the highest assigned lock id.
func (m *Manager) LockerSetNextID(id uint64) error {
	return m.storeUint64(lockerNextIDKey, id)
}

// LockerGetLock loads a lock entry.
func (m *Manager) LockerGetLock(id uint64) (*locker.Lock, bool, error) {
	stored := new(storedLock)
	ok, err := m.loadRLP(lockerLockKey(id), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &locker.Lock{Amount: bigOrZero(stored.Amount), End: stored.End}, true, nil
}

// LockerPutLock stores a lock entry.
func (m *Manager) LockerPutLock(id uint64, lock *locker.Lock) error {
	if lock == nil {
		lock = locker.ZeroLock()
	}
	return m.storeRLP(lockerLockKey(id), &storedLock{Amount: bigOrZero(lock.Amount), End: lock.End})
}

// LockerDeleteLock removes a lock entry.
func (m *Manager) LockerDeleteLock(id uint64) error {
	m.deleteRaw(lockerLockKey(id))
	return nil
}

// LockerAllLockIDs lists every live lock id.
func (m *Manager) LockerAllLockIDs() ([]uint64, error) {
	return m.loadIDs(lockerAllIDsKey)
}

// LockerSetAllLockIDs replaces the live lock id index.
func (m *Manager) LockerSetAllLockIDs(ids []uint64) error {
	return m.storeIDs(lockerAllIDsKey, ids)
}

// LockerOwner returns the owner of a lock.
func (m *Manager) LockerOwner(id uint64) (types.Address, bool, error) {
	return m.loadAddress(lockerOwnerKey(id))
}

// LockerSetOwner stores the owner of a lock.
func (m *Manager) LockerSetOwner(id uint64, owner types.Address) error {
	return m.storeAddress(lockerOwnerKey(id), owner)
}

// LockerDeleteOwner removes the owner record of a burned lock.
func (m *Manager) LockerDeleteOwner(id uint64) error {
	m.deleteRaw(lockerOwnerKey(id))
	return nil
}

// LockerOwnedLocks lists the lock ids owned by an account.
func (m *Manager) LockerOwnedLocks(owner types.Address) ([]uint64, error) {
	return m.loadIDs(lockerOwnedKey(owner))
}

// LockerSetOwnedLocks replaces an account's owned-lock index.
func (m *Manager) LockerSetOwnedLocks(owner types.Address, ids []uint64) error {
	return m.storeIDs(lockerOwnedKey(owner), ids)
}

// LockerDelegatee returns the delegatee of a lock.
func (m *Manager) LockerDelegatee(id uint64) (types.Address, bool, error) {
	return m.loadAddress(lockerDelegateeKey(id))
}

// LockerSetDelegatee stores the delegatee of a lock.
func (m *Manager) LockerSetDelegatee(id uint64, delegatee types.Address) error {
	return m.storeAddress(lockerDelegateeKey(id), delegatee)
}

// LockerDeleteDelegatee clears the delegatee record.
func (m *Manager) LockerDeleteDelegatee(id uint64) error {
	m.deleteRaw(lockerDelegateeKey(id))
	return nil
}

// LockerDelegatedLocks lists the lock ids delegated to an account.
func (m *Manager) LockerDelegatedLocks(delegatee types.Address) ([]uint64, error) {
	return m.loadIDs(lockerDelegatedKey(delegatee))
}

// LockerSetDelegatedLocks replaces an account's delegated-lock index.
func (m *Manager) LockerSetDelegatedLocks(delegatee types.Address, ids []uint64) error {
	return m.storeIDs(lockerDelegatedKey(delegatee), ids)
}

// LockerTotalLocked returns the aggregate escrowed amount.
func (m *Manager) LockerTotalLocked() (*big.Int, error) {
	return m.loadBigInt(lockerTotalLockedKey)
}

// LockerSetTotalLocked stores the aggregate escrowed amount.
func (m *Manager) LockerSetTotalLocked(amount *big.Int) error {
	return m.storeBigInt(lockerTotalLockedKey, amount)
}
