package state

import (
	"math/big"

	"veledger/core/types"
)

func (m *Manager) loadBigInt(key string) (*big.Int, error) {
	value := new(big.Int)
	ok, err := m.loadRLP(key, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return value, nil
}

func (m *Manager) storeBigInt(key string, value *big.Int) error {
	if value == nil {
		value = big.NewInt(0)
	}
	return m.storeRLP(key, value)
}

func (m *Manager) loadUint64(key string) (uint64, error) {
	var value uint64
	if _, err := m.loadRLP(key, &value); err != nil {
		return 0, err
	}
	return value, nil
}

func (m *Manager) storeUint64(key string, value uint64) error {
	return m.storeRLP(key, value)
}

func (m *Manager) loadBool(key string) (bool, error) {
	var value bool
	if _, err := m.loadRLP(key, &value); err != nil {
		return false, err
	}
	return value, nil
}

func (m *Manager) storeBool(key string, value bool) error {
	return m.storeRLP(key, value)
}

func (m *Manager) loadAddress(key string) (types.Address, bool, error) {
	var value types.Address
	ok, err := m.loadRLP(key, &value)
	return value, ok, err
}

func (m *Manager) storeAddress(key string, value types.Address) error {
	return m.storeRLP(key, value)
}

func (m *Manager) loadIDs(key string) ([]uint64, error) {
	var value []uint64
	if _, err := m.loadRLP(key, &value); err != nil {
		return nil, err
	}
	return value, nil
}

func (m *Manager) storeIDs(key string, ids []uint64) error {
	if ids == nil {
		ids = []uint64{}
	}
	return m.storeRLP(key, ids)
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
