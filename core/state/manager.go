// Package state provides RLP-encoded, keccak-keyed state access for the
// ledger engines over a raw key-value database. All writes land in a pending
// buffer first; the surrounding processor commits the buffer when an
// operation succeeds and discards it when it fails, so every public entry
// point is all-or-nothing.
package state

import (
	"errors"
	"sort"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"veledger/storage"
)

// Manager mediates every read and write between the engines and the
// underlying database. It is not safe for concurrent use; the processor
// serialises access.
type Manager struct {
	db      storage.Database
	pending map[string]pendingEntry
}

type pendingEntry struct {
	value   []byte
	deleted bool
}

// NewManager creates a state manager over the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{
		db:      db,
		pending: make(map[string]pendingEntry),
	}
}

func kvKey(key string) []byte {
	return ethcrypto.Keccak256([]byte(key))
}

func (m *Manager) getRaw(key string) ([]byte, bool, error) {
	hashed := kvKey(key)
	if entry, ok := m.pending[string(hashed)]; ok {
		if entry.deleted {
			return nil, false, nil
		}
		return entry.value, true, nil
	}
	value, err := m.db.Get(hashed)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (m *Manager) putRaw(key string, value []byte) {
	m.pending[string(kvKey(key))] = pendingEntry{value: value}
}

func (m *Manager) deleteRaw(key string) {
	m.pending[string(kvKey(key))] = pendingEntry{deleted: true}
}

// Commit flushes the pending buffer to the database in deterministic key
// order and clears it.
func (m *Manager) Commit() error {
	keys := make([]string, 0, len(m.pending))
	for k := range m.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		entry := m.pending[k]
		if entry.deleted {
			if err := m.db.Delete([]byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := m.db.Put([]byte(k), entry.value); err != nil {
			return err
		}
	}
	m.pending = make(map[string]pendingEntry)
	return nil
}

// Discard drops every pending write, restoring the view to the last commit.
func (m *Manager) Discard() {
	m.pending = make(map[string]pendingEntry)
}

// Dirty reports whether uncommitted writes exist.
func (m *Manager) Dirty() bool {
	return len(m.pending) > 0
}

func (m *Manager) loadRLP(key string, out interface{}) (bool, error) {
	raw, ok, err := m.getRaw(key)
	if err != nil || !ok {
		return false, err
	}
	if err := rlp.DecodeBytes(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) storeRLP(key string, value interface{}) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.putRaw(key, raw)
	return nil
}
