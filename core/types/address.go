package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address identifies a ledger account. Accounts are plain 20-byte values;
// the ledger does not impose a checksum or bech32 encoding on them.
type Address [20]byte

// Hash is a 32-byte digest used for bond market identifiers, Merkle roots
// and signature digests.
type Hash [32]byte

// Hex returns the lowercase hex encoding of the address without a prefix.
func (a Address) Hex() string { return hex.EncodeToString(a[:]) }

// IsZero reports whether the address is the all-zero account.
func (a Address) IsZero() bool { return a == Address{} }

// BytesToAddress copies b (right-aligned, truncated from the left) into an
// Address, mirroring common 20-byte address semantics.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > len(a) {
		b = b[len(b)-len(a):]
	}
	copy(a[len(a)-len(b):], b)
	return a
}

// Hex returns the lowercase hex encoding of the hash without a prefix.
func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

// ParseAddress decodes a 40-character hex string, with or without a 0x
// prefix, into an Address.
func ParseAddress(s string) (Address, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return Address{}, fmt.Errorf("types: invalid address %q: %w", s, err)
	}
	if len(raw) != len(Address{}) {
		return Address{}, fmt.Errorf("types: invalid address length %d", len(raw))
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}

// ParseHash decodes a 64-character hex string, with or without a 0x prefix,
// into a Hash.
func ParseHash(s string) (Hash, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return Hash{}, fmt.Errorf("types: invalid hash %q: %w", s, err)
	}
	if len(raw) != len(Hash{}) {
		return Hash{}, fmt.Errorf("types: invalid hash length %d", len(raw))
	}
	var h Hash
	copy(h[:], raw)
	return h, nil
}
