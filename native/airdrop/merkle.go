package airdrop

import (
	"bytes"
	"encoding/binary"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"veledger/core/types"
)

// Leaf hashes one distribution entry: the user, the amount and, for locked
// distributions, the lock duration. A lockTime of zero produces the plain
// two-field leaf so both distributor variants share a proof format.
func Leaf(user types.Address, amount *big.Int, lockTime uint64) types.Hash {
	var amountBytes [32]byte
	if amount != nil {
		amount.FillBytes(amountBytes[:])
	}
	parts := [][]byte{user[:], amountBytes[:]}
	if lockTime > 0 {
		var lockBytes [8]byte
		binary.BigEndian.PutUint64(lockBytes[:], lockTime)
		parts = append(parts, lockBytes[:])
	}
	var out types.Hash
	copy(out[:], ethcrypto.Keccak256(parts...))
	return out
}

// hashPair combines two nodes in sorted order, so proofs carry no
// left/right direction bits.
func hashPair(a, b types.Hash) types.Hash {
	var out types.Hash
	if bytes.Compare(a[:], b[:]) <= 0 {
		copy(out[:], ethcrypto.Keccak256(a[:], b[:]))
	} else {
		copy(out[:], ethcrypto.Keccak256(b[:], a[:]))
	}
	return out
}

// VerifyProof folds a sibling path over the leaf and compares against root.
func VerifyProof(leaf types.Hash, proof []types.Hash, root types.Hash) bool {
	node := leaf
	for _, sibling := range proof {
		node = hashPair(node, sibling)
	}
	return node == root
}

// BuildTree computes the root and per-leaf proofs for a set of leaves,
// duplicating the last node at odd levels. Used by distribution tooling and
// tests; claim verification only needs VerifyProof.
func BuildTree(leaves []types.Hash) (types.Hash, [][]types.Hash) {
	if len(leaves) == 0 {
		return types.Hash{}, nil
	}
	proofs := make([][]types.Hash, len(leaves))
	// index of each original leaf within the current level
	positions := make([]int, len(leaves))
	for i := range positions {
		positions[i] = i
	}
	level := append([]types.Hash(nil), leaves...)
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]types.Hash, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = hashPair(level[i], level[i+1])
		}
		for leafIdx, pos := range positions {
			sibling := pos ^ 1
			proofs[leafIdx] = append(proofs[leafIdx], level[sibling])
			positions[leafIdx] = pos / 2
		}
		level = next
	}
	return level[0], proofs
}
