package merkle

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Verify recomputes the root from leaf and the ordered sibling hashes in
// proof, and reports whether it matches root. Each step concatenates the
// running hash with its sibling in ascending byte order before hashing, so
// the same proof verifies regardless of which side the leaf was on. An empty
// proof verifies only a single-leaf tree, where leaf is the root itself.
//
// Non-membership is a normal outcome, never an error.
func Verify(proof []common.Hash, root, leaf common.Hash) bool {
	current := leaf
	for _, sibling := range proof {
		current = hashPair(current, sibling)
	}
	return current == root
}

// LeafAddress encodes a single-mint allow-list entry, the keccak256 of the
// raw 20-byte wallet address. The encoding must match the off-chain tree
// tooling byte for byte, any deviation reads as non-membership.
func LeafAddress(wallet common.Address) common.Hash {
	return crypto.Keccak256Hash(wallet.Bytes())
}

// LeafAllowance encodes a multi-mint allow-list entry, the keccak256 of the
// 20-byte wallet address followed by the allowance as a 32-byte big-endian
// integer.
func LeafAllowance(wallet common.Address, allowance uint64) common.Hash {
	amount := uint256.NewInt(allowance).Bytes32()
	return crypto.Keccak256Hash(wallet.Bytes(), amount[:])
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}
