package merkle

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Tree is the off-chain side of the allow-list commitment. It hashes sorted
// pairs level by level, promoting an odd trailing node unchanged, so the
// proofs it produces verify with Verify.
type Tree struct {
	levels [][]common.Hash
	index  map[common.Hash]int
}

func NewTree(leaves []common.Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("empty leaves")
	}
	index := make(map[common.Hash]int, len(leaves))
	for i, l := range leaves {
		if _, found := index[l]; found {
			return nil, fmt.Errorf("duplicate leaf %s", l)
		}
		index[l] = i
	}

	levels := [][]common.Hash{leaves}
	for level := leaves; len(level) > 1; {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, hashPair(level[i], level[i+1]))
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		levels = append(levels, next)
		level = next
	}
	return &Tree{levels: levels, index: index}, nil
}

func (t *Tree) Root() common.Hash {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Proof returns the sibling hashes for leaf, bottom up. A node promoted from
// an odd level contributes no sibling at that level.
func (t *Tree) Proof(leaf common.Hash) ([]common.Hash, error) {
	pos, found := t.index[leaf]
	if !found {
		return nil, fmt.Errorf("unknown leaf %s", leaf)
	}
	var proof []common.Hash
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := pos ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		pos = pos / 2
	}
	return proof, nil
}
