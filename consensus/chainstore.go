package consensus

import "github.com/ssflabs/gean/types"

// hasBlock reports whether hash is present in blocks.
func hasBlock(blocks map[types.Hash]types.Block, hash types.Hash) bool {
	_, ok := blocks[hash]
	return ok
}

// getParent returns the parent hash of the block identified by hash, and
// whether that block is known. The parent itself may be absent from
// blocks.
func getParent(blocks map[types.Hash]types.Block, hash types.Hash) (types.Hash, bool) {
	b, ok := blocks[hash]
	if !ok {
		return types.Hash{}, false
	}
	return b.ParentHash, true
}

// isCompleteChain reports whether following ParentHash links from hash
// reaches genesisHash without hitting an unknown block. Implemented
// iteratively (not recursively) per the core's design notes on avoiding
// unbounded recursion over attacker-influenced chain lengths.
func isCompleteChain(blocks map[types.Hash]types.Block, hash, genesisHash types.Hash) bool {
	cur := hash
	for {
		if cur == genesisHash {
			return true
		}
		b, ok := blocks[cur]
		if !ok {
			return false
		}
		if cur == b.ParentHash {
			// Defensive: a self-parenting block can only be genesis,
			// already handled above; anything else is not a complete
			// chain.
			return false
		}
		cur = b.ParentHash
	}
}

// getBlockchain returns the sequence of blocks from hash back to
// genesisHash inclusive, ordered from hash to genesis. ok is false if the
// chain is incomplete.
func getBlockchain(blocks map[types.Hash]types.Block, hash, genesisHash types.Hash) ([]types.Block, bool) {
	var out []types.Block
	cur := hash
	for {
		b, ok := blocks[cur]
		if !ok {
			return nil, false
		}
		out = append(out, b)
		if cur == genesisHash {
			return out, true
		}
		if cur == b.ParentHash {
			return nil, false
		}
		cur = b.ParentHash
	}
}

// isAncestor reports whether ancestorHash is an ancestor of (or equal to)
// descendantHash, by walking ParentHash links. Iterative, bounded by the
// length of the chain actually present in blocks.
func isAncestor(blocks map[types.Hash]types.Block, ancestorHash, descendantHash types.Hash) bool {
	cur := descendantHash
	for {
		if cur == ancestorHash {
			return true
		}
		b, ok := blocks[cur]
		if !ok {
			return false
		}
		if cur == b.ParentHash {
			return false
		}
		cur = b.ParentHash
	}
}

// getBlockKDeep returns the ancestor of headHash that is k blocks back
// along the chain toward genesis. If the chain is shorter than k, the walk
// stops at the oldest block of the chain present in blocks (genesis, for a
// complete chain). This counts blocks traversed, matching the reference
// implementation's get_block_k_deep.
func getBlockKDeep(blocks map[types.Hash]types.Block, headHash types.Hash, k uint64) types.Hash {
	cur := headHash
	for i := uint64(0); i < k; i++ {
		b, ok := blocks[cur]
		if !ok {
			return cur
		}
		if cur == b.ParentHash {
			return cur
		}
		if !hasBlock(blocks, b.ParentHash) {
			return cur
		}
		cur = b.ParentHash
	}
	return cur
}

// getChildren returns every block in blocks whose ParentHash is parent.
func getChildren(blocks map[types.Hash]types.Block, parent types.Hash) []types.Hash {
	var children []types.Hash
	for h, b := range blocks {
		if b.ParentHash == parent {
			children = append(children, h)
		}
	}
	return children
}
