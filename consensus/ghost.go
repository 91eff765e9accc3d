package consensus

import "github.com/ssflabs/gean/types"

// ghostWeight sums the validator weight of every vote whose head is a
// descendant of (or equal to) root, using each vote's own slot to look up
// the relevant validator set. Callers are expected to have already
// reduced votes to one per sender (filterLMDReduce) so a validator's
// weight is not counted twice.
func ghostWeight(col Collaborators, blocks map[types.Hash]types.Block, votes map[types.SignedVote]struct{}, root types.Hash) uint64 {
	var total uint64
	for v := range votes {
		if !isAncestor(blocks, root, v.Message.HeadHash) {
			continue
		}
		validators := col.GetValidatorSetForSlot(v.Message.Slot)
		total += validators[v.Sender]
	}
	return total
}

// findHeadFrom descends the block tree rooted at root, at each step
// moving to the child with the greatest GHOST weight, breaking ties by
// hash for determinism. It stops at a leaf (a block with no children).
// Implemented iteratively: the tree is attacker-influenced, so an
// unbounded-recursion implementation would be a liveness risk.
func findHeadFrom(col Collaborators, blocks map[types.Hash]types.Block, votes map[types.SignedVote]struct{}, root types.Hash) types.Hash {
	cur := root
	for {
		children := getChildren(blocks, cur)
		if len(children) == 0 {
			return cur
		}
		best := children[0]
		bestWeight := ghostWeight(col, blocks, votes, best)
		for _, c := range children[1:] {
			w := ghostWeight(col, blocks, votes, c)
			if w > bestWeight || (w == bestWeight && c.Compare(best) > 0) {
				best = c
				bestWeight = w
			}
		}
		cur = best
	}
}

// getHead computes the canonical GHOST head: votes are reduced to valid,
// non-equivocating, non-expired, LMD, and descendant-of-the-highest-
// justified-checkpoint before the weighted descent runs, per the
// reference implementation's get_head filter pipeline.
func getHead(s NodeState, col Collaborators) types.Hash {
	genesis := genesisCheckpoint(col, s.Configuration)

	votes := filterValidVotes(s, col, s.ViewVotes)
	votes = filterNonEquivocatingVotes(votes)
	votes = filterNonExpiredVotes(s.Configuration, s.CurrentSlot, votes)
	votes = filterLMDReduce(votes)

	highestJustified := getHighestJustifiedCheckpoint(s, col, votes, genesis)
	votes = filterVotesDescendantOf(s.ViewBlocks, votes, highestJustified.BlockHash)

	return findHeadFrom(col, s.ViewBlocks, votes, highestJustified.BlockHash)
}

// GetHead exposes getHead for callers outside the package — observability
// and host-level status reporting need the current GHOST head without
// triggering a phase transition.
func GetHead(s NodeState, col Collaborators) types.Hash {
	return getHead(s, col)
}
