package consensus

import "github.com/ssflabs/gean/types"

// isConfirmed reports whether block is both an ancestor of (or equal to)
// head and carries supermajority GHOST weight among votes, i.e. it is
// safe to treat as part of the available chain's confirmed prefix.
func isConfirmed(col Collaborators, blocks map[types.Hash]types.Block, votes map[types.SignedVote]struct{}, head, block types.Hash, totalWeight uint64) bool {
	if !isAncestor(blocks, block, head) {
		return false
	}
	if totalWeight == 0 {
		return false
	}
	return ghostWeight(col, blocks, votes, block)*3 >= totalWeight*2
}

// filterConfirmed returns the hashes among blocks that satisfy
// isConfirmed relative to head.
func filterConfirmed(col Collaborators, blocks map[types.Hash]types.Block, votes map[types.SignedVote]struct{}, head types.Hash, totalWeight uint64) map[types.Hash]struct{} {
	out := make(map[types.Hash]struct{})
	for h := range blocks {
		if isConfirmed(col, blocks, votes, head, h, totalWeight) {
			out[h] = struct{}{}
		}
	}
	return out
}

// maxSlotElement returns the hash in hashes with the greatest block slot,
// breaking ties deterministically by hash. Mirrors pick_from_set's
// arbitrary-choice semantics with a concrete tie-break (see types.Hash's
// doc comment on Compare).
func maxSlotElement(blocks map[types.Hash]types.Block, hashes map[types.Hash]struct{}) types.Hash {
	var best types.Hash
	var bestSlot types.Slot
	first := true
	for h := range hashes {
		b, ok := blocks[h]
		if !ok {
			continue
		}
		if first || b.Slot > bestSlot || (b.Slot == bestSlot && h.Compare(best) > 0) {
			best, bestSlot, first = h, b.Slot, false
		}
	}
	return best
}

// onVote implements the VOTE-phase duty: recompute the candidate set and
// available-chain head, then sign and emit a vote for the current head
// with an FFG link from the highest justified checkpoint to a target
// checkpoint over the (possibly advanced) available-chain head.
func onVote(s NodeState, col Collaborators) (NodeState, []types.SignedVote, error) {
	out := s.clone()
	genesis := genesisCheckpoint(col, s.Configuration)

	head := getHead(out, col)

	votes := filterValidVotes(out, col, out.ViewVotes)
	votes = filterNonEquivocatingVotes(votes)
	votes = filterNonExpiredVotes(out.Configuration, out.CurrentSlot, votes)
	votes = filterLMDReduce(votes)

	highestJustified := getHighestJustifiedCheckpoint(out, col, votes, genesis)

	newSCand := make(map[types.Hash]struct{})
	for h := range out.SCand {
		if isAncestor(out.ViewBlocks, h, head) {
			newSCand[h] = struct{}{}
		}
	}
	newSCand[highestJustified.BlockHash] = struct{}{}
	out.SCand = newSCand

	bcand := maxSlotElement(out.ViewBlocks, out.SCand)
	kDeepBlock := getBlockKDeep(out.ViewBlocks, head, out.Configuration.K)

	bcandCoversChava := isAncestor(out.ViewBlocks, bcand, out.ChAva) && isAncestor(out.ViewBlocks, kDeepBlock, out.ChAva)
	if !bcandCoversChava {
		bcandBlock, bOK := out.ViewBlocks[bcand]
		kDeepSlot := out.ViewBlocks[kDeepBlock].Slot
		if bOK && bcandBlock.Slot >= kDeepSlot {
			out.ChAva = bcand
		} else {
			out.ChAva = kDeepBlock
		}
	}

	chavaBlock, ok := out.ViewBlocks[out.ChAva]
	if !ok {
		return out, nil, ErrUnknownBlock
	}
	target := types.Checkpoint{BlockHash: out.ChAva, ChkpSlot: out.CurrentSlot, BlockSlot: chavaBlock.Slot}

	msg := types.Vote{
		Slot:      out.CurrentSlot,
		HeadHash:  head,
		FFGSource: highestJustified,
		FFGTarget: target,
	}
	sig := col.SignVote(msg, out.Identity)
	signed := types.SignedVote{Message: msg, Signature: sig, Sender: out.Identity}

	out.ViewVotes[signed] = struct{}{}

	return out, []types.SignedVote{signed}, nil
}

// onConfirm implements the CONFIRM-phase duty: grow s_cand to include
// every block in the view that is now confirmed relative to the current
// head.
func onConfirm(s NodeState, col Collaborators) (NodeState, error) {
	out := s.clone()

	head := getHead(out, col)
	validators := col.GetValidatorSetForSlot(out.CurrentSlot)

	votes := filterValidVotes(out, col, out.ViewVotes)
	votes = filterNonEquivocatingVotes(votes)
	votes = filterNonExpiredVotes(out.Configuration, out.CurrentSlot, votes)
	votes = filterLMDReduce(votes)

	confirmed := filterConfirmed(col, out.ViewBlocks, votes, head, validators.TotalWeight())
	for h := range confirmed {
		out.SCand[h] = struct{}{}
	}

	return out, nil
}
