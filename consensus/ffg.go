package consensus

import "github.com/ssflabs/gean/types"

// genesisCheckpoint returns the checkpoint anchoring the genesis block,
// which is trivially justified and finalized.
func genesisCheckpoint(col Collaborators, cfg types.Configuration) types.Checkpoint {
	return types.Checkpoint{BlockHash: col.BlockHash(cfg.Genesis), ChkpSlot: 0, BlockSlot: 0}
}

func sumWeights(m map[types.NodeIdentity]uint64) uint64 {
	var total uint64
	for _, w := range m {
		total += w
	}
	return total
}

// candidateTargets returns the distinct checkpoints appearing as an FFG
// target among votes, the universe of candidates isJustifiedCheckpoint is
// ever asked about.
func candidateTargets(votes map[types.SignedVote]struct{}) map[types.Checkpoint]struct{} {
	out := make(map[types.Checkpoint]struct{})
	for v := range votes {
		out[v.Message.FFGTarget] = struct{}{}
	}
	return out
}

// isFFGVoteInSupportOf implements is_FFG_vote_in_support_of_checkpoint_justification
// (helpers.py:115): v counts toward cp's justification only if v is a
// valid vote, its FFG target shares cp's chkp_slot and is a descendant of
// cp's block, its FFG source is an ancestor of cp's block, and — the
// recursive step — its FFG source is itself justified.
func isFFGVoteInSupportOf(s NodeState, col Collaborators, votes map[types.SignedVote]struct{}, genesis types.Checkpoint, v types.SignedVote, cp types.Checkpoint, memo map[types.Checkpoint]bool, visiting map[types.Checkpoint]bool) bool {
	if !validVote(s, col, v) {
		return false
	}
	msg := v.Message
	if msg.FFGTarget.ChkpSlot != cp.ChkpSlot {
		return false
	}
	if !isAncestor(s.ViewBlocks, cp.BlockHash, msg.FFGTarget.BlockHash) {
		return false
	}
	if !isAncestor(s.ViewBlocks, msg.FFGSource.BlockHash, cp.BlockHash) {
		return false
	}
	return isJustifiedCheckpointMemo(s, col, votes, genesis, msg.FFGSource, memo, visiting)
}

// isJustifiedCheckpointMemo is the recursion-grounded core of
// isJustifiedCheckpoint: cp is justified if it is genesis, or if
// supermajority weight of votes are each in support of cp per
// isFFGVoteInSupportOf — which in turn requires each supporting vote's
// own FFG source to be justified. memo caches results already computed
// in this call tree; visiting breaks cycles a malicious vote set could
// otherwise induce (an unresolved cycle never reaches genesis, so it
// is treated as unjustified).
func isJustifiedCheckpointMemo(s NodeState, col Collaborators, votes map[types.SignedVote]struct{}, genesis, cp types.Checkpoint, memo map[types.Checkpoint]bool, visiting map[types.Checkpoint]bool) bool {
	if cp == genesis {
		return true
	}
	if result, ok := memo[cp]; ok {
		return result
	}
	if visiting[cp] {
		return false
	}
	visiting[cp] = true
	defer delete(visiting, cp)

	bySender := make(map[types.NodeIdentity]uint64)
	for v := range votes {
		if !isFFGVoteInSupportOf(s, col, votes, genesis, v, cp, memo, visiting) {
			continue
		}
		validators := col.GetValidatorSetForSlot(v.Message.Slot)
		bySender[v.Sender] = validators[v.Sender]
	}

	validators := col.GetValidatorSetForSlot(cp.BlockSlot)
	total := validators.TotalWeight()
	result := total > 0 && sumWeights(bySender)*3 >= total*2
	memo[cp] = result
	return result
}

// isJustifiedCheckpoint reports whether cp is justified: genesis always
// is; any other checkpoint needs supermajority (2/3) weight of votes each
// in support of it per isFFGVoteInSupportOf, which recursively grounds
// every supporting vote's FFG source back to genesis.
func isJustifiedCheckpoint(s NodeState, col Collaborators, votes map[types.SignedVote]struct{}, genesis types.Checkpoint, cp types.Checkpoint) bool {
	return isJustifiedCheckpointMemo(s, col, votes, genesis, cp, make(map[types.Checkpoint]bool), make(map[types.Checkpoint]bool))
}

// getJustifiedCheckpoints returns every checkpoint present as an FFG
// target in votes (plus genesis) that is justified. A single memo is
// shared across candidates so shared source checkpoints are only
// resolved once.
func getJustifiedCheckpoints(s NodeState, col Collaborators, votes map[types.SignedVote]struct{}, genesis types.Checkpoint) []types.Checkpoint {
	memo := make(map[types.Checkpoint]bool)
	out := []types.Checkpoint{genesis}
	for cp := range candidateTargets(votes) {
		if isJustifiedCheckpointMemo(s, col, votes, genesis, cp, memo, make(map[types.Checkpoint]bool)) {
			out = append(out, cp)
		}
	}
	return out
}

// getHighestJustifiedCheckpoint returns the justified checkpoint with the
// greatest ChkpSlot, breaking ties deterministically by block hash.
func getHighestJustifiedCheckpoint(s NodeState, col Collaborators, votes map[types.SignedVote]struct{}, genesis types.Checkpoint) types.Checkpoint {
	best := genesis
	for _, cp := range getJustifiedCheckpoints(s, col, votes, genesis) {
		if cp.ChkpSlot > best.ChkpSlot || (cp.ChkpSlot == best.ChkpSlot && cp.BlockHash.Compare(best.BlockHash) > 0) {
			best = cp
		}
	}
	return best
}

// isFinalizedCheckpoint reports whether cp is finalized: cp must itself
// be justified, and there must be a justified checkpoint one ChkpSlot
// ahead of cp linked to it by supermajority FFG support (source=cp,
// target=candidate). Per DESIGN.md's resolution of the Open Question,
// justification of cp is checked first.
func isFinalizedCheckpoint(s NodeState, col Collaborators, votes map[types.SignedVote]struct{}, genesis types.Checkpoint, cp types.Checkpoint) bool {
	if !isJustifiedCheckpoint(s, col, votes, genesis, cp) {
		return false
	}

	linkSupport := make(map[types.Checkpoint]map[types.NodeIdentity]uint64)
	for v := range votes {
		if v.Message.FFGSource != cp {
			continue
		}
		target := v.Message.FFGTarget
		if target.ChkpSlot != cp.ChkpSlot+1 {
			continue
		}
		validators := col.GetValidatorSetForSlot(target.BlockSlot)
		w, ok := validators[v.Sender]
		if !ok || w == 0 {
			continue
		}
		bySender, ok := linkSupport[target]
		if !ok {
			bySender = make(map[types.NodeIdentity]uint64)
			linkSupport[target] = bySender
		}
		bySender[v.Sender] = w
	}

	for target, bySender := range linkSupport {
		validators := col.GetValidatorSetForSlot(target.BlockSlot)
		total := validators.TotalWeight()
		if total == 0 {
			continue
		}
		if sumWeights(bySender)*3 >= total*2 {
			return true
		}
	}
	return false
}

// getFinalizedCheckpoints returns every justified checkpoint in votes
// that is also finalized, per isFinalizedCheckpoint.
func getFinalizedCheckpoints(s NodeState, col Collaborators, votes map[types.SignedVote]struct{}, genesis types.Checkpoint) []types.Checkpoint {
	var out []types.Checkpoint
	for _, cp := range getJustifiedCheckpoints(s, col, votes, genesis) {
		if isFinalizedCheckpoint(s, col, votes, genesis, cp) {
			out = append(out, cp)
		}
	}
	return out
}

// getHighestFinalizedCheckpoint returns the finalized checkpoint with the
// greatest ChkpSlot, falling back to genesis, breaking ties
// deterministically by block hash.
func getHighestFinalizedCheckpoint(s NodeState, col Collaborators, votes map[types.SignedVote]struct{}, genesis types.Checkpoint) types.Checkpoint {
	best := genesis
	for _, cp := range getFinalizedCheckpoints(s, col, votes, genesis) {
		if cp.ChkpSlot > best.ChkpSlot || (cp.ChkpSlot == best.ChkpSlot && cp.BlockHash.Compare(best.BlockHash) > 0) {
			best = cp
		}
	}
	return best
}

// HighestJustifiedCheckpoint exposes getHighestJustifiedCheckpoint for
// observability callers (metrics, status reporting) outside the package.
func HighestJustifiedCheckpoint(s NodeState, col Collaborators) types.Checkpoint {
	genesis := genesisCheckpoint(col, s.Configuration)
	votes := filterValidVotes(s, col, s.ViewVotes)
	votes = filterNonEquivocatingVotes(votes)
	return getHighestJustifiedCheckpoint(s, col, votes, genesis)
}

// HighestFinalizedCheckpoint exposes getHighestFinalizedCheckpoint for
// observability callers outside the package.
func HighestFinalizedCheckpoint(s NodeState, col Collaborators) types.Checkpoint {
	genesis := genesisCheckpoint(col, s.Configuration)
	votes := filterValidVotes(s, col, s.ViewVotes)
	votes = filterNonEquivocatingVotes(votes)
	return getHighestFinalizedCheckpoint(s, col, votes, genesis)
}
