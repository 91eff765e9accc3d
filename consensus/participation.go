package consensus

import (
	"sort"

	"github.com/OffchainLabs/go-bitfield"

	"github.com/ssflabs/gean/types"
)

// sortedValidatorIdentities returns the validator identities of
// validators in a fixed, deterministic order, used to assign each
// validator a stable bit position.
func sortedValidatorIdentities(validators types.ValidatorBalances) []types.NodeIdentity {
	ids := make([]types.NodeIdentity, 0, len(validators))
	for id := range validators {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
	return ids
}

// JustificationParticipation flattens the votes targeting checkpoint cp
// into a bitlist, one bit per validator in cp's validator set, ordered by
// sortedValidatorIdentities. Grounded on the teacher's
// JustificationValidators flattened-bitlist encoding
// (consensus/justifications.go), repurposed here as a derived,
// observability-facing summary rather than as part of NodeState itself:
// the pure core already has vote sets to recompute support from, so the
// bitlist is rebuilt on demand instead of carried as mutable state.
func JustificationParticipation(col Collaborators, votes map[types.SignedVote]struct{}, cp types.Checkpoint) bitfield.Bitlist {
	validators := col.GetValidatorSetForSlot(cp.BlockSlot)
	ids := sortedValidatorIdentities(validators)

	index := make(map[types.NodeIdentity]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	bl := bitfield.NewBitlist(uint64(len(ids)))
	for v := range votes {
		if v.Message.FFGTarget != cp {
			continue
		}
		if i, ok := index[v.Sender]; ok {
			bl.SetBitAt(uint64(i), true)
		}
	}
	return bl
}

// ParticipationRatio returns the fraction (0..1) of cp's validator set
// (by weight) represented in bl, reusing the same validator ordering
// JustificationParticipation used to build it.
func ParticipationRatio(col Collaborators, cp types.Checkpoint, bl bitfield.Bitlist) float64 {
	validators := col.GetValidatorSetForSlot(cp.BlockSlot)
	ids := sortedValidatorIdentities(validators)
	total := validators.TotalWeight()
	if total == 0 {
		return 0
	}
	var support uint64
	for i, id := range ids {
		if uint64(i) < bl.Len() && bl.BitAt(uint64(i)) {
			support += validators[id]
		}
	}
	return float64(support) / float64(total)
}
