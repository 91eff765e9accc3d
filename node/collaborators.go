package node

import (
	"fmt"
	"sort"

	"github.com/ssflabs/gean/crypto"
	"github.com/ssflabs/gean/ssz"
	"github.com/ssflabs/gean/types"
)

// defaultCollaborators is the node's concrete consensus.Collaborators
// implementation: signing/verification from crypto.KeyStore, hashing
// from ssz.Hasher, and a static validator set with a deterministic
// round-robin proposer, per DESIGN.md's resolution of the get_proposer
// Open Question.
type defaultCollaborators struct {
	*crypto.KeyStore
	ssz.Hasher
	validators types.ValidatorBalances
}

func newDefaultCollaborators(keys *crypto.KeyStore, validators types.ValidatorBalances) *defaultCollaborators {
	return &defaultCollaborators{KeyStore: keys, validators: validators}
}

// GetValidatorSetForSlot returns the static genesis validator set; this
// node does not (yet) support validator-set rotation across slots.
func (c *defaultCollaborators) GetValidatorSetForSlot(_ types.Slot) types.ValidatorBalances {
	return c.validators
}

// GetProposer assigns slots to validators in a fixed, lexicographically
// sorted round-robin. Identity ordering must be deterministic across all
// nodes for them to agree on who proposes when.
func (c *defaultCollaborators) GetProposer(slot types.Slot, validators types.ValidatorBalances) types.NodeIdentity {
	ids := sortedIdentities(validators)
	if len(ids) == 0 {
		return types.NodeIdentity{}
	}
	return ids[uint64(slot)%uint64(len(ids))]
}

// GetBlockBody returns a minimal opaque payload; this node carries no
// application-layer transaction set, per spec.md's Non-goals.
func (c *defaultCollaborators) GetBlockBody(slot types.Slot, parent types.Hash) types.BlockBody {
	return types.BlockBody(fmt.Sprintf("slot=%d parent=%s", slot, parent.Short()))
}

func sortedIdentities(validators types.ValidatorBalances) []types.NodeIdentity {
	ids := make([]types.NodeIdentity, 0, len(validators))
	for id := range validators {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
	return ids
}
