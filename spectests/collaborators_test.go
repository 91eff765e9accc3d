// Package spectests exercises the consensus core as a black box through
// its exported API, covering the concrete scenarios (S1-S6) from spec.md
// section 8; the universal properties (P1-P10) have no tests here. It
// imports consensus the same way node/ does, with its own minimal
// Collaborators fake instead of reaching into consensus's internal test
// helpers.
package spectests

import (
	"github.com/ssflabs/gean/ssz"
	"github.com/ssflabs/gean/types"
)

// fakeCollaborators hashes for real (via ssz.Hasher) but stubs
// signing/verification, since these scenarios only exercise GHOST/FFG
// logic, not cryptographic authentication.
type fakeCollaborators struct {
	hasher     ssz.Hasher
	validators types.ValidatorBalances
	proposers  map[types.Slot]types.NodeIdentity
}

func newFakeCollaborators(validators types.ValidatorBalances) *fakeCollaborators {
	return &fakeCollaborators{validators: validators, proposers: map[types.Slot]types.NodeIdentity{}}
}

func (c *fakeCollaborators) BlockHash(b types.Block) types.Hash { return c.hasher.BlockHash(b) }

func (c *fakeCollaborators) SignVote(types.Vote, types.NodeIdentity) types.Signature {
	return types.Signature{}
}

func (c *fakeCollaborators) SignPropose(types.ProposeMessage, types.NodeIdentity) types.Signature {
	return types.Signature{}
}

func (c *fakeCollaborators) VerifyVoteSignature(types.SignedVote) bool { return true }

func (c *fakeCollaborators) GetValidatorSetForSlot(types.Slot) types.ValidatorBalances {
	return c.validators
}

func (c *fakeCollaborators) GetProposer(slot types.Slot, _ types.ValidatorBalances) types.NodeIdentity {
	return c.proposers[slot]
}

func (c *fakeCollaborators) GetBlockBody(types.Slot, types.Hash) types.BlockBody { return nil }

func identity(b byte) types.NodeIdentity {
	var id types.NodeIdentity
	id[0] = b
	return id
}

// threeValidatorConfig returns the delta=10, eta=2, k=2, {A,B,C} weight-1
// configuration spec.md section 8's scenarios are stated against.
func threeValidatorConfig() (types.Configuration, types.ValidatorBalances) {
	validators := types.ValidatorBalances{identity(1): 1, identity(2): 1, identity(3): 1}
	cfg := types.Configuration{Delta: 10, Eta: 2, K: 2, Genesis: types.Block{Slot: 0}}
	return cfg, validators
}
