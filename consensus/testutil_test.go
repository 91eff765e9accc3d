package consensus

import (
	"github.com/ssflabs/gean/ssz"
	"github.com/ssflabs/gean/types"
)

// testCollaborators is a deterministic, signature-free stand-in for the
// host-provided Collaborators, used throughout this package's tests.
// Hashing is real (ssz.Hasher) so block identity behaves like
// production; signing/verification are stubbed since the core never
// inspects signature bytes itself, only the VerifyVoteSignature result.
type testCollaborators struct {
	hasher     ssz.Hasher
	validators types.ValidatorBalances
	proposers  map[types.Slot]types.NodeIdentity
	verifyOK   bool
	bodies     map[types.Slot]types.BlockBody
}

func newTestCollaborators(validators types.ValidatorBalances) *testCollaborators {
	return &testCollaborators{
		validators: validators,
		proposers:  map[types.Slot]types.NodeIdentity{},
		verifyOK:   true,
	}
}

func (c *testCollaborators) BlockHash(b types.Block) types.Hash { return c.hasher.BlockHash(b) }

func (c *testCollaborators) SignVote(types.Vote, types.NodeIdentity) types.Signature {
	return types.Signature{}
}

func (c *testCollaborators) SignPropose(types.ProposeMessage, types.NodeIdentity) types.Signature {
	return types.Signature{}
}

func (c *testCollaborators) VerifyVoteSignature(types.SignedVote) bool { return c.verifyOK }

func (c *testCollaborators) GetValidatorSetForSlot(types.Slot) types.ValidatorBalances {
	return c.validators
}

func (c *testCollaborators) GetProposer(slot types.Slot, _ types.ValidatorBalances) types.NodeIdentity {
	if p, ok := c.proposers[slot]; ok {
		return p
	}
	return types.NodeIdentity{}
}

func (c *testCollaborators) GetBlockBody(slot types.Slot, _ types.Hash) types.BlockBody {
	if b, ok := c.bodies[slot]; ok {
		return b
	}
	return nil
}

func testIdentity(b byte) types.NodeIdentity {
	var id types.NodeIdentity
	id[0] = b
	return id
}

func testConfig(genesis types.Block) types.Configuration {
	return types.Configuration{Delta: 1, Eta: 10, K: 2, Genesis: genesis}
}

// buildBlock constructs a block extending parent, hashes it with col,
// and returns both the block and its hash.
func buildBlock(col Collaborators, parent types.Hash, slot types.Slot, votes ...types.SignedVote) (types.Block, types.Hash) {
	b := types.Block{ParentHash: parent, Slot: slot, Votes: votes}
	return b, col.BlockHash(b)
}

// buildVote signs and returns a SignedVote; signatures are not verified
// by testCollaborators so any byte value works.
func buildVote(sender types.NodeIdentity, slot types.Slot, head types.Hash, source, target types.Checkpoint) types.SignedVote {
	return types.SignedVote{
		Message: types.Vote{Slot: slot, HeadHash: head, FFGSource: source, FFGTarget: target},
		Sender:  sender,
	}
}
