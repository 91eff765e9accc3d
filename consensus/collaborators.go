package consensus

import "github.com/ssflabs/gean/types"

// Collaborators bundles every host-provided dependency the pure core
// needs but does not implement itself: hashing, signing, validator-set
// lookup, proposer selection, and block-body construction. The core never
// touches a clock, the network, or disk directly; the host supplies all
// of that through this interface and drives the core with a single
// goroutine, per the single-threaded cooperative concurrency model.
type Collaborators interface {
	// BlockHash computes the content hash of a block. The core treats
	// hashes as opaque identifiers and never computes them inline.
	BlockHash(b types.Block) types.Hash

	// SignVote produces a signature over a vote message for the given
	// identity.
	SignVote(msg types.Vote, id types.NodeIdentity) types.Signature

	// SignPropose produces a signature over a propose message for the
	// given identity.
	SignPropose(msg types.ProposeMessage, id types.NodeIdentity) types.Signature

	// VerifyVoteSignature reports whether sv.Signature authenticates
	// sv.Message as having been signed by sv.Sender.
	VerifyVoteSignature(sv types.SignedVote) bool

	// GetValidatorSetForSlot returns the validator weights in effect for
	// the given slot.
	GetValidatorSetForSlot(slot types.Slot) types.ValidatorBalances

	// GetProposer returns the identity assigned to propose at slot,
	// given the validator set active for that slot.
	GetProposer(slot types.Slot, validators types.ValidatorBalances) types.NodeIdentity

	// GetBlockBody constructs the opaque application payload for a new
	// block extending parent at slot. The core never interprets the
	// result.
	GetBlockBody(slot types.Slot, parent types.Hash) types.BlockBody
}
