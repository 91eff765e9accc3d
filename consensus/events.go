package consensus

import "github.com/ssflabs/gean/types"

// applyReceivedProposeHash buffers the proposed block under its
// already-computed hash, and — if the node is currently in the PROPOSE
// phase — additionally merges the proposer's attached view of votes
// directly into view_votes rather than leaving them in the buffer. This
// mirrors on_received_propose: a block arriving during PROPOSE is acted
// on immediately enough that its proposer's vote view should already
// inform this slot's VOTE duty.
func applyReceivedProposeHash(s NodeState, hash types.Hash, sp types.SignedPropose) NodeState {
	out := s.clone()

	out.BufferBlocks[hash] = sp.Message.Block

	if s.CurrentPhase == types.PhasePropose {
		for _, sv := range sp.Message.ProposerView {
			out.ViewVotes[sv] = struct{}{}
		}
	}

	return out
}

// OnReceivedPropose is the network-facing entry point for a freshly
// received, signed propose message.
func OnReceivedPropose(s NodeState, col Collaborators, sp types.SignedPropose) NodeState {
	return applyReceivedProposeHash(s, col.BlockHash(sp.Message.Block), sp)
}

// OnBlockReceived buffers a block received outside of a propose message
// (e.g. via request/response sync). It performs no validation beyond
// buffering; validity is established lazily by the filters applied when
// the view is read (isCompleteChain, validVote, etc.).
func OnBlockReceived(s NodeState, col Collaborators, b types.Block) NodeState {
	out := s.clone()
	out.BufferBlocks[col.BlockHash(b)] = b
	return out
}

// OnVoteReceived buffers a vote received over the network. Like blocks,
// votes are buffered unconditionally and only filtered for validity when
// read by GHOST/FFG.
func OnVoteReceived(s NodeState, sv types.SignedVote) NodeState {
	out := s.clone()
	out.BufferVotes[sv] = struct{}{}
	return out
}

// FinalizedChain returns the canonical chain ending at the highest
// finalized checkpoint's block, from that block back to genesis.
func FinalizedChain(s NodeState, col Collaborators) ([]types.Block, bool) {
	genesis := genesisCheckpoint(col, s.Configuration)
	votes := filterValidVotes(s, col, s.ViewVotes)
	votes = filterNonEquivocatingVotes(votes)
	hf := getHighestFinalizedCheckpoint(s, col, votes, genesis)
	return getBlockchain(s.ViewBlocks, hf.BlockHash, genesis.BlockHash)
}

// AvailableChain returns the canonical chain ending at the current
// available-chain head (ChAva), from that block back to genesis.
func AvailableChain(s NodeState, col Collaborators) ([]types.Block, bool) {
	genesis := col.BlockHash(s.Configuration.Genesis)
	return getBlockchain(s.ViewBlocks, s.ChAva, genesis)
}
