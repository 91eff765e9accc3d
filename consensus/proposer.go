package consensus

import "github.com/ssflabs/gean/types"

// votesEmbeddedInChain collects every vote already embedded in any block
// along the chain from head back to genesis.
func votesEmbeddedInChain(blocks map[types.Hash]types.Block, head, genesis types.Hash) map[types.SignedVote]struct{} {
	embedded := make(map[types.SignedVote]struct{})
	chain, ok := getBlockchain(blocks, head, genesis)
	if !ok {
		return embedded
	}
	for _, b := range chain {
		for _, sv := range b.Votes {
			embedded[sv] = struct{}{}
		}
	}
	return embedded
}

// votesToIncludeInProposedBlock selects the votes a new block extending
// head should embed: valid votes whose head lies on head's own chain,
// excluding any vote already embedded somewhere along that chain.
func votesToIncludeInProposedBlock(s NodeState, col Collaborators, head types.Hash) []types.SignedVote {
	genesis := col.BlockHash(s.Configuration.Genesis)

	votes := filterValidVotes(s, col, s.ViewVotes)
	votes = filterVotesInChainOf(s.ViewBlocks, votes, head)

	embedded := votesEmbeddedInChain(s.ViewBlocks, head, genesis)
	var out []types.SignedVote
	for v := range votes {
		if _, already := embedded[v]; !already {
			out = append(out, v)
		}
	}
	return out
}

// getNewBlock constructs the block a proposer should build this slot:
// parent is the current GHOST head, slot is the node's current slot, body
// comes from the host's GetBlockBody collaborator, and votes are selected
// by votesToIncludeInProposedBlock.
func getNewBlock(s NodeState, col Collaborators) types.Block {
	head := getHead(s, col)
	return types.Block{
		ParentHash: head,
		Slot:       s.CurrentSlot,
		Body:       col.GetBlockBody(s.CurrentSlot, head),
		Votes:      votesToIncludeInProposedBlock(s, col, head),
	}
}

// votesToIncludeInProposeMessageView selects the proposer-view votes to
// attach alongside the new block: valid, non-expired votes descending
// from the highest justified checkpoint's block, excluding anything
// already embedded in the new block's own chain. Grounded on
// get_votes_to_include_in_propose_message_view; see DESIGN.md Open
// Question 1.
func votesToIncludeInProposeMessageView(s NodeState, col Collaborators, newBlock types.Block, newBlockHash types.Hash) []types.SignedVote {
	genesis := genesisCheckpoint(col, s.Configuration)

	votes := filterValidVotes(s, col, s.ViewVotes)
	votes = filterNonEquivocatingVotes(votes)
	votes = filterNonExpiredVotes(s.Configuration, s.CurrentSlot, votes)

	highestJustified := getHighestJustifiedCheckpoint(s, col, votes, genesis)
	votes = filterVotesDescendantOf(s.ViewBlocks, votes, highestJustified.BlockHash)

	// The new block is not yet in ViewBlocks; build a view that includes
	// it so "already in the new block's chain" can be checked by hash.
	extended := copyBlockMap(s.ViewBlocks)
	extended[newBlockHash] = newBlock
	embedded := votesEmbeddedInChain(extended, newBlockHash, col.BlockHash(s.Configuration.Genesis))

	var out []types.SignedVote
	for v := range votes {
		if _, already := embedded[v]; !already {
			out = append(out, v)
		}
	}
	return out
}

// onPropose implements the PROPOSE-phase duty: if the local identity is
// the assigned proposer for the current slot, merge the view (as if a
// MERGE had just run), build a new block and propose message, sign it,
// and emit it. Otherwise this is a no-op and ErrNotProposer is returned
// so the host can distinguish "nothing to send" from a genuine failure.
func onPropose(s NodeState, col Collaborators) (NodeState, []types.SignedPropose, error) {
	validators := col.GetValidatorSetForSlot(s.CurrentSlot)
	proposer := col.GetProposer(s.CurrentSlot, validators)
	if proposer != s.Identity {
		return s, nil, ErrNotProposer
	}

	merged := executeViewMerge(s)

	block := getNewBlock(merged, col)
	blockHash := col.BlockHash(block)
	proposerView := votesToIncludeInProposeMessageView(merged, col, block, blockHash)

	msg := types.ProposeMessage{Block: block, ProposerView: proposerView}
	sig := col.SignPropose(msg, s.Identity)
	signed := types.SignedPropose{Message: msg, Signature: sig}

	// The proposer immediately adopts its own proposal into its view, as
	// if it had received it back over the network.
	out := applyReceivedProposeHash(merged, blockHash, signed)

	return out, []types.SignedPropose{signed}, nil
}
