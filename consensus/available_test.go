package consensus

import (
	"testing"

	"github.com/ssflabs/gean/types"
)

func TestIsConfirmedRequiresAncestryAndSupermajority(t *testing.T) {
	validators := types.ValidatorBalances{testIdentity(1): 2, testIdentity(2): 1}
	col := newTestCollaborators(validators)
	genesisHash := col.BlockHash(types.Block{Slot: 0})
	b1, h1 := buildBlock(col, genesisHash, 1)
	blocks := map[types.Hash]types.Block{genesisHash: {Slot: 0}, h1: b1}

	votes := map[types.SignedVote]struct{}{
		{Message: types.Vote{Slot: 1, HeadHash: h1}, Sender: testIdentity(1)}: {},
	}

	if !isConfirmed(col, blocks, votes, h1, genesisHash, 3) {
		t.Fatalf("expected genesis (2/3 weight, ancestor of head) to be confirmed")
	}
	if isConfirmed(col, blocks, votes, genesisHash, h1, 3) {
		t.Fatalf("expected h1 to not be confirmed when it is not an ancestor of head=genesis")
	}
}

func TestMaxSlotElementPicksHighestSlotThenHash(t *testing.T) {
	genesisHash := types.Hash{0}
	col := newTestCollaborators(nil)
	b1, h1 := buildBlock(col, genesisHash, 1)
	b2, h2 := buildBlock(col, genesisHash, 3)
	blocks := map[types.Hash]types.Block{genesisHash: {Slot: 0}, h1: b1, h2: b2}

	hashes := map[types.Hash]struct{}{genesisHash: {}, h1: {}, h2: {}}
	if got := maxSlotElement(blocks, hashes); got != h2 {
		t.Fatalf("expected the block with the highest slot to be picked")
	}
}

func TestOnVoteEmitsVoteTargetingAvailableChainHead(t *testing.T) {
	validators := types.ValidatorBalances{testIdentity(1): 1}
	s, col := newTestState(t, validators)
	s.CurrentSlot = 1

	out, votes, err := onVote(s, col)
	if err != nil {
		t.Fatalf("unexpected error from onVote: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("expected exactly one emitted vote")
	}
	if votes[0].Sender != s.Identity {
		t.Fatalf("expected the emitted vote to be signed by the local identity")
	}
	if _, ok := out.ViewVotes[votes[0]]; !ok {
		t.Fatalf("expected onVote to add its own vote to ViewVotes")
	}
}

func TestOnConfirmKeepsGenesisInSCand(t *testing.T) {
	validators := types.ValidatorBalances{testIdentity(1): 1}
	s, col := newTestState(t, validators)
	genesisHash := col.BlockHash(s.Configuration.Genesis)
	s.CurrentSlot = 1

	out, err := onConfirm(s, col)
	if err != nil {
		t.Fatalf("unexpected error from onConfirm: %v", err)
	}
	if _, ok := out.SCand[genesisHash]; !ok {
		t.Fatalf("expected genesis to remain a confirmed candidate")
	}
}
