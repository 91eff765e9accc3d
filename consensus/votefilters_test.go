package consensus

import (
	"testing"

	"github.com/ssflabs/gean/types"
)

func newTestState(t *testing.T, validators types.ValidatorBalances) (NodeState, *testCollaborators) {
	t.Helper()
	genesis := types.Block{Slot: 0}
	col := newTestCollaborators(validators)
	cfg := testConfig(genesis)
	state := NewGenesisState(cfg, testIdentity(1), col)
	return state, col
}

func TestValidVoteRequiresAncestryAndSlotMatch(t *testing.T) {
	validators := types.ValidatorBalances{testIdentity(1): 1, testIdentity(2): 1}
	s, col := newTestState(t, validators)
	genesisHash := col.BlockHash(s.Configuration.Genesis)

	b1, h1 := buildBlock(col, genesisHash, 1)
	s.ViewBlocks[h1] = b1

	genesisCP := types.Checkpoint{BlockHash: genesisHash, ChkpSlot: 0, BlockSlot: 0}
	targetCP := types.Checkpoint{BlockHash: h1, ChkpSlot: 1, BlockSlot: 1}

	good := buildVote(testIdentity(1), 1, h1, genesisCP, targetCP)
	if !validVote(s, col, good) {
		t.Fatalf("expected well-formed vote to be valid")
	}

	badSlot := buildVote(testIdentity(1), 1, h1, genesisCP, types.Checkpoint{BlockHash: h1, ChkpSlot: 1, BlockSlot: 99})
	if validVote(s, col, badSlot) {
		t.Fatalf("expected checkpoint with mismatched BlockSlot to be invalid")
	}

	badOrder := buildVote(testIdentity(1), 1, h1, targetCP, genesisCP)
	if validVote(s, col, badOrder) {
		t.Fatalf("expected source.ChkpSlot >= target.ChkpSlot to be invalid")
	}

	unknownSender := buildVote(testIdentity(99), 1, h1, genesisCP, targetCP)
	if validVote(s, col, unknownSender) {
		t.Fatalf("expected vote from a non-validator to be invalid")
	}

	col.verifyOK = false
	if validVote(s, col, good) {
		t.Fatalf("expected signature failure to invalidate the vote")
	}
}

func TestFilterNonExpiredVotesKeepsLiveVotes(t *testing.T) {
	cfg := types.Configuration{Eta: 2}
	live := types.SignedVote{Message: types.Vote{Slot: 8}}
	expired := types.SignedVote{Message: types.Vote{Slot: 1}}
	votes := map[types.SignedVote]struct{}{live: {}, expired: {}}

	kept := filterNonExpiredVotes(cfg, 10, votes)
	if _, ok := kept[live]; !ok {
		t.Fatalf("expected live vote to survive filterNonExpiredVotes")
	}
	if _, ok := kept[expired]; ok {
		t.Fatalf("expected expired vote to be dropped by filterNonExpiredVotes")
	}
}

func TestFilterNonEquivocatingVotes(t *testing.T) {
	a := types.SignedVote{Message: types.Vote{Slot: 5, HeadHash: types.Hash{1}}, Sender: testIdentity(1)}
	b := types.SignedVote{Message: types.Vote{Slot: 5, HeadHash: types.Hash{2}}, Sender: testIdentity(1)}
	c := types.SignedVote{Message: types.Vote{Slot: 5, HeadHash: types.Hash{1}}, Sender: testIdentity(2)}

	votes := map[types.SignedVote]struct{}{a: {}, b: {}, c: {}}
	kept := filterNonEquivocatingVotes(votes)

	if _, ok := kept[a]; ok {
		t.Fatalf("expected equivocating sender 1's votes to be dropped")
	}
	if _, ok := kept[b]; ok {
		t.Fatalf("expected equivocating sender 1's votes to be dropped")
	}
	if _, ok := kept[c]; !ok {
		t.Fatalf("expected sender 2's single vote to survive")
	}
}

func TestFilterLMDReduceKeepsLatestPerSender(t *testing.T) {
	early := types.SignedVote{Message: types.Vote{Slot: 1}, Sender: testIdentity(1)}
	late := types.SignedVote{Message: types.Vote{Slot: 5}, Sender: testIdentity(1)}
	votes := map[types.SignedVote]struct{}{early: {}, late: {}}

	kept := filterLMDReduce(votes)
	if len(kept) != 1 {
		t.Fatalf("expected exactly one vote per sender, got %d", len(kept))
	}
	if _, ok := kept[late]; !ok {
		t.Fatalf("expected the later vote to be kept")
	}
}
