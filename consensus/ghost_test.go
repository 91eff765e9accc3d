package consensus

import (
	"testing"

	"github.com/ssflabs/gean/types"
)

func TestGhostWeightCountsOnlyDescendants(t *testing.T) {
	validators := types.ValidatorBalances{testIdentity(1): 3, testIdentity(2): 5}
	col := newTestCollaborators(validators)
	genesisHash := col.BlockHash(types.Block{Slot: 0})

	b1, h1 := buildBlock(col, genesisHash, 1)
	b2, h2 := buildBlock(col, genesisHash, 2)
	blocks := map[types.Hash]types.Block{genesisHash: {Slot: 0}, h1: b1, h2: b2}

	votes := map[types.SignedVote]struct{}{
		{Message: types.Vote{Slot: 2, HeadHash: h1}, Sender: testIdentity(1)}: {},
		{Message: types.Vote{Slot: 2, HeadHash: h2}, Sender: testIdentity(2)}: {},
	}

	if got := ghostWeight(col, blocks, votes, h1); got != 3 {
		t.Fatalf("expected weight 3 for h1, got %d", got)
	}
	if got := ghostWeight(col, blocks, votes, h2); got != 5 {
		t.Fatalf("expected weight 5 for h2, got %d", got)
	}
	if got := ghostWeight(col, blocks, votes, genesisHash); got != 8 {
		t.Fatalf("expected weight 8 at genesis (both descend from it), got %d", got)
	}
}

func TestFindHeadFromDescendsToHeaviestChild(t *testing.T) {
	validators := types.ValidatorBalances{testIdentity(1): 1, testIdentity(2): 10}
	col := newTestCollaborators(validators)
	genesisHash := col.BlockHash(types.Block{Slot: 0})

	light, hLight := buildBlock(col, genesisHash, 1)
	heavy, hHeavy := buildBlock(col, genesisHash, 2)
	blocks := map[types.Hash]types.Block{genesisHash: {Slot: 0}, hLight: light, hHeavy: heavy}

	votes := map[types.SignedVote]struct{}{
		{Message: types.Vote{Slot: 2, HeadHash: hLight}, Sender: testIdentity(1)}: {},
		{Message: types.Vote{Slot: 2, HeadHash: hHeavy}, Sender: testIdentity(2)}: {},
	}

	got := findHeadFrom(col, blocks, votes, genesisHash)
	if got != hHeavy {
		t.Fatalf("expected descent to pick the heavier child")
	}
}

func TestFindHeadFromTieBreaksByHash(t *testing.T) {
	col := newTestCollaborators(nil)
	genesisHash := col.BlockHash(types.Block{Slot: 0})

	a, ha := buildBlock(col, genesisHash, 1)
	b, hb := buildBlock(col, genesisHash, 2)
	blocks := map[types.Hash]types.Block{genesisHash: {Slot: 0}, ha: a, hb: b}

	got := findHeadFrom(col, blocks, map[types.SignedVote]struct{}{}, genesisHash)
	want := ha
	if hb.Compare(ha) > 0 {
		want = hb
	}
	if got != want {
		t.Fatalf("expected deterministic tie-break by hash, got %x want %x", got[:4], want[:4])
	}
}

func TestGetHeadFollowsVotesPastGenesis(t *testing.T) {
	validators := types.ValidatorBalances{testIdentity(1): 1}
	col := newTestCollaborators(validators)
	genesis := types.Block{Slot: 0}
	cfg := testConfig(genesis)
	s := NewGenesisState(cfg, testIdentity(1), col)
	genesisHash := col.BlockHash(genesis)

	b1, h1 := buildBlock(col, genesisHash, 1)
	s.ViewBlocks[h1] = b1
	s.CurrentSlot = 1

	genesisCP := types.Checkpoint{BlockHash: genesisHash, ChkpSlot: 0, BlockSlot: 0}
	targetCP := types.Checkpoint{BlockHash: h1, ChkpSlot: 1, BlockSlot: 1}
	vote := buildVote(testIdentity(1), 1, h1, genesisCP, targetCP)
	s.ViewVotes[vote] = struct{}{}

	if got := getHead(s, col); got != h1 {
		t.Fatalf("expected head to move to h1, got %x", got[:4])
	}
}
