package consensus

import (
	"testing"

	"github.com/ssflabs/gean/types"
)

func TestIsCompleteChainAndAncestor(t *testing.T) {
	genesis := types.Block{Slot: 0}
	col := newTestCollaborators(nil)
	genesisHash := col.BlockHash(genesis)

	b1, h1 := buildBlock(col, genesisHash, 1)
	b2, h2 := buildBlock(col, h1, 2)

	blocks := map[types.Hash]types.Block{
		genesisHash: genesis,
		h1:          b1,
		h2:          b2,
	}

	if !isCompleteChain(blocks, h2, genesisHash) {
		t.Fatalf("expected h2's chain to reach genesis")
	}
	if !isAncestor(blocks, genesisHash, h2) {
		t.Fatalf("expected genesis to be an ancestor of h2")
	}
	if !isAncestor(blocks, h1, h2) {
		t.Fatalf("expected h1 to be an ancestor of h2")
	}
	if isAncestor(blocks, h2, h1) {
		t.Fatalf("did not expect h2 to be an ancestor of h1")
	}

	orphanParent := types.Hash{0xff}
	orphan, hOrphan := buildBlock(col, orphanParent, 3)
	blocks[hOrphan] = orphan
	if isCompleteChain(blocks, hOrphan, genesisHash) {
		t.Fatalf("expected orphan's chain to be incomplete")
	}
}

func TestGetBlockKDeep(t *testing.T) {
	genesis := types.Block{Slot: 0}
	col := newTestCollaborators(nil)
	genesisHash := col.BlockHash(genesis)

	b1, h1 := buildBlock(col, genesisHash, 1)
	b2, h2 := buildBlock(col, h1, 2)
	b3, h3 := buildBlock(col, h2, 3)

	blocks := map[types.Hash]types.Block{
		genesisHash: genesis,
		h1:          b1,
		h2:          b2,
		h3:          b3,
	}

	if got := getBlockKDeep(blocks, h3, 2); got != h1 {
		t.Fatalf("expected 2-deep from h3 to be h1, got %x", got[:4])
	}
	if got := getBlockKDeep(blocks, h3, 0); got != h3 {
		t.Fatalf("expected 0-deep from h3 to be h3 itself")
	}
	if got := getBlockKDeep(blocks, h3, 100); got != genesisHash {
		t.Fatalf("expected over-deep traversal to stop at genesis")
	}
}

func TestGetChildren(t *testing.T) {
	genesis := types.Block{Slot: 0}
	col := newTestCollaborators(nil)
	genesisHash := col.BlockHash(genesis)

	b1, h1 := buildBlock(col, genesisHash, 1)
	b2, h2 := buildBlock(col, genesisHash, 1, types.SignedVote{Sender: testIdentity(1)})

	blocks := map[types.Hash]types.Block{
		genesisHash: genesis,
		h1:          b1,
		h2:          b2,
	}

	children := getChildren(blocks, genesisHash)
	if len(children) != 2 {
		t.Fatalf("expected 2 children of genesis, got %d", len(children))
	}
}
