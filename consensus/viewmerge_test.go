package consensus

import (
	"testing"

	"github.com/ssflabs/gean/types"
)

func TestExecuteViewMergeFoldsBuffersAndEmbeddedVotes(t *testing.T) {
	validators := types.ValidatorBalances{testIdentity(1): 1}
	s, col := newTestState(t, validators)
	genesisHash := col.BlockHash(s.Configuration.Genesis)

	embedded := buildVote(testIdentity(1), 0, genesisHash,
		types.Checkpoint{BlockHash: genesisHash}, types.Checkpoint{BlockHash: genesisHash, ChkpSlot: 1})
	b1, h1 := buildBlock(col, genesisHash, 1, embedded)

	standalone := buildVote(testIdentity(1), 1, h1,
		types.Checkpoint{BlockHash: genesisHash}, types.Checkpoint{BlockHash: h1, ChkpSlot: 1, BlockSlot: 1})

	s.BufferBlocks[h1] = b1
	s.BufferVotes[standalone] = struct{}{}

	merged := executeViewMerge(s)

	if _, ok := merged.ViewBlocks[h1]; !ok {
		t.Fatalf("expected buffered block to be merged into ViewBlocks")
	}
	if _, ok := merged.ViewVotes[embedded]; !ok {
		t.Fatalf("expected block's embedded vote to be re-ingested into ViewVotes")
	}
	if _, ok := merged.ViewVotes[standalone]; !ok {
		t.Fatalf("expected buffered standalone vote to be merged into ViewVotes")
	}
	if len(merged.BufferBlocks) != 0 || len(merged.BufferVotes) != 0 {
		t.Fatalf("expected buffers to be cleared after merge")
	}

	// Original state must be untouched (clone semantics).
	if len(s.ViewBlocks) != 1 {
		t.Fatalf("expected original state's ViewBlocks to be unmodified by merge")
	}
	if len(s.BufferBlocks) != 1 || len(s.BufferVotes) != 1 {
		t.Fatalf("expected original state's buffers to be unmodified by merge")
	}
}
