package consensus

import (
	"testing"

	"github.com/ssflabs/gean/types"
)

// TestSingleProposerAdvancesAcrossSlots drives a lone validator through
// several full slots of PROPOSE/VOTE/CONFIRM/MERGE ticks and checks that
// the chain grows, the node always votes for its own proposals, and the
// available chain keeps pace with the view.
func TestSingleProposerAdvancesAcrossSlots(t *testing.T) {
	id := testIdentity(1)
	validators := types.ValidatorBalances{id: 1}
	col := newTestCollaborators(validators)
	cfg := testConfig(types.Block{Slot: 0})
	s := NewGenesisState(cfg, id, col)

	// Slot 0's "proposal" is the genesis block itself (already seeded by
	// NewGenesisState, whose initial CurrentSlot/CurrentPhase already sit
	// at (0, PROPOSE)), so ticks start at slot 1.
	const firstSlot, lastSlot = 1, 3
	for slot := types.Slot(firstSlot); slot <= lastSlot; slot++ {
		col.proposers[slot] = id
		base := slot * cfg.SlotLength()

		var err error
		var out Outgoing

		s, out, err = OnTick(s, col, base)
		if err != nil {
			t.Fatalf("slot %d PROPOSE tick: unexpected error %v", slot, err)
		}
		if len(out.Proposes) != 1 {
			t.Fatalf("slot %d: expected exactly one propose from the sole proposer", slot)
		}

		s, out, err = OnTick(s, col, base+cfg.Delta)
		if err != nil {
			t.Fatalf("slot %d VOTE tick: unexpected error %v", slot, err)
		}
		if len(out.Votes) != 1 {
			t.Fatalf("slot %d: expected exactly one emitted vote", slot)
		}

		s, _, err = OnTick(s, col, base+2*cfg.Delta)
		if err != nil {
			t.Fatalf("slot %d CONFIRM tick: unexpected error %v", slot, err)
		}

		s, _, err = OnTick(s, col, base+3*cfg.Delta)
		if err != nil {
			t.Fatalf("slot %d MERGE tick: unexpected error %v", slot, err)
		}
		if len(s.BufferBlocks) != 0 || len(s.BufferVotes) != 0 {
			t.Fatalf("slot %d: expected buffers to be empty after MERGE", slot)
		}
	}

	chain, ok := AvailableChain(s, col)
	if !ok {
		t.Fatalf("expected available chain to remain complete")
	}
	if len(chain) < 2 {
		t.Fatalf("expected the available chain to have grown past genesis, got %d blocks", len(chain))
	}

	head := getHead(s, col)
	if head == col.BlockHash(s.Configuration.Genesis) {
		t.Fatalf("expected GHOST head to have advanced past genesis after %d slots", lastSlot-firstSlot+1)
	}
}
