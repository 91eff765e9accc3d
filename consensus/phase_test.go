package consensus

import (
	"testing"

	"github.com/ssflabs/gean/types"
)

func TestSlotAndPhaseFromTick(t *testing.T) {
	cfg := types.Configuration{Delta: 2}

	cases := []struct {
		tick      types.Slot
		wantSlot  types.Slot
		wantPhase types.Phase
	}{
		{0, 0, types.PhasePropose},
		{1, 0, types.PhasePropose},
		{2, 0, types.PhaseVote},
		{3, 0, types.PhaseVote},
		{4, 0, types.PhaseConfirm},
		{5, 0, types.PhaseConfirm},
		{6, 0, types.PhaseMerge},
		{7, 0, types.PhaseMerge},
		{8, 1, types.PhasePropose},
	}

	for _, c := range cases {
		if got := SlotFromTick(cfg, c.tick); got != c.wantSlot {
			t.Fatalf("tick %d: expected slot %d, got %d", c.tick, c.wantSlot, got)
		}
		if got := PhaseFromTick(cfg, c.tick); got != c.wantPhase {
			t.Fatalf("tick %d: expected phase %v, got %v", c.tick, c.wantPhase, got)
		}
	}
}

func TestOnTickIsNoOpWithinSameSlotAndPhase(t *testing.T) {
	validators := types.ValidatorBalances{testIdentity(1): 1}
	s, col := newTestState(t, validators)
	col.proposers[0] = testIdentity(1)

	_, _, err := OnTick(s, col, 0)
	if err != ErrStaleEvent {
		t.Fatalf("expected ErrStaleEvent for a tick matching the current slot/phase, got %v", err)
	}
}

func TestOnTickDispatchesToPhaseHandlers(t *testing.T) {
	validators := types.ValidatorBalances{testIdentity(1): 1}
	s, col := newTestState(t, validators)
	col.proposers[0] = testIdentity(1)
	cfg := s.Configuration

	voteTick := cfg.Delta
	next, out, err := OnTick(s, col, voteTick)
	if err != nil {
		t.Fatalf("unexpected error entering VOTE phase: %v", err)
	}
	if next.CurrentPhase != types.PhaseVote {
		t.Fatalf("expected phase to advance to VOTE")
	}
	if len(out.Votes) == 0 {
		t.Fatalf("expected onVote to emit at least one vote")
	}

	confirmTick := 2 * cfg.Delta
	next2, _, err := OnTick(next, col, confirmTick)
	if err != nil {
		t.Fatalf("unexpected error entering CONFIRM phase: %v", err)
	}
	if next2.CurrentPhase != types.PhaseConfirm {
		t.Fatalf("expected phase to advance to CONFIRM")
	}

	mergeTick := 3 * cfg.Delta
	next3, _, err := OnTick(next2, col, mergeTick)
	if err != nil {
		t.Fatalf("unexpected error entering MERGE phase: %v", err)
	}
	if next3.CurrentPhase != types.PhaseMerge {
		t.Fatalf("expected phase to advance to MERGE")
	}
}
