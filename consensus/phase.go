package consensus

import "github.com/ssflabs/gean/types"

// SlotFromTick returns the slot containing the given tick count (ticks
// elapsed since genesis, in the same unit as Configuration.Delta).
func SlotFromTick(cfg types.Configuration, tick types.Slot) types.Slot {
	return tick / cfg.SlotLength()
}

// PhaseFromTick returns the phase within a slot for the given tick count.
// Each slot is divided into four equal intervals: PROPOSE, VOTE, CONFIRM,
// MERGE, in that order.
func PhaseFromTick(cfg types.Configuration, tick types.Slot) types.Phase {
	timeInSlot := tick % cfg.SlotLength()
	switch {
	case timeInSlot >= 3*cfg.Delta:
		return types.PhaseMerge
	case timeInSlot >= 2*cfg.Delta:
		return types.PhaseConfirm
	case timeInSlot >= cfg.Delta:
		return types.PhaseVote
	default:
		return types.PhasePropose
	}
}

// Outgoing bundles every message a single event handler produced, so the
// host can dispatch them to the network without the core knowing
// anything about transport.
type Outgoing struct {
	Proposes []types.SignedPropose
	Votes    []types.SignedVote
}

func (o Outgoing) isEmpty() bool { return len(o.Proposes) == 0 && len(o.Votes) == 0 }

// OnTick advances the node's notion of time to the slot/phase implied by
// tick. It is a no-op (ErrStaleEvent) unless the slot or phase actually
// changes, matching the reference implementation's guard against
// re-running duties within the same interval. On an actual transition it
// dispatches to the corresponding phase duty.
func OnTick(s NodeState, col Collaborators, tick types.Slot) (NodeState, Outgoing, error) {
	newSlot := SlotFromTick(s.Configuration, tick)
	newPhase := PhaseFromTick(s.Configuration, tick)

	if newSlot == s.CurrentSlot && newPhase == s.CurrentPhase {
		return s, Outgoing{}, ErrStaleEvent
	}

	out := s.clone()
	out.CurrentSlot = newSlot
	out.CurrentPhase = newPhase

	switch newPhase {
	case types.PhasePropose:
		next, proposes, err := onPropose(out, col)
		if err != nil && err != ErrNotProposer {
			return out, Outgoing{}, err
		}
		return next, Outgoing{Proposes: proposes}, nil

	case types.PhaseVote:
		next, votes, err := onVote(out, col)
		if err != nil {
			return out, Outgoing{}, err
		}
		return next, Outgoing{Votes: votes}, nil

	case types.PhaseConfirm:
		next, err := onConfirm(out, col)
		if err != nil {
			return out, Outgoing{}, err
		}
		return next, Outgoing{}, nil

	case types.PhaseMerge:
		return executeViewMerge(out), Outgoing{}, nil
	}

	return out, Outgoing{}, nil
}
