package consensus

import "github.com/ssflabs/gean/types"

// NodeState is the complete pure state of a single 3-Slot Finality
// participant. It holds no collaborator references and no I/O handles;
// every field here is plain data, copied and returned by value from each
// event handler per the (NodeState, Event) -> (NodeState, Outgoing)
// transition model.
type NodeState struct {
	Configuration types.Configuration
	Identity      types.NodeIdentity

	CurrentSlot  types.Slot
	CurrentPhase types.Phase

	// ViewBlocks is the set of blocks the node has merged into its
	// canonical working view, keyed by hash.
	ViewBlocks map[types.Hash]types.Block

	// ViewVotes is the set of votes merged into the working view.
	// SignedVote is fully comparable, so two identical votes collapse to
	// one element while two votes that differ in any field (including an
	// equivocating sender casting two different messages) remain
	// distinct — matching the persistent-set semantics of the reference
	// implementation.
	ViewVotes map[types.SignedVote]struct{}

	// BufferBlocks and BufferVotes hold blocks/votes received since the
	// last merge, not yet folded into the view.
	BufferBlocks map[types.Hash]types.Block
	BufferVotes  map[types.SignedVote]struct{}

	// SCand is the candidate set for the available chain: blocks that
	// remain eligible to become the new available-chain head.
	SCand map[types.Hash]struct{}

	// ChAva is the current available-chain head.
	ChAva types.Hash
}

// NewGenesisState builds the initial state for a run, seeded with the
// configured genesis block already merged into the view.
func NewGenesisState(cfg types.Configuration, identity types.NodeIdentity, hasher Collaborators) NodeState {
	genesisHash := hasher.BlockHash(cfg.Genesis)
	return NodeState{
		Configuration: cfg,
		Identity:      identity,
		CurrentSlot:   0,
		CurrentPhase:  types.PhasePropose,
		ViewBlocks:    map[types.Hash]types.Block{genesisHash: cfg.Genesis},
		ViewVotes:     map[types.SignedVote]struct{}{},
		BufferBlocks:  map[types.Hash]types.Block{},
		BufferVotes:   map[types.SignedVote]struct{}{},
		SCand:         map[types.Hash]struct{}{genesisHash: {}},
		ChAva:         genesisHash,
	}
}

// clone returns a shallow-independent copy of s: every map is copied so
// that callers can mutate the result without aliasing the original. This
// is the core's substitute for the reference implementation's persistent
// (pset/pmap) data structures — Go has none built in, so each transition
// explicitly copies-on-write instead of mutating s in place.
func (s NodeState) clone() NodeState {
	out := s
	out.ViewBlocks = copyBlockMap(s.ViewBlocks)
	out.ViewVotes = copyVoteSet(s.ViewVotes)
	out.BufferBlocks = copyBlockMap(s.BufferBlocks)
	out.BufferVotes = copyVoteSet(s.BufferVotes)
	out.SCand = copyHashSet(s.SCand)
	return out
}

func copyBlockMap(m map[types.Hash]types.Block) map[types.Hash]types.Block {
	out := make(map[types.Hash]types.Block, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyVoteSet(m map[types.SignedVote]struct{}) map[types.SignedVote]struct{} {
	out := make(map[types.SignedVote]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

func copyHashSet(m map[types.Hash]struct{}) map[types.Hash]struct{} {
	out := make(map[types.Hash]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}
