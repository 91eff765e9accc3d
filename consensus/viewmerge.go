package consensus

import "github.com/ssflabs/gean/types"

// executeViewMerge folds the buffer into the view: buffered blocks join
// view_blocks, buffered votes join view_votes, and any votes embedded in
// the newly-merged blocks are re-ingested into view_votes as well. Both
// buffers are cleared. This is the only place blocks/votes move from
// buffer to view, per the MERGE-phase semantics.
func executeViewMerge(s NodeState) NodeState {
	out := s.clone()

	for h, b := range s.BufferBlocks {
		out.ViewBlocks[h] = b
		for _, sv := range b.Votes {
			out.ViewVotes[sv] = struct{}{}
		}
	}
	for sv := range s.BufferVotes {
		out.ViewVotes[sv] = struct{}{}
	}

	out.BufferBlocks = map[types.Hash]types.Block{}
	out.BufferVotes = map[types.SignedVote]struct{}{}

	return out
}
