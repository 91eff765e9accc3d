// Package chainsync fills gaps in a node's view by requesting missing
// ancestor blocks from peers over the reqresp BlocksByRoot protocol,
// grounded on the teacher's node-level syncer.
package chainsync

import (
	"context"
	"log/slog"

	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/ssflabs/gean/networking/reqresp"
	"github.com/ssflabs/gean/types"
)

// Syncer requests blocks a node has heard about (via a parent hash it
// doesn't recognize) but never received directly.
type Syncer struct {
	stream *reqresp.StreamHandler
	logger *slog.Logger
}

// New returns a Syncer that issues requests through stream.
func New(stream *reqresp.StreamHandler, logger *slog.Logger) *Syncer {
	return &Syncer{stream: stream, logger: logger}
}

// FetchBlocks requests roots from peerID and returns whatever blocks the
// peer could supply. Missing or malformed entries are silently dropped;
// callers should re-request from another peer if the result is short.
func (sy *Syncer) FetchBlocks(ctx context.Context, peerID peer.ID, roots []types.Hash) []types.Block {
	blocks, err := sy.stream.RequestBlocksByRoot(ctx, peerID, roots)
	if err != nil {
		sy.logger.Debug("chainsync: fetch blocks failed", "peer", peerID, "error", err)
		return nil
	}
	return blocks
}

// MissingParents scans blocks for ParentHash values absent from known,
// returning the deduplicated set that should be fetched next.
func MissingParents(blocks map[types.Hash]types.Block, known map[types.Hash]types.Block) []types.Hash {
	seen := make(map[types.Hash]struct{})
	var missing []types.Hash
	for _, b := range blocks {
		if _, ok := known[b.ParentHash]; ok {
			continue
		}
		if _, ok := blocks[b.ParentHash]; ok {
			continue
		}
		if _, dup := seen[b.ParentHash]; dup {
			continue
		}
		seen[b.ParentHash] = struct{}{}
		missing = append(missing, b.ParentHash)
	}
	return missing
}
