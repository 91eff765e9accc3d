// Package reqresp implements the node's request/response protocols:
// Status (peer handshake) and BlocksByRoot (historical block sync).
// Grounded on the teacher's networking/reqresp package, with fastssz's
// generated Marshal/UnmarshalSSZ replaced by the ssz package's hand
// written codec (see DESIGN.md).
package reqresp

import "github.com/ssflabs/gean/types"

const (
	// StatusProtocolV1 is the libp2p protocol ID for the Status
	// handshake.
	StatusProtocolV1 = "/threeslotfinality/devnet0/req/status/1/ssz_snappy"
	// BlocksByRootProtocolV1 is the libp2p protocol ID for requesting
	// blocks by hash.
	BlocksByRootProtocolV1 = "/threeslotfinality/devnet0/req/blocks_by_root/1/ssz_snappy"
)

// Status is exchanged on first connection so peers can tell whether
// they're tracking the same chain and roughly how far along it they are.
type Status struct {
	FinalizedHash types.Hash
	FinalizedSlot types.Slot
	HeadHash      types.Hash
	HeadSlot      types.Slot
}

// BlocksByRootRequest asks a peer for the blocks identified by Roots.
type BlocksByRootRequest struct {
	Roots []types.Hash
}

// Handler supplies the data a StreamHandler needs to answer incoming
// requests. The node implements this by reading from its NodeState
// snapshot and storage.Store.
type Handler interface {
	GetStatus() Status
	HandleBlocksByRoot(req *BlocksByRootRequest) []types.Block
}
