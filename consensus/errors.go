package consensus

import "errors"

// Sentinel errors returned by the core's pure state transitions. The host
// is expected to log these and otherwise ignore the event that produced
// them; none of them represent a bug in the core itself.
var (
	// ErrParentNotFound names the case of a block referencing a parent the
	// view does not (yet) know about. No function in this package returns
	// it: blocks with unknown parents wait in the buffer instead.
	ErrParentNotFound = errors.New("consensus: parent block not found in view")

	// ErrUnknownBlock is returned when an operation references a block
	// hash absent from both the view and the buffer.
	ErrUnknownBlock = errors.New("consensus: block hash not known")

	// ErrNotProposer is returned when on_propose fires for a slot in
	// which the local identity is not the assigned proposer; this is not
	// an error condition in the protocol, just a no-op guard.
	ErrNotProposer = errors.New("consensus: local identity is not proposer for slot")

	// ErrStaleEvent is returned when on_tick is called with a slot/phase
	// pair equal to the current one.
	ErrStaleEvent = errors.New("consensus: tick does not advance slot or phase")

	// ErrIncompleteChain names the case of a chain that cannot reach the
	// configured genesis by following ParentHash links within the view. No
	// function in this package returns it: getBlockchain reports that case
	// through its bool result.
	ErrIncompleteChain = errors.New("consensus: chain is incomplete, does not reach genesis")
)
