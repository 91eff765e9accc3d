// Package storage defines the node's persistence boundary: the pure
// consensus core never touches disk, so every durability concern lives
// here, behind a small interface the host can back with memory (tests)
// or pebble (production).
package storage

import (
	"errors"

	"github.com/ssflabs/gean/types"
)

// ErrNotFound is returned when a lookup key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// Store persists blocks, votes, and named checkpoints. node.Node writes
// the blocks and votes it proposes, casts, or receives; it does not read
// them back on start, so a restarted node begins again from genesis.
// Grounded on the teacher's storage.Store interface.
type Store interface {
	PutBlock(hash types.Hash, b types.Block) error
	GetBlock(hash types.Hash) (types.Block, error)
	GetAllBlocks() (map[types.Hash]types.Block, error)

	PutVote(sv types.SignedVote) error
	GetAllVotes() ([]types.SignedVote, error)

	PutCheckpoint(key string, cp types.Checkpoint) error
	GetCheckpoint(key string) (types.Checkpoint, error)

	Close() error
}
