// Package memory provides an in-memory storage.Store, grounded on the
// teacher's storage/memory package, used for tests and for nodes run
// without a persistence directory.
package memory

import (
	"sync"

	"github.com/ssflabs/gean/storage"
	"github.com/ssflabs/gean/types"
)

// Store is a sync.RWMutex-guarded in-memory storage.Store implementation.
type Store struct {
	mu          sync.RWMutex
	blocks      map[types.Hash]types.Block
	votes       map[types.SignedVote]struct{}
	checkpoints map[string]types.Checkpoint
}

// New returns an empty in-memory Store.
func New() *Store {
	return &Store{
		blocks:      make(map[types.Hash]types.Block),
		votes:       make(map[types.SignedVote]struct{}),
		checkpoints: make(map[string]types.Checkpoint),
	}
}

func (s *Store) PutBlock(hash types.Hash, b types.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[hash] = b
	return nil
}

func (s *Store) GetBlock(hash types.Hash) (types.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[hash]
	if !ok {
		return types.Block{}, storage.ErrNotFound
	}
	return b, nil
}

func (s *Store) GetAllBlocks() (map[types.Hash]types.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[types.Hash]types.Block, len(s.blocks))
	for k, v := range s.blocks {
		out[k] = v
	}
	return out, nil
}

func (s *Store) PutVote(sv types.SignedVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[sv] = struct{}{}
	return nil
}

func (s *Store) GetAllVotes() ([]types.SignedVote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.SignedVote, 0, len(s.votes))
	for v := range s.votes {
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) PutCheckpoint(key string, cp types.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[key] = cp
	return nil
}

func (s *Store) GetCheckpoint(key string) (types.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.checkpoints[key]
	if !ok {
		return types.Checkpoint{}, storage.ErrNotFound
	}
	return cp, nil
}

func (s *Store) Close() error { return nil }
