// Package pebble provides a storage.Store backed by CockroachDB's pebble
// LSM engine, wiring the teacher's pebble dependency (listed in go.mod
// but never used by the live forkchoice/node packages in the snapshot we
// started from) into actual durable persistence.
package pebble

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/ssflabs/gean/ssz"
	"github.com/ssflabs/gean/storage"
	"github.com/ssflabs/gean/types"
)

const (
	blockPrefix      = "b/"
	voteKey          = "votes"
	checkpointPrefix = "c/"
)

// Store is a pebble-backed storage.Store.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) a pebble database at dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) PutBlock(hash types.Hash, b types.Block) error {
	key := append([]byte(blockPrefix), hash[:]...)
	return s.db.Set(key, ssz.EncodeBlock(b), pebble.Sync)
}

func (s *Store) GetBlock(hash types.Hash) (types.Block, error) {
	key := append([]byte(blockPrefix), hash[:]...)
	data, closer, err := s.db.Get(key)
	if err == pebble.ErrNotFound {
		return types.Block{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Block{}, err
	}
	defer closer.Close()

	b, err := ssz.DecodeBlock(data)
	if err != nil {
		return types.Block{}, fmt.Errorf("pebble: decode block: %w", err)
	}
	return b, nil
}

func (s *Store) GetAllBlocks() (map[types.Hash]types.Block, error) {
	out := make(map[types.Hash]types.Block)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(blockPrefix),
		UpperBound: []byte(blockPrefix + "\xff"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var hash types.Hash
		copy(hash[:], iter.Key()[len(blockPrefix):])
		b, err := ssz.DecodeBlock(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("pebble: decode block: %w", err)
		}
		out[hash] = b
	}
	return out, iter.Error()
}

// PutVote appends a vote to the persisted vote log under a monotonic
// sequence key, so GetAllVotes can replay the full set on restart.
func (s *Store) PutVote(sv types.SignedVote) error {
	seq, err := s.nextVoteSeq()
	if err != nil {
		return err
	}
	key := voteSeqKey(seq)
	return s.db.Set(key, ssz.EncodeSignedVote(sv), pebble.Sync)
}

func voteSeqKey(seq uint64) []byte {
	key := make([]byte, len(voteKey)+1+8)
	copy(key, voteKey+"/")
	binary.BigEndian.PutUint64(key[len(voteKey)+1:], seq)
	return key
}

func (s *Store) nextVoteSeq() (uint64, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(voteKey + "/"),
		UpperBound: []byte(voteKey + "0"),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	var count uint64
	for iter.First(); iter.Valid(); iter.Next() {
		count++
	}
	return count, iter.Error()
}

func (s *Store) GetAllVotes() ([]types.SignedVote, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(voteKey + "/"),
		UpperBound: []byte(voteKey + "0"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []types.SignedVote
	for iter.First(); iter.Valid(); iter.Next() {
		sv, err := ssz.DecodeSignedVote(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("pebble: decode vote: %w", err)
		}
		out = append(out, sv)
	}
	return out, iter.Error()
}

func (s *Store) PutCheckpoint(key string, cp types.Checkpoint) error {
	dbKey := []byte(checkpointPrefix + key)
	buf := make([]byte, 48)
	copy(buf[:32], cp.BlockHash[:])
	binary.BigEndian.PutUint64(buf[32:40], uint64(cp.ChkpSlot))
	binary.BigEndian.PutUint64(buf[40:48], uint64(cp.BlockSlot))
	return s.db.Set(dbKey, buf, pebble.Sync)
}

func (s *Store) GetCheckpoint(key string) (types.Checkpoint, error) {
	dbKey := []byte(checkpointPrefix + key)
	data, closer, err := s.db.Get(dbKey)
	if err == pebble.ErrNotFound {
		return types.Checkpoint{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Checkpoint{}, err
	}
	defer closer.Close()

	var cp types.Checkpoint
	copy(cp.BlockHash[:], data[:32])
	cp.ChkpSlot = types.Slot(binary.BigEndian.Uint64(data[32:40]))
	cp.BlockSlot = types.Slot(binary.BigEndian.Uint64(data[40:48]))
	return cp, nil
}

func (s *Store) Close() error { return s.db.Close() }
