package ssz

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ssflabs/gean/types"
)

// Hasher is the default BlockHash collaborator: it Merkleizes a block's
// fields into a single root, independent of wire encoding.
type Hasher struct{}

// BlockHash computes the content hash of a block from its parent hash,
// slot, body, and embedded votes.
func (Hasher) BlockHash(b types.Block) types.Hash {
	parentLeaf := b.ParentHash
	slotLeaf := uint64Leaf(uint64(b.Slot))
	bodyLeaf := HashTreeRootBytes(b.Body)
	votesLeaf := hashVotesRoot(b.Votes)
	return Merkleize([]types.Hash{parentLeaf, slotLeaf, bodyLeaf, votesLeaf}, 4)
}

func uint64Leaf(v uint64) types.Hash {
	var h types.Hash
	binary.LittleEndian.PutUint64(h[:8], v)
	return h
}

func hashVotesRoot(votes []types.SignedVote) types.Hash {
	chunks := make([]types.Hash, 0, len(votes))
	for _, v := range votes {
		chunks = append(chunks, Hash(encodeSignedVote(v)))
	}
	root := Merkleize(chunks, nextPowerOfTwo(len(chunks)))
	return MixInLength(root, uint64(len(votes)))
}

// Wire encoding: fixed-width fields written in field order, with
// variable-length fields (Body, Votes, ProposerView) length-prefixed by a
// uint32. This replaces the fastssz-generated Marshal/UnmarshalSSZ the
// teacher's networking code relies on (see DESIGN.md).

func encodeCheckpoint(buf *bytes.Buffer, cp types.Checkpoint) {
	buf.Write(cp.BlockHash[:])
	writeUint64(buf, uint64(cp.ChkpSlot))
	writeUint64(buf, uint64(cp.BlockSlot))
}

func decodeCheckpoint(r *bytes.Reader) (types.Checkpoint, error) {
	var cp types.Checkpoint
	if _, err := r.Read(cp.BlockHash[:]); err != nil {
		return cp, err
	}
	chkpSlot, err := readUint64(r)
	if err != nil {
		return cp, err
	}
	blockSlot, err := readUint64(r)
	if err != nil {
		return cp, err
	}
	cp.ChkpSlot = types.Slot(chkpSlot)
	cp.BlockSlot = types.Slot(blockSlot)
	return cp, nil
}

func encodeVote(buf *bytes.Buffer, v types.Vote) {
	writeUint64(buf, uint64(v.Slot))
	buf.Write(v.HeadHash[:])
	encodeCheckpoint(buf, v.FFGSource)
	encodeCheckpoint(buf, v.FFGTarget)
}

func decodeVote(r *bytes.Reader) (types.Vote, error) {
	var v types.Vote
	slot, err := readUint64(r)
	if err != nil {
		return v, err
	}
	v.Slot = types.Slot(slot)
	if _, err := r.Read(v.HeadHash[:]); err != nil {
		return v, err
	}
	if v.FFGSource, err = decodeCheckpoint(r); err != nil {
		return v, err
	}
	if v.FFGTarget, err = decodeCheckpoint(r); err != nil {
		return v, err
	}
	return v, nil
}

func encodeSignedVote(sv types.SignedVote) []byte {
	var buf bytes.Buffer
	encodeVote(&buf, sv.Message)
	buf.Write(sv.Signature[:])
	buf.Write(sv.Sender[:])
	return buf.Bytes()
}

// EncodeSignedVote serializes a SignedVote for the gossip wire.
func EncodeSignedVote(sv types.SignedVote) []byte { return encodeSignedVote(sv) }

// DecodeSignedVote parses bytes produced by EncodeSignedVote.
func DecodeSignedVote(data []byte) (types.SignedVote, error) {
	r := bytes.NewReader(data)
	var sv types.SignedVote
	var err error
	if sv.Message, err = decodeVote(r); err != nil {
		return sv, fmt.Errorf("ssz: decode vote: %w", err)
	}
	if _, err := r.Read(sv.Signature[:]); err != nil {
		return sv, fmt.Errorf("ssz: decode signature: %w", err)
	}
	if _, err := r.Read(sv.Sender[:]); err != nil {
		return sv, fmt.Errorf("ssz: decode sender: %w", err)
	}
	return sv, nil
}

func encodeBlock(buf *bytes.Buffer, b types.Block) {
	buf.Write(b.ParentHash[:])
	writeUint64(buf, uint64(b.Slot))
	writeBytes(buf, b.Body)
	writeUint32(buf, uint32(len(b.Votes)))
	for _, v := range b.Votes {
		sv := encodeSignedVote(v)
		writeBytes(buf, sv)
	}
}

func decodeBlock(r *bytes.Reader) (types.Block, error) {
	var b types.Block
	if _, err := r.Read(b.ParentHash[:]); err != nil {
		return b, err
	}
	slot, err := readUint64(r)
	if err != nil {
		return b, err
	}
	b.Slot = types.Slot(slot)
	body, err := readBytes(r)
	if err != nil {
		return b, err
	}
	b.Body = types.BlockBody(body)
	n, err := readUint32(r)
	if err != nil {
		return b, err
	}
	b.Votes = make([]types.SignedVote, 0, n)
	for i := uint32(0); i < n; i++ {
		raw, err := readBytes(r)
		if err != nil {
			return b, err
		}
		sv, err := DecodeSignedVote(raw)
		if err != nil {
			return b, err
		}
		b.Votes = append(b.Votes, sv)
	}
	return b, nil
}

// EncodeBlock serializes a Block for the gossip/reqresp wire.
func EncodeBlock(b types.Block) []byte {
	var buf bytes.Buffer
	encodeBlock(&buf, b)
	return buf.Bytes()
}

// DecodeBlock parses bytes produced by EncodeBlock.
func DecodeBlock(data []byte) (types.Block, error) {
	return decodeBlock(bytes.NewReader(data))
}

// EncodeSignedPropose serializes a SignedPropose for the gossip wire.
func EncodeSignedPropose(sp types.SignedPropose) []byte {
	var buf bytes.Buffer
	encodeBlock(&buf, sp.Message.Block)
	writeUint32(&buf, uint32(len(sp.Message.ProposerView)))
	for _, v := range sp.Message.ProposerView {
		writeBytes(&buf, encodeSignedVote(v))
	}
	buf.Write(sp.Signature[:])
	return buf.Bytes()
}

// DecodeSignedPropose parses bytes produced by EncodeSignedPropose.
func DecodeSignedPropose(data []byte) (types.SignedPropose, error) {
	r := bytes.NewReader(data)
	var sp types.SignedPropose
	block, err := decodeBlock(r)
	if err != nil {
		return sp, fmt.Errorf("ssz: decode block: %w", err)
	}
	sp.Message.Block = block

	n, err := readUint32(r)
	if err != nil {
		return sp, err
	}
	sp.Message.ProposerView = make([]types.SignedVote, 0, n)
	for i := uint32(0); i < n; i++ {
		raw, err := readBytes(r)
		if err != nil {
			return sp, err
		}
		sv, err := DecodeSignedVote(raw)
		if err != nil {
			return sp, err
		}
		sp.Message.ProposerView = append(sp.Message.ProposerView, sv)
	}
	if _, err := r.Read(sp.Signature[:]); err != nil {
		return sp, fmt.Errorf("ssz: decode signature: %w", err)
	}
	return sp, nil
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func writeBytes(buf *bytes.Buffer, data []byte) {
	writeUint32(buf, uint32(len(data)))
	buf.Write(data)
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(data); err != nil {
			return nil, err
		}
	}
	return data, nil
}
