// Package ssz provides the node's default hashing and wire-encoding
// collaborators. The teacher repo generates these via fastssz, but no
// generated code was ever checked in (see DESIGN.md); this package is a
// hand-written replacement grounded on the teacher's own non-generated
// Merkle helper (common/ssz/ssz.go), extended with a small binary codec
// for the gossip/reqresp wire format.
package ssz

import (
	"crypto/sha256"

	"github.com/ssflabs/gean/types"
)

const bytesPerChunk = 32

// ZeroHash is the Merkle tree's zero-value leaf.
var ZeroHash = types.Hash{}

// Hash returns the sha256 digest of data as a types.Hash.
func Hash(data []byte) types.Hash {
	return sha256.Sum256(data)
}

// HashNodes combines two child nodes into their parent per the standard
// binary Merkle tree construction.
func HashNodes(a, b types.Hash) types.Hash {
	var buf [2 * bytesPerChunk]byte
	copy(buf[:bytesPerChunk], a[:])
	copy(buf[bytesPerChunk:], b[:])
	return sha256.Sum256(buf[:])
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func zeroTreeRoot(depth int) types.Hash {
	root := ZeroHash
	for i := 0; i < depth; i++ {
		root = HashNodes(root, root)
	}
	return root
}

// Merkleize computes the root of a binary Merkle tree over chunks, padded
// with zero chunks up to limit leaves (or the next power of two above
// len(chunks) if limit is 0).
func Merkleize(chunks []types.Hash, limit int) types.Hash {
	if limit == 0 {
		limit = nextPowerOfTwo(len(chunks))
	}
	layer := make([]types.Hash, limit)
	copy(layer, chunks)

	for len(layer) > 1 {
		next := make([]types.Hash, len(layer)/2)
		for i := range next {
			next[i] = HashNodes(layer[2*i], layer[2*i+1])
		}
		layer = next
	}
	if len(layer) == 0 {
		return zeroTreeRoot(0)
	}
	return layer[0]
}

// MixInLength folds a length value into a root, per the standard
// SSZ list/bitlist mix-in-length step.
func MixInLength(root types.Hash, length uint64) types.Hash {
	var lenChunk types.Hash
	for i := 0; i < 8; i++ {
		lenChunk[i] = byte(length >> (8 * i))
	}
	return HashNodes(root, lenChunk)
}

// hashChunks splits data into 32-byte chunks, zero-padding the final one.
func hashChunks(data []byte) []types.Hash {
	n := (len(data) + bytesPerChunk - 1) / bytesPerChunk
	if n == 0 {
		n = 1
	}
	chunks := make([]types.Hash, n)
	for i := 0; i < n; i++ {
		var c types.Hash
		start := i * bytesPerChunk
		end := start + bytesPerChunk
		if end > len(data) {
			end = len(data)
		}
		copy(c[:], data[start:end])
		chunks[i] = c
	}
	return chunks
}

// HashTreeRootBytes computes the Merkle root of an opaque byte string,
// used by Hasher.BlockHash for a block's body.
func HashTreeRootBytes(data []byte) types.Hash {
	return MixInLength(Merkleize(hashChunks(data), 0), uint64(len(data)))
}
