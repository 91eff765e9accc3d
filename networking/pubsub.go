// Package networking wires the node to libp2p gossipsub for block,
// vote, and propose-message propagation, and hosts the request/response
// protocols in the reqresp subpackage. Grounded on the teacher's
// networking/pubsub.go and networking/service.go.
package networking

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/golang/snappy"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	pb "github.com/libp2p/go-libp2p-pubsub/pb"
)

const (
	protocolPrefix = "/threeslotfinality/devnet0"

	// BlockTopic carries gossiped SignedPropose messages.
	BlockTopic = protocolPrefix + "/block/ssz_snappy"
	// VoteTopic carries gossiped SignedVote messages.
	VoteTopic = protocolPrefix + "/vote/ssz_snappy"
)

// NewGossipSub constructs a pubsub.PubSub tuned the way the teacher
// tunes it: wider mesh than the libp2p defaults, matched to a small
// validator-count devnet rather than the public mainnet mesh.
func NewGossipSub(h host.Host) (*pubsub.PubSub, error) {
	params := pubsub.GossipSubParams{
		D:               8,
		Dlo:             6,
		Dhi:             12,
		Dlazy:           6,
		HeartbeatInterval: 700 * time.Millisecond,
		FanoutTTL:       60 * time.Second,
		HistoryLength:   6,
		HistoryGossip:   3,
	}

	ps, err := pubsub.NewGossipSub(
		nil, h,
		pubsub.WithGossipSubParams(params),
		pubsub.WithMessageIdFn(computePubsubMessageID),
		pubsub.WithPeerExchange(true),
	)
	if err != nil {
		return nil, fmt.Errorf("networking: new gossipsub: %w", err)
	}
	return ps, nil
}

// computePubsubMessageID derives a domain-separated message ID from a
// pubsub message's raw (possibly snappy-compressed) data, so duplicate
// messages are deduplicated before decompression cost is paid twice.
func computePubsubMessageID(pmsg *pb.Message) string {
	h := sha256.New()
	h.Write([]byte("gean-msgid"))
	h.Write(pmsg.Data)
	digest := h.Sum(nil)
	return string(digest[:20])
}

// CompressMessage snappy-encodes an SSZ-serialized payload for the wire.
func CompressMessage(data []byte) []byte {
	return snappy.Encode(nil, data)
}

// DecompressMessage reverses CompressMessage.
func DecompressMessage(data []byte) ([]byte, error) {
	decoded, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("networking: snappy decode: %w", err)
	}
	return decoded, nil
}

// encodeVarintLen returns n as an unsigned varint. Nothing in this module
// calls it; reqresp framing encodes its varints with binary.PutUvarint
// directly.
func encodeVarintLen(n uint64) []byte {
	buf := make([]byte, binary.MaxVarintLen64)
	l := binary.PutUvarint(buf, n)
	return buf[:l]
}
