package networking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	libp2p "github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/ssflabs/gean/networking/reqresp"
	"github.com/ssflabs/gean/ssz"
	"github.com/ssflabs/gean/types"
)

// Handlers is the set of callbacks the node registers to receive
// decoded gossip messages. The service never touches consensus.NodeState
// directly; it only decodes wire bytes and calls these.
type Handlers struct {
	OnPropose func(types.SignedPropose)
	OnVote    func(types.SignedVote)
}

// ServiceConfig configures a Service's libp2p host and gossipsub.
type ServiceConfig struct {
	ListenAddr string
	Bootnodes  []string
}

// Service owns the node's libp2p host, gossipsub router, and
// request/response stream handler.
type Service struct {
	host       host.Host
	pubsub     *pubsub.PubSub
	stream     *reqresp.StreamHandler
	blockTopic *pubsub.Topic
	voteTopic  *pubsub.Topic
	blockSub   *pubsub.Subscription
	voteSub    *pubsub.Subscription

	handlers Handlers
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService builds a libp2p host listening on cfg.ListenAddr, wires
// gossipsub and the reqresp stream handler, and subscribes to the block
// and vote topics.
func NewService(ctx context.Context, cfg ServiceConfig, reqHandler reqresp.Handler, handlers Handlers, logger *slog.Logger) (*Service, error) {
	h, err := libp2p.New(libp2p.ListenAddrStrings(cfg.ListenAddr))
	if err != nil {
		return nil, fmt.Errorf("networking: new libp2p host: %w", err)
	}

	ps, err := NewGossipSub(h)
	if err != nil {
		return nil, err
	}

	blockTopic, err := ps.Join(BlockTopic)
	if err != nil {
		return nil, fmt.Errorf("networking: join block topic: %w", err)
	}
	voteTopic, err := ps.Join(VoteTopic)
	if err != nil {
		return nil, fmt.Errorf("networking: join vote topic: %w", err)
	}
	blockSub, err := blockTopic.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("networking: subscribe block topic: %w", err)
	}
	voteSub, err := voteTopic.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("networking: subscribe vote topic: %w", err)
	}

	sctx, cancel := context.WithCancel(ctx)
	svc := &Service{
		host:       h,
		pubsub:     ps,
		stream:     reqresp.NewStreamHandler(h, reqHandler),
		blockTopic: blockTopic,
		voteTopic:  voteTopic,
		blockSub:   blockSub,
		voteSub:    voteSub,
		handlers:   handlers,
		logger:     logger,
		ctx:        sctx,
		cancel:     cancel,
	}
	svc.stream.RegisterProtocols()

	for _, addr := range cfg.Bootnodes {
		svc.dialBootnode(addr)
	}

	return svc, nil
}

func (s *Service) dialBootnode(addr string) {
	info, err := peerAddrInfo(addr)
	if err != nil {
		s.logger.Warn("invalid bootnode address", "addr", addr, "error", err)
		return
	}
	if err := s.host.Connect(s.ctx, *info); err != nil {
		s.logger.Warn("failed to dial bootnode", "addr", addr, "error", err)
	}
}

func peerAddrInfo(addr string) (*peer.AddrInfo, error) {
	maddr, err := ma.NewMultiaddr(addr)
	if err != nil {
		return nil, err
	}
	return peer.AddrInfoFromP2pAddr(maddr)
}

// Start launches the gossip read loops. Call once.
func (s *Service) Start() {
	s.wg.Add(2)
	go s.readBlocks()
	go s.readVotes()
}

func (s *Service) readBlocks() {
	defer s.wg.Done()
	for {
		msg, err := s.blockSub.Next(s.ctx)
		if err != nil {
			return
		}
		raw, err := DecompressMessage(msg.Data)
		if err != nil {
			s.logger.Debug("failed to decompress block message", "error", err)
			continue
		}
		sp, err := ssz.DecodeSignedPropose(raw)
		if err != nil {
			s.logger.Debug("failed to decode propose message", "error", err)
			continue
		}
		if s.handlers.OnPropose != nil {
			s.handlers.OnPropose(sp)
		}
	}
}

func (s *Service) readVotes() {
	defer s.wg.Done()
	for {
		msg, err := s.voteSub.Next(s.ctx)
		if err != nil {
			return
		}
		raw, err := DecompressMessage(msg.Data)
		if err != nil {
			s.logger.Debug("failed to decompress vote message", "error", err)
			continue
		}
		sv, err := ssz.DecodeSignedVote(raw)
		if err != nil {
			s.logger.Debug("failed to decode vote message", "error", err)
			continue
		}
		if s.handlers.OnVote != nil {
			s.handlers.OnVote(sv)
		}
	}
}

// PublishPropose gossips a signed propose message on the block topic.
func (s *Service) PublishPropose(sp types.SignedPropose) error {
	data := CompressMessage(ssz.EncodeSignedPropose(sp))
	return s.blockTopic.Publish(s.ctx, data)
}

// PublishVote gossips a signed vote on the vote topic.
func (s *Service) PublishVote(sv types.SignedVote) error {
	data := CompressMessage(ssz.EncodeSignedVote(sv))
	return s.voteTopic.Publish(s.ctx, data)
}

// Host exposes the underlying libp2p host, for reqresp-based sync.
func (s *Service) Host() host.Host { return s.host }

// Stop tears down the gossip loops and closes the libp2p host.
func (s *Service) Stop() error {
	s.cancel()
	s.wg.Wait()
	return s.host.Close()
}
