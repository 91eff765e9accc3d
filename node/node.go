// Package node wires the pure consensus core to the outside world: a
// wall clock, libp2p networking, on-disk storage, and metrics/logging.
// One goroutine runs the tick loop; gossip handlers apply received
// messages to the core from the networking goroutines. Every access to
// the core's state holds Node.mu, so event delivery is serialized per
// spec.md's single-threaded cooperative concurrency model. Grounded on
// the teacher's node/node.go.
package node

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/ssflabs/gean/clock"
	"github.com/ssflabs/gean/config"
	"github.com/ssflabs/gean/consensus"
	"github.com/ssflabs/gean/crypto"
	"github.com/ssflabs/gean/networking"
	"github.com/ssflabs/gean/networking/chainsync"
	"github.com/ssflabs/gean/networking/reqresp"
	"github.com/ssflabs/gean/observability/logging"
	"github.com/ssflabs/gean/observability/metrics"
	"github.com/ssflabs/gean/storage"
	"github.com/ssflabs/gean/storage/memory"
	"github.com/ssflabs/gean/types"
)

// Config holds everything needed to start a Node.
type Config struct {
	Genesis    config.Genesis
	Identity   crypto.KeyPair
	PeerKeys   []*secp256k1.PublicKey
	ListenAddr string
	Bootnodes  []string
	Store      storage.Store // nil => in-memory
}

// Node owns the consensus core's state, guarded by mu, runs the tick loop
// that drives it, and bridges it to the clock, network, and storage.
type Node struct {
	mu    sync.Mutex
	state consensus.NodeState
	col   consensus.Collaborators

	clock *clock.SlotClock
	net   *networking.Service
	store storage.Store
	sync  *chainsync.Syncer

	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Node from cfg: it derives the genesis block, seeds the
// core's initial NodeState, and wires networking and storage, but does
// not yet start the event loop (call Start for that).
func New(ctx context.Context, cfg Config) (*Node, error) {
	logger := logging.NewComponentLogger(logging.CompNode)

	validators, err := cfg.Genesis.ValidatorBalances()
	if err != nil {
		return nil, fmt.Errorf("node: validator balances: %w", err)
	}

	keys := crypto.NewKeyStore(cfg.Identity, cfg.PeerKeys)
	col := newDefaultCollaborators(keys, validators)

	protoCfg := types.Configuration{
		Delta:   types.Slot(cfg.Genesis.DeltaTicks),
		Eta:     types.Slot(cfg.Genesis.EtaSlots),
		K:       cfg.Genesis.K,
		Genesis: genesisBlock(),
	}

	state := consensus.NewGenesisState(protoCfg, cfg.Identity.Identity, col)

	store := cfg.Store
	if store == nil {
		store = memory.New()
	}

	sclock := clock.New(cfg.Genesis.GenesisTime, time.Second)

	n := &Node{
		state:  state,
		col:    col,
		clock:  sclock,
		store:  store,
		logger: logger,
	}

	netHandlers := networking.Handlers{
		OnPropose: n.handleReceivedPropose,
		OnVote:    n.handleReceivedVote,
	}
	reqHandler := &statusHandler{n: n}
	svc, err := networking.NewService(ctx, networking.ServiceConfig{
		ListenAddr: cfg.ListenAddr,
		Bootnodes:  cfg.Bootnodes,
	}, reqHandler, netHandlers, logging.NewComponentLogger(logging.CompNetwork))
	if err != nil {
		return nil, fmt.Errorf("node: networking service: %w", err)
	}
	n.net = svc
	n.sync = chainsync.New(reqresp.NewStreamHandler(svc.Host(), reqHandler), logging.NewComponentLogger(logging.CompReqResp))

	nctx, cancel := context.WithCancel(ctx)
	n.ctx = nctx
	n.cancel = cancel

	metrics.NodeInfo.WithLabelValues(cfg.Identity.Identity.String()).Set(1)

	return n, nil
}

// genesisBlock returns the protocol's anchor block: slot 0, no parent,
// no votes, empty body.
func genesisBlock() types.Block {
	return types.Block{ParentHash: types.Hash{}, Slot: 0, Body: nil, Votes: nil}
}

// Start launches the networking read loops and the single goroutine that
// ticks the consensus core.
func (n *Node) Start() {
	n.net.Start()
	n.wg.Add(1)
	go n.run()
}

// Stop signals the event loop to exit and waits for it.
func (n *Node) Stop() {
	n.cancel()
	n.wg.Wait()
	_ = n.net.Stop()
	_ = n.store.Close()
}

func (n *Node) run() {
	defer n.wg.Done()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-n.ctx.Done():
			return
		case <-ticker.C:
			n.tick()
		}
	}
}

func (n *Node) tick() {
	start := time.Now()
	tick := n.clock.CurrentTick()

	n.mu.Lock()
	defer n.mu.Unlock()

	next, outgoing, err := consensus.OnTick(n.state, n.col, tick)
	metrics.TickProcessingTime.Observe(time.Since(start).Seconds())
	if err != nil {
		if err != consensus.ErrStaleEvent {
			n.logger.Debug("tick produced no transition", "error", err)
		}
		return
	}
	n.state = next
	n.recordMetricsLocked()
	n.persistAndPublishLocked(outgoing)
}

func (n *Node) recordMetricsLocked() {
	metrics.CurrentSlot.Set(float64(n.state.CurrentSlot))
	head := consensus.GetHead(n.state, n.col)
	if b, ok := n.state.ViewBlocks[head]; ok {
		metrics.HeadSlot.Set(float64(b.Slot))
	}
	if b, ok := n.state.ViewBlocks[n.state.ChAva]; ok {
		metrics.AvailableChainHeadSlot.Set(float64(b.Slot))
	}

	justified := consensus.HighestJustifiedCheckpoint(n.state, n.col)
	metrics.LatestJustifiedSlot.Set(float64(justified.ChkpSlot))
	finalized := consensus.HighestFinalizedCheckpoint(n.state, n.col)
	metrics.LatestFinalizedSlot.Set(float64(finalized.ChkpSlot))

	participation := consensus.JustificationParticipation(n.col, n.state.ViewVotes, justified)
	metrics.JustificationParticipationRatio.Set(consensus.ParticipationRatio(n.col, justified, participation))
}

func (n *Node) persistAndPublishLocked(outgoing consensus.Outgoing) {
	for _, sp := range outgoing.Proposes {
		if err := n.store.PutBlock(n.col.BlockHash(sp.Message.Block), sp.Message.Block); err != nil {
			n.logger.Warn("failed to persist proposed block", "error", err)
		}
		if err := n.net.PublishPropose(sp); err != nil {
			n.logger.Warn("failed to publish propose message", "error", err)
		}
	}
	for _, sv := range outgoing.Votes {
		if err := n.store.PutVote(sv); err != nil {
			n.logger.Warn("failed to persist vote", "error", err)
		}
		if err := n.net.PublishVote(sv); err != nil {
			n.logger.Warn("failed to publish vote", "error", err)
		}
		metrics.VotesProcessed.WithLabelValues("emitted").Inc()
	}
}

func (n *Node) handleReceivedPropose(sp types.SignedPropose) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state = consensus.OnReceivedPropose(n.state, n.col, sp)
	if err := n.store.PutBlock(n.col.BlockHash(sp.Message.Block), sp.Message.Block); err != nil {
		n.logger.Warn("failed to persist received block", "error", err)
	}
}

func (n *Node) handleReceivedVote(sv types.SignedVote) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state = consensus.OnVoteReceived(n.state, sv)
	metrics.VotesProcessed.WithLabelValues("received").Inc()
}

// snapshotLocked returns a shallow copy of the current state under lock,
// for read-only access from reqresp handlers.
func (n *Node) snapshotLocked() consensus.NodeState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// statusHandler adapts Node to reqresp.Handler.
type statusHandler struct{ n *Node }

func (h *statusHandler) GetStatus() reqresp.Status {
	s := h.n.snapshotLocked()
	head := consensus.GetHead(s, h.n.col)
	headBlock := s.ViewBlocks[head]
	finalized := consensus.HighestFinalizedCheckpoint(s, h.n.col)
	return reqresp.Status{
		FinalizedHash: finalized.BlockHash,
		FinalizedSlot: finalized.BlockSlot,
		HeadHash:      head,
		HeadSlot:      headBlock.Slot,
	}
}

func (h *statusHandler) HandleBlocksByRoot(req *reqresp.BlocksByRootRequest) []types.Block {
	s := h.n.snapshotLocked()
	var out []types.Block
	for _, root := range req.Roots {
		if b, ok := s.ViewBlocks[root]; ok {
			out = append(out, b)
		}
	}
	return out
}
