// Command gean3sf runs a single 3-Slot Finality consensus node. Grounded
// on the teacher's cmd/gean/main.go.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/ssflabs/gean/config"
	"github.com/ssflabs/gean/crypto"
	"github.com/ssflabs/gean/node"
	"github.com/ssflabs/gean/observability/logging"
	"github.com/ssflabs/gean/storage/pebble"
)

func main() {
	genesisPath := flag.String("genesis", "genesis.yaml", "path to the genesis configuration file")
	bootnodesPath := flag.String("bootnodes", "", "path to a bootnodes file (optional)")
	listenAddr := flag.String("listen", "/ip4/0.0.0.0/tcp/9000", "libp2p listen multiaddr")
	dataDir := flag.String("data-dir", "", "on-disk pebble data directory (empty = in-memory only)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logging.Init(*logLevel)
	logger := logging.NewComponentLogger(logging.CompNode)

	genesis, err := config.LoadGenesis(*genesisPath)
	if err != nil {
		logger.Error("failed to load genesis file", "error", err)
		os.Exit(1)
	}

	var bootnodes []string
	if *bootnodesPath != "" {
		bootnodes, err = config.LoadBootnodes(*bootnodesPath)
		if err != nil {
			logger.Error("failed to load bootnodes file", "error", err)
			os.Exit(1)
		}
	}

	identity, err := randomKeyPair()
	if err != nil {
		logger.Error("failed to generate signing key", "error", err)
		os.Exit(1)
	}

	peerKeys, err := peerPublicKeys(genesis)
	if err != nil {
		logger.Error("failed to parse validator public keys", "error", err)
		os.Exit(1)
	}

	cfg := node.Config{
		Genesis:    genesis,
		Identity:   identity,
		PeerKeys:   peerKeys,
		ListenAddr: *listenAddr,
		Bootnodes:  bootnodes,
	}

	if *dataDir != "" {
		store, err := pebble.Open(*dataDir)
		if err != nil {
			logger.Error("failed to open pebble store", "error", err, "dir", *dataDir)
			os.Exit(1)
		}
		cfg.Store = store
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n, err := node.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to construct node", "error", err)
		os.Exit(1)
	}

	n.Start()
	logger.Info("node started", "identity", identity.Identity.String(), "listen", *listenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	n.Stop()
}

// randomKeyPair generates a fresh signing key. Production deployments
// should instead load a persisted key; this command-line entry point has
// no such flag because each devnet run is expected to be ephemeral.
func randomKeyPair() (crypto.KeyPair, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return crypto.KeyPair{}, err
	}
	return crypto.GenerateKeyPair(seed), nil
}

// peerPublicKeys is a placeholder: the genesis validator set in
// config.Genesis keys validators by NodeIdentity, not by raw public key,
// since identities are derived from compressed public keys. A real
// deployment's genesis file carries the public keys themselves;
// Non-goals (spec.md) exclude a full validator-registry bootstrap
// format, so this returns none and relies on each node learning peer
// keys out of band (e.g. from a shared devnet config extension).
func peerPublicKeys(_ config.Genesis) ([]*secp256k1.PublicKey, error) {
	return nil, nil
}
