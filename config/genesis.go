package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ssflabs/gean/types"
)

// Genesis is the YAML-serializable description of a network's starting
// parameters: the protocol configuration and the initial validator set,
// keyed by hex-encoded NodeIdentity.
type Genesis struct {
	GenesisTime time.Time         `yaml:"genesis_time"`
	DeltaTicks  uint64            `yaml:"delta_ticks"`
	EtaSlots    uint64            `yaml:"eta_slots"`
	K           uint64            `yaml:"k"`
	Validators  map[string]uint64 `yaml:"validators"`
}

// LoadGenesis reads and parses a genesis file from path.
func LoadGenesis(path string) (Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("config: read genesis file: %w", err)
	}
	var g Genesis
	if err := yaml.Unmarshal(data, &g); err != nil {
		return Genesis{}, fmt.Errorf("config: parse genesis file: %w", err)
	}
	return g, nil
}

// ValidatorBalances decodes g.Validators into the core's balance map,
// rejecting malformed hex identities.
func (g Genesis) ValidatorBalances() (types.ValidatorBalances, error) {
	out := make(types.ValidatorBalances, len(g.Validators))
	for hexID, weight := range g.Validators {
		raw, err := hex.DecodeString(hexID)
		if err != nil {
			return nil, fmt.Errorf("config: validator id %q is not hex: %w", hexID, err)
		}
		if len(raw) != len(types.NodeIdentity{}) {
			return nil, fmt.Errorf("config: validator id %q has wrong length %d", hexID, len(raw))
		}
		var id types.NodeIdentity
		copy(id[:], raw)
		out[id] = weight
	}
	return out, nil
}
