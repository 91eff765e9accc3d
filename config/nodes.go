// Package config loads the YAML configuration files a node needs to
// start: bootnode addresses and the validator/genesis parameter set.
// Grounded on the teacher's config/nodes.go loader.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// bootnodesFile is the legacy structured form some deployments still
// ship; newer ones are a plain YAML list of multiaddr strings.
type bootnodesFile struct {
	Bootnodes []string `yaml:"bootnodes"`
}

// LoadBootnodes reads a bootnode list from path, accepting either a
// top-level `bootnodes:` key or a bare YAML list of multiaddr strings.
func LoadBootnodes(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read bootnodes file: %w", err)
	}

	var wrapped bootnodesFile
	if err := yaml.Unmarshal(data, &wrapped); err == nil && len(wrapped.Bootnodes) > 0 {
		return wrapped.Bootnodes, nil
	}

	var plain []string
	if err := yaml.Unmarshal(data, &plain); err != nil {
		return nil, fmt.Errorf("config: parse bootnodes file: %w", err)
	}
	return plain, nil
}
