// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the lazymint CLI configuration
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/blinklabs-io/lazymint"
	"github.com/blinklabs-io/lazymint/common"
	"github.com/blinklabs-io/lazymint/voucher"
	"gopkg.in/yaml.v3"
)

const (
	DefaultNetwork = "testnet"

	// CustomNetwork names a network selected by a magic that no predefined network uses
	CustomNetwork = "custom"
)

type Config struct {
	Network string `yaml:"network"`
	// NetworkMagic overrides the magic of the named network when non-zero
	NetworkMagic  uint32 `yaml:"networkMagic"`
	Ledger        string `yaml:"ledger"`
	DomainName    string `yaml:"domainName"`
	DomainVersion string `yaml:"domainVersion"`
	KeyFile       string `yaml:"keyFile"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Network:       DefaultNetwork,
		DomainName:    voucher.DefaultDomainName,
		DomainVersion: voucher.DefaultDomainVersion,
	}
}

// Load reads the configuration from the given path. An empty path or a missing file
// yields the default configuration
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Network == "" {
		cfg.Network = DefaultNetwork
	}
	if cfg.DomainName == "" {
		cfg.DomainName = voucher.DefaultDomainName
	}
	if cfg.DomainVersion == "" {
		cfg.DomainVersion = voucher.DefaultDomainVersion
	}
	return cfg, nil
}

// ResolveNetwork returns the configured network. An explicit network magic takes precedence
// over the network name and selects the predefined network with that magic, or a custom one
func (c *Config) ResolveNetwork() (lazymint.Network, error) {
	if c.NetworkMagic != 0 {
		network := lazymint.NetworkByNetworkMagic(c.NetworkMagic)
		if network == lazymint.NetworkInvalid {
			network = lazymint.Network{
				Name:         CustomNetwork,
				NetworkMagic: c.NetworkMagic,
			}
		}
		return network, nil
	}
	network := lazymint.NetworkByName(c.Network)
	if network == lazymint.NetworkInvalid {
		return lazymint.NetworkInvalid, fmt.Errorf("invalid network specified: %s", c.Network)
	}
	return network, nil
}

// Domain returns the voucher domain described by the configuration
func (c *Config) Domain() (voucher.Domain, error) {
	network, err := c.ResolveNetwork()
	if err != nil {
		return voucher.Domain{}, err
	}
	if c.Ledger == "" {
		return voucher.Domain{}, errors.New("no ledger address configured")
	}
	ledger, err := common.NewAddress(c.Ledger)
	if err != nil {
		return voucher.Domain{}, fmt.Errorf("invalid ledger address: %w", err)
	}
	if ledger.IsZero() {
		return voucher.Domain{}, errors.New("ledger address cannot be the zero address")
	}
	domain := network.Domain(ledger)
	domain.Name = c.DomainName
	domain.Version = c.DomainVersion
	return domain, nil
}
