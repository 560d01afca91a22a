package network

import (
	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-activator/env"
)

// Network is a ledger network the activator can send transactions on.
type Network string

const (
	// MainNetwork is the production network.
	MainNetwork Network = "mainnet"

	// TestNetwork is the public test network.
	TestNetwork Network = "testnet"
)

const (
	mainNodeURL = "https://europe.signum.network"
	testNodeURL = "https://europe3.testnet.signum.network"
)

// IsValid returns true if network is known.
func (n Network) IsValid() bool {
	switch n {
	case MainNetwork, TestNetwork:
		return true
	default:
		return false
	}
}

// AddressPrefix returns the prefix used for human readable addresses.
func (n Network) AddressPrefix() string {
	if n == TestNetwork {
		return "TS"
	}
	return "S"
}

// DefaultNodeURL returns a public node for the network, used when no node is
// configured.
func (n Network) DefaultNodeURL() string {
	if n == TestNetwork {
		return testNodeURL
	}
	return mainNodeURL
}

// Parse parses a network name. An empty name selects the network matching
// the process environment.
func Parse(s string) (Network, error) {
	if s == "" {
		return FromEnvironment()
	}

	n := Network(s)
	if !n.IsValid() {
		return "", errors.Errorf("unknown network %q", s)
	}
	return n, nil
}

// FromEnvironment maps the process environment to a network: prod runs on
// mainnet, everything else on testnet.
func FromEnvironment() (Network, error) {
	e, err := env.FromEnvVariable()
	if err != nil {
		return "", err
	}

	if e == env.EnvironmentProd {
		return MainNetwork, nil
	}
	return TestNetwork, nil
}
