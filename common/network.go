package common

import (
	"fmt"
	"strings"
)

// Network identifies the chain a node or wallet operates on.
type Network int

const (
	Unspecified Network = iota
	Hardhat
	Holesky
)

// ChainID returns the EIP-155 chain id of the network.
func (n Network) ChainID() uint64 {
	switch n {
	case Hardhat:
		return 31337
	case Holesky:
		return 17000
	default:
		return 0
	}
}

func (n Network) String() string {
	switch n {
	case Hardhat:
		return "hardhat"
	case Holesky:
		return "holesky"
	default:
		return "unspecified"
	}
}

// NetworkFromString parses a network name.
func NetworkFromString(s string) (Network, error) {
	switch strings.ToLower(s) {
	case "hardhat", "localhost", "":
		return Hardhat, nil
	case "holesky":
		return Holesky, nil
	default:
		return Unspecified, fmt.Errorf("unknown network: %s", s)
	}
}
