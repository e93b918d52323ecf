package wallet

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/common"
	"google.golang.org/grpc"
)

// Config is the configuration for the wallet.
type Config struct {
	// Network is the network the node serves.
	Network common.Network
	// NodeAddress is the gRPC address of the marketplace node.
	NodeAddress string
	// CertPath is the node's TLS certificate. Plaintext is used when it is nil.
	CertPath *string
	// IdentityPrivateKey is the identity private key of the wallet.
	IdentityPrivateKey secp256k1.PrivateKey
	// DialOptions are appended to the options of every connection to the node.
	DialOptions []grpc.DialOption
}

// IdentityPublicKey returns the identity public key.
func (c *Config) IdentityPublicKey() []byte {
	return c.IdentityPrivateKey.PubKey().SerializeCompressed()
}

// Address returns the ledger account controlled by the identity key.
func (c *Config) Address() ethcommon.Address {
	return common.AddressFromKey(c.IdentityPrivateKey.PubKey())
}

func (c *Config) connect() (*grpc.ClientConn, error) {
	return common.NewGRPCConnection(c.NodeAddress, c.CertPath, nil, c.DialOptions...)
}
