package testutil

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/molalign8468/full-stack-nft-marketplace/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node"
	"github.com/molalign8468/full-stack-nft-marketplace/node/authninternal"
	"github.com/molalign8468/full-stack-nft-marketplace/node/collection"
	nodegrpc "github.com/molalign8468/full-stack-nft-marketplace/node/grpc"
	"github.com/molalign8468/full-stack-nft-marketplace/node/stream"
	"github.com/molalign8468/full-stack-nft-marketplace/wallet"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

const bufferSize = 1 << 20

// TestNode is a marketplace node served over an in-memory listener.
type TestNode struct {
	*Marketplace
	Config *node.Config
	Router *stream.EventRouter
	Clock  *authninternal.TestClock

	listener *bufconn.Listener
}

// NewTestNode deploys a marketplace with params and serves it over gRPC until the test ends.
func NewTestNode(t testing.TB, params collection.Params) *TestNode {
	t.Helper()
	m := NewMarketplace(t, params)

	config := TestConfig(t)
	config.Deployer = m.Owner.Address

	router := stream.NewEventRouter(stream.DefaultBufferSize)
	router.Attach(m.Engine)
	clock := authninternal.NewTestClock(time.Now())

	server, err := nodegrpc.NewServer(config, m.Engine, m.Deployment, router, nodegrpc.WithClock(clock))
	require.NoError(t, err)

	listener := bufconn.Listen(bufferSize)
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)

	return &TestNode{
		Marketplace: m,
		Config:      config,
		Router:      router,
		Clock:       clock,
		listener:    listener,
	}
}

// DialOptions route connections to the in-memory listener. Use them with the address
// "passthrough:///bufnet".
func (n *TestNode) DialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return n.listener.DialContext(ctx)
		}),
	}
}

// Conn opens a client connection to the node that is closed when the test ends.
func (n *TestNode) Conn(t testing.TB) *grpc.ClientConn {
	t.Helper()
	conn, err := common.NewGRPCConnection("passthrough:///bufnet", nil, nil, n.DialOptions()...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

// WalletConfig returns a wallet configuration acting as account against the node.
func (n *TestNode) WalletConfig(account *Account) *wallet.Config {
	return &wallet.Config{
		Network:            n.Config.Network,
		NodeAddress:        "passthrough:///bufnet",
		IdentityPrivateKey: *account.Key,
		DialOptions:        n.DialOptions(),
	}
}

// Authenticate signs in as account and returns a context carrying its session token.
func (n *TestNode) Authenticate(t testing.TB, account *Account) context.Context {
	t.Helper()
	ctx := context.Background()
	token, err := wallet.AuthenticateWithServer(ctx, n.WalletConfig(account))
	require.NoError(t, err)
	return wallet.ContextWithToken(ctx, token)
}
