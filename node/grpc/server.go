package grpc

import (
	"fmt"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"github.com/molalign8468/full-stack-nft-marketplace/node"
	"github.com/molalign8468/full-stack-nft-marketplace/node/authn"
	"github.com/molalign8468/full-stack-nft-marketplace/node/authninternal"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/deploy"
	"github.com/molalign8468/full-stack-nft-marketplace/node/helper"
	"github.com/molalign8468/full-stack-nft-marketplace/node/stream"
	"google.golang.org/grpc"
)

// ServerOption customizes the servers built by NewServer.
type ServerOption func(*serverOptions)

type serverOptions struct {
	clock authninternal.Clock
}

// WithClock replaces the clock used for challenges and session tokens.
func WithClock(clock authninternal.Clock) ServerOption {
	return func(o *serverOptions) {
		o.clock = clock
	}
}

// NewServer builds the node's gRPC server: authentication and ledger services behind the
// logging, metrics, error, authentication, validation and ledger session interceptors.
func NewServer(config *node.Config, engine *chain.Engine, d *deploy.Deployment, router *stream.EventRouter, opts ...ServerOption) (*grpc.Server, error) {
	options := &serverOptions{}
	for _, opt := range opts {
		opt(options)
	}

	sessionTokenCreatorVerifier, err := authninternal.NewSessionTokenCreatorVerifier(config.AuthnSecret, config.Network.ChainID(), options.clock)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}
	authnServer, err := NewAuthnServer(AuthnServerConfig{
		IdentityPrivateKey: config.IdentityPrivateKey,
		ChainID:            config.Network.ChainID(),
		ChallengeTimeout:   config.ChallengeTimeout,
		SessionDuration:    config.SessionDuration,
		Clock:              options.clock,
	}, sessionTokenCreatorVerifier)
	if err != nil {
		return nil, fmt.Errorf("failed to create authn server: %w", err)
	}

	server := grpc.NewServer(
		grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
			helper.LogInterceptor,
			helper.MetricsInterceptor,
			ErrorInterceptor(),
			authn.NewAuthnInterceptor(sessionTokenCreatorVerifier).AuthnInterceptor,
			ValidationInterceptor(),
			chain.SessionMiddleware(engine),
		)),
		grpc.StreamInterceptor(grpc_middleware.ChainStreamServer(
			helper.StreamLogInterceptor,
			StreamErrorInterceptor(),
			StreamValidationInterceptor(),
		)),
	)
	api.RegisterAuthnServiceServer(server, authnServer)
	api.RegisterLedgerServiceServer(server, NewLedgerServer(d, router))
	return server, nil
}
