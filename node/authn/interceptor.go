package authn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/common"
	"github.com/molalign8468/full-stack-nft-marketplace/common/logging"
	"github.com/molalign8468/full-stack-nft-marketplace/node/authninternal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	authnContextKey     = contextKey("authn_context")
	authorizationHeader = "authorization"
)

// ErrNoSession is returned when a call that needs a caller carries no session.
var ErrNoSession = errors.New("no authenticated session")

// AuthnContext holds authentication information including the session and any error
type AuthnContext struct { //nolint:revive
	Session *Session
	Error   error
}

// Session represents the authenticated caller of a request.
type Session struct {
	identityPublicKey      *secp256k1.PublicKey
	identityPublicKeyBytes []byte
	address                ethcommon.Address
	expirationTimestamp    int64
}

// NewSession builds a session for an already verified public key.
func NewSession(publicKey *secp256k1.PublicKey, expirationTimestamp int64) *Session {
	return &Session{
		identityPublicKey:      publicKey,
		identityPublicKeyBytes: publicKey.SerializeCompressed(),
		address:                common.AddressFromKey(publicKey),
		expirationTimestamp:    expirationTimestamp,
	}
}

// IdentityPublicKey returns the public key
func (s *Session) IdentityPublicKey() *secp256k1.PublicKey {
	return s.identityPublicKey
}

// IdentityPublicKeyBytes returns the public key bytes
func (s *Session) IdentityPublicKeyBytes() []byte {
	return s.identityPublicKeyBytes
}

// Address returns the ledger account the session acts for.
func (s *Session) Address() ethcommon.Address {
	return s.address
}

// ExpirationTimestamp returns the expiration of the session
func (s *Session) ExpirationTimestamp() int64 {
	return s.expirationTimestamp
}

// AuthnInterceptor is an interceptor that validates session tokens and adds session info to the context.
type AuthnInterceptor struct { //nolint:revive
	sessionTokenCreatorVerifier *authninternal.SessionTokenCreatorVerifier
}

// NewAuthnInterceptor creates a new AuthnInterceptor
func NewAuthnInterceptor(sessionTokenCreatorVerifier *authninternal.SessionTokenCreatorVerifier) *AuthnInterceptor {
	return &AuthnInterceptor{
		sessionTokenCreatorVerifier: sessionTokenCreatorVerifier,
	}
}

// AuthnInterceptor validates the bearer token of a call and records the outcome in the
// context. Calls without a valid session still reach the handler; handlers that need a
// caller reject them through GetSessionFromContext.
func (i *AuthnInterceptor) AuthnInterceptor(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	return handler(i.authenticate(ctx), req)
}

func (i *AuthnInterceptor) authenticate(ctx context.Context) context.Context {
	logger := logging.GetLoggerFromContext(ctx)
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return withAuthnError(ctx, fmt.Errorf("no metadata provided"))
	}

	// Tokens are typically sent in "authorization" header
	tokens := md.Get(authorizationHeader)
	if len(tokens) == 0 {
		return withAuthnError(ctx, ErrNoSession)
	}

	// Usually follows "Bearer <token>" format
	token := strings.TrimPrefix(tokens[0], "Bearer ")

	sessionInfo, err := i.sessionTokenCreatorVerifier.VerifyToken(token)
	if err != nil {
		wrappedErr := fmt.Errorf("failed to verify token: %w", err)
		logger.Info("Authentication error", "error", wrappedErr)
		return withAuthnError(ctx, wrappedErr)
	}

	key, err := secp256k1.ParsePubKey(sessionInfo.PublicKey)
	if err != nil {
		wrappedErr := fmt.Errorf("failed to parse public key: %w", err)
		logger.Info("Authentication error", "error", wrappedErr)
		return withAuthnError(ctx, wrappedErr)
	}

	return ContextWithSession(ctx, NewSession(key, sessionInfo.ExpirationTimestamp))
}

func withAuthnError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, authnContextKey, &AuthnContext{Error: err})
}

// ContextWithSession attaches an authenticated session to ctx.
func ContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, authnContextKey, &AuthnContext{Session: session})
}

// GetSessionFromContext retrieves the session and any error from the context
func GetSessionFromContext(ctx context.Context) (*Session, error) {
	val := ctx.Value(authnContextKey)
	if val == nil {
		return nil, ErrNoSession
	}

	authnCtx, ok := val.(*AuthnContext)
	if !ok {
		return nil, fmt.Errorf("invalid authentication context type")
	}

	if authnCtx.Error != nil {
		return nil, authnCtx.Error
	}

	return authnCtx.Session, nil
}
