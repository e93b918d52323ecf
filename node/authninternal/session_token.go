// Package authninternal creates and verifies the session tokens handed out after a
// successful challenge-response login.
package authninternal

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/molalign8468/full-stack-nft-marketplace/api"
)

const (
	currentSessionVersion    = 1
	currentProtectionVersion = 1
	sessionSecretConstant    = "SESSION_TOKEN_SECRET_v1"
)

var (
	// ErrTokenExpired is returned when the session token has expired.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidTokenHmac is returned when the token hmac does not match its session.
	ErrInvalidTokenHmac = errors.New("invalid token hmac")
	// ErrInvalidTokenEncoding is returned when the token cannot be decoded.
	ErrInvalidTokenEncoding = errors.New("invalid token encoding")
	// ErrUnsupportedProtectionVersion is returned when the token protection version is unknown.
	ErrUnsupportedProtectionVersion = errors.New("unsupported protection version")
	// ErrUnsupportedSessionVersion is returned when the session version is unknown.
	ErrUnsupportedSessionVersion = errors.New("unsupported session version")
	// ErrTokenChainMismatch is returned when the token was issued for another chain.
	ErrTokenChainMismatch = errors.New("token issued for another chain")
)

// SessionTokenCreatorVerifier issues HMAC protected session tokens and checks them.
// Tokens carry the chain id they were issued for and are only accepted on that chain.
type SessionTokenCreatorVerifier struct {
	hmacKey []byte
	chainID uint64
	clock   Clock
}

// TokenCreationResult is a freshly issued token.
type TokenCreationResult struct {
	Token               string
	ExpirationTimestamp int64
}

// NewSessionTokenCreatorVerifier derives the token key from the node identity secret.
// If the clock is nil, it will use the real clock.
func NewSessionTokenCreatorVerifier(identitySecret []byte, chainID uint64, clock Clock) (*SessionTokenCreatorVerifier, error) {
	if len(identitySecret) == 0 {
		return nil, errors.New("identity secret is required")
	}
	if clock == nil {
		clock = RealClock{}
	}
	h := sha256.New()
	h.Write(identitySecret)
	h.Write([]byte(sessionSecretConstant))
	return &SessionTokenCreatorVerifier{
		hmacKey: h.Sum(nil),
		chainID: chainID,
		clock:   clock,
	}, nil
}

// CreateToken issues a token for publicKey that is valid for duration.
func (s *SessionTokenCreatorVerifier) CreateToken(publicKey []byte, duration time.Duration) (*TokenCreationResult, error) {
	if len(publicKey) == 0 {
		return nil, errors.New("public key is required")
	}
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	session := &api.Session{
		Version:             currentSessionVersion,
		ChainID:             s.chainID,
		ExpirationTimestamp: s.clock.Now().Add(duration).Unix(),
		Nonce:               nonce,
		PublicKey:           publicKey,
	}
	mac, err := s.computeHmac(session)
	if err != nil {
		return nil, err
	}
	protected, err := json.Marshal(&api.ProtectedSession{
		Version: currentProtectionVersion,
		Session: session,
		Hmac:    mac,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return &TokenCreationResult{
		Token:               base64.URLEncoding.EncodeToString(protected),
		ExpirationTimestamp: session.ExpirationTimestamp,
	}, nil
}

// VerifyToken checks the token and returns its session.
func (s *SessionTokenCreatorVerifier) VerifyToken(token string) (*api.Session, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTokenEncoding, err)
	}
	protected := &api.ProtectedSession{}
	if err := json.Unmarshal(raw, protected); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTokenEncoding, err)
	}
	if protected.Version != currentProtectionVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedProtectionVersion, protected.Version, currentProtectionVersion)
	}
	session := protected.Session
	if session == nil {
		return nil, fmt.Errorf("%w: missing session", ErrInvalidTokenEncoding)
	}
	if session.Version != currentSessionVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedSessionVersion, session.Version, currentSessionVersion)
	}
	mac, err := s.computeHmac(session)
	if err != nil {
		return nil, err
	}
	if !hmac.Equal(mac, protected.Hmac) {
		return nil, ErrInvalidTokenHmac
	}
	if session.ChainID != s.chainID {
		return nil, fmt.Errorf("%w: got chain %d, want chain %d", ErrTokenChainMismatch, session.ChainID, s.chainID)
	}
	if s.clock.Now().Unix() > session.ExpirationTimestamp {
		return nil, ErrTokenExpired
	}
	return session, nil
}

func (s *SessionTokenCreatorVerifier) computeHmac(session *api.Session) ([]byte, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	h := hmac.New(sha256.New, s.hmacKey)
	h.Write(payload)
	return h.Sum(nil), nil
}
