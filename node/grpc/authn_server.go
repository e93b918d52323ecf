package grpc

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"github.com/molalign8468/full-stack-nft-marketplace/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/authninternal"
)

const (
	currentChallengeVersion  = 1
	currentProtectionVersion = 1
	challengeSecretConstant  = "MARKETPLACE_CHALLENGE_SECRET_v1"
)

// AuthnServerConfig configures the challenge-response login of ledger accounts.
type AuthnServerConfig struct {
	// IdentityPrivateKey is the node identity the challenge MAC key is derived from.
	IdentityPrivateKey []byte
	// ChainID is stamped into every challenge. Challenges for another chain are refused.
	ChainID          uint64
	ChallengeTimeout time.Duration
	SessionDuration  time.Duration
	// Clock defaults to the real clock.
	Clock authninternal.Clock
}

// AuthnServer logs ledger accounts in: a challenge bound to the chain and to the account
// address of a key is signed with that key and exchanged for a session token.
type AuthnServer struct {
	api.UnimplementedAuthnServiceServer
	config AuthnServerConfig
	macKey []byte
	tokens *authninternal.SessionTokenCreatorVerifier
	clock  authninternal.Clock
}

var (
	ErrUnsupportedChallengeVersion           = errors.New("unsupported challenge version")
	ErrUnsupportedChallengeProtectionVersion = errors.New("unsupported challenge protection version")
	ErrChallengeExpired                      = errors.New("challenge expired")
	// ErrChainIDMismatch is returned for a challenge issued for another chain.
	ErrChainIDMismatch = errors.New("challenge issued for another chain")
	// ErrPublicKeyMismatch is returned when the request key is not the challenged key.
	ErrPublicKeyMismatch = errors.New("public key does not match challenge")
	// ErrAddressMismatch is returned when the challenge address is not the account of the key.
	ErrAddressMismatch        = errors.New("address does not match public key")
	ErrInvalidChallengeHmac   = errors.New("invalid challenge hmac")
	ErrInvalidPublicKeyFormat = errors.New("invalid public key format")
	ErrInvalidSignature       = errors.New("invalid client signature")
	ErrInvalidRequest         = errors.New("invalid request")
	ErrMalformedSignature     = errors.New("malformed signature")
)

// NewAuthnServer creates a new AuthnServer issuing sessions through tokens.
func NewAuthnServer(config AuthnServerConfig, tokens *authninternal.SessionTokenCreatorVerifier) (*AuthnServer, error) {
	if len(config.IdentityPrivateKey) == 0 {
		return nil, errors.New("identity private key is required")
	}
	if config.ChainID == 0 {
		return nil, errors.New("chain id is required")
	}
	if config.Clock == nil {
		config.Clock = authninternal.RealClock{}
	}

	h := sha256.New()
	h.Write(config.IdentityPrivateKey)
	h.Write([]byte(challengeSecretConstant))

	return &AuthnServer{
		config: config,
		macKey: h.Sum(nil),
		tokens: tokens,
		clock:  config.Clock,
	}, nil
}

// GetChallenge issues a challenge for the account of req.PublicKey on this chain.
func (s *AuthnServer) GetChallenge(_ context.Context, req *api.GetChallengeRequest) (*api.GetChallengeResponse, error) {
	key, err := parsePublicKey(req.PublicKey)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	challenge := &api.Challenge{
		Version:   currentChallengeVersion,
		ChainID:   s.config.ChainID,
		Address:   common.AddressFromKey(key).Hex(),
		Timestamp: s.clock.Now().Unix(),
		Nonce:     nonce,
		PublicKey: req.PublicKey,
	}
	mac, err := s.challengeMac(challenge)
	if err != nil {
		return nil, err
	}

	return &api.GetChallengeResponse{
		ProtectedChallenge: &api.ProtectedChallenge{
			Version:    currentProtectionVersion,
			Challenge:  challenge,
			ServerHmac: mac,
		},
	}, nil
}

// VerifyChallenge checks the signed challenge and opens a session for its account.
func (s *AuthnServer) VerifyChallenge(_ context.Context, req *api.VerifyChallengeRequest) (*api.VerifyChallengeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	key, err := s.checkChallenge(req)
	if err != nil {
		return nil, fmt.Errorf("challenge validation failed: %w", err)
	}

	challenge := req.ProtectedChallenge.Challenge
	mac, err := s.challengeMac(challenge)
	if err != nil {
		return nil, err
	}
	if !hmac.Equal(mac, req.ProtectedChallenge.ServerHmac) {
		return nil, ErrInvalidChallengeHmac
	}

	sig, err := ecdsa.ParseDERSignature(req.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	payload, err := challenge.SigningBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode challenge: %w", err)
	}
	hash := sha256.Sum256(payload)
	if !sig.Verify(hash[:], key) {
		return nil, ErrInvalidSignature
	}

	result, err := s.tokens.CreateToken(req.PublicKey, s.config.SessionDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	return &api.VerifyChallengeResponse{
		SessionToken:        result.Token,
		ExpirationTimestamp: result.ExpirationTimestamp,
		Address:             challenge.Address,
	}, nil
}

// checkChallenge checks everything about the challenge that does not need the MAC or the
// signature and returns the challenged key.
func (s *AuthnServer) checkChallenge(req *api.VerifyChallengeRequest) (*secp256k1.PublicKey, error) {
	challenge := req.ProtectedChallenge.Challenge

	if challenge.Version != currentChallengeVersion {
		return nil, fmt.Errorf("%w: got version %d, want version %d",
			ErrUnsupportedChallengeVersion, challenge.Version, currentChallengeVersion)
	}
	if req.ProtectedChallenge.Version != currentProtectionVersion {
		return nil, fmt.Errorf("%w: got version %d, want version %d",
			ErrUnsupportedChallengeProtectionVersion, req.ProtectedChallenge.Version, currentProtectionVersion)
	}
	if challenge.ChainID != s.config.ChainID {
		return nil, fmt.Errorf("%w: got chain %d, want chain %d", ErrChainIDMismatch, challenge.ChainID, s.config.ChainID)
	}

	age := s.clock.Now().Sub(time.Unix(challenge.Timestamp, 0))
	if age > s.config.ChallengeTimeout {
		return nil, fmt.Errorf("%w: issued %s ago", ErrChallengeExpired, age.Truncate(time.Second))
	}

	if !bytes.Equal(req.PublicKey, challenge.PublicKey) {
		return nil, ErrPublicKeyMismatch
	}
	key, err := parsePublicKey(req.PublicKey)
	if err != nil {
		return nil, err
	}
	if address := common.AddressFromKey(key).Hex(); !common.SameAddress(address, challenge.Address) {
		return nil, fmt.Errorf("%w: key controls %s, challenge names %s", ErrAddressMismatch, address, challenge.Address)
	}
	return key, nil
}

func (s *AuthnServer) challengeMac(challenge *api.Challenge) ([]byte, error) {
	payload, err := challenge.SigningBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode challenge: %w", err)
	}
	h := hmac.New(sha256.New, s.macKey)
	h.Write(payload)
	return h.Sum(nil), nil
}

func parsePublicKey(raw []byte) (*secp256k1.PublicKey, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: public key cannot be empty", ErrInvalidPublicKeyFormat)
	}
	key, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKeyFormat, err)
	}
	return key, nil
}
