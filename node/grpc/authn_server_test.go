package grpc_test

import (
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"github.com/molalign8468/full-stack-nft-marketplace/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/authninternal"
	"github.com/molalign8468/full-stack-nft-marketplace/node/grpc"
)

var testIdentityKey, _ = secp256k1.GeneratePrivateKey()
var testIdentityKeyBytes = testIdentityKey.Serialize()

const (
	testChallengeTimeout = time.Minute
	testSessionDuration  = 24 * time.Hour
)

type testServerConfig struct {
	clock   authninternal.Clock
	network common.Network
}

// newTestServerAndTokenVerifier creates an AuthnServer and SessionTokenCreatorVerifier with default test configuration
func newTestServerAndTokenVerifier(
	t *testing.T,
	opts ...func(*testServerConfig),
) (*grpc.AuthnServer, *authninternal.SessionTokenCreatorVerifier) {
	cfg := &testServerConfig{
		clock:   authninternal.RealClock{},
		network: common.Hardhat,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	tokenVerifier, err := authninternal.NewSessionTokenCreatorVerifier(testIdentityKeyBytes, cfg.network.ChainID(), cfg.clock)
	require.NoError(t, err)

	config := grpc.AuthnServerConfig{
		IdentityPrivateKey: testIdentityKeyBytes,
		ChainID:            cfg.network.ChainID(),
		ChallengeTimeout:   testChallengeTimeout,
		SessionDuration:    testSessionDuration,
		Clock:              cfg.clock,
	}

	server, err := grpc.NewAuthnServer(config, tokenVerifier)
	require.NoError(t, err)

	return server, tokenVerifier
}

func withClock(clock authninternal.Clock) func(*testServerConfig) {
	return func(cfg *testServerConfig) {
		cfg.clock = clock
	}
}

func withNetwork(network common.Network) func(*testServerConfig) {
	return func(cfg *testServerConfig) {
		cfg.network = network
	}
}

func TestAuthnServer_GetChallenge_InvalidPublicKey(t *testing.T) {
	tests := []struct {
		name   string
		pubkey []byte
	}{
		{
			name:   "empty pubkey",
			pubkey: []byte{},
		},
		{
			name:   "malformed pubkey",
			pubkey: []byte{0x02, 0x03},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServerAndTokenVerifier(t)

			_, err := server.GetChallenge(context.Background(), &api.GetChallengeRequest{
				PublicKey: tt.pubkey,
			})

			assert.ErrorIs(t, err, grpc.ErrInvalidPublicKeyFormat)
		})
	}
}

func TestAuthnServer_VerifyChallenge_ValidToken(t *testing.T) {
	server, tokenVerifier := newTestServerAndTokenVerifier(t)
	privKey, pubKey := createTestKeyPair()

	challengeResp, signature := createSignedChallenge(t, server, privKey)
	verifyResp := verifyChallenge(t, server, challengeResp, pubKey, signature)

	assert.NotEmpty(t, verifyResp.SessionToken)
	assert.Equal(t, common.AddressFromKey(pubKey).Hex(), verifyResp.Address)

	challenge := challengeResp.ProtectedChallenge.Challenge
	assert.Equal(t, common.Hardhat.ChainID(), challenge.ChainID)
	assert.Equal(t, verifyResp.Address, challenge.Address)

	session, err := tokenVerifier.VerifyToken(verifyResp.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, pubKey.SerializeCompressed(), session.PublicKey)
	assert.Equal(t, common.Hardhat.ChainID(), session.ChainID)
	assert.Equal(t, verifyResp.ExpirationTimestamp, session.ExpirationTimestamp)
}

func TestAuthnServer_VerifyChallenge_OtherChain(t *testing.T) {
	hardhat, hardhatTokens := newTestServerAndTokenVerifier(t)
	holesky, holeskyTokens := newTestServerAndTokenVerifier(t, withNetwork(common.Holesky))
	privKey, pubKey := createTestKeyPair()

	t.Run("challenge", func(t *testing.T) {
		challengeResp, signature := createSignedChallenge(t, hardhat, privKey)

		resp, err := holesky.VerifyChallenge(context.Background(), &api.VerifyChallengeRequest{
			ProtectedChallenge: challengeResp.ProtectedChallenge,
			Signature:          signature,
			PublicKey:          pubKey.SerializeCompressed(),
		})

		assert.ErrorIs(t, err, grpc.ErrChainIDMismatch)
		assert.Nil(t, resp)
	})

	t.Run("session", func(t *testing.T) {
		challengeResp, signature := createSignedChallenge(t, hardhat, privKey)
		resp := verifyChallenge(t, hardhat, challengeResp, pubKey, signature)

		_, err := hardhatTokens.VerifyToken(resp.SessionToken)
		require.NoError(t, err)
		_, err = holeskyTokens.VerifyToken(resp.SessionToken)
		assert.ErrorIs(t, err, authninternal.ErrTokenChainMismatch)
	})
}

func TestAuthnServer_VerifyChallenge_MissingFields(t *testing.T) {
	server, _ := newTestServerAndTokenVerifier(t)
	privKey, pubKey := createTestKeyPair()
	challengeResp, signature := createSignedChallenge(t, server, privKey)

	tests := []struct {
		name string
		req  *api.VerifyChallengeRequest
	}{
		{
			name: "protected challenge",
			req:  &api.VerifyChallengeRequest{Signature: signature, PublicKey: pubKey.SerializeCompressed()},
		},
		{
			name: "challenge",
			req: &api.VerifyChallengeRequest{
				ProtectedChallenge: &api.ProtectedChallenge{Version: 1},
				Signature:          signature,
				PublicKey:          pubKey.SerializeCompressed(),
			},
		},
		{
			name: "signature",
			req: &api.VerifyChallengeRequest{
				ProtectedChallenge: challengeResp.ProtectedChallenge,
				PublicKey:          pubKey.SerializeCompressed(),
			},
		},
		{
			name: "public key",
			req: &api.VerifyChallengeRequest{
				ProtectedChallenge: challengeResp.ProtectedChallenge,
				Signature:          signature,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := server.VerifyChallenge(context.Background(), tt.req)
			assert.ErrorIs(t, err, grpc.ErrInvalidRequest)
		})
	}
}

func TestNewAuthnServerRequiresChainID(t *testing.T) {
	tokens, err := authninternal.NewSessionTokenCreatorVerifier(testIdentityKeyBytes, 0, nil)
	require.NoError(t, err)

	_, err = grpc.NewAuthnServer(grpc.AuthnServerConfig{
		IdentityPrivateKey: testIdentityKeyBytes,
		ChallengeTimeout:   testChallengeTimeout,
		SessionDuration:    testSessionDuration,
	}, tokens)
	require.Error(t, err)
}

func TestAuthnServer_VerifyChallenge_InvalidSignature(t *testing.T) {
	server, _ := newTestServerAndTokenVerifier(t)
	privKey, pubKey := createTestKeyPair()

	challengeResp, _ := createSignedChallenge(t, server, privKey)

	wrongPrivKey, _ := createTestKeyPair()
	challengeBytes, err := challengeResp.ProtectedChallenge.Challenge.SigningBytes()
	require.NoError(t, err)
	hash := sha256.Sum256(challengeBytes)
	wrongSignature := ecdsa.Sign(wrongPrivKey, hash[:])

	resp, err := server.VerifyChallenge(
		context.Background(),
		&api.VerifyChallengeRequest{
			ProtectedChallenge: challengeResp.ProtectedChallenge,
			Signature:          wrongSignature.Serialize(),
			PublicKey:          pubKey.SerializeCompressed(),
		},
	)

	assert.ErrorIs(t, err, grpc.ErrInvalidSignature)
	assert.Nil(t, resp)
}

func TestAuthnServer_VerifyChallenge_ExpiredSessionToken(t *testing.T) {
	clock := authninternal.NewTestClock(time.Now())
	server, tokenVerifier := newTestServerAndTokenVerifier(t, withClock(clock))
	privKey, pubKey := createTestKeyPair()

	challengeResp, signature := createSignedChallenge(t, server, privKey)
	resp := verifyChallenge(t, server, challengeResp, pubKey, signature)

	clock.Advance(testSessionDuration + time.Second)

	session, err := tokenVerifier.VerifyToken(resp.SessionToken)

	assert.ErrorIs(t, err, authninternal.ErrTokenExpired)
	assert.Nil(t, session)
}

func TestAuthnServer_VerifyChallenge_ExpiredChallenge(t *testing.T) {
	clock := authninternal.NewTestClock(time.Now())
	server, _ := newTestServerAndTokenVerifier(t, withClock(clock))
	privKey, pubKey := createTestKeyPair()

	challengeResp, signature := createSignedChallenge(t, server, privKey)

	clock.Advance(testChallengeTimeout + time.Second)

	resp, err := server.VerifyChallenge(
		context.Background(),
		&api.VerifyChallengeRequest{
			ProtectedChallenge: challengeResp.ProtectedChallenge,
			Signature:          signature,
			PublicKey:          pubKey.SerializeCompressed(),
		},
	)

	assert.ErrorIs(t, err, grpc.ErrChallengeExpired)
	assert.Nil(t, resp)
}

func TestAuthnServer_VerifyChallenge_TamperedChallenge(t *testing.T) {
	server, _ := newTestServerAndTokenVerifier(t)
	privKey, pubKey := createTestKeyPair()
	otherKey, _ := createTestKeyPair()

	tests := []struct {
		name    string
		tamper  func(req *api.VerifyChallengeRequest)
		wantErr error
	}{
		{
			name: "nonce",
			tamper: func(req *api.VerifyChallengeRequest) {
				req.ProtectedChallenge.Challenge.Nonce = []byte("tampered nonce")
			},
			wantErr: grpc.ErrInvalidChallengeHmac,
		},
		{
			name: "server hmac",
			tamper: func(req *api.VerifyChallengeRequest) {
				req.ProtectedChallenge.ServerHmac = []byte("tampered hmac")
			},
			wantErr: grpc.ErrInvalidChallengeHmac,
		},
		{
			name: "request public key",
			tamper: func(req *api.VerifyChallengeRequest) {
				req.PublicKey = otherKey.PubKey().SerializeCompressed()
			},
			wantErr: grpc.ErrPublicKeyMismatch,
		},
		{
			name: "challenge chain id",
			tamper: func(req *api.VerifyChallengeRequest) {
				req.ProtectedChallenge.Challenge.ChainID = common.Holesky.ChainID()
			},
			wantErr: grpc.ErrChainIDMismatch,
		},
		{
			name: "challenge address",
			tamper: func(req *api.VerifyChallengeRequest) {
				req.ProtectedChallenge.Challenge.Address = common.AddressFromKey(otherKey.PubKey()).Hex()
			},
			wantErr: grpc.ErrAddressMismatch,
		},
		{
			name: "challenge version",
			tamper: func(req *api.VerifyChallengeRequest) {
				req.ProtectedChallenge.Challenge.Version = 999
			},
			wantErr: grpc.ErrUnsupportedChallengeVersion,
		},
		{
			name: "protection version",
			tamper: func(req *api.VerifyChallengeRequest) {
				req.ProtectedChallenge.Version = 999
			},
			wantErr: grpc.ErrUnsupportedChallengeProtectionVersion,
		},
		{
			name: "signature encoding",
			tamper: func(req *api.VerifyChallengeRequest) {
				req.Signature = []byte{0x30, 0x01}
			},
			wantErr: grpc.ErrMalformedSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			challengeResp, signature := createSignedChallenge(t, server, privKey)
			req := &api.VerifyChallengeRequest{
				ProtectedChallenge: challengeResp.ProtectedChallenge,
				Signature:          signature,
				PublicKey:          pubKey.SerializeCompressed(),
			}
			tt.tamper(req)

			resp, err := server.VerifyChallenge(context.Background(), req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, resp)
		})
	}
}

// Test helpers
func createTestKeyPair() (*secp256k1.PrivateKey, *secp256k1.PublicKey) {
	privKey, _ := secp256k1.GeneratePrivateKey()
	return privKey, privKey.PubKey()
}

func createSignedChallenge(t *testing.T, server *grpc.AuthnServer, privKey *secp256k1.PrivateKey) (*api.GetChallengeResponse, []byte) {
	pubKey := privKey.PubKey()

	challengeResp, err := server.GetChallenge(context.Background(), &api.GetChallengeRequest{
		PublicKey: pubKey.SerializeCompressed(),
	})
	require.NoError(t, err)

	challengeBytes, err := challengeResp.ProtectedChallenge.Challenge.SigningBytes()
	require.NoError(t, err)

	hash := sha256.Sum256(challengeBytes)
	signature := ecdsa.Sign(privKey, hash[:])

	return challengeResp, signature.Serialize()
}

func verifyChallenge(t *testing.T, server *grpc.AuthnServer, challengeResp *api.GetChallengeResponse, pubKey *secp256k1.PublicKey, signature []byte) *api.VerifyChallengeResponse {
	resp, err := server.VerifyChallenge(
		context.Background(),
		&api.VerifyChallengeRequest{
			ProtectedChallenge: challengeResp.ProtectedChallenge,
			Signature:          signature,
			PublicKey:          pubKey.SerializeCompressed(),
		},
	)
	require.NoError(t, err)
	return resp
}
