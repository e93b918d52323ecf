package wallet

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"github.com/molalign8468/full-stack-nft-marketplace/common"
	"google.golang.org/grpc/metadata"
)

// ErrForeignChallenge is returned when the node challenges another chain or another account
// than the wallet's.
var ErrForeignChallenge = errors.New("challenge is not for this wallet")

// AuthenticateWithServer authenticates the user with the node and returns a session token.
func AuthenticateWithServer(ctx context.Context, config *Config) (string, error) {
	conn, err := config.connect()
	if err != nil {
		return "", fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()

	client := api.NewAuthnServiceClient(conn)

	challengeResp, err := client.GetChallenge(ctx, &api.GetChallengeRequest{
		PublicKey: config.IdentityPublicKey(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get challenge: %w", err)
	}
	if challengeResp.ProtectedChallenge == nil || challengeResp.ProtectedChallenge.Challenge == nil {
		return "", fmt.Errorf("node returned an empty challenge")
	}
	challenge := challengeResp.ProtectedChallenge.Challenge
	if want := config.Network.ChainID(); challenge.ChainID != want {
		return "", fmt.Errorf("%w: node serves chain %d, wallet is on %s (%d)", ErrForeignChallenge, challenge.ChainID, config.Network, want)
	}
	if !common.SameAddress(challenge.Address, config.Address().Hex()) {
		return "", fmt.Errorf("%w: challenge names %s", ErrForeignChallenge, challenge.Address)
	}

	challengeBytes, err := challenge.SigningBytes()
	if err != nil {
		return "", fmt.Errorf("failed to marshal challenge: %w", err)
	}

	hash := sha256.Sum256(challengeBytes)
	signature := ecdsa.Sign(&config.IdentityPrivateKey, hash[:])

	verifyResp, err := client.VerifyChallenge(ctx, &api.VerifyChallengeRequest{
		ProtectedChallenge: challengeResp.ProtectedChallenge,
		Signature:          signature.Serialize(),
		PublicKey:          config.IdentityPublicKey(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to verify challenge: %w", err)
	}

	return verifyResp.SessionToken, nil
}

// ContextWithToken adds the session token to the context.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}
