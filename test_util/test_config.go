package testutil

import (
	"encoding/hex"
	"path/filepath"
	"testing"
	"time"

	"github.com/molalign8468/full-stack-nft-marketplace/node"
	"github.com/stretchr/testify/require"
)

const (
	testIdentityPrivateKey = "5eaae81bcf1fd43fbb92432b82dbafc8273bb3287b42cb4cf3c851fcee2212a5"
	testAuthnSecret        = "0322ca18fc489ae25418a0e768273c2c61cabb823edfb14feb891e9bec620165"
)

// TestConfig returns a node configuration backed by a sqlite file in a temporary directory.
func TestConfig(t testing.TB) *node.Config {
	t.Helper()
	identityPrivateKey, err := hex.DecodeString(testIdentityPrivateKey)
	require.NoError(t, err)
	authnSecret, err := hex.DecodeString(testAuthnSecret)
	require.NoError(t, err)

	config := node.DefaultConfig()
	config.DatabasePath = filepath.Join(t.TempDir(), "ledger.sqlite")
	config.ListenAddr = "localhost:0"
	config.GatewayAddr = "localhost:0"
	config.IdentityPrivateKey = identityPrivateKey
	config.AuthnSecret = authnSecret
	config.ChallengeTimeout = time.Minute
	config.SessionDuration = time.Hour
	config.BaseURI = "ipfs://bafybeic7b56254f6m6tk3ovlg7u3atxkgrbc7dsvpz5af2jnqnihkxhe5e/"
	return config
}
