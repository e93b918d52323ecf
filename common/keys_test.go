package common

import (
	"encoding/hex"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressFromPublicKeyMatchesEthereumDerivation(t *testing.T) {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	ethKey, err := crypto.ToECDSA(key.Serialize())
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(ethKey.PublicKey)

	fromCompressed, err := AddressFromPublicKey(key.PubKey().SerializeCompressed())
	require.NoError(t, err)
	assert.Equal(t, want, fromCompressed)

	fromUncompressed, err := AddressFromPublicKey(key.PubKey().SerializeUncompressed())
	require.NoError(t, err)
	assert.Equal(t, want, fromUncompressed)
}

func TestAddressFromPublicKeyKnownVector(t *testing.T) {
	// First default hardhat account.
	key, err := PrivateKeyFromHex("0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", AddressFromKey(key.PubKey()).Hex())
}

func TestPrivateKeyFromHexRejectsBadInput(t *testing.T) {
	_, err := PrivateKeyFromHex("zz")
	require.Error(t, err)

	_, err = PrivateKeyFromHex(hex.EncodeToString([]byte{1, 2, 3}))
	require.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", addr.Hex())

	_, err = ParseAddress("not-an-address")
	require.Error(t, err)

	assert.True(t, SameAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", "0xF39FD6E51AAD88F6F4CE6AB8827279CFFFB92266"))
	assert.False(t, SameAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", ZeroAddress.Hex()))
}

func TestNetworkFromString(t *testing.T) {
	n, err := NetworkFromString("holesky")
	require.NoError(t, err)
	assert.Equal(t, Holesky, n)
	assert.Equal(t, uint64(17000), n.ChainID())

	n, err = NetworkFromString("")
	require.NoError(t, err)
	assert.Equal(t, uint64(31337), n.ChainID())

	_, err = NetworkFromString("mainnet")
	require.Error(t, err)
}
