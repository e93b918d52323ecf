package common

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressFromPublicKey derives the account address owned by a secp256k1 public key.
// Both compressed and uncompressed encodings are accepted.
func AddressFromPublicKey(pubKey []byte) (ethcommon.Address, error) {
	pk, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("failed to parse public key: %w", err)
	}
	return AddressFromKey(pk), nil
}

// AddressFromKey derives the account address of a parsed public key.
func AddressFromKey(pk *secp256k1.PublicKey) ethcommon.Address {
	uncompressed := pk.SerializeUncompressed()
	return ethcommon.BytesToAddress(crypto.Keccak256(uncompressed[1:])[12:])
}

// PrivateKeyFromHex parses a hex encoded 32 byte private key, with or without 0x prefix.
func PrivateKeyFromHex(s string) (*secp256k1.PrivateKey, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key hex: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(raw))
	}
	return secp256k1.PrivKeyFromBytes(raw), nil
}
