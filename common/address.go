package common

import (
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// ZeroAddress is the address used as the source of mints.
var ZeroAddress = ethcommon.Address{}

// ParseAddress parses a 0x-prefixed hex address.
func ParseAddress(s string) (ethcommon.Address, error) {
	if !ethcommon.IsHexAddress(s) {
		return ethcommon.Address{}, fmt.Errorf("invalid address: %q", s)
	}
	return ethcommon.HexToAddress(s), nil
}

// SameAddress compares two hex strings as addresses, ignoring checksum casing.
func SameAddress(a, b string) bool {
	if !ethcommon.IsHexAddress(a) || !ethcommon.IsHexAddress(b) {
		return false
	}
	return ethcommon.HexToAddress(a) == ethcommon.HexToAddress(b)
}
