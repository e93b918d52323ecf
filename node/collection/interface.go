package collection

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
)

// InterfaceID is an ERC-165 interface identifier.
type InterfaceID [4]byte

var (
	InterfaceERC165 = interfaceID("supportsInterface(bytes4)")
	InterfaceERC721 = interfaceID(
		"balanceOf(address)",
		"ownerOf(uint256)",
		"safeTransferFrom(address,address,uint256,bytes)",
		"safeTransferFrom(address,address,uint256)",
		"transferFrom(address,address,uint256)",
		"approve(address,uint256)",
		"setApprovalForAll(address,bool)",
		"getApproved(uint256)",
		"isApprovedForAll(address,address)",
	)
	InterfaceERC721Metadata = interfaceID("name()", "symbol()", "tokenURI(uint256)")

	// ReceiverSelector is the value a TokenReceiver returns to accept an asset.
	ReceiverSelector = selector("onERC721Received(address,address,uint256,bytes)")
)

func selector(signature string) InterfaceID {
	var id InterfaceID
	copy(id[:], crypto.Keccak256([]byte(signature))[:4])
	return id
}

func interfaceID(signatures ...string) InterfaceID {
	var id InterfaceID
	for _, sig := range signatures {
		s := selector(sig)
		for i := range id {
			id[i] ^= s[i]
		}
	}
	return id
}

// SupportsInterface reports whether the collection implements the interface.
func (c *Collection) SupportsInterface(id InterfaceID) bool {
	switch id {
	case InterfaceERC165, InterfaceERC721, InterfaceERC721Metadata:
		return true
	default:
		return false
	}
}

// TokenReceiver is implemented by contracts that can hold assets.
type TokenReceiver interface {
	OnERC721Received(f *chain.Frame, operator, from common.Address, tokenID uint64, data []byte) (InterfaceID, error)
}

func (c *Collection) checkOnReceived(f *chain.Frame, operator, from, to common.Address, tokenID uint64, data []byte) error {
	code, ok := f.Tx().Code(to)
	if !ok {
		return nil
	}
	receiver, ok := code.(TokenReceiver)
	if !ok {
		return ErrNonReceiver
	}
	return f.Call(to, nil, func(cf *chain.Frame) error {
		accepted, err := receiver.OnERC721Received(cf, operator, from, tokenID, data)
		if err != nil {
			return err
		}
		if accepted != ReceiverSelector {
			return ErrNonReceiver
		}
		return nil
	})
}
