package market

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type ItemListed struct {
	ListingID   uint64         `json:"listingId"`
	Seller      common.Address `json:"seller"`
	NFTContract common.Address `json:"nftContract"`
	TokenID     uint64         `json:"tokenId"`
	Price       *big.Int       `json:"price"`
}

func (ItemListed) Signature() string {
	return "ItemListed(uint256,address,address,uint256,uint256)"
}

type ItemSold struct {
	ListingID   uint64         `json:"listingId"`
	Buyer       common.Address `json:"buyer"`
	Seller      common.Address `json:"seller"`
	NFTContract common.Address `json:"nftContract"`
	TokenID     uint64         `json:"tokenId"`
	Price       *big.Int       `json:"price"`
}

func (ItemSold) Signature() string {
	return "ItemSold(uint256,address,address,address,uint256,uint256)"
}

type ListingCancelled struct {
	ListingID uint64         `json:"listingId"`
	Seller    common.Address `json:"seller"`
}

func (ListingCancelled) Signature() string {
	return "ListingCancelled(uint256,address)"
}
