package handler

import (
	"context"

	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/market"
	"github.com/molalign8468/full-stack-nft-marketplace/node/ownable"
)

// MarketHandler translates requests into calls on the node's registry.
type MarketHandler struct {
	market *market.Market
	// defaultContract is listed when a request names no asset contract.
	defaultContract string
}

// NewMarketHandler creates a new MarketHandler. Listings that name no asset contract refer
// to defaultContract.
func NewMarketHandler(m *market.Market, defaultContract string) *MarketHandler {
	return &MarketHandler{market: m, defaultContract: defaultContract}
}

// ListItem lists one asset of the caller at a fixed price.
func (h *MarketHandler) ListItem(ctx context.Context, req *api.ListItemRequest) (*api.ListItemResponse, error) {
	tx, from, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	contract := req.NFTContract
	if contract == "" {
		contract = h.defaultContract
	}
	nftContract, err := api.ParseAddress("nft_contract", contract)
	if err != nil {
		return nil, err
	}
	price, err := api.ParseAmount("price", req.Price)
	if err != nil {
		return nil, err
	}
	var listingID uint64
	receipt, err := tx.Transact(from, h.market.Address(), nil, "listItem", func(f *chain.Frame) error {
		listingID, err = h.market.ListItem(f, nftContract, req.TokenID, price)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &api.ListItemResponse{ListingID: listingID, Receipt: marshalReceipt(receipt)}, nil
}

// BuyItem settles a listing for the caller, attaching value as payment.
func (h *MarketHandler) BuyItem(ctx context.Context, req *api.BuyItemRequest) (*api.TxResponse, error) {
	tx, from, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	value, err := api.ParseAmount("value", req.Value)
	if err != nil {
		return nil, err
	}
	receipt, err := tx.Transact(from, h.market.Address(), value, "buyItem", func(f *chain.Frame) error {
		return h.market.BuyItem(f, req.ListingID)
	})
	if err != nil {
		return nil, err
	}
	return &api.TxResponse{Receipt: marshalReceipt(receipt)}, nil
}

// CancelListing deactivates one of the caller's listings.
func (h *MarketHandler) CancelListing(ctx context.Context, req *api.CancelListingRequest) (*api.TxResponse, error) {
	tx, from, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	receipt, err := tx.Transact(from, h.market.Address(), nil, "cancelListing", func(f *chain.Frame) error {
		return h.market.CancelListing(f, req.ListingID)
	})
	if err != nil {
		return nil, err
	}
	return &api.TxResponse{Receipt: marshalReceipt(receipt)}, nil
}

// GetMarket returns the registry address, owner and listing counter.
func (h *MarketHandler) GetMarket(ctx context.Context, _ *api.GetMarketRequest) (*api.Market, error) {
	tx, err := ledgerTx(ctx)
	if err != nil {
		return nil, err
	}
	owner, err := ownable.Owner(tx, h.market.Address())
	if err != nil {
		return nil, err
	}
	counter, err := h.market.ListingIDCounter(tx)
	if err != nil {
		return nil, err
	}
	return &api.Market{
		Address:          h.market.Address().Hex(),
		Owner:            owner.Hex(),
		ListingIDCounter: counter,
	}, nil
}

// GetListing returns a listing, active or not.
func (h *MarketHandler) GetListing(ctx context.Context, req *api.GetListingRequest) (*api.Listing, error) {
	tx, err := ledgerTx(ctx)
	if err != nil {
		return nil, err
	}
	listing, err := h.market.Listing(tx, req.ListingID)
	if err != nil {
		return nil, err
	}
	return MarshalListing(listing), nil
}
