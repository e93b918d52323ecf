package handler_test

import (
	"context"
	"testing"

	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"github.com/molalign8468/full-stack-nft-marketplace/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/authn"
	"github.com/molalign8468/full-stack-nft-marketplace/node/collection"
	"github.com/molalign8468/full-stack-nft-marketplace/node/handler"
	"github.com/molalign8468/full-stack-nft-marketplace/node/market"
	testutil "github.com/molalign8468/full-stack-nft-marketplace/test_util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlers struct {
	m          *testutil.Marketplace
	ctx        context.Context
	collection *handler.CollectionHandler
	market     *handler.MarketHandler
	accounts   *handler.AccountHandler
}

func newHandlers(t *testing.T) *handlers {
	m := testutil.NewMarketplace(t, collection.DefaultParams())
	ctx, _ := testutil.TestContext(t, m.Engine)
	return &handlers{
		m:          m,
		ctx:        ctx,
		collection: handler.NewCollectionHandler(m.Collection),
		market:     handler.NewMarketHandler(m.Market, m.Collection.Address().Hex()),
		accounts:   handler.NewAccountHandler(),
	}
}

func (h *handlers) as(account *testutil.Account) context.Context {
	return testutil.WithSession(h.ctx, account)
}

func TestListAndBuyThroughHandlers(t *testing.T) {
	h := newHandlers(t)

	flip, err := h.collection.FlipSaleState(h.as(h.m.Owner), &api.FlipSaleStateRequest{})
	require.NoError(t, err)
	assert.True(t, flip.SaleIsActive)

	minted, err := h.collection.Mint(h.as(h.m.Seller), &api.MintRequest{Quantity: 2, Value: ether(t, "0.02")})
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1}, minted.TokenIDs)
	assert.Equal(t, h.m.Seller.Address.Hex(), minted.Receipt.From)
	require.Len(t, minted.Receipt.Logs, 2)
	assert.Equal(t, "Transfer", minted.Receipt.Logs[0].Name)

	_, err = h.collection.SetApprovalForAll(h.as(h.m.Seller), &api.SetApprovalForAllRequest{
		Operator: h.m.Market.Address().Hex(),
		Approved: true,
	})
	require.NoError(t, err)

	listed, err := h.market.ListItem(h.as(h.m.Seller), &api.ListItemRequest{TokenID: 1, Price: ether(t, "1")})
	require.NoError(t, err)
	assert.Equal(t, uint64(market.FirstListingID), listed.ListingID)

	_, err = h.market.BuyItem(h.as(h.m.Buyer), &api.BuyItemRequest{ListingID: listed.ListingID, Value: "1"})
	require.ErrorIs(t, err, market.ErrIncorrectPrice)

	_, err = h.market.BuyItem(h.as(h.m.Buyer), &api.BuyItemRequest{ListingID: listed.ListingID, Value: ether(t, "1")})
	require.NoError(t, err)

	listing, err := h.market.GetListing(h.ctx, &api.GetListingRequest{ListingID: listed.ListingID})
	require.NoError(t, err)
	assert.False(t, listing.Active)
	assert.Equal(t, h.m.Seller.Address.Hex(), listing.Seller)

	token, err := h.collection.GetToken(h.ctx, &api.GetTokenRequest{TokenID: 1})
	require.NoError(t, err)
	assert.Equal(t, h.m.Buyer.Address.Hex(), token.Owner)

	seller, err := h.accounts.GetAccount(h.ctx, &api.GetAccountRequest{Address: h.m.Seller.Address.Hex()})
	require.NoError(t, err)
	assert.Equal(t, ether(t, "100.98"), seller.Balance)

	info, err := h.market.GetMarket(h.ctx, &api.GetMarketRequest{})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.ListingIDCounter)
	assert.Equal(t, h.m.Owner.Address.Hex(), info.Owner)

	sold, err := h.accounts.GetEvents(h.ctx, &api.GetEventsRequest{Contract: h.m.Market.Address().Hex(), Name: "ItemSold"})
	require.NoError(t, err)
	require.Len(t, sold.Events, 1)
}

func TestWritesRequireSession(t *testing.T) {
	h := newHandlers(t)

	_, err := h.collection.FlipSaleState(h.ctx, &api.FlipSaleStateRequest{})
	require.ErrorIs(t, err, authn.ErrNoSession)

	_, err = h.market.CancelListing(h.ctx, &api.CancelListingRequest{ListingID: 1})
	require.ErrorIs(t, err, authn.ErrNoSession)
}

func TestHandlersRequireLedgerTx(t *testing.T) {
	h := newHandlers(t)

	_, err := h.collection.GetCollection(context.Background(), &api.GetCollectionRequest{})
	require.ErrorIs(t, err, handler.ErrNoLedgerTx)
}

func TestOwnerOnlyThroughHandlers(t *testing.T) {
	h := newHandlers(t)

	_, err := h.collection.FlipSaleState(h.as(h.m.Seller), &api.FlipSaleStateRequest{})
	require.Error(t, err)

	minted, err := h.collection.SafeMint(h.as(h.m.Owner), &api.SafeMintRequest{To: h.m.Buyer.Address.Hex(), URI: "ipfs://token/7"})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), minted.TokenID)

	balance, err := h.collection.BalanceOf(h.ctx, &api.BalanceOfRequest{Owner: h.m.Buyer.Address.Hex()})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), balance.Balance)

	info, err := h.collection.GetCollection(h.ctx, &api.GetCollectionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "LoyaltyPoint", info.Name)
	assert.Equal(t, "LP", info.Symbol)
	assert.Equal(t, uint64(1), info.TokenIDCounter)
	assert.False(t, info.SaleIsActive)

	_, err = h.collection.Withdraw(h.as(h.m.Owner), &api.WithdrawRequest{})
	require.ErrorIs(t, err, collection.ErrNoFunds)
}

func TestSupportsInterfaceThroughHandler(t *testing.T) {
	h := newHandlers(t)

	tests := []struct {
		id   string
		want bool
	}{
		{id: "0x80ac58cd", want: true},
		{id: "0x01ffc9a7", want: true},
		{id: "0x5b5e139f", want: true},
		{id: "0x12345678", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			resp, err := h.collection.SupportsInterface(h.ctx, &api.SupportsInterfaceRequest{InterfaceID: tt.id})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Supported)
		})
	}
}

func ether(t *testing.T, s string) string {
	t.Helper()
	wei, err := common.ParseEther(s)
	require.NoError(t, err)
	return wei.String()
}
