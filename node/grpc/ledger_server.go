package grpc

import (
	"context"

	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/deploy"
	"github.com/molalign8468/full-stack-nft-marketplace/node/handler"
	"github.com/molalign8468/full-stack-nft-marketplace/node/stream"
	"google.golang.org/grpc"
)

// LedgerServer is the grpc server for the marketplace ledger. Every call runs in the ledger
// transaction the session middleware put in its context.
type LedgerServer struct {
	api.UnimplementedLedgerServiceServer
	collection *handler.CollectionHandler
	market     *handler.MarketHandler
	accounts   *handler.AccountHandler
	router     *stream.EventRouter
}

// NewLedgerServer creates a new LedgerServer for the contracts of d.
func NewLedgerServer(d *deploy.Deployment, router *stream.EventRouter) *LedgerServer {
	return &LedgerServer{
		collection: handler.NewCollectionHandler(d.Collection),
		market:     handler.NewMarketHandler(d.Market, d.Collection.Address().Hex()),
		accounts:   handler.NewAccountHandler(),
		router:     router,
	}
}

// Mint buys new assets from the collection for the caller.
func (s *LedgerServer) Mint(ctx context.Context, req *api.MintRequest) (*api.MintResponse, error) {
	return s.collection.Mint(ctx, req)
}

// SafeMint mints one asset to a recipient; owner only.
func (s *LedgerServer) SafeMint(ctx context.Context, req *api.SafeMintRequest) (*api.SafeMintResponse, error) {
	return s.collection.SafeMint(ctx, req)
}

func (s *LedgerServer) FlipSaleState(ctx context.Context, req *api.FlipSaleStateRequest) (*api.FlipSaleStateResponse, error) {
	return s.collection.FlipSaleState(ctx, req)
}

func (s *LedgerServer) Withdraw(ctx context.Context, req *api.WithdrawRequest) (*api.WithdrawResponse, error) {
	return s.collection.Withdraw(ctx, req)
}

func (s *LedgerServer) Approve(ctx context.Context, req *api.ApproveRequest) (*api.TxResponse, error) {
	return s.collection.Approve(ctx, req)
}

func (s *LedgerServer) SetApprovalForAll(ctx context.Context, req *api.SetApprovalForAllRequest) (*api.TxResponse, error) {
	return s.collection.SetApprovalForAll(ctx, req)
}

func (s *LedgerServer) TransferFrom(ctx context.Context, req *api.TransferFromRequest) (*api.TxResponse, error) {
	return s.collection.TransferFrom(ctx, req)
}

// ListItem lists an asset the caller owns on the registry.
func (s *LedgerServer) ListItem(ctx context.Context, req *api.ListItemRequest) (*api.ListItemResponse, error) {
	return s.market.ListItem(ctx, req)
}

// BuyItem settles a listing for the caller.
func (s *LedgerServer) BuyItem(ctx context.Context, req *api.BuyItemRequest) (*api.TxResponse, error) {
	return s.market.BuyItem(ctx, req)
}

func (s *LedgerServer) CancelListing(ctx context.Context, req *api.CancelListingRequest) (*api.TxResponse, error) {
	return s.market.CancelListing(ctx, req)
}

func (s *LedgerServer) GetCollection(ctx context.Context, req *api.GetCollectionRequest) (*api.Collection, error) {
	return s.collection.GetCollection(ctx, req)
}

func (s *LedgerServer) GetToken(ctx context.Context, req *api.GetTokenRequest) (*api.Token, error) {
	return s.collection.GetToken(ctx, req)
}

func (s *LedgerServer) BalanceOf(ctx context.Context, req *api.BalanceOfRequest) (*api.BalanceOfResponse, error) {
	return s.collection.BalanceOf(ctx, req)
}

func (s *LedgerServer) IsApprovedForAll(ctx context.Context, req *api.IsApprovedForAllRequest) (*api.IsApprovedForAllResponse, error) {
	return s.collection.IsApprovedForAll(ctx, req)
}

func (s *LedgerServer) SupportsInterface(ctx context.Context, req *api.SupportsInterfaceRequest) (*api.SupportsInterfaceResponse, error) {
	return s.collection.SupportsInterface(ctx, req)
}

func (s *LedgerServer) GetAccount(ctx context.Context, req *api.GetAccountRequest) (*api.Account, error) {
	return s.accounts.GetAccount(ctx, req)
}

func (s *LedgerServer) GetMarket(ctx context.Context, req *api.GetMarketRequest) (*api.Market, error) {
	return s.market.GetMarket(ctx, req)
}

func (s *LedgerServer) GetListing(ctx context.Context, req *api.GetListingRequest) (*api.Listing, error) {
	return s.market.GetListing(ctx, req)
}

// GetEvents serves catch-up reads of committed events.
func (s *LedgerServer) GetEvents(ctx context.Context, req *api.GetEventsRequest) (*api.GetEventsResponse, error) {
	return s.accounts.GetEvents(ctx, req)
}

// SubscribeEvents streams events committed after the call started.
func (s *LedgerServer) SubscribeEvents(req *api.SubscribeEventsRequest, st grpc.ServerStreamingServer[api.Event]) error {
	filter, err := handler.EventFilter(req.Contract, req.Name)
	if err != nil {
		return err
	}
	return s.router.SubscribeToEvents(st.Context(), filter, func(l *chain.Log) error {
		return st.Send(handler.MarshalEvent(l))
	})
}
