package wallet

import (
	"context"
	"errors"
	"fmt"
	"io"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"github.com/molalign8468/full-stack-nft-marketplace/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NFT is a token of the node's collection as the wallet presents it.
type NFT struct {
	TokenID  uint64
	Owner    ethcommon.Address
	TokenURI string
	// MetadataURL is TokenURI rewritten for an HTTP gateway.
	MetadataURL string
}

func GetCollection(ctx context.Context, config *Config) (*api.Collection, error) {
	conn, err := config.connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()

	info, err := api.NewLedgerServiceClient(conn).GetCollection(ctx, &api.GetCollectionRequest{})
	if err != nil {
		return nil, callError("get collection", err)
	}
	return info, nil
}

func GetMarket(ctx context.Context, config *Config) (*api.Market, error) {
	conn, err := config.connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()

	market, err := api.NewLedgerServiceClient(conn).GetMarket(ctx, &api.GetMarketRequest{})
	if err != nil {
		return nil, callError("get market", err)
	}
	return market, nil
}

// GetAccount returns the native balance and nonce of address.
func GetAccount(ctx context.Context, config *Config, address ethcommon.Address) (*api.Account, error) {
	conn, err := config.connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()

	account, err := api.NewLedgerServiceClient(conn).GetAccount(ctx, &api.GetAccountRequest{Address: address.Hex()})
	if err != nil {
		return nil, callError("get account", err)
	}
	return account, nil
}

// FetchListings returns every active listing, oldest first.
func FetchListings(ctx context.Context, config *Config) ([]*api.Listing, error) {
	conn, err := config.connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()
	client := api.NewLedgerServiceClient(conn)

	market, err := client.GetMarket(ctx, &api.GetMarketRequest{})
	if err != nil {
		return nil, callError("get market", err)
	}

	var listings []*api.Listing
	for id := uint64(1); id < market.ListingIDCounter; id++ {
		listing, err := client.GetListing(ctx, &api.GetListingRequest{ListingID: id})
		if err != nil {
			return nil, callError(fmt.Sprintf("get listing %d", id), err)
		}
		if listing.Active {
			listings = append(listings, listing)
		}
	}
	return listings, nil
}

// FetchAllNFTs returns every minted token of the node's collection.
func FetchAllNFTs(ctx context.Context, config *Config) ([]*NFT, error) {
	return fetchNFTs(ctx, config, func(*api.Token) bool { return true })
}

// FetchUserNFTs returns the tokens currently owned by owner.
func FetchUserNFTs(ctx context.Context, config *Config, owner ethcommon.Address) ([]*NFT, error) {
	return fetchNFTs(ctx, config, func(token *api.Token) bool {
		return common.SameAddress(token.Owner, owner.Hex())
	})
}

func fetchNFTs(ctx context.Context, config *Config, keep func(*api.Token) bool) ([]*NFT, error) {
	conn, err := config.connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()
	client := api.NewLedgerServiceClient(conn)

	info, err := client.GetCollection(ctx, &api.GetCollectionRequest{})
	if err != nil {
		return nil, callError("get collection", err)
	}

	var nfts []*NFT
	for id := uint64(0); id < info.TokenIDCounter; id++ {
		token, err := client.GetToken(ctx, &api.GetTokenRequest{TokenID: id})
		if status.Code(err) == codes.NotFound {
			continue
		}
		if err != nil {
			return nil, callError(fmt.Sprintf("get token %d", id), err)
		}
		if !keep(token) {
			continue
		}
		owner, err := common.ParseAddress(token.Owner)
		if err != nil {
			return nil, fmt.Errorf("node returned owner of token %d: %w", id, err)
		}
		nfts = append(nfts, &NFT{
			TokenID:     id,
			Owner:       owner,
			TokenURI:    token.URI,
			MetadataURL: ConvertIPFSURL(token.URI),
		})
	}
	return nfts, nil
}

// SubscribeEvents streams committed ledger events matching contract and name to fn until ctx
// is done, the node closes the stream or fn fails. Empty filters match everything.
func SubscribeEvents(ctx context.Context, config *Config, contract, name string, fn func(*api.Event) error) error {
	conn, err := config.connect()
	if err != nil {
		return fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()

	stream, err := api.NewLedgerServiceClient(conn).SubscribeEvents(ctx, &api.SubscribeEventsRequest{
		Contract: contract,
		Name:     name,
	})
	if err != nil {
		return callError("subscribe to events", err)
	}
	for {
		event, err := stream.Recv()
		if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
			return nil
		}
		if err != nil {
			return callError("receive event", err)
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}

// IsRevert reports whether err is a ledger rejection of the given kind.
func IsRevert(err error, kind chain.Kind) bool {
	return chain.KindOf(err) == kind
}
