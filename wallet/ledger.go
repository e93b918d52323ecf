package wallet

import (
	"context"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"github.com/molalign8468/full-stack-nft-marketplace/common"
)

// Every write below runs as the identity whose session token is attached to ctx with
// ContextWithToken.

// Mint buys quantity new tokens at the collection's current mint price.
func Mint(ctx context.Context, config *Config, quantity uint64) ([]uint64, error) {
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
	price, err := common.ParseWei(info.MintPrice)
	if err != nil {
		return nil, fmt.Errorf("node returned mint price: %w", err)
	}
	total := new(big.Int).Mul(price, new(big.Int).SetUint64(quantity))

	resp, err := client.Mint(ctx, &api.MintRequest{Quantity: quantity, Value: total.String()})
	if err != nil {
		return nil, callError("mint", err)
	}
	return resp.TokenIDs, nil
}

// SafeMint mints one token to to. Only the collection owner may call it.
func SafeMint(ctx context.Context, config *Config, to ethcommon.Address, uri string) (uint64, error) {
	conn, err := config.connect()
	if err != nil {
		return 0, fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()

	resp, err := api.NewLedgerServiceClient(conn).SafeMint(ctx, &api.SafeMintRequest{To: to.Hex(), URI: uri})
	if err != nil {
		return 0, callError("safe mint", err)
	}
	return resp.TokenID, nil
}

// FlipSaleState toggles public minting and returns the new state.
func FlipSaleState(ctx context.Context, config *Config) (bool, error) {
	conn, err := config.connect()
	if err != nil {
		return false, fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()

	resp, err := api.NewLedgerServiceClient(conn).FlipSaleState(ctx, &api.FlipSaleStateRequest{})
	if err != nil {
		return false, callError("flip sale state", err)
	}
	return resp.SaleIsActive, nil
}

// Withdraw moves the collection's proceeds to its owner and returns the amount in wei.
func Withdraw(ctx context.Context, config *Config) (*big.Int, error) {
	conn, err := config.connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()

	resp, err := api.NewLedgerServiceClient(conn).Withdraw(ctx, &api.WithdrawRequest{})
	if err != nil {
		return nil, callError("withdraw", err)
	}
	return common.ParseWei(resp.Amount)
}

func Approve(ctx context.Context, config *Config, to ethcommon.Address, tokenID uint64) error {
	conn, err := config.connect()
	if err != nil {
		return fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()

	_, err = api.NewLedgerServiceClient(conn).Approve(ctx, &api.ApproveRequest{To: to.Hex(), TokenID: tokenID})
	return callError("approve", err)
}

func SetApprovalForAll(ctx context.Context, config *Config, operator ethcommon.Address, approved bool) error {
	conn, err := config.connect()
	if err != nil {
		return fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()

	_, err = api.NewLedgerServiceClient(conn).SetApprovalForAll(ctx, &api.SetApprovalForAllRequest{
		Operator: operator.Hex(),
		Approved: approved,
	})
	return callError("set approval for all", err)
}

// TransferFrom moves tokenID from from to to. With safe set, contract recipients must accept
// the token.
func TransferFrom(ctx context.Context, config *Config, from, to ethcommon.Address, tokenID uint64, safe bool) error {
	conn, err := config.connect()
	if err != nil {
		return fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()

	_, err = api.NewLedgerServiceClient(conn).TransferFrom(ctx, &api.TransferFromRequest{
		From:    from.Hex(),
		To:      to.Hex(),
		TokenID: tokenID,
		Safe:    safe,
	})
	return callError("transfer", err)
}

// ListItem lists tokenID of the node's collection at price wei. The marketplace must already
// be approved for the token.
func ListItem(ctx context.Context, config *Config, tokenID uint64, price *big.Int) (uint64, error) {
	conn, err := config.connect()
	if err != nil {
		return 0, fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()

	resp, err := api.NewLedgerServiceClient(conn).ListItem(ctx, &api.ListItemRequest{TokenID: tokenID, Price: price.String()})
	if err != nil {
		return 0, callError("list item", err)
	}
	return resp.ListingID, nil
}

// ListNFT approves the marketplace for tokenID when it is not approved yet, then lists it.
func ListNFT(ctx context.Context, config *Config, tokenID uint64, price *big.Int) (uint64, error) {
	conn, err := config.connect()
	if err != nil {
		return 0, fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()
	client := api.NewLedgerServiceClient(conn)

	market, err := client.GetMarket(ctx, &api.GetMarketRequest{})
	if err != nil {
		return 0, callError("get market", err)
	}
	token, err := client.GetToken(ctx, &api.GetTokenRequest{TokenID: tokenID})
	if err != nil {
		return 0, callError("get token", err)
	}
	if !common.SameAddress(token.Approved, market.Address) {
		_, err = client.Approve(ctx, &api.ApproveRequest{To: market.Address, TokenID: tokenID})
		if err != nil {
			return 0, callError("approve marketplace", err)
		}
	}

	resp, err := client.ListItem(ctx, &api.ListItemRequest{TokenID: tokenID, Price: price.String()})
	if err != nil {
		return 0, callError("list item", err)
	}
	return resp.ListingID, nil
}

// BuyItem buys listingID, paying exactly its listed price.
func BuyItem(ctx context.Context, config *Config, listingID uint64) error {
	conn, err := config.connect()
	if err != nil {
		return fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()
	client := api.NewLedgerServiceClient(conn)

	listing, err := client.GetListing(ctx, &api.GetListingRequest{ListingID: listingID})
	if err != nil {
		return callError("get listing", err)
	}
	_, err = client.BuyItem(ctx, &api.BuyItemRequest{ListingID: listingID, Value: listing.Price})
	return callError("buy item", err)
}

func CancelListing(ctx context.Context, config *Config, listingID uint64) error {
	conn, err := config.connect()
	if err != nil {
		return fmt.Errorf("failed to connect to node: %w", err)
	}
	defer conn.Close()

	_, err = api.NewLedgerServiceClient(conn).CancelListing(ctx, &api.CancelListingRequest{ListingID: listingID})
	return callError("cancel listing", err)
}
