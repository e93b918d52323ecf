package wallet_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"github.com/molalign8468/full-stack-nft-marketplace/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/collection"
	"github.com/molalign8468/full-stack-nft-marketplace/node/market"
	"github.com/molalign8468/full-stack-nft-marketplace/node/ownable"
	testutil "github.com/molalign8468/full-stack-nft-marketplace/test_util"
	"github.com/molalign8468/full-stack-nft-marketplace/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const testBaseURI = "ipfs://bafybeic7b56254f6m6tk3ovlg7u3atxkgrbc7dsvpz5af2jnqnihkxhe5e/"

type actor struct {
	ctx    context.Context
	config *wallet.Config
}

func newActors(t *testing.T) (*testutil.TestNode, actor, actor, actor) {
	params := collection.DefaultParams()
	params.BaseURI = testBaseURI
	node := testutil.NewTestNode(t, params)

	as := func(account *testutil.Account) actor {
		return actor{ctx: node.Authenticate(t, account), config: node.WalletConfig(account)}
	}
	return node, as(node.Owner), as(node.Seller), as(node.Buyer)
}

func TestMintListAndBuy(t *testing.T) {
	node, owner, seller, buyer := newActors(t)

	active, err := wallet.FlipSaleState(owner.ctx, owner.config)
	require.NoError(t, err)
	require.True(t, active)

	ids, err := wallet.Mint(seller.ctx, seller.config, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1}, ids)

	listingID, err := wallet.ListNFT(seller.ctx, seller.config, 1, common.Ether(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(market.FirstListingID), listingID)

	listings, err := wallet.FetchListings(seller.ctx, seller.config)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, node.Seller.Address.Hex(), listings[0].Seller)
	assert.Equal(t, common.Ether(1).String(), listings[0].Price)

	require.NoError(t, wallet.BuyItem(buyer.ctx, buyer.config, listingID))

	listings, err = wallet.FetchListings(buyer.ctx, buyer.config)
	require.NoError(t, err)
	assert.Empty(t, listings)

	mine, err := wallet.FetchUserNFTs(buyer.ctx, buyer.config, node.Buyer.Address)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, uint64(1), mine[0].TokenID)
	assert.Equal(t, testBaseURI+"1", mine[0].TokenURI)
	assert.Equal(t, "https://ipfs.io/ipfs/bafybeic7b56254f6m6tk3ovlg7u3atxkgrbc7dsvpz5af2jnqnihkxhe5e/1.json", mine[0].MetadataURL)

	all, err := wallet.FetchAllNFTs(buyer.ctx, buyer.config)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, node.Seller.Address, all[0].Owner)
	assert.Equal(t, node.Buyer.Address, all[1].Owner)

	account, err := wallet.GetAccount(seller.ctx, seller.config, node.Seller.Address)
	require.NoError(t, err)
	expected, err := common.ParseEther("100.98")
	require.NoError(t, err)
	assert.Equal(t, expected.String(), account.Balance)

	proceeds, err := wallet.Withdraw(owner.ctx, owner.config)
	require.NoError(t, err)
	assert.Equal(t, "20000000000000000", proceeds.String())
}

func TestListNFTSkipsApprovalWhenAlreadyApproved(t *testing.T) {
	node, owner, seller, _ := newActors(t)

	_, err := wallet.FlipSaleState(owner.ctx, owner.config)
	require.NoError(t, err)
	_, err = wallet.Mint(seller.ctx, seller.config, 1)
	require.NoError(t, err)
	require.NoError(t, wallet.Approve(seller.ctx, seller.config, node.Market.Address(), 0))

	listingID, err := wallet.ListNFT(seller.ctx, seller.config, 0, common.Ether(2))
	require.NoError(t, err)

	require.NoError(t, wallet.CancelListing(seller.ctx, seller.config, listingID))
	err = wallet.CancelListing(seller.ctx, seller.config, listingID)
	require.ErrorIs(t, err, market.ErrListingNotActive)
}

func TestRejectionsKeepTheirKind(t *testing.T) {
	node, owner, seller, buyer := newActors(t)

	_, err := wallet.Mint(seller.ctx, seller.config, 1)
	require.ErrorIs(t, err, collection.ErrSaleInactive)
	assert.True(t, wallet.IsRevert(err, chain.PolicyViolation))

	_, err = wallet.FlipSaleState(seller.ctx, seller.config)
	require.ErrorIs(t, err, ownable.ErrNotOwner)
	assert.True(t, wallet.IsRevert(err, chain.AuthorizationFailure))

	err = wallet.BuyItem(buyer.ctx, buyer.config, 42)
	require.ErrorIs(t, err, market.ErrListingNotFound)

	_, err = wallet.SafeMint(owner.ctx, owner.config, node.Buyer.Address, "")
	require.NoError(t, err)
	err = wallet.TransferFrom(seller.ctx, seller.config, node.Buyer.Address, node.Seller.Address, 0, false)
	require.ErrorIs(t, err, collection.ErrCallerNotOwnerNorApproved)

	_, err = wallet.Withdraw(owner.ctx, owner.config)
	require.ErrorIs(t, err, collection.ErrNoFunds)
}

func TestWritesNeedAuthentication(t *testing.T) {
	node, _, _, _ := newActors(t)
	config := node.WalletConfig(node.Seller)

	_, err := wallet.FlipSaleState(context.Background(), config)
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	info, err := wallet.GetCollection(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, "LoyaltyPoint", info.Name)
}

func TestAuthenticateRefusesOtherChain(t *testing.T) {
	node, _, _, _ := newActors(t)
	config := node.WalletConfig(node.Seller)
	config.Network = common.Holesky

	token, err := wallet.AuthenticateWithServer(context.Background(), config)
	require.ErrorIs(t, err, wallet.ErrForeignChallenge)
	assert.Empty(t, token)

	config.Network = common.Hardhat
	token, err = wallet.AuthenticateWithServer(context.Background(), config)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestSubscribeEvents(t *testing.T) {
	node, owner, seller, buyer := newActors(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan *api.Event, 4)
	done := make(chan error, 1)
	go func() {
		done <- wallet.SubscribeEvents(ctx, buyer.config, node.Market.Address().Hex(), "ItemSold", func(e *api.Event) error {
			events <- e
			return nil
		})
	}()
	require.Eventually(t, func() bool { return node.Router.Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)

	_, err := wallet.FlipSaleState(owner.ctx, owner.config)
	require.NoError(t, err)
	_, err = wallet.Mint(seller.ctx, seller.config, 1)
	require.NoError(t, err)
	listingID, err := wallet.ListNFT(seller.ctx, seller.config, 0, common.Ether(1))
	require.NoError(t, err)
	require.NoError(t, wallet.BuyItem(buyer.ctx, buyer.config, listingID))

	select {
	case e := <-events:
		assert.Equal(t, "ItemSold", e.Name)
		assert.Equal(t, node.Market.Address().Hex(), e.Contract)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for ItemSold")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			assert.True(t, errors.Is(err, context.Canceled) || status.Code(err) == codes.Canceled, err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("subscription did not stop")
	}
}
