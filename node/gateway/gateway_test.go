package gateway_test

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"github.com/molalign8468/full-stack-nft-marketplace/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/collection"
	"github.com/molalign8468/full-stack-nft-marketplace/node/gateway"
	testutil "github.com/molalign8468/full-stack-nft-marketplace/test_util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontend = "http://localhost:5173"

func newGateway(t *testing.T) (*testutil.Marketplace, http.Handler) {
	gin.SetMode(gin.TestMode)
	m := testutil.NewMarketplace(t, collection.DefaultParams())
	ctx := context.Background()

	transact := func(from *testutil.Account, to ethcommon.Address, value *big.Int, fn func(f *chain.Frame) error) {
		t.Helper()
		_, err := m.Engine.Transact(ctx, from.Address, to, value, "call", fn)
		require.NoError(t, err)
	}

	transact(m.Owner, m.Collection.Address(), nil, func(f *chain.Frame) error {
		_, err := m.Collection.FlipSaleState(f)
		return err
	})
	transact(m.Seller, m.Collection.Address(), big.NewInt(3e16), func(f *chain.Frame) error {
		_, err := m.Collection.Mint(f, 3)
		return err
	})
	transact(m.Seller, m.Collection.Address(), nil, func(f *chain.Frame) error {
		return m.Collection.SetApprovalForAll(f, m.Market.Address(), true)
	})
	for _, tokenID := range []uint64{0, 2} {
		transact(m.Seller, m.Market.Address(), nil, func(f *chain.Frame) error {
			_, err := m.Market.ListItem(f, m.Collection.Address(), tokenID, common.Ether(1))
			return err
		})
	}
	transact(m.Seller, m.Market.Address(), nil, func(f *chain.Frame) error {
		return m.Market.CancelListing(f, 1)
	})

	return m, gateway.New(m.Engine, m.Deployment, []string{frontend + "/"}, nil).Handler()
}

func get(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out), rr.Body.String())
	}
	return rr.Code
}

func TestGatewayReads(t *testing.T) {
	m, h := newGateway(t)

	var health map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/health", &health))
	assert.Equal(t, "ok", health["status"])

	var info api.Collection
	require.Equal(t, http.StatusOK, get(t, h, "/api/collection", &info))
	assert.Equal(t, "LoyaltyPoint", info.Name)
	assert.Equal(t, uint64(3), info.TokenIDCounter)
	assert.True(t, info.SaleIsActive)

	var token api.Token
	require.Equal(t, http.StatusOK, get(t, h, "/api/tokens/2", &token))
	assert.Equal(t, m.Seller.Address.Hex(), token.Owner)

	var owned struct {
		Owner  string       `json:"owner"`
		Tokens []*api.Token `json:"tokens"`
	}
	require.Equal(t, http.StatusOK, get(t, h, "/api/accounts/"+m.Seller.Address.Hex()+"/tokens", &owned))
	require.Len(t, owned.Tokens, 3)
	for i, held := range owned.Tokens {
		assert.Equal(t, uint64(i), held.TokenID)
		assert.Equal(t, m.Seller.Address.Hex(), held.Owner)
		assert.Equal(t, collection.DefaultParams().BaseURI+strconv.Itoa(i), held.URI)
	}
	require.Equal(t, http.StatusOK, get(t, h, "/api/accounts/"+m.Buyer.Address.Hex()+"/tokens", &owned))
	assert.Empty(t, owned.Tokens)

	var active struct {
		Listings []*api.Listing `json:"listings"`
	}
	require.Equal(t, http.StatusOK, get(t, h, "/api/listings", &active))
	require.Len(t, active.Listings, 1)
	assert.Equal(t, uint64(2), active.Listings[0].ListingID)
	assert.Equal(t, uint64(2), active.Listings[0].TokenID)

	var cancelled api.Listing
	require.Equal(t, http.StatusOK, get(t, h, "/api/listings/1", &cancelled))
	assert.False(t, cancelled.Active)
}

func TestGatewayErrors(t *testing.T) {
	_, h := newGateway(t)

	tests := []struct {
		path string
		want int
	}{
		{path: "/api/tokens/99", want: http.StatusNotFound},
		{path: "/api/tokens/abc", want: http.StatusBadRequest},
		{path: "/api/listings/42", want: http.StatusNotFound},
		{path: "/api/accounts/nobody/tokens", want: http.StatusBadRequest},
		{path: "/api/unknown", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, get(t, h, tt.path, nil))
		})
	}
}

func TestGatewayMetricsAndCORS(t *testing.T) {
	_, h := newGateway(t)

	get(t, h, "/api/collection", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "marketplace_http_requests_total"))

	req := httptest.NewRequest(http.MethodOptions, "/api/listings", nil)
	req.Header.Set("Origin", frontend)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, frontend, rr.Header().Get("Access-Control-Allow-Origin"))
}
