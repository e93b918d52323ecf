package gateway

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"github.com/molalign8468/full-stack-nft-marketplace/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/handler"
	"github.com/molalign8468/full-stack-nft-marketplace/node/market"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var errBadRequest = errors.New("bad request")

func (g *Gateway) registerRoutes() {
	g.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"uptime":     time.Since(g.appeared).String(),
			"service":    "marketplace-gateway",
			"collection": g.deployment.Collection.Address().Hex(),
			"market":     g.deployment.Market.Address().Hex(),
		})
	})

	g.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := g.router.Group("/api")
	apiGroup.GET("/collection", g.view(func(c *gin.Context, tx *chain.Tx) (any, error) {
		info, err := g.deployment.Collection.Info(tx)
		if err != nil {
			return nil, err
		}
		return handler.MarshalCollection(info), nil
	}))

	apiGroup.GET("/tokens/:id", g.view(func(c *gin.Context, tx *chain.Tx) (any, error) {
		id, err := uintParam(c, "id")
		if err != nil {
			return nil, err
		}
		return handler.LoadToken(tx, g.deployment.Collection, id)
	}))

	apiGroup.GET("/accounts/:address/tokens", g.view(func(c *gin.Context, tx *chain.Tx) (any, error) {
		owner, err := common.ParseAddress(c.Param("address"))
		if err != nil {
			return nil, errors.Join(errBadRequest, err)
		}
		tokens, err := handler.LoadTokensOf(tx, g.deployment.Collection, owner)
		if err != nil {
			return nil, err
		}
		return gin.H{"owner": owner.Hex(), "tokens": tokens}, nil
	}))

	apiGroup.GET("/listings", g.view(func(c *gin.Context, tx *chain.Tx) (any, error) {
		counter, err := g.deployment.Market.ListingIDCounter(tx)
		if err != nil {
			return nil, err
		}
		listings := make([]*api.Listing, 0)
		for id := uint64(market.FirstListingID); id < counter; id++ {
			listing, err := g.deployment.Market.Listing(tx, id)
			if err != nil {
				return nil, err
			}
			if listing.Active {
				listings = append(listings, handler.MarshalListing(listing))
			}
		}
		return gin.H{"listings": listings}, nil
	}))

	apiGroup.GET("/listings/:id", g.view(func(c *gin.Context, tx *chain.Tx) (any, error) {
		id, err := uintParam(c, "id")
		if err != nil {
			return nil, err
		}
		listing, err := g.deployment.Market.Listing(tx, id)
		if err != nil {
			return nil, err
		}
		return handler.MarshalListing(listing), nil
	}))
}

// view answers with the result of read in a read-only ledger transaction.
func (g *Gateway) view(read func(c *gin.Context, tx *chain.Tx) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body any
		err := g.engine.View(c.Request.Context(), func(tx *chain.Tx) error {
			var err error
			body, err = read(c, tx)
			return err
		})
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": errorMessage(err)})
			return
		}
		c.JSON(http.StatusOK, body)
	}
}

func uintParam(c *gin.Context, name string) (uint64, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, errors.Join(errBadRequest, err)
	}
	return v, nil
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case chain.KindOf(err) == chain.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	if revert, ok := chain.AsRevert(err); ok {
		return revert.Reason
	}
	if errors.Is(err, errBadRequest) {
		return err.Error()
	}
	return http.StatusText(http.StatusInternalServerError)
}
