package testutil

import (
	"context"
	"testing"

	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/collection"
	"github.com/molalign8468/full-stack-nft-marketplace/node/deploy"
	"github.com/stretchr/testify/require"
)

// Marketplace is a deployed collection and registry with funded actors.
type Marketplace struct {
	Engine *chain.Engine
	Faucet *Faucet
	*deploy.Deployment

	Owner  *Account
	Seller *Account
	Buyer  *Account
}

// NewMarketplace deploys a collection with params and a registry on a fresh engine. Owner,
// seller and buyer each start with 100 ether.
func NewMarketplace(t testing.TB, params collection.Params) *Marketplace {
	t.Helper()
	engine := NewTestEngine(t)
	faucet := NewFaucet(engine)

	m := &Marketplace{
		Engine: engine,
		Faucet: faucet,
		Owner:  faucet.NewFundedAccount(t, 100),
		Seller: faucet.NewFundedAccount(t, 100),
		Buyer:  faucet.NewFundedAccount(t, 100),
	}
	err := engine.Execute(context.Background(), func(tx *chain.Tx) error {
		d, err := deploy.Genesis(tx, m.Owner.Address, params, nil)
		m.Deployment = d
		return err
	})
	require.NoError(t, err)
	return m
}
