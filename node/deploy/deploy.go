// Package deploy brings a ledger up: genesis allocation and contract deployment on a fresh
// database, code restore on every later start.
package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/collection"
	"github.com/molalign8468/full-stack-nft-marketplace/node/market"
)

const (
	metaCollection = "collection_address"
	metaMarket     = "market_address"
)

// Deployment holds the contracts a node serves.
type Deployment struct {
	Collection *collection.Collection
	Market     *market.Market
}

// Register makes every contract kind of the marketplace deployable on engine.
func Register(engine *chain.Engine) {
	collection.Register(engine)
	market.Register(engine)
}

// Bootstrap restores the code of a ledger that was already deployed, or runs genesis on an
// empty one: alloc is credited, then owner deploys the collection and the registry.
func Bootstrap(ctx context.Context, engine *chain.Engine, owner common.Address, params collection.Params, alloc map[common.Address]*big.Int) (*Deployment, error) {
	restored, err := engine.Restore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to restore contracts: %w", err)
	}

	var d *Deployment
	if restored > 0 {
		err = engine.View(ctx, func(tx *chain.Tx) error {
			d, err = Load(tx)
			return err
		})
		if err != nil {
			return nil, err
		}
		slog.Default().Info("Restored ledger", "contracts", restored,
			"collection", d.Collection.Address().Hex(), "market", d.Market.Address().Hex())
		return d, nil
	}

	err = engine.Execute(ctx, func(tx *chain.Tx) error {
		d, err = Genesis(tx, owner, params, alloc)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("genesis failed: %w", err)
	}
	slog.Default().Info("Deployed ledger", "owner", owner.Hex(),
		"collection", d.Collection.Address().Hex(), "market", d.Market.Address().Hex())
	return d, nil
}

// Genesis credits alloc and deploys both contracts from owner in tx.
func Genesis(tx *chain.Tx, owner common.Address, params collection.Params, alloc map[common.Address]*big.Int) (*Deployment, error) {
	accounts := make([]common.Address, 0, len(alloc))
	for address := range alloc {
		accounts = append(accounts, address)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Cmp(accounts[j]) < 0
	})
	for _, address := range accounts {
		if err := tx.Credit(address, alloc[address]); err != nil {
			return nil, fmt.Errorf("failed to allocate %s: %w", address.Hex(), err)
		}
	}

	c, _, err := collection.Deploy(tx, owner, params)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy collection: %w", err)
	}
	m, _, err := market.Deploy(tx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy market: %w", err)
	}
	if err := tx.SetMeta(metaCollection, chain.AddressKey(c.Address())); err != nil {
		return nil, err
	}
	if err := tx.SetMeta(metaMarket, chain.AddressKey(m.Address())); err != nil {
		return nil, err
	}
	return &Deployment{Collection: c, Market: m}, nil
}

// Load binds the contracts recorded at genesis.
func Load(tx *chain.Tx) (*Deployment, error) {
	collectionAddress, err := recorded(tx, metaCollection)
	if err != nil {
		return nil, err
	}
	marketAddress, err := recorded(tx, metaMarket)
	if err != nil {
		return nil, err
	}
	c, err := collection.Bind(tx, collectionAddress)
	if err != nil {
		return nil, err
	}
	m, err := market.Bind(tx, marketAddress)
	if err != nil {
		return nil, err
	}
	return &Deployment{Collection: c, Market: m}, nil
}

func recorded(tx *chain.Tx, name string) (common.Address, error) {
	value, found, err := tx.Meta(name)
	if err != nil {
		return common.Address{}, err
	}
	if !found {
		return common.Address{}, fmt.Errorf("ledger has no %s", name)
	}
	return common.HexToAddress(value), nil
}

// State lists every table that takes part in the ledger state root: native accounts, then
// the collection and the registry.
func State() []chain.StateSource {
	sources := []chain.StateSource{chain.AccountState()}
	sources = append(sources, collection.State()...)
	return append(sources, market.State()...)
}
