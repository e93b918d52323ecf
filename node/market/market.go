// Package market implements the Marketplace Registry: fixed-price listings over assets held
// by their sellers, settled by an atomic asset-for-payment swap.
package market

import (
	"fmt"
	"math/big"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/ownable"
)

// Kind is the contract kind registries are deployed under.
const Kind = "nft-marketplace"

const (
	marketsTable  = "markets"
	listingsTable = "listings"
)

// FirstListingID is the id of the first listing. Id 0 is never issued.
const FirstListingID = 1

// NonFungible is the asset contract surface the registry depends on.
type NonFungible interface {
	OwnerOf(tx *chain.Tx, tokenID uint64) (common.Address, error)
	GetApproved(tx *chain.Tx, tokenID uint64) (common.Address, error)
	IsApprovedForAll(tx *chain.Tx, owner, operator common.Address) (bool, error)
	SafeTransferFrom(f *chain.Frame, from, to common.Address, tokenID uint64, data []byte) error
}

// Listing is a standing offer to sell one asset at a fixed price.
type Listing struct {
	ID          uint64
	Seller      common.Address
	NFTContract common.Address
	TokenID     uint64
	Price       *big.Int
	Active      bool
}

// Market is the code of one deployed registry.
type Market struct {
	address common.Address
}

// New binds registry code to address.
func New(address common.Address) *Market {
	return &Market{address: address}
}

// Address returns the ledger address the registry is deployed at.
func (m *Market) Address() common.Address {
	return m.address
}

// Register makes registries deployable on engine.
func Register(engine *chain.Engine) {
	engine.RegisterKind(Kind, func(address common.Address) any { return New(address) }, tables()...)
}

// Deploy creates a registry owned by deployer.
func Deploy(tx *chain.Tx, deployer common.Address) (*Market, *chain.Receipt, error) {
	address, receipt, err := tx.Deploy(deployer, Kind, func(f *chain.Frame) error {
		err := tx.Exec(marketsTable, tx.Builder().Insert(marketsTable).
			Columns("address", "listing_counter").
			Values(chain.AddressKey(f.Self), int64(FirstListingID)))
		if err != nil {
			return err
		}
		return ownable.Initialize(f, deployer)
	})
	if err != nil {
		return nil, nil, err
	}
	return New(address), receipt, nil
}

// Bind returns the registry deployed at address.
func Bind(tx *chain.Tx, address common.Address) (*Market, error) {
	code, ok := tx.Code(address)
	if !ok {
		return nil, chain.ErrUnknownContract
	}
	m, ok := code.(*Market)
	if !ok {
		return nil, chain.Revert(chain.NotFound, "contract is not a marketplace")
	}
	return m, nil
}

func (m *Market) running(f *chain.Frame) error {
	if f.Self != m.address {
		return fmt.Errorf("marketplace %s invoked in a frame for %s", m.address.Hex(), f.Self.Hex())
	}
	return nil
}

func (m *Market) nonFungible(tx *chain.Tx, contract common.Address) (NonFungible, error) {
	code, ok := tx.Code(contract)
	if !ok {
		return nil, ErrUnknownNFTContract
	}
	nft, ok := code.(NonFungible)
	if !ok {
		return nil, ErrUnknownNFTContract
	}
	return nft, nil
}

func (m *Market) where() *entsql.Predicate {
	return entsql.EQ("market", chain.AddressKey(m.address))
}

func tables() []chain.Table {
	return []chain.Table{
		func(b *entsql.DialectBuilder) entsql.Querier {
			return b.CreateTable(marketsTable).IfNotExists().
				Columns(
					b.Column("address").Type("varchar(42)").Attr("NOT NULL"),
					b.Column("listing_counter").Type("bigint").Attr("NOT NULL"),
				).
				PrimaryKey("address")
		},
		func(b *entsql.DialectBuilder) entsql.Querier {
			return b.CreateTable(listingsTable).IfNotExists().
				Columns(
					b.Column("market").Type("varchar(42)").Attr("NOT NULL"),
					b.Column("listing_id").Type("bigint").Attr("NOT NULL"),
					b.Column("seller").Type("varchar(42)").Attr("NOT NULL"),
					b.Column("nft_contract").Type("varchar(42)").Attr("NOT NULL"),
					b.Column("token_id").Type("bigint").Attr("NOT NULL"),
					b.Column("price").Type("text").Attr("NOT NULL"),
					b.Column("active").Type("boolean").Attr("NOT NULL"),
				).
				PrimaryKey("market", "listing_id")
		},
	}
}

// State lists the registry tables that take part in the ledger state root.
func State() []chain.StateSource {
	return []chain.StateSource{
		{
			Table:   marketsTable,
			Columns: []string{"address", "listing_counter"},
			OrderBy: []string{"address"},
		},
		{
			Table:   listingsTable,
			Columns: []string{"market", "listing_id", "seller", "nft_contract", "token_id", "price", "active"},
			OrderBy: []string{"market", "listing_id"},
		},
	}
}
