// Package collection implements the LoyaltyPoint token ledger: a capped, sale-gated ERC-721
// style collection with owner administration and an accumulated mint balance.
package collection

import (
	"fmt"
	"math/big"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/ethereum/go-ethereum/common"
	nftmarketplace "github.com/molalign8468/full-stack-nft-marketplace"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/ownable"
)

// Kind is the contract kind collections are deployed under.
const Kind = "erc721-collection"

const (
	collectionsTable       = "collections"
	tokensTable            = "tokens"
	operatorApprovalsTable = "operator_approvals"
)

// Params are fixed at deployment.
type Params struct {
	Name      string
	Symbol    string
	MaxSupply uint64
	MaxPerTx  uint64
	MintPrice *big.Int
	BaseURI   string
}

// DefaultParams returns the LoyaltyPoint parameters.
func DefaultParams() Params {
	return Params{
		Name:      nftmarketplace.CollectionName,
		Symbol:    nftmarketplace.CollectionSymbol,
		MaxSupply: nftmarketplace.MaxSupply,
		MaxPerTx:  nftmarketplace.MaxMintPerTx,
		MintPrice: big.NewInt(nftmarketplace.MintPriceWei),
	}
}

// Collection is the code of one deployed collection.
type Collection struct {
	address common.Address
}

// New binds collection code to address.
func New(address common.Address) *Collection {
	return &Collection{address: address}
}

// Address returns the contract address.
func (c *Collection) Address() common.Address {
	return c.address
}

// Register makes collections deployable on engine.
func Register(engine *chain.Engine) {
	engine.RegisterKind(Kind, func(address common.Address) any { return New(address) }, tables()...)
}

// Deploy creates a collection owned by deployer.
func Deploy(tx *chain.Tx, deployer common.Address, params Params) (*Collection, *chain.Receipt, error) {
	if params.MaxSupply == 0 || params.MaxPerTx == 0 {
		return nil, nil, fmt.Errorf("max supply and max per tx must be positive")
	}
	if params.MintPrice == nil || params.MintPrice.Sign() < 0 {
		return nil, nil, fmt.Errorf("mint price must not be negative")
	}
	address, receipt, err := tx.Deploy(deployer, Kind, func(f *chain.Frame) error {
		err := tx.Exec(collectionsTable, tx.Builder().Insert(collectionsTable).
			Columns("address", "name", "symbol", "base_uri", "max_supply", "max_per_tx", "mint_price", "sale_active", "token_counter").
			Values(chain.AddressKey(f.Self), params.Name, params.Symbol, params.BaseURI,
				int64(params.MaxSupply), int64(params.MaxPerTx), params.MintPrice.String(), false, int64(0)))
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

// Bind returns the collection deployed at address.
func Bind(tx *chain.Tx, address common.Address) (*Collection, error) {
	code, ok := tx.Code(address)
	if !ok {
		return nil, chain.ErrUnknownContract
	}
	c, ok := code.(*Collection)
	if !ok {
		return nil, chain.Revert(chain.NotFound, "contract is not a collection")
	}
	return c, nil
}

func (c *Collection) where() *entsql.Predicate {
	return entsql.EQ("collection", chain.AddressKey(c.address))
}

func (c *Collection) running(f *chain.Frame) error {
	if f.Self != c.address {
		return fmt.Errorf("collection %s invoked in a frame for %s", c.address.Hex(), f.Self.Hex())
	}
	return nil
}

func tables() []chain.Table {
	return []chain.Table{
		func(b *entsql.DialectBuilder) entsql.Querier {
			return b.CreateTable(collectionsTable).IfNotExists().
				Columns(
					b.Column("address").Type("varchar(42)").Attr("NOT NULL"),
					b.Column("name").Type("text").Attr("NOT NULL"),
					b.Column("symbol").Type("text").Attr("NOT NULL"),
					b.Column("base_uri").Type("text").Attr("NOT NULL"),
					b.Column("max_supply").Type("bigint").Attr("NOT NULL"),
					b.Column("max_per_tx").Type("bigint").Attr("NOT NULL"),
					b.Column("mint_price").Type("text").Attr("NOT NULL"),
					b.Column("sale_active").Type("boolean").Attr("NOT NULL"),
					b.Column("token_counter").Type("bigint").Attr("NOT NULL"),
				).
				PrimaryKey("address")
		},
		func(b *entsql.DialectBuilder) entsql.Querier {
			return b.CreateTable(tokensTable).IfNotExists().
				Columns(
					b.Column("collection").Type("varchar(42)").Attr("NOT NULL"),
					b.Column("token_id").Type("bigint").Attr("NOT NULL"),
					b.Column("owner").Type("varchar(42)").Attr("NOT NULL"),
					b.Column("uri").Type("text").Attr("NOT NULL"),
					b.Column("approved").Type("varchar(42)").Attr("NOT NULL"),
				).
				PrimaryKey("collection", "token_id")
		},
		func(b *entsql.DialectBuilder) entsql.Querier {
			return b.CreateTable(operatorApprovalsTable).IfNotExists().
				Columns(
					b.Column("collection").Type("varchar(42)").Attr("NOT NULL"),
					b.Column("owner").Type("varchar(42)").Attr("NOT NULL"),
					b.Column("operator").Type("varchar(42)").Attr("NOT NULL"),
					b.Column("approved").Type("boolean").Attr("NOT NULL"),
				).
				PrimaryKey("collection", "owner", "operator")
		},
	}
}

// State lists the collection tables that take part in the ledger state root.
func State() []chain.StateSource {
	return []chain.StateSource{
		{
			Table:   collectionsTable,
			Columns: []string{"address", "sale_active", "token_counter"},
			OrderBy: []string{"address"},
		},
		{
			Table:   tokensTable,
			Columns: []string{"collection", "token_id", "owner", "uri", "approved"},
			OrderBy: []string{"collection", "token_id"},
		},
		{
			Table:   operatorApprovalsTable,
			Columns: []string{"collection", "owner", "operator", "approved"},
			OrderBy: []string{"collection", "owner", "operator"},
		},
	}
}
