package chain

import (
	"strings"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/ethereum/go-ethereum/common"
)

// Table builds the CREATE statement of one ledger table for the engine's dialect.
type Table func(b *entsql.DialectBuilder) entsql.Querier

const (
	AccountsTable    = "accounts"
	ContractsTable   = "contracts"
	EventsTable      = "events"
	MetaTable        = "meta"
	CheckpointsTable = "checkpoints"
)

func coreTables() []Table {
	return []Table{
		func(b *entsql.DialectBuilder) entsql.Querier {
			return b.CreateTable(AccountsTable).IfNotExists().
				Columns(
					b.Column("address").Type("varchar(42)").Attr("NOT NULL"),
					b.Column("balance").Type("text").Attr("NOT NULL"),
					b.Column("nonce").Type("bigint").Attr("NOT NULL"),
				).
				PrimaryKey("address")
		},
		func(b *entsql.DialectBuilder) entsql.Querier {
			return b.CreateTable(ContractsTable).IfNotExists().
				Columns(
					b.Column("address").Type("varchar(42)").Attr("NOT NULL"),
					b.Column("kind").Type("text").Attr("NOT NULL"),
					b.Column("owner").Type("varchar(42)").Attr("NOT NULL"),
					b.Column("deployer").Type("varchar(42)").Attr("NOT NULL"),
					b.Column("block").Type("bigint").Attr("NOT NULL"),
				).
				PrimaryKey("address")
		},
		func(b *entsql.DialectBuilder) entsql.Querier {
			return b.CreateTable(EventsTable).IfNotExists().
				Columns(
					b.Column("block").Type("bigint").Attr("NOT NULL"),
					b.Column("log_index").Type("bigint").Attr("NOT NULL"),
					b.Column("tx_hash").Type("varchar(66)").Attr("NOT NULL"),
					b.Column("contract").Type("varchar(42)").Attr("NOT NULL"),
					b.Column("name").Type("text").Attr("NOT NULL"),
					b.Column("topic").Type("varchar(66)").Attr("NOT NULL"),
					b.Column("data").Type("text").Attr("NOT NULL"),
				).
				PrimaryKey("block", "log_index")
		},
		func(b *entsql.DialectBuilder) entsql.Querier {
			return b.CreateTable(MetaTable).IfNotExists().
				Columns(
					b.Column("name").Type("varchar(64)").Attr("NOT NULL"),
					b.Column("value").Type("text").Attr("NOT NULL"),
				).
				PrimaryKey("name")
		},
		func(b *entsql.DialectBuilder) entsql.Querier {
			return b.CreateTable(CheckpointsTable).IfNotExists().
				Columns(
					b.Column("block").Type("bigint").Attr("NOT NULL"),
					b.Column("state_root").Type("varchar(66)").Attr("NOT NULL"),
					b.Column("created_at").Type("bigint").Attr("NOT NULL"),
				).
				PrimaryKey("block")
		},
	}
}

// AddressKey is the canonical storage form of an address.
func AddressKey(a common.Address) string {
	return strings.ToLower(a.Hex())
}
