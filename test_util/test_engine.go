package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // Register SQLite driver
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/deploy"
	"github.com/stretchr/testify/require"
)

// NewTestDSN returns the data source name of a fresh in-memory sqlite database.
func NewTestDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
}

// NewTestEngine opens a migrated ledger on an in-memory database with every marketplace
// contract kind registered. The engine is closed when the test ends.
func NewTestEngine(t testing.TB, opts ...chain.Option) *chain.Engine {
	t.Helper()
	engine, err := chain.Open("sqlite3", NewTestDSN(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = engine.Close()
	})

	deploy.Register(engine)
	require.NoError(t, engine.Migrate(context.Background()))
	return engine
}
