package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/molalign8468/full-stack-nft-marketplace/node/authn"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/stretchr/testify/require"
)

// TestContext returns a context carrying an open ledger transaction, the way the session
// middleware hands it to handlers. The transaction is rolled back when the test ends unless
// the test commits it.
func TestContext(t testing.TB, engine *chain.Engine) (context.Context, *chain.Tx) {
	t.Helper()
	ctx := context.Background()

	tx, err := engine.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	return chain.ContextWithTx(ctx, tx), tx
}

// WithSession returns ctx authenticated as account.
func WithSession(ctx context.Context, account *Account) context.Context {
	return authn.ContextWithSession(ctx, authn.NewSession(account.Key.PubKey(), time.Now().Add(time.Hour).Unix()))
}
