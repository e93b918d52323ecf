package task_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/molalign8468/full-stack-nft-marketplace/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/collection"
	"github.com/molalign8468/full-stack-nft-marketplace/node/task"
	testutil "github.com/molalign8468/full-stack-nft-marketplace/test_util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRollback = errors.New("rollback")

func mintOne(t *testing.T, m *testutil.Marketplace) {
	t.Helper()
	ctx := context.Background()
	_, err := m.Engine.Transact(ctx, m.Owner.Address, m.Collection.Address(), nil, "flipSaleState", func(f *chain.Frame) error {
		_, err := m.Collection.FlipSaleState(f)
		return err
	})
	require.NoError(t, err)
	_, err = m.Engine.Transact(ctx, m.Seller.Address, m.Collection.Address(), common.Ether(1), "mint", func(f *chain.Frame) error {
		_, err := m.Collection.Mint(f, 1)
		return err
	})
	require.ErrorIs(t, err, collection.ErrIncorrectValue)
	_, err = m.Engine.Transact(ctx, m.Seller.Address, m.Collection.Address(), collection.DefaultParams().MintPrice, "mint", func(f *chain.Frame) error {
		_, err := m.Collection.Mint(f, 1)
		return err
	})
	require.NoError(t, err)
}

func TestAuditCleanLedger(t *testing.T) {
	m := testutil.NewMarketplace(t, collection.DefaultParams())
	mintOne(t, m)

	err := m.Engine.View(context.Background(), func(tx *chain.Tx) error {
		violations, err := task.Audit(tx, m.Deployment)
		require.NoError(t, err)
		assert.Empty(t, violations)
		return nil
	})
	require.NoError(t, err)
}

func TestAuditReportsViolations(t *testing.T) {
	m := testutil.NewMarketplace(t, collection.DefaultParams())
	mintOne(t, m)

	err := m.Engine.Execute(context.Background(), func(tx *chain.Tx) error {
		require.NoError(t, tx.SetMeta("native_supply", "1"))

		violations, err := task.Audit(tx, m.Deployment)
		require.NoError(t, err)
		require.Len(t, violations, 1)
		assert.Equal(t, "native_supply", violations[0].Invariant)
		return errRollback
	})
	require.ErrorIs(t, err, errRollback)
}

func TestCheckpoint(t *testing.T) {
	m := testutil.NewMarketplace(t, collection.DefaultParams())
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	var first *chain.Checkpoint
	err := m.Engine.Execute(ctx, func(tx *chain.Tx) error {
		var err error
		first, err = task.Checkpoint(tx, now)
		return err
	})
	require.NoError(t, err)

	t.Run("same block is idempotent", func(t *testing.T) {
		err := m.Engine.Execute(ctx, func(tx *chain.Tx) error {
			again, err := task.Checkpoint(tx, now.Add(time.Minute))
			require.NoError(t, err)
			assert.Equal(t, first, again)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("new blocks get a new root", func(t *testing.T) {
		mintOne(t, m)
		err := m.Engine.Execute(ctx, func(tx *chain.Tx) error {
			next, err := task.Checkpoint(tx, now.Add(time.Hour))
			require.NoError(t, err)
			assert.Greater(t, next.Block, first.Block)
			assert.NotEqual(t, first.StateRoot, next.StateRoot)

			latest, found, err := tx.LatestCheckpoint()
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, next, latest)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("state changed without a block", func(t *testing.T) {
		err := m.Engine.Execute(ctx, func(tx *chain.Tx) error {
			require.NoError(t, tx.Credit(m.Buyer.Address, common.Ether(1)))
			_, err := task.Checkpoint(tx, now.Add(2*time.Hour))
			return err
		})
		require.ErrorIs(t, err, chain.ErrCheckpointMismatch)
	})
}

func TestAllTasks(t *testing.T) {
	m := testutil.NewMarketplace(t, collection.DefaultParams())
	config := testutil.TestConfig(t)
	mintOne(t, m)

	tasks := task.AllTasks(config)
	require.Len(t, tasks, 2)
	for _, tt := range tasks {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Positive(t, tt.Duration)
			require.NoError(t, tt.Task(context.Background(), m.Engine, m.Deployment))
		})
	}

	err := m.Engine.View(context.Background(), func(tx *chain.Tx) error {
		checkpoint, found, err := tx.LatestCheckpoint()
		require.NoError(t, err)
		require.True(t, found)
		head, err := tx.BlockNumber()
		require.NoError(t, err)
		assert.Equal(t, head, checkpoint.Block)
		return nil
	})
	require.NoError(t, err)
}
