package task

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/molalign8468/full-stack-nft-marketplace/node"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/deploy"
	"github.com/molalign8468/full-stack-nft-marketplace/node/market"
	"github.com/molalign8468/full-stack-nft-marketplace/node/observability"
)

// Task is a task that is scheduled to run.
type Task struct {
	// Name identifies the task in logs and in the scheduler.
	Name string
	// Duration is the duration between each run of the task.
	Duration time.Duration
	// Task is the function that is run when the task is scheduled.
	Task func(context.Context, *chain.Engine, *deploy.Deployment) error
}

// AllTasks returns all the tasks that are scheduled to run.
func AllTasks(config *node.Config) []Task {
	return []Task{
		{
			Name:     "audit_invariants",
			Duration: config.AuditInterval,
			Task: func(ctx context.Context, engine *chain.Engine, d *deploy.Deployment) error {
				return engine.View(ctx, func(tx *chain.Tx) error {
					violations, err := Audit(tx, d)
					if err != nil {
						return err
					}
					logger := slog.Default()
					for _, v := range violations {
						logger.Error("Ledger invariant violated", "invariant", v.Invariant, "detail", v.Detail)
						observability.RecordAuditViolation(v.Invariant)
					}
					if block, err := tx.BlockNumber(); err == nil {
						observability.SetBlockNumber(block)
					}
					return nil
				})
			},
		},
		{
			Name:     "checkpoint_state",
			Duration: config.CheckpointInterval,
			Task: func(ctx context.Context, engine *chain.Engine, _ *deploy.Deployment) error {
				return engine.Execute(ctx, func(tx *chain.Tx) error {
					checkpoint, err := Checkpoint(tx, time.Now())
					if err != nil {
						return err
					}
					slog.Default().Info("Checkpointed ledger state",
						"block", checkpoint.Block, "state_root", checkpoint.StateRoot.Hex())
					observability.SetCheckpointBlock(checkpoint.Block)
					return nil
				})
			},
		},
	}
}

// Violation is a broken ledger invariant found by Audit.
type Violation struct {
	Invariant string
	Detail    string
}

// Audit checks the bookkeeping invariants of the deployment in tx:
//   - the collection stores exactly as many tokens as it has minted, never more than its
//     max supply;
//   - the registry stores every listing id it has handed out;
//   - native balances add up to the native supply ever credited.
func Audit(tx *chain.Tx, d *deploy.Deployment) ([]Violation, error) {
	var violations []Violation
	violate := func(invariant, format string, args ...any) {
		violations = append(violations, Violation{Invariant: invariant, Detail: fmt.Sprintf(format, args...)})
	}

	info, err := d.Collection.Info(tx)
	if err != nil {
		return nil, err
	}
	stored, err := d.Collection.StoredTokens(tx)
	if err != nil {
		return nil, err
	}
	if stored != info.TokenIDCounter {
		violate("token_count", "collection %s stores %d tokens but minted %d", info.Address.Hex(), stored, info.TokenIDCounter)
	}
	if info.TokenIDCounter > info.MaxSupply {
		violate("max_supply", "collection %s minted %d tokens over a max supply of %d", info.Address.Hex(), info.TokenIDCounter, info.MaxSupply)
	}

	counter, err := d.Market.ListingIDCounter(tx)
	if err != nil {
		return nil, err
	}
	listings, err := d.Market.StoredListings(tx)
	if err != nil {
		return nil, err
	}
	if listings != counter-market.FirstListingID {
		violate("listing_count", "registry %s stores %d listings but handed out %d ids", d.Market.Address().Hex(), listings, counter-market.FirstListingID)
	}

	balances, _, err := tx.Accounts()
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, balance := range balances {
		total.Add(total, balance)
	}
	supply, err := tx.NativeSupply()
	if err != nil {
		return nil, err
	}
	if total.Cmp(supply) != 0 {
		violate("native_supply", "balances add up to %s wei but %s wei were credited", total, supply)
	}
	return violations, nil
}

// Checkpoint writes the state root of the ledger at its head block.
func Checkpoint(tx *chain.Tx, at time.Time) (*chain.Checkpoint, error) {
	root, err := tx.StateRoot(deploy.State()...)
	if err != nil {
		return nil, err
	}
	return tx.WriteCheckpoint(root, at)
}
