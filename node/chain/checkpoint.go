package chain

import (
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrCheckpointMismatch means the state of an already checkpointed block hashes differently now.
var ErrCheckpointMismatch = errors.New("state root differs from checkpoint")

// StateSource names the rows of one table that take part in the state root.
type StateSource struct {
	Table   string
	Columns []string
	// OrderBy must be a unique key of the table so every node hashes rows in the same order.
	OrderBy []string
}

// AccountState is the state source of native balances and nonces.
func AccountState() StateSource {
	return StateSource{
		Table:   AccountsTable,
		Columns: []string{"address", "balance", "nonce"},
		OrderBy: []string{"address"},
	}
}

// Checkpoint records the state root of the ledger at a block.
type Checkpoint struct {
	Block     uint64
	StateRoot common.Hash
	CreatedAt time.Time
}

// StateRoot hashes the rows of sources with keccak256. Each row contributes its table name and
// every column rendered as text, length prefixed.
func (t *Tx) StateRoot(sources ...StateSource) (common.Hash, error) {
	hasher := crypto.NewKeccakState()
	write := func(s string) {
		_, _ = fmt.Fprintf(hasher, "%d:%s", len(s), s)
	}

	for _, source := range sources {
		q := t.builder.Select(source.Columns...).From(t.builder.Table(source.Table)).OrderBy(source.OrderBy...)
		err := t.Query(source.Table, q, func(row Scanner) error {
			values := make([]string, len(source.Columns))
			dest := make([]any, len(values))
			for i := range values {
				dest[i] = &values[i]
			}
			if err := row.Scan(dest...); err != nil {
				return err
			}
			write(source.Table)
			for _, v := range values {
				write(v)
			}
			return nil
		})
		if err != nil {
			return common.Hash{}, fmt.Errorf("failed to hash %s: %w", source.Table, err)
		}
	}

	var root common.Hash
	_, _ = hasher.Read(root[:])
	return root, nil
}

// LatestCheckpoint returns the checkpoint of the highest block, if any was written.
func (t *Tx) LatestCheckpoint() (*Checkpoint, bool, error) {
	var (
		block     int64
		root      string
		createdAt int64
	)
	q := t.builder.Select("block", "state_root", "created_at").
		From(t.builder.Table(CheckpointsTable)).
		OrderBy(entsql.Desc("block")).
		Limit(1)
	found, err := t.QueryRow(CheckpointsTable, q, &block, &root, &createdAt)
	if err != nil || !found {
		return nil, false, err
	}
	return &Checkpoint{
		Block:     uint64(block),
		StateRoot: common.HexToHash(root),
		CreatedAt: time.Unix(createdAt, 0),
	}, true, nil
}

// WriteCheckpoint records root for the head block. When the head block is already
// checkpointed nothing is written, and a different root fails with ErrCheckpointMismatch.
func (t *Tx) WriteCheckpoint(root common.Hash, at time.Time) (*Checkpoint, error) {
	head, err := t.BlockNumber()
	if err != nil {
		return nil, err
	}
	latest, found, err := t.LatestCheckpoint()
	if err != nil {
		return nil, err
	}
	if found && latest.Block == head {
		if latest.StateRoot != root {
			return nil, fmt.Errorf("%w: block %d was %s, now %s", ErrCheckpointMismatch, head, latest.StateRoot.Hex(), root.Hex())
		}
		return latest, nil
	}

	err = t.Exec(CheckpointsTable, t.builder.Insert(CheckpointsTable).
		Columns("block", "state_root", "created_at").
		Values(int64(head), root.Hex(), at.Unix()))
	if err != nil {
		return nil, err
	}
	return &Checkpoint{Block: head, StateRoot: root, CreatedAt: time.Unix(at.Unix(), 0)}, nil
}
