package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/molalign8468/full-stack-nft-marketplace/common/logging"
)

// MaxCallDepth bounds nested contract calls.
const MaxCallDepth = 1024

// Scanner reads the current row of a query.
type Scanner interface {
	Scan(dest ...any) error
}

// Receipt describes a committed top-level call.
type Receipt struct {
	TxHash common.Hash
	Block  uint64
	Nonce  uint64
	From   common.Address
	To     common.Address
	Value  *big.Int
	Logs   []*Log
}

type deployment struct {
	address common.Address
	code    any
}

type callContext struct {
	hash     common.Hash
	block    uint64
	firstLog int
}

// Tx is one ledger transaction. It is not safe for concurrent use.
type Tx struct {
	ctx     context.Context
	engine  *Engine
	tx      dialect.Tx
	builder *entsql.DialectBuilder

	logs     []*Log
	deployed []deployment
	guards   map[common.Address]bool
	current  *callContext

	savepoints int
	closed     bool
}

// Context returns the context the transaction was started with.
func (t *Tx) Context() context.Context {
	return t.ctx
}

// Engine returns the engine that owns the transaction.
func (t *Tx) Engine() *Engine {
	return t.engine
}

// Builder returns a statement builder for the engine's dialect.
func (t *Tx) Builder() *entsql.DialectBuilder {
	return t.builder
}

// Commit makes every effect of the transaction durable and publishes its logs.
func (t *Tx) Commit() error {
	if t.closed {
		return ErrTxClosed
	}
	t.closed = true
	defer t.engine.release()

	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}
	t.engine.install(t.deployed)
	t.engine.publish(t.logs)
	return nil
}

// Rollback discards the transaction. Calling it after Commit is a no-op.
func (t *Tx) Rollback() error {
	if t.closed {
		return nil
	}
	t.closed = true
	defer t.engine.release()
	return t.tx.Rollback()
}

// Exec runs a statement against table.
func (t *Tx) Exec(table string, q entsql.Querier) error {
	if t.closed {
		return ErrTxClosed
	}
	query, args := q.Query()
	start := time.Now()
	err := t.tx.Exec(t.ctx, query, args, nil)
	logging.ObserveQuery(t.ctx, table, time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", table, err)
	}
	return nil
}

// Query runs q and calls fn for every row. fn must not issue further statements.
func (t *Tx) Query(table string, q entsql.Querier, fn func(row Scanner) error) error {
	if t.closed {
		return ErrTxClosed
	}
	query, args := q.Query()
	var rows entsql.Rows
	start := time.Now()
	if err := t.tx.Query(t.ctx, query, args, &rows); err != nil {
		return fmt.Errorf("failed to read %s: %w", table, err)
	}
	defer rows.Close()
	defer func() {
		logging.ObserveQuery(t.ctx, table, time.Since(start))
	}()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// QueryRow scans the first row of q into dest and reports whether a row existed.
func (t *Tx) QueryRow(table string, q entsql.Querier, dest ...any) (bool, error) {
	found := false
	err := t.Query(table, q, func(row Scanner) error {
		if found {
			return nil
		}
		found = true
		return row.Scan(dest...)
	})
	return found, err
}

// Count returns the number of rows matching where in table.
func (t *Tx) Count(table string, where *entsql.Predicate) (uint64, error) {
	q := t.builder.Select("COUNT(*)").From(t.builder.Table(table))
	if where != nil {
		q = q.Where(where)
	}
	var n int64
	if _, err := t.QueryRow(table, q, &n); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func (t *Tx) raw(statement string) error {
	if err := t.tx.Exec(t.ctx, statement, []any{}, nil); err != nil {
		return fmt.Errorf("failed to run %q: %w", statement, err)
	}
	return nil
}

// atomic runs fn inside a savepoint. When fn fails, every database write, log, deployment
// and code registration made by fn is discarded and its error returned.
func (t *Tx) atomic(fn func() error) (err error) {
	if t.closed {
		return ErrTxClosed
	}
	t.savepoints++
	name := fmt.Sprintf("sp_%d", t.savepoints)
	if err := t.raw("SAVEPOINT " + name); err != nil {
		return err
	}
	logMark, deployMark := len(t.logs), len(t.deployed)
	undo := func() error {
		t.logs = t.logs[:logMark]
		t.deployed = t.deployed[:deployMark]
		if err := t.raw("ROLLBACK TO SAVEPOINT " + name); err != nil {
			return err
		}
		return t.raw("RELEASE SAVEPOINT " + name)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = undo()
			panic(r)
		}
	}()

	if err := fn(); err != nil {
		if undoErr := undo(); undoErr != nil {
			return errors.Join(err, undoErr)
		}
		return err
	}
	return t.raw("RELEASE SAVEPOINT " + name)
}

// Transact executes a top-level call from an externally owned account. The sender nonce,
// block number, value transfer and everything fn does commit or revert together.
func (t *Tx) Transact(from, to common.Address, value *big.Int, method string, fn func(f *Frame) error) (*Receipt, error) {
	return t.apply(from, value, method, func(uint64) (common.Address, error) { return to, nil }, fn)
}

func (t *Tx) apply(from common.Address, value *big.Int, method string, target func(nonce uint64) (common.Address, error), fn func(f *Frame) error) (*Receipt, error) {
	if t.current != nil {
		return nil, errors.New("top-level call started inside another call")
	}
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return nil, Revert(PolicyViolation, "negative value")
	}

	var receipt *Receipt
	err := t.atomic(func() error {
		nonce, err := t.bumpNonce(from)
		if err != nil {
			return err
		}
		to, err := target(nonce)
		if err != nil {
			return err
		}
		block, err := t.nextBlock()
		if err != nil {
			return err
		}
		hash := t.transactionHash(from, nonce, to, value, method)

		t.current = &callContext{hash: hash, block: block, firstLog: len(t.logs)}
		defer func() {
			t.current = nil
		}()

		if err := t.move(from, to, value); err != nil {
			return err
		}
		frame := &Frame{tx: t, Caller: from, Self: to, Origin: from, Value: value, depth: 1}
		if fn != nil {
			if err := fn(frame); err != nil {
				return err
			}
		}
		receipt = &Receipt{
			TxHash: hash,
			Block:  block,
			Nonce:  nonce,
			From:   from,
			To:     to,
			Value:  value,
			Logs:   append([]*Log(nil), t.logs[t.current.firstLog:]...),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (t *Tx) transactionHash(from common.Address, nonce uint64, to common.Address, value *big.Int, method string) common.Hash {
	enc, err := rlp.EncodeToBytes([]any{t.engine.chainID, from, nonce, to, value, method})
	if err != nil {
		// Only reachable with unencodable inputs; fall back to hashing the parts directly.
		return crypto.Keccak256Hash(from.Bytes(), to.Bytes(), value.Bytes(), []byte(method))
	}
	return crypto.Keccak256Hash(enc)
}

// Code returns the contract code at address, including contracts deployed earlier in this
// transaction.
func (t *Tx) Code(address common.Address) (any, bool) {
	for i := len(t.deployed) - 1; i >= 0; i-- {
		if t.deployed[i].address == address {
			return t.deployed[i].code, true
		}
	}
	return t.engine.Code(address)
}
