package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/ethereum/go-ethereum/common"
)

// Factory binds contract code to a deployed address.
type Factory func(address common.Address) any

// LogSink receives the logs of every committed ledger transaction, in commit order.
// Sinks run while the engine is still serialized and must not block.
type LogSink func(logs []*Log)

// Engine is the host ledger. It executes one ledger transaction at a time on top of a SQL
// database, so every call observes a single global serialization of state transitions.
type Engine struct {
	driver  *entsql.Driver
	dialect string
	chainID uint64

	// sem serializes ledger transactions; acquiring it honours context cancellation.
	sem chan struct{}

	codeMu sync.RWMutex
	code   map[common.Address]any
	kinds  map[string]Factory
	tables []Table

	sinkMu sync.RWMutex
	sinks  []LogSink
}

// Option configures an Engine.
type Option func(*Engine)

// WithChainID sets the chain id mixed into transaction hashes.
func WithChainID(chainID uint64) Option {
	return func(e *Engine) {
		e.chainID = chainID
	}
}

// Open opens the database and wraps it in an Engine.
func Open(driverName, dataSource string, opts ...Option) (*Engine, error) {
	driver, err := entsql.Open(driverName, dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driverName, err)
	}
	if driverName == dialect.SQLite {
		// A single connection keeps in-memory databases alive and avoids SQLITE_BUSY between
		// pooled connections; the engine serializes access anyway.
		driver.DB().SetMaxOpenConns(1)
	}
	return NewEngine(driver, opts...), nil
}

// NewEngine creates an Engine over an already opened driver.
func NewEngine(driver *entsql.Driver, opts ...Option) *Engine {
	e := &Engine{
		driver:  driver,
		dialect: driver.Dialect(),
		sem:     make(chan struct{}, 1),
		code:    make(map[common.Address]any),
		kinds:   make(map[string]Factory),
		tables:  coreTables(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close closes the underlying database.
func (e *Engine) Close() error {
	return e.driver.Close()
}

// Dialect returns the SQL dialect of the engine's database.
func (e *Engine) Dialect() string {
	return e.dialect
}

// ChainID returns the chain id used for transaction hashes.
func (e *Engine) ChainID() uint64 {
	return e.chainID
}

// RegisterKind makes a contract kind deployable and restorable, and adds its tables to the
// migration set. It must be called before Migrate and Restore.
func (e *Engine) RegisterKind(kind string, factory Factory, tables ...Table) {
	e.codeMu.Lock()
	defer e.codeMu.Unlock()
	if _, exists := e.kinds[kind]; exists {
		return
	}
	e.kinds[kind] = factory
	e.tables = append(e.tables, tables...)
}

// Migrate creates every registered table that does not exist yet.
func (e *Engine) Migrate(ctx context.Context) error {
	e.codeMu.RLock()
	tables := append([]Table(nil), e.tables...)
	e.codeMu.RUnlock()

	b := entsql.Dialect(e.dialect)
	for _, table := range tables {
		query, args := table(b).Query()
		if err := e.driver.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// Restore rebuilds the code registry from the contracts table after a restart.
func (e *Engine) Restore(ctx context.Context) (int, error) {
	type row struct {
		address string
		kind    string
	}
	var rows []row
	err := e.View(ctx, func(tx *Tx) error {
		q := tx.Builder().Select("address", "kind").From(tx.Builder().Table(ContractsTable))
		return tx.Query(ContractsTable, q, func(scan Scanner) error {
			var r row
			if err := scan.Scan(&r.address, &r.kind); err != nil {
				return err
			}
			rows = append(rows, r)
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	e.codeMu.Lock()
	defer e.codeMu.Unlock()
	for _, r := range rows {
		factory, ok := e.kinds[r.kind]
		if !ok {
			return 0, fmt.Errorf("contract %s has unregistered kind %q", r.address, r.kind)
		}
		address := common.HexToAddress(r.address)
		e.code[address] = factory(address)
	}
	return len(rows), nil
}

// Code returns the committed contract code at address.
func (e *Engine) Code(address common.Address) (any, bool) {
	e.codeMu.RLock()
	defer e.codeMu.RUnlock()
	code, ok := e.code[address]
	return code, ok
}

func (e *Engine) factory(kind string) (Factory, bool) {
	e.codeMu.RLock()
	defer e.codeMu.RUnlock()
	f, ok := e.kinds[kind]
	return f, ok
}

func (e *Engine) install(deployed []deployment) {
	if len(deployed) == 0 {
		return
	}
	e.codeMu.Lock()
	defer e.codeMu.Unlock()
	for _, d := range deployed {
		e.code[d.address] = d.code
	}
}

// AddLogSink registers a receiver for committed logs.
func (e *Engine) AddLogSink(sink LogSink) {
	e.sinkMu.Lock()
	defer e.sinkMu.Unlock()
	e.sinks = append(e.sinks, sink)
}

func (e *Engine) publish(logs []*Log) {
	if len(logs) == 0 {
		return
	}
	e.sinkMu.RLock()
	defer e.sinkMu.RUnlock()
	for _, sink := range e.sinks {
		sink(logs)
	}
}

// Begin starts a ledger transaction. It blocks until every earlier transaction finished.
func (e *Engine) Begin(ctx context.Context) (*Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	dtx, err := e.driver.Tx(ctx)
	if err != nil {
		e.release()
		return nil, fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	return &Tx{
		ctx:     ctx,
		engine:  e,
		tx:      dtx,
		builder: entsql.Dialect(e.dialect),
		guards:  make(map[common.Address]bool),
	}, nil
}

func (e *Engine) release() {
	<-e.sem
}

// Execute runs fn in a ledger transaction, committing when it returns nil and rolling back
// otherwise.
func (e *Engine) Execute(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := e.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Default().Error("Failed to rollback ledger transaction", "error", rbErr, "original_error", err)
		}
		return err
	}
	return tx.Commit()
}

// View runs fn in a ledger transaction that is always rolled back.
func (e *Engine) View(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := e.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()
	return fn(tx)
}

// Transact executes a single top-level call in its own ledger transaction.
func (e *Engine) Transact(ctx context.Context, from, to common.Address, value *big.Int, method string, fn func(f *Frame) error) (*Receipt, error) {
	var receipt *Receipt
	err := e.Execute(ctx, func(tx *Tx) error {
		var err error
		receipt, err = tx.Transact(from, to, value, method, fn)
		return err
	})
	return receipt, err
}
