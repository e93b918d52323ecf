package chain

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/molalign8468/full-stack-nft-marketplace/common/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ContextKey is a type for context keys.
type ContextKey string

// TxKey is the context key for the ledger transaction.
const TxKey ContextKey = "ledger_tx"

// DbError represents ledger session errors.
type DbError struct {
	Op      string // Operation that failed
	Method  string // gRPC method where the error occurred
	Err     error  // Original error
	IsPanic bool   // Whether this error was from a panic
}

func (e *DbError) Error() string {
	if e.IsPanic {
		return fmt.Sprintf("panic in %s during %s: %v", e.Method, e.Op, e.Err)
	}
	return fmt.Sprintf("ledger error in %s during %s: %v", e.Method, e.Op, e.Err)
}

func (e *DbError) Unwrap() error {
	return e.Err
}

// SessionMiddleware runs every gRPC call in its own ledger transaction: committed when the
// handler succeeds, rolled back when it fails or panics.
func SessionMiddleware(engine *Engine) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		logger := logging.GetLoggerFromContext(ctx).With("method", info.FullMethod)

		tx, err := engine.Begin(ctx)
		if err != nil {
			logger.Error("Failed to start ledger transaction", "error", err)
			return nil, status.Error(codes.Unavailable, (&DbError{
				Op:     "begin_transaction",
				Method: info.FullMethod,
				Err:    err,
			}).Error())
		}

		ctx = ContextWithTx(ctx, tx)

		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic recovered in ledger transaction",
					"panic", r,
					"stack", string(debug.Stack()),
				)
				if rbErr := tx.Rollback(); rbErr != nil {
					logger.Error("Failed to rollback ledger transaction after panic",
						"rollback_error", rbErr,
						"original_panic", r,
					)
				}
				panic(&DbError{
					Op:      "transaction_execution",
					Method:  info.FullMethod,
					Err:     fmt.Errorf("panic: %v", r),
					IsPanic: true,
				})
			}
		}()

		resp, err := handler(ctx, req)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("Failed to rollback ledger transaction",
					"original_error", err,
					"rollback_error", rbErr,
				)
				return nil, status.Error(codes.Internal, (&DbError{
					Op:     "rollback",
					Method: info.FullMethod,
					Err:    fmt.Errorf("rollback failed: %v (original error: %v)", rbErr, err),
				}).Error())
			}
			return nil, err
		}

		if err := tx.Commit(); err != nil {
			logger.Error("Failed to commit ledger transaction", "error", err)
			return nil, status.Error(codes.Internal, (&DbError{
				Op:     "commit",
				Method: info.FullMethod,
				Err:    err,
			}).Error())
		}

		return resp, nil
	}
}

// ContextWithTx attaches a ledger transaction to ctx.
func ContextWithTx(ctx context.Context, tx *Tx) context.Context {
	return context.WithValue(ctx, TxKey, tx)
}

// GetTxFromContext returns the ledger transaction from the context.
// It returns nil if no transaction is found in the context.
func GetTxFromContext(ctx context.Context) *Tx {
	if ctx == nil {
		return nil
	}
	tx, ok := ctx.Value(TxKey).(*Tx)
	if !ok {
		return nil
	}
	return tx
}

// MustGetTxFromContext returns the ledger transaction from the context.
// It panics if no transaction is found in the context.
func MustGetTxFromContext(ctx context.Context) *Tx {
	tx := GetTxFromContext(ctx)
	if tx == nil {
		panic("no ledger transaction found in context")
	}
	return tx
}

