package chain_test

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // Register SQLite driver
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	vaultKind = "test-vault"
	sinkKind  = "test-sink"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")

	errNope = chain.Revert(chain.PolicyViolation, "nope")
)

// vault accepts native currency.
type vault struct{}

func (vault) Receive(*chain.Frame) error { return nil }

// sink has no receive hook.
type sink struct{}

type pinged struct {
	N int `json:"n"`
}

func (pinged) Signature() string { return "Pinged(uint256)" }

func register(engine *chain.Engine) {
	engine.RegisterKind(vaultKind, func(common.Address) any { return vault{} })
	engine.RegisterKind(sinkKind, func(common.Address) any { return sink{} })
}

func newDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
}

func openEngine(t *testing.T, dsn string) *chain.Engine {
	engine, err := chain.Open("sqlite3", dsn, chain.WithChainID(31337))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = engine.Close()
	})
	register(engine)
	require.NoError(t, engine.Migrate(context.Background()))
	return engine
}

func newTestEngine(t *testing.T) *chain.Engine {
	return openEngine(t, newDSN())
}

func credit(t *testing.T, engine *chain.Engine, address common.Address, amount int64) {
	err := engine.Execute(context.Background(), func(tx *chain.Tx) error {
		return tx.Credit(address, big.NewInt(amount))
	})
	require.NoError(t, err)
}

func deploy(t *testing.T, engine *chain.Engine, deployer common.Address, kind string) common.Address {
	var address common.Address
	err := engine.Execute(context.Background(), func(tx *chain.Tx) error {
		var err error
		address, _, err = tx.Deploy(deployer, kind, nil)
		return err
	})
	require.NoError(t, err)
	return address
}

func balance(t *testing.T, engine *chain.Engine, address common.Address) int64 {
	var b *big.Int
	err := engine.View(context.Background(), func(tx *chain.Tx) error {
		var err error
		b, err = tx.BalanceOf(address)
		return err
	})
	require.NoError(t, err)
	return b.Int64()
}

func TestTransact_MovesValueAndAdvancesLedger(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	credit(t, engine, alice, 10)

	receipt, err := engine.Transact(ctx, alice, bob, big.NewInt(4), "transfer", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Block)
	assert.Equal(t, uint64(0), receipt.Nonce)
	assert.NotEqual(t, common.Hash{}, receipt.TxHash)

	second, err := engine.Transact(ctx, alice, bob, big.NewInt(1), "transfer", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Block)
	assert.Equal(t, uint64(1), second.Nonce)
	assert.NotEqual(t, receipt.TxHash, second.TxHash)

	assert.Equal(t, int64(5), balance(t, engine, alice))
	assert.Equal(t, int64(5), balance(t, engine, bob))

	err = engine.View(ctx, func(tx *chain.Tx) error {
		nonce, err := tx.NonceOf(alice)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), nonce)

		head, err := tx.BlockNumber()
		require.NoError(t, err)
		assert.Equal(t, uint64(2), head)

		supply, err := tx.NativeSupply()
		require.NoError(t, err)
		assert.Equal(t, int64(10), supply.Int64())
		return nil
	})
	require.NoError(t, err)
}

func TestTransact_InsufficientFunds(t *testing.T) {
	engine := newTestEngine(t)
	credit(t, engine, alice, 10)

	_, err := engine.Transact(context.Background(), alice, bob, big.NewInt(11), "transfer", nil)
	require.ErrorIs(t, err, chain.ErrInsufficientFunds)
	assert.Equal(t, chain.PolicyViolation, chain.KindOf(err))
	assert.Equal(t, int64(10), balance(t, engine, alice))
	assert.Equal(t, int64(0), balance(t, engine, bob))
}

func TestTransact_RevertDiscardsEveryEffect(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	credit(t, engine, alice, 10)
	v := deploy(t, engine, bob, vaultKind)

	var published int
	engine.AddLogSink(func(logs []*chain.Log) {
		published += len(logs)
	})

	_, err := engine.Transact(ctx, alice, v, big.NewInt(3), "ping", func(f *chain.Frame) error {
		require.NoError(t, f.Emit(pinged{N: 1}))
		return errNope
	})
	require.ErrorIs(t, err, errNope)

	assert.Equal(t, int64(10), balance(t, engine, alice))
	assert.Equal(t, int64(0), balance(t, engine, v))
	assert.Zero(t, published)

	err = engine.View(ctx, func(tx *chain.Tx) error {
		nonce, err := tx.NonceOf(alice)
		require.NoError(t, err)
		assert.Zero(t, nonce)

		head, err := tx.BlockNumber()
		require.NoError(t, err)
		assert.Equal(t, uint64(1), head, "only the deployment produced a block")

		logs, err := tx.Logs(chain.LogFilter{Name: "Pinged"})
		require.NoError(t, err)
		assert.Empty(t, logs)
		return nil
	})
	require.NoError(t, err)
}

func TestFrameCall_FailedNestedCallLeavesNoTrace(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	credit(t, engine, alice, 10)
	v := deploy(t, engine, bob, vaultKind)
	s := deploy(t, engine, bob, sinkKind)

	receipt, err := engine.Transact(ctx, alice, v, big.NewInt(5), "relay", func(f *chain.Frame) error {
		nested := f.Call(s, big.NewInt(2), func(cf *chain.Frame) error {
			assert.Equal(t, v, cf.Caller)
			assert.Equal(t, alice, cf.Origin)
			assert.Equal(t, 2, cf.Depth())
			require.NoError(t, cf.Emit(pinged{N: 1}))
			return errNope
		})
		require.ErrorIs(t, nested, errNope)
		return f.Emit(pinged{N: 2})
	})
	require.NoError(t, err)

	require.Len(t, receipt.Logs, 1)
	assert.Equal(t, uint64(0), receipt.Logs[0].Index)
	var payload pinged
	require.NoError(t, receipt.Logs[0].Decode(&payload))
	assert.Equal(t, 2, payload.N)
	assert.Equal(t, crypto.Keccak256Hash([]byte("Pinged(uint256)")), receipt.Logs[0].Topic)

	assert.Equal(t, int64(5), balance(t, engine, v))
	assert.Equal(t, int64(0), balance(t, engine, s))
}

func TestFrameSend(t *testing.T) {
	engine := newTestEngine(t)
	credit(t, engine, alice, 10)
	v := deploy(t, engine, bob, vaultKind)
	s := deploy(t, engine, bob, sinkKind)

	tests := []struct {
		name    string
		to      common.Address
		wantErr error
	}{
		{name: "externally owned account", to: bob},
		{name: "contract with receive hook", to: v},
		{name: "contract without receive hook", to: s, wantErr: chain.ErrNotPayable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := balance(t, engine, tt.to)
			_, err := engine.Transact(context.Background(), alice, v, big.NewInt(1), "forward", func(f *chain.Frame) error {
				return f.Send(tt.to, big.NewInt(1))
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, balance(t, engine, tt.to))
				return
			}
			require.NoError(t, err)
			if tt.to != v {
				assert.Equal(t, before+1, balance(t, engine, tt.to))
			}
		})
	}
}

func TestFrameNonReentrant(t *testing.T) {
	engine := newTestEngine(t)
	v := deploy(t, engine, bob, vaultKind)

	_, err := engine.Transact(context.Background(), alice, v, nil, "guarded", func(f *chain.Frame) error {
		release, err := f.NonReentrant()
		require.NoError(t, err)

		_, err = f.NonReentrant()
		require.ErrorIs(t, err, chain.ErrReentrantCall)
		assert.Equal(t, chain.StateConflict, chain.KindOf(err))

		release()
		again, err := f.NonReentrant()
		require.NoError(t, err)
		again()
		return nil
	})
	require.NoError(t, err)
}

func TestDeploy(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	address := deploy(t, engine, alice, vaultKind)
	assert.Equal(t, crypto.CreateAddress(alice, 0), address)

	code, ok := engine.Code(address)
	require.True(t, ok)
	assert.IsType(t, vault{}, code)

	err := engine.View(ctx, func(tx *chain.Tx) error {
		kind, err := tx.ContractKind(address)
		require.NoError(t, err)
		assert.Equal(t, vaultKind, kind)

		owner, err := tx.ContractOwner(address)
		require.NoError(t, err)
		assert.Equal(t, alice, owner)

		_, err = tx.ContractKind(bob)
		require.ErrorIs(t, err, chain.ErrUnknownContract)
		return nil
	})
	require.NoError(t, err)

	t.Run("failed constructor", func(t *testing.T) {
		var failed common.Address
		err := engine.Execute(ctx, func(tx *chain.Tx) error {
			_, _, err := tx.Deploy(alice, sinkKind, func(*chain.Frame) error {
				return errNope
			})
			require.ErrorIs(t, err, errNope)
			failed = crypto.CreateAddress(alice, 1)
			_, visible := tx.Code(failed)
			assert.False(t, visible)
			return nil
		})
		require.NoError(t, err)
		_, ok := engine.Code(failed)
		assert.False(t, ok)
	})

	t.Run("unknown kind", func(t *testing.T) {
		err := engine.Execute(ctx, func(tx *chain.Tx) error {
			_, _, err := tx.Deploy(alice, "missing", nil)
			return err
		})
		require.Error(t, err)
	})
}

func TestRestore(t *testing.T) {
	dsn := newDSN()
	first := openEngine(t, dsn)
	v := deploy(t, first, alice, vaultKind)
	s := deploy(t, first, alice, sinkKind)

	second := openEngine(t, dsn)
	_, ok := second.Code(v)
	require.False(t, ok)

	restored, err := second.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, restored)

	code, ok := second.Code(v)
	require.True(t, ok)
	assert.IsType(t, vault{}, code)
	code, ok = second.Code(s)
	require.True(t, ok)
	assert.IsType(t, sink{}, code)
}

func TestLogs(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	v := deploy(t, engine, bob, vaultKind)
	s := deploy(t, engine, bob, sinkKind)

	var published []*chain.Log
	engine.AddLogSink(func(logs []*chain.Log) {
		published = append(published, logs...)
	})

	for i, target := range []common.Address{v, s, v} {
		_, err := engine.Transact(ctx, alice, target, nil, "ping", func(f *chain.Frame) error {
			return f.Emit(pinged{N: i})
		})
		require.NoError(t, err)
	}
	require.Len(t, published, 3)

	err := engine.View(ctx, func(tx *chain.Tx) error {
		all, err := tx.Logs(chain.LogFilter{Name: "Pinged"})
		require.NoError(t, err)
		require.Len(t, all, 3)
		for i, l := range all {
			assert.Equal(t, published[i].TxHash, l.TxHash)
			assert.Equal(t, published[i].Block, l.Block)
			assert.JSONEq(t, string(published[i].Data), string(l.Data))
		}

		fromVault, err := tx.Logs(chain.LogFilter{Contract: &v})
		require.NoError(t, err)
		assert.Len(t, fromVault, 2)

		recent, err := tx.Logs(chain.LogFilter{FromBlock: all[2].Block})
		require.NoError(t, err)
		assert.Len(t, recent, 1)

		limited, err := tx.Logs(chain.LogFilter{Limit: 1, Name: "Pinged"})
		require.NoError(t, err)
		assert.Len(t, limited, 1)
		return nil
	})
	require.NoError(t, err)

	assert.True(t, chain.LogFilter{Contract: &s}.Match(published[1]))
	assert.False(t, chain.LogFilter{Contract: &s}.Match(published[0]))
	assert.False(t, chain.LogFilter{Name: "Other"}.Match(published[0]))
}

func TestMeta(t *testing.T) {
	engine := newTestEngine(t)
	err := engine.Execute(context.Background(), func(tx *chain.Tx) error {
		_, found, err := tx.Meta("greeting")
		require.NoError(t, err)
		assert.False(t, found)

		require.NoError(t, tx.SetMeta("greeting", "hello"))
		require.NoError(t, tx.SetMeta("greeting", "hi"))

		value, found, err := tx.Meta("greeting")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "hi", value)
		return nil
	})
	require.NoError(t, err)
}

func TestTxClosed(t *testing.T) {
	engine := newTestEngine(t)
	tx, err := engine.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.ErrorIs(t, tx.Commit(), chain.ErrTxClosed)
	require.NoError(t, tx.Rollback())
	_, err = tx.BalanceOf(alice)
	require.ErrorIs(t, err, chain.ErrTxClosed)
}

func TestRevertError(t *testing.T) {
	rebuilt := chain.Revert(chain.PolicyViolation, "nope")
	wrapped := fmt.Errorf("call failed: %w", rebuilt)

	assert.ErrorIs(t, wrapped, errNope)
	assert.NotErrorIs(t, wrapped, chain.Revert(chain.StateConflict, "nope"))
	assert.Equal(t, "execution reverted: nope", rebuilt.Error())
	assert.Equal(t, chain.PolicyViolation, chain.KindOf(wrapped))
	assert.Equal(t, chain.Kind(0), chain.KindOf(fmt.Errorf("plain")))
	assert.Equal(t, "NotFound", chain.NotFound.String())
}

func TestRevertErrorStatus(t *testing.T) {
	kinds := []chain.Kind{chain.PolicyViolation, chain.AuthorizationFailure, chain.StateConflict, chain.NotFound}
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			st, ok := status.FromError(chain.Revert(kind, "reason"))
			require.True(t, ok)
			assert.Equal(t, kind.Code(), st.Code())
			assert.Equal(t, "reason", st.Message())
			assert.Equal(t, kind, chain.KindFromCode(st.Code()))
		})
	}
	assert.Equal(t, codes.FailedPrecondition, chain.PolicyViolation.Code())
	assert.Equal(t, chain.Kind(0), chain.KindFromCode(codes.Internal))
}
