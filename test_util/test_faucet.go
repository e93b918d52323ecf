package testutil

import (
	"context"
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/stretchr/testify/require"
)

// Account is an externally owned test account.
type Account struct {
	Key     *secp256k1.PrivateKey
	Address ethcommon.Address
}

// NewAccount generates an account with a random key.
func NewAccount(t testing.TB) *Account {
	t.Helper()
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	return &Account{Key: key, Address: common.AddressFromKey(key.PubKey())}
}

// Faucet credits native currency to test accounts.
type Faucet struct {
	engine *chain.Engine
}

func NewFaucet(engine *chain.Engine) *Faucet {
	return &Faucet{engine: engine}
}

// Fund credits amount wei to address in its own ledger transaction.
func (f *Faucet) Fund(t testing.TB, address ethcommon.Address, amount *big.Int) {
	t.Helper()
	err := f.engine.Execute(context.Background(), func(tx *chain.Tx) error {
		return tx.Credit(address, amount)
	})
	require.NoError(t, err)
}

// NewFundedAccount generates an account holding ether whole ether.
func (f *Faucet) NewFundedAccount(t testing.TB, ether int64) *Account {
	t.Helper()
	account := NewAccount(t)
	f.Fund(t, account.Address, common.Ether(ether))
	return account
}
