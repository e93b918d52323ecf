package chain

import (
	"fmt"
	"math/big"
	"strconv"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/ethereum/go-ethereum/common"
)

const (
	metaBlockNumber  = "block_number"
	metaNativeSupply = "native_supply"
)

type account struct {
	balance *big.Int
	nonce   uint64
	exists  bool
}

func (t *Tx) account(address common.Address) (*account, error) {
	var balance string
	var nonce int64
	q := t.builder.Select("balance", "nonce").
		From(t.builder.Table(AccountsTable)).
		Where(entsql.EQ("address", AddressKey(address)))
	found, err := t.QueryRow(AccountsTable, q, &balance, &nonce)
	if err != nil {
		return nil, err
	}
	if !found {
		return &account{balance: new(big.Int)}, nil
	}
	b, ok := new(big.Int).SetString(balance, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt balance %q for %s", balance, address.Hex())
	}
	return &account{balance: b, nonce: uint64(nonce), exists: true}, nil
}

func (t *Tx) putAccount(address common.Address, a *account) error {
	if a.exists {
		return t.Exec(AccountsTable, t.builder.Update(AccountsTable).
			Set("balance", a.balance.String()).
			Set("nonce", int64(a.nonce)).
			Where(entsql.EQ("address", AddressKey(address))))
	}
	a.exists = true
	return t.Exec(AccountsTable, t.builder.Insert(AccountsTable).
		Columns("address", "balance", "nonce").
		Values(AddressKey(address), a.balance.String(), int64(a.nonce)))
}

// BalanceOf returns the native balance of address in wei.
func (t *Tx) BalanceOf(address common.Address) (*big.Int, error) {
	a, err := t.account(address)
	if err != nil {
		return nil, err
	}
	return a.balance, nil
}

// NonceOf returns the number of top-level calls sent by address.
func (t *Tx) NonceOf(address common.Address) (uint64, error) {
	a, err := t.account(address)
	if err != nil {
		return 0, err
	}
	return a.nonce, nil
}

// Credit creates native currency for address. Only genesis allocation and test faucets use it;
// it is the sole way native supply grows.
func (t *Tx) Credit(address common.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("credit amount must be positive")
	}
	a, err := t.account(address)
	if err != nil {
		return err
	}
	a.balance = new(big.Int).Add(a.balance, amount)
	if err := t.putAccount(address, a); err != nil {
		return err
	}
	supply, err := t.NativeSupply()
	if err != nil {
		return err
	}
	return t.SetMeta(metaNativeSupply, new(big.Int).Add(supply, amount).String())
}

// NativeSupply returns the total native currency ever credited.
func (t *Tx) NativeSupply() (*big.Int, error) {
	value, ok, err := t.Meta(metaNativeSupply)
	if err != nil || !ok {
		return new(big.Int), err
	}
	supply, parsed := new(big.Int).SetString(value, 10)
	if !parsed {
		return nil, fmt.Errorf("corrupt native supply %q", value)
	}
	return supply, nil
}

// move transfers value between accounts, rejecting overdrafts.
func (t *Tx) move(from, to common.Address, value *big.Int) error {
	if value == nil || value.Sign() == 0 {
		return nil
	}
	if from == to {
		return t.requireBalance(from, value)
	}
	src, err := t.account(from)
	if err != nil {
		return err
	}
	if src.balance.Cmp(value) < 0 {
		return ErrInsufficientFunds
	}
	src.balance = new(big.Int).Sub(src.balance, value)
	if err := t.putAccount(from, src); err != nil {
		return err
	}
	dst, err := t.account(to)
	if err != nil {
		return err
	}
	dst.balance = new(big.Int).Add(dst.balance, value)
	return t.putAccount(to, dst)
}

func (t *Tx) requireBalance(address common.Address, value *big.Int) error {
	balance, err := t.BalanceOf(address)
	if err != nil {
		return err
	}
	if balance.Cmp(value) < 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func (t *Tx) bumpNonce(address common.Address) (uint64, error) {
	a, err := t.account(address)
	if err != nil {
		return 0, err
	}
	nonce := a.nonce
	a.nonce++
	return nonce, t.putAccount(address, a)
}

// Meta reads a ledger metadata value.
func (t *Tx) Meta(name string) (string, bool, error) {
	var value string
	q := t.builder.Select("value").From(t.builder.Table(MetaTable)).Where(entsql.EQ("name", name))
	found, err := t.QueryRow(MetaTable, q, &value)
	return value, found, err
}

// SetMeta writes a ledger metadata value.
func (t *Tx) SetMeta(name, value string) error {
	_, found, err := t.Meta(name)
	if err != nil {
		return err
	}
	if found {
		return t.Exec(MetaTable, t.builder.Update(MetaTable).Set("value", value).Where(entsql.EQ("name", name)))
	}
	return t.Exec(MetaTable, t.builder.Insert(MetaTable).Columns("name", "value").Values(name, value))
}

// BlockNumber returns the number of the latest block.
func (t *Tx) BlockNumber() (uint64, error) {
	value, found, err := t.Meta(metaBlockNumber)
	if err != nil || !found {
		return 0, err
	}
	return strconv.ParseUint(value, 10, 64)
}

func (t *Tx) nextBlock() (uint64, error) {
	head, err := t.BlockNumber()
	if err != nil {
		return 0, err
	}
	head++
	return head, t.SetMeta(metaBlockNumber, strconv.FormatUint(head, 10))
}

// Accounts returns every account with its balance, ordered by address.
func (t *Tx) Accounts() (map[common.Address]*big.Int, []common.Address, error) {
	balances := make(map[common.Address]*big.Int)
	var order []common.Address
	q := t.builder.Select("address", "balance").From(t.builder.Table(AccountsTable)).OrderBy("address")
	err := t.Query(AccountsTable, q, func(row Scanner) error {
		var address, balance string
		if err := row.Scan(&address, &balance); err != nil {
			return err
		}
		b, ok := new(big.Int).SetString(balance, 10)
		if !ok {
			return fmt.Errorf("corrupt balance %q for %s", balance, address)
		}
		a := common.HexToAddress(address)
		balances[a] = b
		order = append(order, a)
		return nil
	})
	return balances, order, err
}
