package collection

import (
	"math/big"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/ownable"
)

// FlipSaleState toggles the public sale. Owner only.
func (c *Collection) FlipSaleState(f *chain.Frame) (bool, error) {
	if err := c.running(f); err != nil {
		return false, err
	}
	if err := ownable.CheckOwner(f); err != nil {
		return false, err
	}
	s, err := c.load(f.Tx())
	if err != nil {
		return false, err
	}
	active := !s.saleActive
	tx := f.Tx()
	err = tx.Exec(collectionsTable, tx.Builder().Update(collectionsTable).
		Set("sale_active", active).
		Where(entsql.EQ("address", chain.AddressKey(c.address))))
	return active, err
}

// Withdraw sends the whole accumulated balance to the owner. Owner only. An empty balance
// is rejected rather than treated as a no-op.
func (c *Collection) Withdraw(f *chain.Frame) (*big.Int, error) {
	if err := c.running(f); err != nil {
		return nil, err
	}
	release, err := f.NonReentrant()
	if err != nil {
		return nil, err
	}
	defer release()

	if err := ownable.CheckOwner(f); err != nil {
		return nil, err
	}
	balance, err := f.Balance()
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		return nil, ErrNoFunds
	}
	if err := f.Emit(Withdrawal{Owner: f.Caller, Amount: balance}); err != nil {
		return nil, err
	}
	if err := f.Send(f.Caller, balance); err != nil {
		return nil, err
	}
	return balance, nil
}
