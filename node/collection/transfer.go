package collection

import (
	entsql "entgo.io/ent/dialect/sql"
	"github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
)

// Approve lets to move tokenID on behalf of its owner. Approving the zero address clears it.
func (c *Collection) Approve(f *chain.Frame, to common.Address, tokenID uint64) error {
	if err := c.running(f); err != nil {
		return err
	}
	tx := f.Tx()
	t, err := c.token(tx, tokenID)
	if err != nil {
		return err
	}
	if to == t.owner {
		return ErrApprovalToCurrentOwner
	}
	if f.Caller != t.owner {
		operator, err := c.IsApprovedForAll(tx, t.owner, f.Caller)
		if err != nil {
			return err
		}
		if !operator {
			return ErrApproveCallerNotOwner
		}
	}
	if err := c.setTokenApproval(tx, tokenID, to); err != nil {
		return err
	}
	return f.Emit(Approval{Owner: t.owner, Approved: to, TokenID: tokenID})
}

// SetApprovalForAll grants or revokes operator's authority over every asset of the caller.
func (c *Collection) SetApprovalForAll(f *chain.Frame, operator common.Address, approved bool) error {
	if err := c.running(f); err != nil {
		return err
	}
	if operator == f.Caller {
		return ErrApproveToCaller
	}
	tx := f.Tx()
	pred := entsql.And(
		c.where(),
		entsql.EQ("owner", chain.AddressKey(f.Caller)),
		entsql.EQ("operator", chain.AddressKey(operator)),
	)
	exists, err := tx.Count(operatorApprovalsTable, pred)
	if err != nil {
		return err
	}
	if exists > 0 {
		err = tx.Exec(operatorApprovalsTable, tx.Builder().Update(operatorApprovalsTable).Set("approved", approved).Where(pred))
	} else {
		err = tx.Exec(operatorApprovalsTable, tx.Builder().Insert(operatorApprovalsTable).
			Columns("collection", "owner", "operator", "approved").
			Values(chain.AddressKey(c.address), chain.AddressKey(f.Caller), chain.AddressKey(operator), approved))
	}
	if err != nil {
		return err
	}
	return f.Emit(ApprovalForAll{Owner: f.Caller, Operator: operator, Approved: approved})
}

// TransferFrom moves tokenID from from to to. The caller must be the owner, the approved
// address or an operator of the owner, and from must be the current owner.
func (c *Collection) TransferFrom(f *chain.Frame, from, to common.Address, tokenID uint64) error {
	if err := c.running(f); err != nil {
		return err
	}
	tx := f.Tx()
	t, err := c.token(tx, tokenID)
	if err != nil {
		return err
	}
	authorized, err := c.isAuthorized(tx, t, f.Caller)
	if err != nil {
		return err
	}
	if !authorized {
		return ErrCallerNotOwnerNorApproved
	}
	if t.owner != from {
		return ErrTransferFromIncorrectOwner
	}
	if to == (common.Address{}) {
		return ErrTransferToZero
	}
	err = tx.Exec(tokensTable, tx.Builder().Update(tokensTable).
		Set("owner", chain.AddressKey(to)).
		Set("approved", chain.AddressKey(common.Address{})).
		Where(entsql.And(c.where(), entsql.EQ("token_id", int64(tokenID)))))
	if err != nil {
		return err
	}
	return f.Emit(Transfer{From: from, To: to, TokenID: tokenID})
}

// SafeTransferFrom is TransferFrom followed by the receiver check when to is a contract.
func (c *Collection) SafeTransferFrom(f *chain.Frame, from, to common.Address, tokenID uint64, data []byte) error {
	if err := c.TransferFrom(f, from, to, tokenID); err != nil {
		return err
	}
	return c.checkOnReceived(f, f.Caller, from, to, tokenID, data)
}

func (c *Collection) isAuthorized(tx *chain.Tx, t *token, spender common.Address) (bool, error) {
	if spender == t.owner || spender == t.approved {
		return true, nil
	}
	return c.IsApprovedForAll(tx, t.owner, spender)
}

func (c *Collection) setTokenApproval(tx *chain.Tx, tokenID uint64, to common.Address) error {
	return tx.Exec(tokensTable, tx.Builder().Update(tokensTable).
		Set("approved", chain.AddressKey(to)).
		Where(entsql.And(c.where(), entsql.EQ("token_id", int64(tokenID)))))
}
