// Package ownable implements single-owner access control shared by the ledger contracts.
// The owner is checked against the caller on every invocation.
package ownable

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
)

var (
	ErrNotOwner  = chain.Revert(chain.AuthorizationFailure, "Ownable: caller is not the owner")
	ErrZeroOwner = chain.Revert(chain.PolicyViolation, "Ownable: new owner is the zero address")
)

// OwnershipTransferred is emitted when the owner is first set and on every transfer.
type OwnershipTransferred struct {
	PreviousOwner common.Address `json:"previousOwner"`
	NewOwner      common.Address `json:"newOwner"`
}

func (OwnershipTransferred) Signature() string {
	return "OwnershipTransferred(address,address)"
}

// Initialize sets the owner of the running contract. It belongs in a constructor.
func Initialize(f *chain.Frame, owner common.Address) error {
	if owner == (common.Address{}) {
		return ErrZeroOwner
	}
	if err := f.Tx().SetContractOwner(f.Self, owner); err != nil {
		return err
	}
	return f.Emit(OwnershipTransferred{NewOwner: owner})
}

// Owner returns the owner of contract.
func Owner(tx *chain.Tx, contract common.Address) (common.Address, error) {
	return tx.ContractOwner(contract)
}

// CheckOwner fails unless the caller of the running contract is its owner.
func CheckOwner(f *chain.Frame) error {
	owner, err := Owner(f.Tx(), f.Self)
	if err != nil {
		return err
	}
	if f.Caller != owner {
		return ErrNotOwner
	}
	return nil
}

// TransferOwnership hands the running contract to newOwner. Owner only.
func TransferOwnership(f *chain.Frame, newOwner common.Address) error {
	if err := CheckOwner(f); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return ErrZeroOwner
	}
	if err := f.Tx().SetContractOwner(f.Self, newOwner); err != nil {
		return err
	}
	return f.Emit(OwnershipTransferred{PreviousOwner: f.Caller, NewOwner: newOwner})
}
