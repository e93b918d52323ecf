package chain

import (
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Deploy creates a contract of a registered kind. The address is derived from the deployer
// and its nonce; the deployer becomes the recorded owner and init runs as the constructor.
// The code is visible to the rest of this transaction and to everyone once it commits.
func (t *Tx) Deploy(deployer common.Address, kind string, init func(f *Frame) error) (common.Address, *Receipt, error) {
	factory, ok := t.engine.factory(kind)
	if !ok {
		return common.Address{}, nil, fmt.Errorf("unknown contract kind %q", kind)
	}

	var address common.Address
	receipt, err := t.apply(deployer, nil, "deploy:"+kind, func(nonce uint64) (common.Address, error) {
		address = crypto.CreateAddress(deployer, nonce)
		if _, exists := t.Code(address); exists {
			return common.Address{}, Revert(StateConflict, "contract already deployed at address")
		}
		block, err := t.BlockNumber()
		if err != nil {
			return common.Address{}, err
		}
		err = t.Exec(ContractsTable, t.builder.Insert(ContractsTable).
			Columns("address", "kind", "owner", "deployer", "block").
			Values(AddressKey(address), kind, AddressKey(deployer), AddressKey(deployer), int64(block+1)))
		if err != nil {
			return common.Address{}, err
		}
		t.deployed = append(t.deployed, deployment{address: address, code: factory(address)})
		return address, nil
	}, init)
	if err != nil {
		return common.Address{}, nil, err
	}
	return address, receipt, nil
}

// ContractKind returns the kind of the contract at address.
func (t *Tx) ContractKind(address common.Address) (string, error) {
	var kind string
	q := t.builder.Select("kind").From(t.builder.Table(ContractsTable)).Where(entsql.EQ("address", AddressKey(address)))
	found, err := t.QueryRow(ContractsTable, q, &kind)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrUnknownContract
	}
	return kind, nil
}

// ContractsOfKind lists deployed contracts of kind in deployment order.
func (t *Tx) ContractsOfKind(kind string) ([]common.Address, error) {
	var addresses []common.Address
	q := t.builder.Select("address").From(t.builder.Table(ContractsTable)).
		Where(entsql.EQ("kind", kind)).
		OrderBy("block")
	err := t.Query(ContractsTable, q, func(row Scanner) error {
		var address string
		if err := row.Scan(&address); err != nil {
			return err
		}
		addresses = append(addresses, common.HexToAddress(address))
		return nil
	})
	return addresses, err
}

// ContractOwner returns the owner recorded for the contract at address.
func (t *Tx) ContractOwner(address common.Address) (common.Address, error) {
	var owner string
	q := t.builder.Select("owner").From(t.builder.Table(ContractsTable)).Where(entsql.EQ("address", AddressKey(address)))
	found, err := t.QueryRow(ContractsTable, q, &owner)
	if err != nil {
		return common.Address{}, err
	}
	if !found {
		return common.Address{}, ErrUnknownContract
	}
	return common.HexToAddress(owner), nil
}

// SetContractOwner records a new owner for the contract at address.
func (t *Tx) SetContractOwner(address, owner common.Address) error {
	return t.Exec(ContractsTable, t.builder.Update(ContractsTable).
		Set("owner", AddressKey(owner)).
		Where(entsql.EQ("address", AddressKey(address))))
}
