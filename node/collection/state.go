package collection

import (
	"fmt"
	"math/big"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/ownable"
)

// Info is a snapshot of the collection's configuration and administrative state.
type Info struct {
	Address        common.Address
	Name           string
	Symbol         string
	BaseURI        string
	MaxSupply      uint64
	MaxPerTx       uint64
	MintPrice      *big.Int
	SaleIsActive   bool
	TokenIDCounter uint64
	Owner          common.Address
	Balance        *big.Int
}

type state struct {
	name       string
	symbol     string
	baseURI    string
	maxSupply  uint64
	maxPerTx   uint64
	mintPrice  *big.Int
	saleActive bool
	counter    uint64
}

func (c *Collection) load(tx *chain.Tx) (*state, error) {
	var (
		s                          state
		price                      string
		maxSupply, maxPerTx, count int64
	)
	q := tx.Builder().
		Select("name", "symbol", "base_uri", "max_supply", "max_per_tx", "mint_price", "sale_active", "token_counter").
		From(tx.Builder().Table(collectionsTable)).
		Where(entsql.EQ("address", chain.AddressKey(c.address)))
	found, err := tx.QueryRow(collectionsTable, q, &s.name, &s.symbol, &s.baseURI, &maxSupply, &maxPerTx, &price, &s.saleActive, &count)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, chain.ErrUnknownContract
	}
	mintPrice, ok := new(big.Int).SetString(price, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt mint price %q", price)
	}
	s.mintPrice = mintPrice
	s.maxSupply, s.maxPerTx, s.counter = uint64(maxSupply), uint64(maxPerTx), uint64(count)
	return &s, nil
}

// Info returns a snapshot of the collection.
func (c *Collection) Info(tx *chain.Tx) (*Info, error) {
	s, err := c.load(tx)
	if err != nil {
		return nil, err
	}
	owner, err := ownable.Owner(tx, c.address)
	if err != nil {
		return nil, err
	}
	balance, err := tx.BalanceOf(c.address)
	if err != nil {
		return nil, err
	}
	return &Info{
		Address:        c.address,
		Name:           s.name,
		Symbol:         s.symbol,
		BaseURI:        s.baseURI,
		MaxSupply:      s.maxSupply,
		MaxPerTx:       s.maxPerTx,
		MintPrice:      s.mintPrice,
		SaleIsActive:   s.saleActive,
		TokenIDCounter: s.counter,
		Owner:          owner,
		Balance:        balance,
	}, nil
}

func (c *Collection) Name(tx *chain.Tx) (string, error) {
	s, err := c.load(tx)
	if err != nil {
		return "", err
	}
	return s.name, nil
}

func (c *Collection) Symbol(tx *chain.Tx) (string, error) {
	s, err := c.load(tx)
	if err != nil {
		return "", err
	}
	return s.symbol, nil
}

func (c *Collection) MaxSupply(tx *chain.Tx) (uint64, error) {
	s, err := c.load(tx)
	if err != nil {
		return 0, err
	}
	return s.maxSupply, nil
}

func (c *Collection) MintPrice(tx *chain.Tx) (*big.Int, error) {
	s, err := c.load(tx)
	if err != nil {
		return nil, err
	}
	return s.mintPrice, nil
}

func (c *Collection) SaleIsActive(tx *chain.Tx) (bool, error) {
	s, err := c.load(tx)
	if err != nil {
		return false, err
	}
	return s.saleActive, nil
}

// TokenIDCounter returns the number of assets minted so far, which is also the next id.
func (c *Collection) TokenIDCounter(tx *chain.Tx) (uint64, error) {
	s, err := c.load(tx)
	if err != nil {
		return 0, err
	}
	return s.counter, nil
}

func (c *Collection) Owner(tx *chain.Tx) (common.Address, error) {
	return ownable.Owner(tx, c.address)
}

type token struct {
	owner    common.Address
	uri      string
	approved common.Address
}

func (c *Collection) token(tx *chain.Tx, tokenID uint64) (*token, error) {
	var owner, uri, approved string
	q := tx.Builder().Select("owner", "uri", "approved").
		From(tx.Builder().Table(tokensTable)).
		Where(entsql.And(c.where(), entsql.EQ("token_id", int64(tokenID))))
	found, err := tx.QueryRow(tokensTable, q, &owner, &uri, &approved)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrInvalidTokenID
	}
	return &token{
		owner:    common.HexToAddress(owner),
		uri:      uri,
		approved: common.HexToAddress(approved),
	}, nil
}

// OwnerOf returns the current owner of tokenID.
func (c *Collection) OwnerOf(tx *chain.Tx, tokenID uint64) (common.Address, error) {
	t, err := c.token(tx, tokenID)
	if err != nil {
		return common.Address{}, err
	}
	return t.owner, nil
}

// TokenURI returns the metadata reference fixed when tokenID was minted.
func (c *Collection) TokenURI(tx *chain.Tx, tokenID uint64) (string, error) {
	t, err := c.token(tx, tokenID)
	if err != nil {
		return "", err
	}
	return t.uri, nil
}

// GetApproved returns the address approved to move tokenID, or the zero address.
func (c *Collection) GetApproved(tx *chain.Tx, tokenID uint64) (common.Address, error) {
	t, err := c.token(tx, tokenID)
	if err != nil {
		return common.Address{}, err
	}
	return t.approved, nil
}

// BalanceOf returns the number of assets held by owner.
func (c *Collection) BalanceOf(tx *chain.Tx, owner common.Address) (uint64, error) {
	if owner == (common.Address{}) {
		return 0, ErrZeroAddressOwner
	}
	return tx.Count(tokensTable, entsql.And(c.where(), entsql.EQ("owner", chain.AddressKey(owner))))
}

// TokensOf lists the ids held by owner in ascending order.
func (c *Collection) TokensOf(tx *chain.Tx, owner common.Address) ([]uint64, error) {
	var ids []uint64
	q := tx.Builder().Select("token_id").
		From(tx.Builder().Table(tokensTable)).
		Where(entsql.And(c.where(), entsql.EQ("owner", chain.AddressKey(owner)))).
		OrderBy("token_id")
	err := tx.Query(tokensTable, q, func(row chain.Scanner) error {
		var id int64
		if err := row.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, uint64(id))
		return nil
	})
	return ids, err
}

// OwnedToken is one row of OwnedTokens.
type OwnedToken struct {
	TokenID  uint64
	URI      string
	Approved common.Address
}

// OwnedTokens returns the assets held by owner in ascending id order, read in one query.
func (c *Collection) OwnedTokens(tx *chain.Tx, owner common.Address) ([]OwnedToken, error) {
	var tokens []OwnedToken
	q := tx.Builder().Select("token_id", "uri", "approved").
		From(tx.Builder().Table(tokensTable)).
		Where(entsql.And(c.where(), entsql.EQ("owner", chain.AddressKey(owner)))).
		OrderBy("token_id")
	err := tx.Query(tokensTable, q, func(row chain.Scanner) error {
		var (
			id       int64
			uri      string
			approved string
		)
		if err := row.Scan(&id, &uri, &approved); err != nil {
			return err
		}
		tokens = append(tokens, OwnedToken{
			TokenID:  uint64(id),
			URI:      uri,
			Approved: common.HexToAddress(approved),
		})
		return nil
	})
	return tokens, err
}

// StoredTokens returns the number of token rows, used by the invariant audit.
func (c *Collection) StoredTokens(tx *chain.Tx) (uint64, error) {
	return tx.Count(tokensTable, c.where())
}

// IsApprovedForAll reports whether operator may move every asset of owner.
func (c *Collection) IsApprovedForAll(tx *chain.Tx, owner, operator common.Address) (bool, error) {
	var approved bool
	q := tx.Builder().Select("approved").
		From(tx.Builder().Table(operatorApprovalsTable)).
		Where(entsql.And(
			c.where(),
			entsql.EQ("owner", chain.AddressKey(owner)),
			entsql.EQ("operator", chain.AddressKey(operator)),
		))
	_, err := tx.QueryRow(operatorApprovalsTable, q, &approved)
	return approved, err
}
