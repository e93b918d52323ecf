package collection

import (
	"math/big"
	"strconv"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/ownable"
)

// Mint is the paid public mint. It creates quantity assets owned by the caller, or none.
// The attached value must equal quantity times the mint price exactly and stays in the
// collection's balance until the owner withdraws it.
func (c *Collection) Mint(f *chain.Frame, quantity uint64) ([]uint64, error) {
	if err := c.running(f); err != nil {
		return nil, err
	}
	s, err := c.load(f.Tx())
	if err != nil {
		return nil, err
	}
	if !s.saleActive {
		return nil, ErrSaleInactive
	}
	if quantity == 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity > s.maxPerTx {
		return nil, ErrExceedsMaxPerTx
	}
	if s.counter+quantity > s.maxSupply {
		return nil, ErrExceedsMaxSupply
	}
	price := new(big.Int).Mul(s.mintPrice, new(big.Int).SetUint64(quantity))
	if f.Value.Cmp(price) != 0 {
		return nil, ErrIncorrectValue
	}

	ids := make([]uint64, 0, quantity)
	for i := uint64(0); i < quantity; i++ {
		id, err := c.mint(f, s, f.Caller, "")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := c.saveCounter(f.Tx(), s.counter); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := c.checkOnReceived(f, f.Caller, common.Address{}, f.Caller, id, nil); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// SafeMint mints one asset to to without payment and regardless of the sale flag. Owner only.
// An empty uri falls back to the base URI followed by the token id.
func (c *Collection) SafeMint(f *chain.Frame, to common.Address, uri string) (uint64, error) {
	if err := c.running(f); err != nil {
		return 0, err
	}
	if err := ownable.CheckOwner(f); err != nil {
		return 0, err
	}
	if to == (common.Address{}) {
		return 0, ErrMintToZero
	}
	s, err := c.load(f.Tx())
	if err != nil {
		return 0, err
	}
	if s.counter+1 > s.maxSupply {
		return 0, ErrExceedsMaxSupply
	}
	id, err := c.mint(f, s, to, uri)
	if err != nil {
		return 0, err
	}
	if err := c.saveCounter(f.Tx(), s.counter); err != nil {
		return 0, err
	}
	if err := c.checkOnReceived(f, f.Caller, common.Address{}, to, id, nil); err != nil {
		return 0, err
	}
	return id, nil
}

func (c *Collection) mint(f *chain.Frame, s *state, to common.Address, uri string) (uint64, error) {
	id := s.counter
	s.counter++
	if uri == "" && s.baseURI != "" {
		uri = s.baseURI + strconv.FormatUint(id, 10)
	}
	tx := f.Tx()
	err := tx.Exec(tokensTable, tx.Builder().Insert(tokensTable).
		Columns("collection", "token_id", "owner", "uri", "approved").
		Values(chain.AddressKey(c.address), int64(id), chain.AddressKey(to), uri, chain.AddressKey(common.Address{})))
	if err != nil {
		return 0, err
	}
	return id, f.Emit(Transfer{To: to, TokenID: id})
}

func (c *Collection) saveCounter(tx *chain.Tx, counter uint64) error {
	return tx.Exec(collectionsTable, tx.Builder().Update(collectionsTable).
		Set("token_counter", int64(counter)).
		Where(entsql.EQ("address", chain.AddressKey(c.address))))
}
