package market

import (
	"fmt"
	"math/big"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
)

// ListingIDCounter returns the id the next listing will get. The number of listings ever
// created is the counter minus one.
func (m *Market) ListingIDCounter(tx *chain.Tx) (uint64, error) {
	var counter int64
	q := tx.Builder().Select("listing_counter").
		From(tx.Builder().Table(marketsTable)).
		Where(entsql.EQ("address", chain.AddressKey(m.address)))
	found, err := tx.QueryRow(marketsTable, q, &counter)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, chain.ErrUnknownContract
	}
	return uint64(counter), nil
}

// StoredListings returns the number of listings ever created on the registry.
func (m *Market) StoredListings(tx *chain.Tx) (uint64, error) {
	return tx.Count(listingsTable, m.where())
}

// Listing returns the listing with the given id.
func (m *Market) Listing(tx *chain.Tx, listingID uint64) (*Listing, error) {
	var (
		seller, nftContract, price string
		tokenID                    int64
		active                     bool
	)
	q := tx.Builder().Select("seller", "nft_contract", "token_id", "price", "active").
		From(tx.Builder().Table(listingsTable)).
		Where(entsql.And(m.where(), entsql.EQ("listing_id", int64(listingID))))
	found, err := tx.QueryRow(listingsTable, q, &seller, &nftContract, &tokenID, &price, &active)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrListingNotFound
	}
	p, ok := new(big.Int).SetString(price, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt price %q for listing %d", price, listingID)
	}
	return &Listing{
		ID:          listingID,
		Seller:      common.HexToAddress(seller),
		NFTContract: common.HexToAddress(nftContract),
		TokenID:     uint64(tokenID),
		Price:       p,
		Active:      active,
	}, nil
}

// ListItem offers an asset the caller owns for price. The registry must already be approved
// for the asset; the asset itself stays with the seller.
func (m *Market) ListItem(f *chain.Frame, nftContract common.Address, tokenID uint64, price *big.Int) (uint64, error) {
	if err := m.running(f); err != nil {
		return 0, err
	}
	if price == nil || price.Sign() <= 0 {
		return 0, ErrPriceNotPositive
	}
	tx := f.Tx()
	nft, err := m.nonFungible(tx, nftContract)
	if err != nil {
		return 0, err
	}
	owner, err := nft.OwnerOf(tx, tokenID)
	if err != nil {
		return 0, err
	}
	if owner != f.Caller {
		return 0, ErrNotTokenOwner
	}
	approved, err := m.isApproved(tx, nft, owner, tokenID)
	if err != nil {
		return 0, err
	}
	if !approved {
		return 0, ErrNotApproved
	}

	listingID, err := m.ListingIDCounter(tx)
	if err != nil {
		return 0, err
	}
	err = tx.Exec(listingsTable, tx.Builder().Insert(listingsTable).
		Columns("market", "listing_id", "seller", "nft_contract", "token_id", "price", "active").
		Values(chain.AddressKey(m.address), int64(listingID), chain.AddressKey(f.Caller),
			chain.AddressKey(nftContract), int64(tokenID), price.String(), true))
	if err != nil {
		return 0, err
	}
	err = tx.Exec(marketsTable, tx.Builder().Update(marketsTable).
		Set("listing_counter", int64(listingID+1)).
		Where(entsql.EQ("address", chain.AddressKey(m.address))))
	if err != nil {
		return 0, err
	}
	return listingID, f.Emit(ItemListed{
		ListingID:   listingID,
		Seller:      f.Caller,
		NFTContract: nftContract,
		TokenID:     tokenID,
		Price:       price,
	})
}

// BuyItem settles a listing: the asset moves from the seller to the caller and the attached
// payment, which must equal the price, is forwarded to the seller. The listing is closed
// before any outside code runs, and any failure undoes the whole purchase.
func (m *Market) BuyItem(f *chain.Frame, listingID uint64) error {
	if err := m.running(f); err != nil {
		return err
	}
	release, err := f.NonReentrant()
	if err != nil {
		return err
	}
	defer release()

	tx := f.Tx()
	l, err := m.Listing(tx, listingID)
	if err != nil {
		return err
	}
	if !l.Active {
		return ErrListingNotActive
	}
	if f.Value.Cmp(l.Price) != 0 {
		return ErrIncorrectPrice
	}
	if err := m.deactivate(tx, listingID); err != nil {
		return err
	}

	nft, err := m.nonFungible(tx, l.NFTContract)
	if err != nil {
		return err
	}
	owner, err := nft.OwnerOf(tx, l.TokenID)
	if err != nil {
		return err
	}
	if owner != l.Seller {
		return ErrSellerNotOwner
	}
	approved, err := m.isApproved(tx, nft, l.Seller, l.TokenID)
	if err != nil {
		return err
	}
	if !approved {
		return ErrApprovalRevoked
	}

	buyer := f.Caller
	err = f.Call(l.NFTContract, nil, func(cf *chain.Frame) error {
		return nft.SafeTransferFrom(cf, l.Seller, buyer, l.TokenID, nil)
	})
	if err != nil {
		return err
	}
	if err := f.Send(l.Seller, l.Price); err != nil {
		return err
	}
	return f.Emit(ItemSold{
		ListingID:   listingID,
		Buyer:       buyer,
		Seller:      l.Seller,
		NFTContract: l.NFTContract,
		TokenID:     l.TokenID,
		Price:       l.Price,
	})
}

// CancelListing withdraws an active listing. Only its seller may cancel it.
func (m *Market) CancelListing(f *chain.Frame, listingID uint64) error {
	if err := m.running(f); err != nil {
		return err
	}
	tx := f.Tx()
	l, err := m.Listing(tx, listingID)
	if err != nil {
		return err
	}
	if l.Seller != f.Caller {
		return ErrNotSeller
	}
	if !l.Active {
		return ErrListingNotActive
	}
	if err := m.deactivate(tx, listingID); err != nil {
		return err
	}
	return f.Emit(ListingCancelled{ListingID: listingID, Seller: l.Seller})
}

func (m *Market) deactivate(tx *chain.Tx, listingID uint64) error {
	return tx.Exec(listingsTable, tx.Builder().Update(listingsTable).
		Set("active", false).
		Where(entsql.And(m.where(), entsql.EQ("listing_id", int64(listingID)))))
}

func (m *Market) isApproved(tx *chain.Tx, nft NonFungible, owner common.Address, tokenID uint64) (bool, error) {
	approved, err := nft.GetApproved(tx, tokenID)
	if err != nil {
		return false, err
	}
	if approved == m.address {
		return true, nil
	}
	return nft.IsApprovedForAll(tx, owner, m.address)
}
