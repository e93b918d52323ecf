package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"github.com/molalign8468/full-stack-nft-marketplace/node/authn"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/collection"
	"github.com/molalign8468/full-stack-nft-marketplace/node/market"
)

// ErrNoLedgerTx is returned when a handler runs outside the session middleware.
var ErrNoLedgerTx = errors.New("no ledger transaction in context")

func ledgerTx(ctx context.Context) (*chain.Tx, error) {
	tx := chain.GetTxFromContext(ctx)
	if tx == nil {
		return nil, ErrNoLedgerTx
	}
	return tx, nil
}

// caller returns the ledger transaction and the account the authenticated session acts for.
func caller(ctx context.Context) (*chain.Tx, common.Address, error) {
	session, err := authn.GetSessionFromContext(ctx)
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("%w: %v", authn.ErrNoSession, err)
	}
	if session == nil {
		return nil, common.Address{}, authn.ErrNoSession
	}
	tx, err := ledgerTx(ctx)
	if err != nil {
		return nil, common.Address{}, err
	}
	return tx, session.Address(), nil
}

func marshalReceipt(r *chain.Receipt) *api.Receipt {
	if r == nil {
		return nil
	}
	return &api.Receipt{
		TxHash: r.TxHash.Hex(),
		Block:  r.Block,
		Nonce:  r.Nonce,
		From:   r.From.Hex(),
		To:     r.To.Hex(),
		Value:  r.Value.String(),
		Logs:   marshalEvents(r.Logs),
	}
}

// MarshalEvent converts a committed log to its wire form.
func MarshalEvent(l *chain.Log) *api.Event {
	return &api.Event{
		Block:    l.Block,
		Index:    l.Index,
		TxHash:   l.TxHash.Hex(),
		Contract: l.Contract.Hex(),
		Name:     l.Name,
		Topic:    l.Topic.Hex(),
		Data:     l.Data,
	}
}

func marshalEvents(logs []*chain.Log) []*api.Event {
	events := make([]*api.Event, 0, len(logs))
	for _, l := range logs {
		events = append(events, MarshalEvent(l))
	}
	return events
}

// MarshalCollection converts a collection snapshot to its wire form.
func MarshalCollection(info *collection.Info) *api.Collection {
	return &api.Collection{
		Address:        info.Address.Hex(),
		Name:           info.Name,
		Symbol:         info.Symbol,
		BaseURI:        info.BaseURI,
		MaxSupply:      info.MaxSupply,
		MaxPerTx:       info.MaxPerTx,
		MintPrice:      info.MintPrice.String(),
		SaleIsActive:   info.SaleIsActive,
		TokenIDCounter: info.TokenIDCounter,
		Owner:          info.Owner.Hex(),
		Balance:        info.Balance.String(),
	}
}

// MarshalListing converts a listing to its wire form.
func MarshalListing(l *market.Listing) *api.Listing {
	return &api.Listing{
		ListingID:   l.ID,
		Seller:      l.Seller.Hex(),
		NFTContract: l.NFTContract.Hex(),
		TokenID:     l.TokenID,
		Price:       l.Price.String(),
		Active:      l.Active,
	}
}
