package handler

import (
	"context"

	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
)

// DefaultEventLimit caps GetEvents when the request sets no limit.
const DefaultEventLimit = 1000

// AccountHandler serves native balances and the event log.
type AccountHandler struct{}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler() *AccountHandler {
	return &AccountHandler{}
}

// GetAccount returns the balance and nonce of an account.
func (h *AccountHandler) GetAccount(ctx context.Context, req *api.GetAccountRequest) (*api.Account, error) {
	tx, err := ledgerTx(ctx)
	if err != nil {
		return nil, err
	}
	address, err := api.ParseAddress("address", req.Address)
	if err != nil {
		return nil, err
	}
	balance, err := tx.BalanceOf(address)
	if err != nil {
		return nil, err
	}
	nonce, err := tx.NonceOf(address)
	if err != nil {
		return nil, err
	}
	return &api.Account{Address: address.Hex(), Balance: balance.String(), Nonce: nonce}, nil
}

// GetEvents returns committed events from req.FromBlock on, oldest first.
func (h *AccountHandler) GetEvents(ctx context.Context, req *api.GetEventsRequest) (*api.GetEventsResponse, error) {
	tx, err := ledgerTx(ctx)
	if err != nil {
		return nil, err
	}
	filter, err := EventFilter(req.Contract, req.Name)
	if err != nil {
		return nil, err
	}
	filter.FromBlock = req.FromBlock
	filter.Limit = req.Limit
	if filter.Limit == 0 {
		filter.Limit = DefaultEventLimit
	}
	logs, err := tx.Logs(filter)
	if err != nil {
		return nil, err
	}
	return &api.GetEventsResponse{Events: marshalEvents(logs)}, nil
}

// EventFilter builds a log filter from optional contract and name fields.
func EventFilter(contract, name string) (chain.LogFilter, error) {
	filter := chain.LogFilter{Name: name}
	if contract != "" {
		address, err := api.ParseAddress("contract", contract)
		if err != nil {
			return filter, err
		}
		filter.Contract = &address
	}
	return filter, nil
}
