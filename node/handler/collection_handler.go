package handler

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/collection"
)

// CollectionHandler translates requests into calls on the node's collection.
type CollectionHandler struct {
	collection *collection.Collection
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(c *collection.Collection) *CollectionHandler {
	return &CollectionHandler{collection: c}
}

// Mint buys quantity new assets for the caller, paying value.
func (h *CollectionHandler) Mint(ctx context.Context, req *api.MintRequest) (*api.MintResponse, error) {
	tx, from, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	value, err := api.ParseAmount("value", req.Value)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	receipt, err := tx.Transact(from, h.collection.Address(), value, "mint", func(f *chain.Frame) error {
		ids, err = h.collection.Mint(f, req.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &api.MintResponse{TokenIDs: ids, Receipt: marshalReceipt(receipt)}, nil
}

// SafeMint mints one asset to req.To. Only the collection owner may call it.
func (h *CollectionHandler) SafeMint(ctx context.Context, req *api.SafeMintRequest) (*api.SafeMintResponse, error) {
	tx, from, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	to, err := api.ParseAddress("to", req.To)
	if err != nil {
		return nil, err
	}
	var id uint64
	receipt, err := tx.Transact(from, h.collection.Address(), nil, "safeMint", func(f *chain.Frame) error {
		id, err = h.collection.SafeMint(f, to, req.URI)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &api.SafeMintResponse{TokenID: id, Receipt: marshalReceipt(receipt)}, nil
}

// FlipSaleState toggles the public sale. Only the collection owner may call it.
func (h *CollectionHandler) FlipSaleState(ctx context.Context, _ *api.FlipSaleStateRequest) (*api.FlipSaleStateResponse, error) {
	tx, from, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	var active bool
	receipt, err := tx.Transact(from, h.collection.Address(), nil, "flipSaleState", func(f *chain.Frame) error {
		active, err = h.collection.FlipSaleState(f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &api.FlipSaleStateResponse{SaleIsActive: active, Receipt: marshalReceipt(receipt)}, nil
}

// Withdraw sends the collection balance to its owner.
func (h *CollectionHandler) Withdraw(ctx context.Context, _ *api.WithdrawRequest) (*api.WithdrawResponse, error) {
	tx, from, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	var amount *big.Int
	receipt, err := tx.Transact(from, h.collection.Address(), nil, "withdraw", func(f *chain.Frame) error {
		amount, err = h.collection.Withdraw(f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &api.WithdrawResponse{Amount: amount.String(), Receipt: marshalReceipt(receipt)}, nil
}

// Approve lets req.To move one asset of the caller.
func (h *CollectionHandler) Approve(ctx context.Context, req *api.ApproveRequest) (*api.TxResponse, error) {
	tx, from, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	to, err := api.ParseAddress("to", req.To)
	if err != nil {
		return nil, err
	}
	receipt, err := tx.Transact(from, h.collection.Address(), nil, "approve", func(f *chain.Frame) error {
		return h.collection.Approve(f, to, req.TokenID)
	})
	if err != nil {
		return nil, err
	}
	return &api.TxResponse{Receipt: marshalReceipt(receipt)}, nil
}

// SetApprovalForAll grants or revokes an operator over every asset of the caller.
func (h *CollectionHandler) SetApprovalForAll(ctx context.Context, req *api.SetApprovalForAllRequest) (*api.TxResponse, error) {
	tx, from, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	operator, err := api.ParseAddress("operator", req.Operator)
	if err != nil {
		return nil, err
	}
	receipt, err := tx.Transact(from, h.collection.Address(), nil, "setApprovalForAll", func(f *chain.Frame) error {
		return h.collection.SetApprovalForAll(f, operator, req.Approved)
	})
	if err != nil {
		return nil, err
	}
	return &api.TxResponse{Receipt: marshalReceipt(receipt)}, nil
}

// TransferFrom moves an asset. With req.Safe the recipient contract must accept it.
func (h *CollectionHandler) TransferFrom(ctx context.Context, req *api.TransferFromRequest) (*api.TxResponse, error) {
	tx, sender, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	from, err := api.ParseAddress("from", req.From)
	if err != nil {
		return nil, err
	}
	to, err := api.ParseAddress("to", req.To)
	if err != nil {
		return nil, err
	}
	method := "transferFrom"
	if req.Safe {
		method = "safeTransferFrom"
	}
	receipt, err := tx.Transact(sender, h.collection.Address(), nil, method, func(f *chain.Frame) error {
		if req.Safe {
			return h.collection.SafeTransferFrom(f, from, to, req.TokenID, nil)
		}
		return h.collection.TransferFrom(f, from, to, req.TokenID)
	})
	if err != nil {
		return nil, err
	}
	return &api.TxResponse{Receipt: marshalReceipt(receipt)}, nil
}

// GetCollection returns a snapshot of the collection.
func (h *CollectionHandler) GetCollection(ctx context.Context, _ *api.GetCollectionRequest) (*api.Collection, error) {
	tx, err := ledgerTx(ctx)
	if err != nil {
		return nil, err
	}
	info, err := h.collection.Info(tx)
	if err != nil {
		return nil, err
	}
	return MarshalCollection(info), nil
}

// GetToken returns the owner, metadata reference and approval of one asset.
func (h *CollectionHandler) GetToken(ctx context.Context, req *api.GetTokenRequest) (*api.Token, error) {
	tx, err := ledgerTx(ctx)
	if err != nil {
		return nil, err
	}
	return LoadToken(tx, h.collection, req.TokenID)
}

// LoadToken reads one asset of c.
func LoadToken(tx *chain.Tx, c *collection.Collection, tokenID uint64) (*api.Token, error) {
	owner, err := c.OwnerOf(tx, tokenID)
	if err != nil {
		return nil, err
	}
	uri, err := c.TokenURI(tx, tokenID)
	if err != nil {
		return nil, err
	}
	approved, err := c.GetApproved(tx, tokenID)
	if err != nil {
		return nil, err
	}
	return &api.Token{
		TokenID:  tokenID,
		Owner:    owner.Hex(),
		URI:      uri,
		Approved: approved.Hex(),
	}, nil
}

// LoadTokensOf renders every asset held by owner.
func LoadTokensOf(tx *chain.Tx, c *collection.Collection, owner common.Address) ([]*api.Token, error) {
	owned, err := c.OwnedTokens(tx, owner)
	if err != nil {
		return nil, err
	}
	tokens := make([]*api.Token, 0, len(owned))
	for _, t := range owned {
		tokens = append(tokens, &api.Token{
			TokenID:  t.TokenID,
			Owner:    owner.Hex(),
			URI:      t.URI,
			Approved: t.Approved.Hex(),
		})
	}
	return tokens, nil
}

// BalanceOf returns the number of assets held by req.Owner.
func (h *CollectionHandler) BalanceOf(ctx context.Context, req *api.BalanceOfRequest) (*api.BalanceOfResponse, error) {
	tx, err := ledgerTx(ctx)
	if err != nil {
		return nil, err
	}
	owner, err := api.ParseAddress("owner", req.Owner)
	if err != nil {
		return nil, err
	}
	balance, err := h.collection.BalanceOf(tx, owner)
	if err != nil {
		return nil, err
	}
	return &api.BalanceOfResponse{Balance: balance}, nil
}

// IsApprovedForAll reports whether req.Operator may move every asset of req.Owner.
func (h *CollectionHandler) IsApprovedForAll(ctx context.Context, req *api.IsApprovedForAllRequest) (*api.IsApprovedForAllResponse, error) {
	tx, err := ledgerTx(ctx)
	if err != nil {
		return nil, err
	}
	owner, err := api.ParseAddress("owner", req.Owner)
	if err != nil {
		return nil, err
	}
	operator, err := api.ParseAddress("operator", req.Operator)
	if err != nil {
		return nil, err
	}
	approved, err := h.collection.IsApprovedForAll(tx, owner, operator)
	if err != nil {
		return nil, err
	}
	return &api.IsApprovedForAllResponse{Approved: approved}, nil
}

// SupportsInterface reports whether the collection implements req.InterfaceID.
func (h *CollectionHandler) SupportsInterface(_ context.Context, req *api.SupportsInterfaceRequest) (*api.SupportsInterfaceResponse, error) {
	id, err := api.ParseInterfaceID(req.InterfaceID)
	if err != nil {
		return nil, err
	}
	return &api.SupportsInterfaceResponse{Supported: h.collection.SupportsInterface(collection.InterfaceID(id))}, nil
}
