package collection

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Transfer is emitted on every ownership change. A mint is a transfer from the zero address.
type Transfer struct {
	From    common.Address `json:"from"`
	To      common.Address `json:"to"`
	TokenID uint64         `json:"tokenId"`
}

func (Transfer) Signature() string { return "Transfer(address,address,uint256)" }

type Approval struct {
	Owner    common.Address `json:"owner"`
	Approved common.Address `json:"approved"`
	TokenID  uint64         `json:"tokenId"`
}

func (Approval) Signature() string { return "Approval(address,address,uint256)" }

type ApprovalForAll struct {
	Owner    common.Address `json:"owner"`
	Operator common.Address `json:"operator"`
	Approved bool           `json:"approved"`
}

func (ApprovalForAll) Signature() string { return "ApprovalForAll(address,address,bool)" }

// Withdrawal is emitted when the owner drains the mint proceeds.
type Withdrawal struct {
	Owner  common.Address `json:"owner"`
	Amount *big.Int       `json:"amount"`
}

func (Withdrawal) Signature() string { return "Withdrawal(address,uint256)" }
