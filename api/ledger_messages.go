package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Amounts are decimal wei strings and addresses 0x-prefixed hex, so values survive JSON
// clients that only have 53-bit integers.

type Receipt struct {
	TxHash string   `json:"txHash"`
	Block  uint64   `json:"block"`
	Nonce  uint64   `json:"nonce"`
	From   string   `json:"from"`
	To     string   `json:"to"`
	Value  string   `json:"value"`
	Logs   []*Event `json:"logs"`
}

type Event struct {
	Block    uint64          `json:"block"`
	Index    uint64          `json:"index"`
	TxHash   string          `json:"txHash"`
	Contract string          `json:"contract"`
	Name     string          `json:"name"`
	Topic    string          `json:"topic"`
	Data     json.RawMessage `json:"data"`
}

type TxResponse struct {
	Receipt *Receipt `json:"receipt"`
}

type MintRequest struct {
	Quantity uint64 `json:"quantity"`
	Value    string `json:"value"`
}

type MintResponse struct {
	TokenIDs []uint64 `json:"tokenIds"`
	Receipt  *Receipt `json:"receipt"`
}

type SafeMintRequest struct {
	To  string `json:"to"`
	URI string `json:"uri"`
}

type SafeMintResponse struct {
	TokenID uint64   `json:"tokenId"`
	Receipt *Receipt `json:"receipt"`
}

type FlipSaleStateRequest struct{}

type FlipSaleStateResponse struct {
	SaleIsActive bool     `json:"saleIsActive"`
	Receipt      *Receipt `json:"receipt"`
}

type WithdrawRequest struct{}

type WithdrawResponse struct {
	Amount  string   `json:"amount"`
	Receipt *Receipt `json:"receipt"`
}

type ApproveRequest struct {
	To      string `json:"to"`
	TokenID uint64 `json:"tokenId"`
}

type SetApprovalForAllRequest struct {
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

type TransferFromRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	TokenID uint64 `json:"tokenId"`
	Safe    bool   `json:"safe"`
}

type ListItemRequest struct {
	// NFTContract defaults to the node's collection when empty.
	NFTContract string `json:"nftContract,omitempty"`
	TokenID     uint64 `json:"tokenId"`
	Price       string `json:"price"`
}

type ListItemResponse struct {
	ListingID uint64   `json:"listingId"`
	Receipt   *Receipt `json:"receipt"`
}

type BuyItemRequest struct {
	ListingID uint64 `json:"listingId"`
	Value     string `json:"value"`
}

type CancelListingRequest struct {
	ListingID uint64 `json:"listingId"`
}

type GetCollectionRequest struct{}

type Collection struct {
	Address        string `json:"address"`
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	BaseURI        string `json:"baseUri"`
	MaxSupply      uint64 `json:"maxSupply"`
	MaxPerTx       uint64 `json:"maxPerTx"`
	MintPrice      string `json:"mintPrice"`
	SaleIsActive   bool   `json:"saleIsActive"`
	TokenIDCounter uint64 `json:"tokenIdCounter"`
	Owner          string `json:"owner"`
	Balance        string `json:"balance"`
}

type GetTokenRequest struct {
	TokenID uint64 `json:"tokenId"`
}

type Token struct {
	TokenID  uint64 `json:"tokenId"`
	Owner    string `json:"owner"`
	URI      string `json:"uri"`
	Approved string `json:"approved"`
}

type BalanceOfRequest struct {
	Owner string `json:"owner"`
}

type BalanceOfResponse struct {
	Balance uint64 `json:"balance"`
}

type IsApprovedForAllRequest struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
}

type IsApprovedForAllResponse struct {
	Approved bool `json:"approved"`
}

type SupportsInterfaceRequest struct {
	// InterfaceID is a 4 byte hex identifier such as 0x80ac58cd.
	InterfaceID string `json:"interfaceId"`
}

type SupportsInterfaceResponse struct {
	Supported bool `json:"supported"`
}

type GetAccountRequest struct {
	Address string `json:"address"`
}

type Account struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

type GetMarketRequest struct{}

type Market struct {
	Address          string `json:"address"`
	Owner            string `json:"owner"`
	ListingIDCounter uint64 `json:"listingIdCounter"`
}

type GetListingRequest struct {
	ListingID uint64 `json:"listingId"`
}

type Listing struct {
	ListingID   uint64 `json:"listingId"`
	Seller      string `json:"seller"`
	NFTContract string `json:"nftContract"`
	TokenID     uint64 `json:"tokenId"`
	Price       string `json:"price"`
	Active      bool   `json:"active"`
}

type GetEventsRequest struct {
	FromBlock uint64 `json:"fromBlock"`
	Contract  string `json:"contract,omitempty"`
	Name      string `json:"name,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type GetEventsResponse struct {
	Events []*Event `json:"events"`
}

type SubscribeEventsRequest struct {
	Contract string `json:"contract,omitempty"`
	Name     string `json:"name,omitempty"`
}

// ParseAddress parses a hex address field.
func ParseAddress(field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s: invalid address %q", field, value)
	}
	return common.HexToAddress(value), nil
}

// ParseAmount parses a decimal wei field. An empty value is zero.
func ParseAmount(field, value string) (*big.Int, error) {
	if value == "" {
		return new(big.Int), nil
	}
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("%s: invalid amount %q", field, value)
	}
	return amount, nil
}

// ParseInterfaceID parses a 4 byte hex interface identifier.
func ParseInterfaceID(value string) ([4]byte, error) {
	var id [4]byte
	raw, err := hexutil.Decode(value)
	if err != nil {
		return id, fmt.Errorf("interface_id: %w", err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("interface_id: want 4 bytes, got %d", len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

func (r *MintRequest) Validate() error {
	_, err := ParseAmount("value", r.Value)
	return err
}

func (r *SafeMintRequest) Validate() error {
	_, err := ParseAddress("to", r.To)
	return err
}

func (r *ApproveRequest) Validate() error {
	_, err := ParseAddress("to", r.To)
	return err
}

func (r *SetApprovalForAllRequest) Validate() error {
	_, err := ParseAddress("operator", r.Operator)
	return err
}

func (r *TransferFromRequest) Validate() error {
	if _, err := ParseAddress("from", r.From); err != nil {
		return err
	}
	_, err := ParseAddress("to", r.To)
	return err
}

func (r *ListItemRequest) Validate() error {
	if r.NFTContract != "" {
		if _, err := ParseAddress("nft_contract", r.NFTContract); err != nil {
			return err
		}
	}
	if strings.TrimSpace(r.Price) == "" {
		return errors.New("price: required")
	}
	_, err := ParseAmount("price", r.Price)
	return err
}

func (r *BuyItemRequest) Validate() error {
	_, err := ParseAmount("value", r.Value)
	return err
}

func (r *BalanceOfRequest) Validate() error {
	_, err := ParseAddress("owner", r.Owner)
	return err
}

func (r *IsApprovedForAllRequest) Validate() error {
	if _, err := ParseAddress("owner", r.Owner); err != nil {
		return err
	}
	_, err := ParseAddress("operator", r.Operator)
	return err
}

func (r *SupportsInterfaceRequest) Validate() error {
	_, err := ParseInterfaceID(r.InterfaceID)
	return err
}

func (r *GetAccountRequest) Validate() error {
	_, err := ParseAddress("address", r.Address)
	return err
}

func (r *GetEventsRequest) Validate() error {
	if r.Limit < 0 {
		return errors.New("limit: must not be negative")
	}
	if r.Contract != "" {
		if _, err := ParseAddress("contract", r.Contract); err != nil {
			return err
		}
	}
	return nil
}

func (r *SubscribeEventsRequest) Validate() error {
	if r.Contract != "" {
		if _, err := ParseAddress("contract", r.Contract); err != nil {
			return err
		}
	}
	return nil
}
