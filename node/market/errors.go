package market

import "github.com/molalign8468/full-stack-nft-marketplace/node/chain"

var (
	ErrPriceNotPositive   = chain.Revert(chain.PolicyViolation, "Price must be greater than zero")
	ErrIncorrectPrice     = chain.Revert(chain.PolicyViolation, "Incorrect price")
	ErrNotTokenOwner      = chain.Revert(chain.AuthorizationFailure, "Not the owner")
	ErrNotApproved        = chain.Revert(chain.AuthorizationFailure, "Marketplace not approved")
	ErrNotSeller          = chain.Revert(chain.AuthorizationFailure, "Not the seller")
	ErrListingNotActive   = chain.Revert(chain.StateConflict, "Listing not active")
	ErrSellerNotOwner     = chain.Revert(chain.StateConflict, "Seller no longer owns the item")
	ErrApprovalRevoked    = chain.Revert(chain.StateConflict, "Marketplace approval revoked")
	ErrListingNotFound    = chain.Revert(chain.NotFound, "Listing does not exist")
	ErrUnknownNFTContract = chain.Revert(chain.NotFound, "Unknown NFT contract")
)
