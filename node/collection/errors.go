package collection

import "github.com/molalign8468/full-stack-nft-marketplace/node/chain"

var (
	ErrSaleInactive     = chain.Revert(chain.PolicyViolation, "Sale inactive")
	ErrInvalidQuantity  = chain.Revert(chain.PolicyViolation, "Invalid quantity")
	ErrExceedsMaxPerTx  = chain.Revert(chain.PolicyViolation, "Exceeds max per TX")
	ErrExceedsMaxSupply = chain.Revert(chain.PolicyViolation, "Exceeds max supply")
	ErrIncorrectValue   = chain.Revert(chain.PolicyViolation, "Incorrect ETH value")
	ErrNoFunds          = chain.Revert(chain.PolicyViolation, "No funds to withdraw")

	ErrInvalidTokenID   = chain.Revert(chain.NotFound, "ERC721: invalid token ID")
	ErrZeroAddressOwner = chain.Revert(chain.PolicyViolation, "ERC721: address zero is not a valid owner")
	ErrMintToZero       = chain.Revert(chain.PolicyViolation, "ERC721: mint to the zero address")
	ErrTransferToZero   = chain.Revert(chain.PolicyViolation, "ERC721: transfer to the zero address")
	ErrApproveToCaller  = chain.Revert(chain.PolicyViolation, "ERC721: approve to caller")
	ErrNonReceiver      = chain.Revert(chain.PolicyViolation, "ERC721: transfer to non ERC721Receiver implementer")

	ErrApprovalToCurrentOwner     = chain.Revert(chain.PolicyViolation, "ERC721: approval to current owner")
	ErrApproveCallerNotOwner      = chain.Revert(chain.AuthorizationFailure, "ERC721: approve caller is not token owner or approved for all")
	ErrCallerNotOwnerNorApproved  = chain.Revert(chain.AuthorizationFailure, "ERC721: caller is not token owner or approved")
	ErrTransferFromIncorrectOwner = chain.Revert(chain.StateConflict, "ERC721: transfer from incorrect owner")
)
