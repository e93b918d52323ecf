package nftmarketplace

const (
	// CollectionName is the name of the LoyaltyPoint collection.
	CollectionName = "LoyaltyPoint"

	// CollectionSymbol is the ticker symbol of the LoyaltyPoint collection.
	CollectionSymbol = "LP"

	// MaxSupply is the number of assets the collection may ever mint.
	MaxSupply = 10_000

	// MaxMintPerTx is the largest quantity a single public mint may request.
	MaxMintPerTx = 5

	// MintPriceWei is the price of one asset on the public mint, 0.01 ether.
	MintPriceWei = 10_000_000_000_000_000
)
