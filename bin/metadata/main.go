package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	nftmarketplace "github.com/molalign8468/full-stack-nft-marketplace"
	"github.com/molalign8468/full-stack-nft-marketplace/wallet"
)

const defaultImageCID = "bafybeic7b56254f6m6tk3ovlg7u3atxkgrbc7dsvpz5af2jnqnihkxhe5e"

// writeMetadata writes <i>.json for editions 0..total-1 into dir.
func writeMetadata(dir, collectionName, imageCID string, total int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for i := 0; i < total; i++ {
		raw, err := json.MarshalIndent(wallet.TokenMetadata(collectionName, imageCID, i), "", "    ")
		if err != nil {
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("%d.json", i))
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

func main() {
	imageCID := flag.String("cid", defaultImageCID, "IPFS CID of the image folder")
	outputDir := flag.String("out", "metadata", "Output directory")
	total := flag.Int("count", 62, "Number of editions")
	name := flag.String("name", nftmarketplace.CollectionName, "Collection name")
	flag.Parse()

	if err := writeMetadata(*outputDir, *name, *imageCID, *total); err != nil {
		slog.Error("Failed to write metadata", "error", err)
		os.Exit(1)
	}
	slog.Info("Created metadata files", "count", *total, "dir", *outputDir)
}
