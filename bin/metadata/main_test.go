package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/molalign8468/full-stack-nft-marketplace/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMetadata(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "metadata")
	require.NoError(t, writeMetadata(dir, "LoyaltyPoint", defaultImageCID, 3))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	raw, err := os.ReadFile(filepath.Join(dir, "2.json"))
	require.NoError(t, err)
	var metadata wallet.Metadata
	require.NoError(t, json.Unmarshal(raw, &metadata))
	assert.Equal(t, "LoyaltyPoint #2", metadata.Name)
	assert.Equal(t, "ipfs://"+defaultImageCID+"/2.jpg", metadata.Image)
	require.Len(t, metadata.Attributes, 2)
	assert.Equal(t, "Edition", metadata.Attributes[1].TraitType)
	assert.EqualValues(t, 2, metadata.Attributes[1].Value)
}
