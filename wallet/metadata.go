package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

const (
	ipfsScheme  = "ipfs://"
	ipfsGateway = "https://ipfs.io/ipfs/"
	// metadataSizeLimit bounds the documents FetchMetadata reads.
	metadataSizeLimit = 1 << 20
)

var numericSegment = regexp.MustCompile(`^\d+$`)

// Metadata is the JSON document a token URI points at.
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes,omitempty"`
}

type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// ConvertIPFSURL rewrites an ipfs:// URI for the public gateway. URIs ending in a bare token
// number get the .json suffix the metadata files are stored under. Other URIs are returned
// unchanged.
func ConvertIPFSURL(uri string) string {
	if !strings.HasPrefix(uri, ipfsScheme) {
		return uri
	}
	path := strings.TrimPrefix(uri, ipfsScheme)
	segments := strings.Split(path, "/")
	if numericSegment.MatchString(segments[len(segments)-1]) {
		return ipfsGateway + path + ".json"
	}
	return ipfsGateway + path
}

// FetchMetadata downloads and decodes the metadata at uri. The image URI is rewritten with
// ConvertIPFSURL. A nil client uses http.DefaultClient.
func FetchMetadata(ctx context.Context, client *http.Client, uri string) (*Metadata, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ConvertIPFSURL(uri), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch metadata: unexpected status %s", resp.Status)
	}

	var metadata Metadata
	if err := json.NewDecoder(io.LimitReader(resp.Body, metadataSizeLimit)).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	metadata.Image = ConvertIPFSURL(metadata.Image)
	return &metadata, nil
}

// TokenMetadata builds the metadata document of one edition of a collection whose images are
// stored as <edition>.jpg under imageCID.
func TokenMetadata(collectionName, imageCID string, edition int) *Metadata {
	return &Metadata{
		Name:        fmt.Sprintf("%s #%d", collectionName, edition),
		Description: fmt.Sprintf("A unique NFT from the %s collection.", collectionName),
		Image:       fmt.Sprintf("%s%s/%d.jpg", ipfsScheme, imageCID, edition),
		Attributes: []Attribute{
			{TraitType: "Collection", Value: collectionName},
			{TraitType: "Edition", Value: edition},
		},
	}
}
