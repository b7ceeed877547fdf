package model

import "encoding/json"

// NFTMetadataLabel is the transaction metadata label used for NFT metadata.
const NFTMetadataLabel = "721"

// MetadataEnvelope is one labelled metadata blob attached to a transaction.
type MetadataEnvelope struct {
	Label        string          `json:"label"`
	JSONMetadata json.RawMessage `json:"json_metadata"`
}

// IsNFTMetadata reports whether the envelope carries NFT metadata.
func (e MetadataEnvelope) IsNFTMetadata() bool {
	return e.Label == NFTMetadataLabel
}
