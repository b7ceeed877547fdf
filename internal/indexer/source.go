package indexer

import (
	"context"

	"bitbotScope/internal/model"
)

// Source is the remote blockchain index the pipeline crawls.
type Source interface {
	// AssetsByPolicy returns one 1-based page of asset ids; an empty page ends the listing.
	AssetsByPolicy(ctx context.Context, policy string, page int) ([]string, error)
	AssetTransactions(ctx context.Context, assetID string) ([]string, error)
	TransactionMetadata(ctx context.Context, txHash string) ([]model.MetadataEnvelope, error)
}
