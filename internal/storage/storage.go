package storage

import "context"

// Well-known cache keys owned by the ingestion pipeline.
const (
	KeyPage        = "page"
	KeyAssetHashes = "assetHashes"
	KeyTxHashes    = "txHashes"
	KeyBitbots     = "bitbots"
)

// Store is a durable mapping from string keys to JSON encoded string values.
// Implementations need not be transactional.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
