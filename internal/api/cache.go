package api

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"

	"bitbotScope/internal/model"
	"bitbotScope/internal/storage"
)

const (
	DefaultCacheTTL = 5 * time.Second
	cleanupInterval = time.Minute
)

// CachedReader memoizes decoded cache values for a short TTL so API reads do
// not decode the full record list on every request.
type CachedReader struct {
	reader storage.Reader
	cache  *cache.Cache
}

func NewCachedReader(reader storage.Reader, ttl time.Duration) *CachedReader {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedReader{
		reader: reader,
		cache:  cache.New(ttl, cleanupInterval),
	}
}

func (c *CachedReader) Cursor(ctx context.Context) (int, error) {
	return cached(c, storage.KeyPage, func() (int, error) { return c.reader.Cursor(ctx) })
}

func (c *CachedReader) AssetIDs(ctx context.Context) ([]string, error) {
	return cached(c, storage.KeyAssetHashes, func() ([]string, error) { return c.reader.AssetIDs(ctx) })
}

func (c *CachedReader) ProcessedTxs(ctx context.Context) ([]string, error) {
	return cached(c, storage.KeyTxHashes, func() ([]string, error) { return c.reader.ProcessedTxs(ctx) })
}

func (c *CachedReader) Bitbots(ctx context.Context) ([]model.Bitbot, error) {
	return cached(c, storage.KeyBitbots, func() ([]model.Bitbot, error) { return c.reader.Bitbots(ctx) })
}

// Errors are not cached.
func cached[T any](c *CachedReader, key string, load func() (T, error)) (T, error) {
	if obj, found := c.cache.Get(key); found {
		return obj.(T), nil
	}
	value, err := load()
	if err != nil {
		return value, err
	}
	c.cache.SetDefault(key, value)
	return value, nil
}
