package client

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/quality-match/hari-client-sub000/pkg/models"
)

const (
	defaultSubsetCacheSize = 64
	defaultSubsetCacheTTL  = 5 * time.Minute
)

type subsetCacheEntry struct {
	subsets  []models.Subset
	storedAt time.Time
}

// subsetCache memoizes subset listings per dataset. Subsets change rarely and
// every upload run lists them, so concurrent runs against the same dataset
// would otherwise hammer one endpoint.
type subsetCache struct {
	cache *lru.Cache[string, subsetCacheEntry]
	ttl   time.Duration
}

func newSubsetCache(maxSize int, ttl time.Duration) *subsetCache {
	if maxSize <= 0 {
		maxSize = defaultSubsetCacheSize
	}
	if ttl <= 0 {
		ttl = defaultSubsetCacheTTL
	}
	cache, err := lru.New[string, subsetCacheEntry](maxSize)
	if err != nil {
		// lru.New only errors on non-positive size which we guard above.
		return &subsetCache{ttl: ttl}
	}
	return &subsetCache{cache: cache, ttl: ttl}
}

func (c *subsetCache) get(datasetID string) ([]models.Subset, bool) {
	if c == nil || c.cache == nil {
		return nil, false
	}
	entry, ok := c.cache.Get(datasetID)
	if !ok {
		return nil, false
	}
	if time.Since(entry.storedAt) > c.ttl {
		c.cache.Remove(datasetID)
		return nil, false
	}
	return entry.subsets, true
}

func (c *subsetCache) put(datasetID string, subsets []models.Subset) {
	if c == nil || c.cache == nil {
		return
	}
	c.cache.Add(datasetID, subsetCacheEntry{
		subsets:  append([]models.Subset(nil), subsets...),
		storedAt: time.Now(),
	})
}

func (c *subsetCache) invalidate(datasetID string) {
	if c == nil || c.cache == nil {
		return
	}
	c.cache.Remove(datasetID)
}
