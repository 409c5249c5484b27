package geolib

import (
	"fmt"
	"net"
	"time"

	"github.com/dgraph-io/ristretto"
)

type cachingDataset struct {
	Dataset

	cache *ristretto.Cache
	ttl   time.Duration
}

func (c cachingDataset) Lookup(ip net.IP) (LookupResult, error) {
	cacheKey := ip.String()

	if value, ok := c.cache.Get(cacheKey); ok {
		return value.(LookupResult), nil
	}

	result, err := c.Dataset.Lookup(ip)
	if err != nil {
		return NotFound, err
	}

	c.cache.SetWithTTL(cacheKey, result, 1, c.ttl)

	return result, nil
}

func (c cachingDataset) Close() error {
	c.cache.Close()

	return c.Dataset.Close()
}

// NewCachingDataset decorates a dataset with LRU-like cache of lookup
// results. Errors are never cached.
func NewCachingDataset(dataset Dataset, itemsCount uint, ttl time.Duration) (Dataset, error) {
	cacheConfig := &ristretto.Config{
		MaxCost:     int64(itemsCount),
		NumCounters: 10 * int64(itemsCount),
		Metrics:     false,
		BufferItems: 64,
	}

	cache, err := ristretto.NewCache(cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("cannot create a cache for %s: %w", dataset.Name(), err)
	}

	return cachingDataset{
		Dataset: dataset,
		cache:   cache,
		ttl:     ttl,
	}, nil
}
