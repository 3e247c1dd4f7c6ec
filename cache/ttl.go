package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type TTLCache[K comparable, V any] struct {
	cache *expirable.LRU[K, V]
}

func NewTTL[K comparable, V any](maxSize int, ttl time.Duration) *TTLCache[K, V] {
	c := expirable.NewLRU[K, V](maxSize, nil, ttl)
	return &TTLCache[K, V]{cache: c}
}

func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	return c.cache.Get(key)
}

func (c *TTLCache[K, V]) Set(key K, value V) {
	c.cache.Add(key, value)
}

// Take returns the value for key and evicts it, so it can be used once.
func (c *TTLCache[K, V]) Take(key K) (V, bool) {
	v, ok := c.cache.Get(key)
	if ok {
		c.cache.Remove(key)
	}
	return v, ok
}

// GetOrLoad returns the cached value for key, calling load on a miss.
// Loaded values expire after the cache TTL; failed loads are not cached.
func (c *TTLCache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.cache.Add(key, v)
	return v, nil
}
