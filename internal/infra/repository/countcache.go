package repository

import (
	"strconv"

	"github.com/bradfitz/gomemcache/memcache"
)

const countCacheTTL = 60 // seconds

// CountCache memoizes verified signature counts per petition in memcached.
// A nil client degrades to pass-through so the repositories never depend on
// memcached being reachable.
type CountCache struct {
	mc *memcache.Client
}

func NewCountCache(mc *memcache.Client) *CountCache {
	return &CountCache{mc: mc}
}

func countCacheKey(petitionID string) string {
	return "sigcount:" + petitionID
}

func (c *CountCache) Get(petitionID string) (int64, bool) {
	if c == nil || c.mc == nil {
		return 0, false
	}
	item, err := c.mc.Get(countCacheKey(petitionID))
	if err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(string(item.Value), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *CountCache) Set(petitionID string, n int64) {
	if c == nil || c.mc == nil {
		return
	}
	_ = c.mc.Set(&memcache.Item{
		Key:        countCacheKey(petitionID),
		Value:      []byte(strconv.FormatInt(n, 10)),
		Expiration: countCacheTTL,
	})
}

func (c *CountCache) Invalidate(petitionID string) {
	if c == nil || c.mc == nil {
		return
	}
	_ = c.mc.Delete(countCacheKey(petitionID))
}
