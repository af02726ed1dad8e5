package database

import (
	"github.com/bradfitz/gomemcache/memcache"
)

// NewMemcached creates the client backing the verified-count cache.
// Returns nil when no address is configured; the cache degrades to
// pass-through.
func NewMemcached(addr string) *memcache.Client {
	if addr == "" {
		return nil
	}
	return memcache.New(addr)
}
