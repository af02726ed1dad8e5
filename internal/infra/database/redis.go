package database

import (
	"github.com/redis/go-redis/v9"
)

// NewRedis creates the pub/sub client used for petition event fan-out.
// Returns nil when no address is configured; callers treat a nil client as
// events disabled.
func NewRedis(addr string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
}
