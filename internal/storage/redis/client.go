// Package redis stores character blobs in Redis and provides a per-character
// distributed lock.
package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/adventure/internal/config"
)

// Client wraps redis.UniversalClient so tests can substitute a miniredis-backed
// or cluster client.
type Client interface {
	redis.UniversalClient
}

// NewClient creates a client for a single Redis instance. Redis connects
// lazily, so no round trip happens here.
//
// Precondition: cfg.Addr must be non-empty.
func NewClient(cfg config.RedisConfig) (Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis: addr is required")
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}), nil
}
