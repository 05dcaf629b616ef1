// Package cache holds the key/value stores backing the metadata translation
// tables. Values are opaque bytes and never expire on their own.
package cache

import (
	"context"
	"fmt"

	"github.com/metacatalog/catalog/config"
)

// Store is a byte-oriented cache. Get reports a miss with ok=false and a nil
// error so a miss is never confused with a failure.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "redis":
		return NewRedis(ctx, cfg)
	case "memory":
		return NewMemory(cfg.MemorySize)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
