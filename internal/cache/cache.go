// Package cache holds short-lived JSON values, either in process or in Redis.
package cache

import (
	"context"
	"time"
)

// Cache stores JSON-encodable values under string keys with a TTL.
type Cache interface {
	// GetJSON decodes the value at key into dest and reports whether it was present.
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Aside returns the cached value at key if present; otherwise it calls fetch,
// which must populate dest, and stores dest for ttl. Cache failures are not
// fatal: fetch still runs and a failed store is ignored. An entry that can't
// be decoded into dest is dropped.
func Aside(ctx context.Context, c Cache, key string, dest any, ttl time.Duration, fetch func() error) error {
	if c != nil {
		found, err := c.GetJSON(ctx, key, dest)
		if err == nil && found {
			return nil
		}
		if err != nil {
			_ = c.Delete(ctx, key)
		}
	}

	if err := fetch(); err != nil {
		return err
	}

	if c != nil {
		_ = c.SetJSON(ctx, key, dest, ttl)
	}
	return nil
}
