/*
Package cache provides report caching keyed by configuration identity.

PURPOSE:
  The engine is pure, so re-running an unchanged configuration always
  yields the same report. Caching is therefore the caller's concern:
  this package derives a stable key from a configuration and stores
  serialized reports under it.

IMPLEMENTATIONS:
  Redis:  Shared cache for deployed instances (redis.go)
  Memory: Process-local map, also used in tests (memory.go)

USAGE:
  key := cache.Key(cfg)
  if raw, ok := c.Get(ctx, key); ok { ... }
  _ = c.Set(ctx, key, raw)
*/
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Cache is the lookup interface the API layer depends on. A miss is
// reported through the bool, never as an error.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}

// Key derives a deterministic cache key from any JSON-serializable
// value, typically an engine.Configuration.
func Key(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return "report:" + hex.EncodeToString(sum[:])
}
