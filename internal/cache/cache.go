// Package cache implements the response cache layered over provider fetches:
// deterministic keys per (gateway, entity), a TTL, and a global enable
// switch. It is a best-effort read accelerator, not a source of truth;
// concurrent writers for the same key race and the last write wins.
package cache

import (
	"context"
	"crypto/md5"
	"fmt"
	"time"
)

// keyPrefix namespaces every cache key written by this application.
const keyPrefix = "videos"

// Store is the underlying key-value collaborator. Get reports a miss with
// found == false; expired entries are misses.
type Store interface {
	Get(ctx context.Context, key string, into any) (found bool, err error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Cache binds a Store to the application's TTL and enable switch and owns
// cache-key construction.
type Cache struct {
	store   Store
	ttl     time.Duration
	enabled bool
}

// New constructs a Cache. A non-positive ttl falls back to 15 minutes.
func New(store Store, ttl time.Duration, enabled bool) *Cache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Cache{store: store, ttl: ttl, enabled: enabled}
}

// Enabled reports the global cache switch.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Get loads a previously stored value into the given destination.
func (c *Cache) Get(ctx context.Context, key string, into any) (bool, error) {
	return c.store.Get(ctx, key, into)
}

// Set stores a value under the key for the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	return c.store.Set(ctx, key, value, c.ttl)
}

// VideoKey builds the cache key for one video of one gateway. The entity ID
// is hashed rather than interpolated so IDs with unsafe characters cannot
// break the key layout.
func (c *Cache) VideoKey(gatewayHandle, videoID string) string {
	return fmt.Sprintf("%s.video.%s.%x", keyPrefix, gatewayHandle, md5.Sum([]byte(videoID)))
}

// AccountKey builds the cache key for a gateway's OAuth account. Only one
// account is cached per gateway, so the handle alone suffices.
func (c *Cache) AccountKey(gatewayHandle string) string {
	return fmt.Sprintf("%s.oauth_account.%s", keyPrefix, gatewayHandle)
}
