// Package holdcache implements retention.HoldProvider over Redis so
// multiple Retention Engine instances share one view of active holds
// without a database round trip per candidate.
package holdcache

import (
	"context"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"auditlog/internal/apperr"
	"auditlog/pkg/audit"
	"auditlog/pkg/audit/retention"
)

const defaultKey = "audit:retention:holds"

// Cache is a retention.HoldProvider backed by a single Redis key holding
// the JSON-encoded hold set, refreshed locally at most once per TTL so a
// busy enforcement pass doesn't hammer Redis per candidate.
type Cache struct {
	client *redis.Client
	key    string
	ttl    time.Duration

	mu       sync.Mutex
	cached   retention.HoldSet
	cachedAt time.Time
}

// New builds a Cache reading from key (defaultKey if empty), refreshing at
// most once per ttl.
func New(client *redis.Client, key string, ttl time.Duration) *Cache {
	if key == "" {
		key = defaultKey
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{client: client, key: key, ttl: ttl}
}

// ActiveHolds returns the cached hold set, refreshing from Redis if it has
// gone stale. The category argument is unused here (the whole set is
// small enough to filter in-process) but keeps the HoldProvider interface
// uniform with providers that can push the filter down.
func (c *Cache) ActiveHolds(_ audit.Category) (retention.HoldSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.cachedAt) < c.ttl && c.cached != nil {
		return c.cached, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err == redis.Nil {
		c.cached = retention.HoldSet{}
		c.cachedAt = time.Now()
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, "read retention holds from redis", err)
	}

	var holds retention.HoldSet
	if err := json.Unmarshal(raw, &holds); err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, "decode retention holds", err)
	}

	c.cached = holds
	c.cachedAt = time.Now()
	return holds, nil
}

// Put replaces the stored hold set, used by the administrative surface
// that creates/expires holds.
func (c *Cache) Put(ctx context.Context, holds retention.HoldSet) error {
	data, err := json.Marshal(holds)
	if err != nil {
		return apperr.Wrap(apperr.CodeIO, "encode retention holds", err)
	}
	if err := c.client.Set(ctx, c.key, data, 0).Err(); err != nil {
		return apperr.Wrap(apperr.CodeIO, "write retention holds to redis", err)
	}

	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
	return nil
}
