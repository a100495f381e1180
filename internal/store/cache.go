package store

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"eclipse/pkg/clock"
	"eclipse/pkg/logging"
)

// DefaultCacheTTL is used when a non-positive TTL is configured.
const DefaultCacheTTL = time.Minute

type cacheEntry struct {
	cfg     RootConfig
	ok      bool
	expires time.Time
}

// Cached is a TTL cache in front of another store. Concurrent misses for the
// same guild share a single backend lookup. Negative results are cached as
// well, so guilds without a configuration cost one lookup per TTL.
type Cached struct {
	backend RootConfigStore
	ttl     time.Duration
	clock   clock.Clock

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// NewCached wraps backend. A nil clock uses the real clock.
func NewCached(backend RootConfigStore, ttl time.Duration, c clock.Clock) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if c == nil {
		c = clock.Real{}
	}
	return &Cached{
		backend: backend,
		ttl:     ttl,
		clock:   c,
		entries: make(map[string]cacheEntry),
	}
}

// GetRootConfig returns the cached config or loads it from the backend.
func (c *Cached) GetRootConfig(ctx context.Context, guildID string) (RootConfig, bool, error) {
	now := c.clock.Now()

	c.mu.RLock()
	entry, hit := c.entries[guildID]
	c.mu.RUnlock()
	if hit && now.Before(entry.expires) {
		return entry.cfg, entry.ok, nil
	}

	v, err, shared := c.group.Do(guildID, func() (interface{}, error) {
		cfg, ok, err := c.backend.GetRootConfig(ctx, guildID)
		if err != nil {
			return nil, err
		}
		entry := cacheEntry{cfg: cfg, ok: ok, expires: c.clock.Now().Add(c.ttl)}

		c.mu.Lock()
		c.entries[guildID] = entry
		c.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return RootConfig{}, false, err
	}
	if shared {
		logging.Debug("ConfigStore", "Shared root config lookup for guild %s", guildID)
	}

	entry = v.(cacheEntry)
	return entry.cfg, entry.ok, nil
}

// Invalidate drops the cached entry for guildID.
func (c *Cached) Invalidate(guildID string) {
	c.mu.Lock()
	delete(c.entries, guildID)
	c.mu.Unlock()
	c.group.Forget(guildID)
}

// InvalidateAll empties the cache.
func (c *Cached) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
