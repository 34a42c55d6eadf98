package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultKeySetTTL is how long a fetched key set is trusted before a
// refetch. Key sets change rarely, so an hour keeps verification off the
// network for almost every request.
const DefaultKeySetTTL = time.Hour

// KeySetSource fetches a key set from a remote authority.
type KeySetSource interface {
	Fetch(ctx context.Context, authorityURL string) (*KeySet, error)
}

type cacheEntry struct {
	set       *KeySet
	expiresAt time.Time
}

// KeyCache maps authority base URLs to cached key sets. Entries are
// replaced wholesale on refresh and expire after a fixed TTL. Concurrent
// callers hitting the same cold or expired URL are coalesced into a single
// upstream fetch.
type KeyCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	flight  singleflight.Group
	source  KeySetSource
	ttl     time.Duration
	now     func() time.Time
}

// NewKeyCache creates a cache over the given source. A zero ttl falls back
// to DefaultKeySetTTL.
func NewKeyCache(source KeySetSource, ttl time.Duration) *KeyCache {
	if ttl <= 0 {
		ttl = DefaultKeySetTTL
	}
	return &KeyCache{
		entries: make(map[string]cacheEntry),
		source:  source,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the key set for the authority, fetching and caching it when
// missing or expired. Failures are surfaced to the caller and nothing is
// cached, so the next request retries.
func (c *KeyCache) Get(ctx context.Context, authorityURL string) (*KeySet, error) {
	c.mu.RLock()
	entry, ok := c.entries[authorityURL]
	c.mu.RUnlock()
	if ok && c.now().Before(entry.expiresAt) {
		return entry.set, nil
	}

	// All concurrent misses for the same URL share one fetch.
	v, err, _ := c.flight.Do(authorityURL, func() (any, error) {
		// A racing caller may have refreshed the entry while this one
		// waited its turn in the flight group.
		c.mu.RLock()
		entry, ok := c.entries[authorityURL]
		c.mu.RUnlock()
		if ok && c.now().Before(entry.expiresAt) {
			return entry.set, nil
		}

		set, err := c.source.Fetch(ctx, authorityURL)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[authorityURL] = cacheEntry{
			set:       set,
			expiresAt: c.now().Add(c.ttl),
		}
		c.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*KeySet), nil
}

// Invalidate drops the cached entry for an authority. The next Get fetches
// a fresh key set.
func (c *KeyCache) Invalidate(authorityURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, authorityURL)
}
