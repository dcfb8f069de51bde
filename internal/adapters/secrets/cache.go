package secrets

import (
	"sync"
	"time"

	"github.com/fundhive/donation-service/internal/domain/ports"
)

// secretCache is a simple in-memory TTL cache shared by the backend adapters.
// Gateway credentials change rarely; caching keeps credential lookups off the
// callback hot path.
type secretCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	enabled bool
	ttl     time.Duration
}

type cacheEntry struct {
	secret    *ports.Secret
	expiresAt time.Time
}

func newSecretCache(enabled bool, ttl time.Duration) *secretCache {
	return &secretCache{
		entries: make(map[string]*cacheEntry),
		enabled: enabled,
		ttl:     ttl,
	}
}

func (c *secretCache) get(path string) *ports.Secret {
	if !c.enabled {
		return nil
	}

	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	return entry.secret
}

func (c *secretCache) set(path string, secret *ports.Secret) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	c.entries[path] = &cacheEntry{
		secret:    secret,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}
