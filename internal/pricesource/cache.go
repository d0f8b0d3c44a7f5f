package pricesource

import (
	"sync"
	"time"

	"github.com/cardvault/ledger/internal/domain"
)

const cacheTTL = 5 * time.Minute

type cacheEntry struct {
	quotes    domain.SourceQuotes
	expiresAt time.Time
}

type quoteCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newQuoteCache() *quoteCache {
	return &quoteCache{
		entries: make(map[string]cacheEntry),
	}
}

func (c *quoteCache) get(key string) (domain.SourceQuotes, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return domain.SourceQuotes{}, false
	}
	return entry.quotes, true
}

func (c *quoteCache) set(key string, quotes domain.SourceQuotes) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		quotes:    quotes,
		expiresAt: time.Now().Add(cacheTTL),
	}
}
