package screening

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spigell/resume-screener/internal/ai"
)

// Fingerprint identifies one (candidate, job, skills) evaluation. Identical
// inputs always produce identical fingerprints, so cached verdicts and
// in-flight deduplication both key on it.
func Fingerprint(candidateText, jobText string, skills []string) string {
	sorted := append([]string(nil), skills...)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(candidateText))
	h.Write([]byte{0})
	h.Write([]byte(jobText))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(sorted, ",")))
	return fmt.Sprintf("%x", h.Sum(nil))
}

type cacheEntry struct {
	verdict   *ai.Verdict
	expiresAt time.Time
}

// verdictCache is a TTL-bounded in-memory cache of judge verdicts. Verdicts
// are immutable once validated, so entries are shared without copying.
type verdictCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func newVerdictCache(ttl time.Duration, maxEntries int) *verdictCache {
	return &verdictCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *verdictCache) Get(key string) (*ai.Verdict, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	return entry.verdict, true
}

func (c *verdictCache) Set(key string, verdict *ai.Verdict) {
	if c == nil || verdict == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}

	c.entries[key] = cacheEntry{verdict: verdict, expiresAt: c.now().Add(c.ttl)}
}

// evictLocked drops expired entries first, then the soonest-to-expire ones
// until there is room for one more.
func (c *verdictCache) evictLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}

	for len(c.entries) >= c.maxEntries {
		oldestKey := ""
		var oldestAt time.Time
		for key, entry := range c.entries {
			if oldestKey == "" || entry.expiresAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = entry.expiresAt
			}
		}
		delete(c.entries, oldestKey)
	}
}

func (c *verdictCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
