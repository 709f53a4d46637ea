package services

import (
	"strings"
	"sync"

	"pickem-app-go/models"
)

// LiveCache is the ephemeral live-status store, keyed by the fuzzy
// "away@home" team-name pair. It is owned by the poller; the lock
// evaluator and merge layer only read it. Entries are replaced on
// every poll and never persisted.
type LiveCache struct {
	mu      sync.RWMutex
	entries map[string]models.LiveStatus
}

// NewLiveCache creates an empty live-status cache
func NewLiveCache() *LiveCache {
	return &LiveCache{entries: make(map[string]models.LiveStatus)}
}

// Put stores or replaces the entry for a matchup
func (c *LiveCache) Put(status models.LiveStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[status.Key()] = status
}

// Lookup finds the entry for a matchup by fuzzy team-name containment:
// exact key match first, then entries whose teams both match.
func (c *LiveCache) Lookup(away, home string) (models.LiveStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(away)) + "@" + strings.ToLower(strings.TrimSpace(home))
	if status, ok := c.entries[key]; ok {
		return status, true
	}

	for _, status := range c.entries {
		if models.TeamsMatch(status.Away, away) && models.TeamsMatch(status.Home, home) {
			return status, true
		}
	}
	return models.LiveStatus{}, false
}

// All returns a copy of every cached entry
func (c *LiveCache) All() []models.LiveStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.LiveStatus, 0, len(c.entries))
	for _, status := range c.entries {
		out = append(out, status)
	}
	return out
}

// Len returns the number of cached entries
func (c *LiveCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// AnyActive reports whether any cached entry still warrants polling.
// An empty cache is considered active: nothing has been learned yet.
func (c *LiveCache) AnyActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.entries) == 0 {
		return true
	}
	for _, status := range c.entries {
		if status.IsActive() {
			return true
		}
	}
	return false
}

// Clear empties the cache, used when the polling day rolls over
func (c *LiveCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]models.LiveStatus)
}
