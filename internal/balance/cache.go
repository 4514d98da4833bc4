package balance

import (
	"fmt"
	"sync"
	"time"

	"duetrack/internal/model"
)

// cacheKey identifies one memoized recalculation. The version fields are
// content hashes: any write to the definition or balance changes them, so
// stale entries stop being hit (and are swept on invalidation).
type cacheKey struct {
	definitionID  string
	balanceID     string
	year          int
	month         time.Month
	startOverride string
	defVersion    string
	balVersion    string
}

// Stats is a snapshot of the cache counters.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Invalidations uint64
	Entries       int
}

// Cache memoizes balance recalculations. It is the one structure in the
// core shared across concurrent readers and writers, so it carries its own
// mutual exclusion; one mutex guards the map and the counters together.
type Cache struct {
	mu            sync.Mutex
	entries       map[cacheKey]Recalculation
	hits          uint64
	misses        uint64
	invalidations uint64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]Recalculation)}
}

// Recalculate returns the memoized recomputation for (definition, balance,
// year, month, start override), computing and storing it on a miss.
func (c *Cache) Recalculate(def *model.Definition, bal *model.Balance, year int, month time.Month, startOverride *time.Time) Recalculation {
	key := cacheKey{
		definitionID: def.ID,
		balanceID:    bal.ID,
		year:         year,
		month:        month,
		defVersion:   definitionVersion(def),
		balVersion:   balanceVersion(bal),
	}
	if startOverride != nil {
		key.startOverride = startOverride.Format("2006-01-02")
	}

	c.mu.Lock()
	if r, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return r
	}
	c.misses++
	c.mu.Unlock()

	r := recalculate(def, year, month, startOverride)

	c.mu.Lock()
	c.entries[key] = r
	c.mu.Unlock()
	return r
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]Recalculation)
	c.invalidations++
}

// InvalidateDefinition drops entries for one definition.
func (c *Cache) InvalidateDefinition(definitionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.definitionID == definitionID {
			delete(c.entries, k)
		}
	}
	c.invalidations++
}

// InvalidateBalance drops entries for one balance.
func (c *Cache) InvalidateBalance(balanceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.balanceID == balanceID {
			delete(c.entries, k)
		}
	}
	c.invalidations++
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:          c.hits,
		Misses:        c.misses,
		Invalidations: c.invalidations,
		Entries:       len(c.entries),
	}
}

// definitionVersion derives a version string from the definition's
// mutation timestamp, its occurrence count, and the newest occurrence
// timestamp. Any schedule change moves at least one of them.
func definitionVersion(def *model.Definition) string {
	var latest time.Time
	for _, occ := range def.Occurrences {
		if occ.UpdatedAt.After(latest) {
			latest = occ.UpdatedAt
		}
	}
	return fmt.Sprintf("%d.%d.%d", def.UpdatedAt.UnixNano(), len(def.Occurrences), latest.UnixNano())
}

func balanceVersion(bal *model.Balance) string {
	return fmt.Sprintf("%d.%s.%s", bal.UpdatedAt.UnixNano(), bal.TotalSaved.String(), bal.TotalPaid.String())
}
