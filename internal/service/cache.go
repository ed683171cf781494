package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// PlanCache memoizes aggregated views per (course, date key) for a short TTL.
// Concurrent misses on one key share a single load. Invalidate drops every key
// of a course and makes loads already in flight for it skip the store.
//
// Cached values are shared between callers and must be treated as read-only.
type PlanCache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu    sync.Mutex
	items map[string]cacheItem
	gen   map[string]uint64
}

type cacheItem struct {
	value   any
	expires time.Time
}

// NewPlanCache creates a cache. A ttl of zero disables storage but keeps
// concurrent loads collapsed.
func NewPlanCache(ttl time.Duration) *PlanCache {
	return &PlanCache{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]cacheItem),
		gen:   make(map[string]uint64),
	}
}

func cacheKey(courseID, dateKey string) string {
	return courseID + "\x00" + dateKey
}

// Invalidate forgets everything cached for courseID.
func (c *PlanCache) Invalidate(courseID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen[courseID]++
	prefix := courseID + "\x00"
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
}

// Len returns the number of stored entries, expired ones included.
func (c *PlanCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *PlanCache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(item.expires) {
		delete(c.items, key)
		return nil, false
	}
	return item.value, true
}

func (c *PlanCache) generation(courseID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[courseID]
}

func (c *PlanCache) store(courseID, key string, gen uint64, value any) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[courseID] != gen {
		return
	}
	c.items[key] = cacheItem{value: value, expires: c.now().Add(c.ttl)}
}

// cached returns the value under (courseID, dateKey), loading it on a miss.
// hit reports whether the value came from the cache. A nil cache always loads.
func cached[T any](c *PlanCache, courseID, dateKey string, load func() (T, error)) (value T, hit bool, err error) {
	if c == nil {
		value, err = load()
		return value, false, err
	}
	key := cacheKey(courseID, dateKey)
	if v, ok := c.lookup(key); ok {
		return v.(T), true, nil
	}

	gen := c.generation(courseID)
	v, err, _ := c.group.Do(fmt.Sprintf("%s\x00%d", key, gen), func() (any, error) {
		loaded, err := load()
		if err != nil {
			return nil, err
		}
		c.store(courseID, key, gen, loaded)
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return v.(T), false, nil
}
