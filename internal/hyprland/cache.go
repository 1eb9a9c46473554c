package hyprland

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"hyprwatch/internal/metrics"
)

// queryCache keeps raw query replies for a short TTL. Every event flushes it,
// so a cached reply never outlives a state change the instance has seen. A
// reply requested before a flush and received after it is not stored. A nil
// cache is disabled.
type queryCache struct {
	cache   *gocache.Cache
	metrics *metrics.Manager

	mu         sync.Mutex
	generation uint64
}

func newQueryCache(ttl time.Duration, m *metrics.Manager) *queryCache {
	if ttl <= 0 {
		return nil
	}
	return &queryCache{
		cache:   gocache.New(ttl, 2*ttl),
		metrics: m,
	}
}

func (c *queryCache) get(request string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	value, found := c.cache.Get(request)
	reply, ok := value.([]byte)
	hit := found && ok
	c.metrics.RecordCacheLookup(request, hit)
	return reply, hit
}

// begin returns the generation a query must still match when its reply
// arrives.
func (c *queryCache) begin() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// set stores reply unless the cache was flushed since generation was taken.
func (c *queryCache) set(request string, reply []byte, generation uint64) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false
	}
	c.cache.SetDefault(request, reply)
	return true
}

func (c *queryCache) flush() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.cache.Flush()
}
