package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// StateCache remembers OAuth state values between the redirect to the
// provider and the callback. Each state can be consumed once.
type StateCache struct {
	mu    sync.Mutex
	store *gocache.Cache
}

func NewStateCache(ttl time.Duration) *StateCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateCache{store: gocache.New(ttl, 2*ttl)}
}

func (c *StateCache) Save(state string) {
	c.store.SetDefault(state, struct{}{})
}

func (c *StateCache) Consume(state string) bool {
	if state == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.store.Get(state); !ok {
		return false
	}
	c.store.Delete(state)
	return true
}
