package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const cleanupInterval = time.Minute

type item struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// LRUCache is a fixed-capacity byte cache with per-entry TTL. Used for
// resolved actor profiles so every request does not re-read them.
type LRUCache struct {
	capacity int
	ttl      time.Duration

	mu    sync.Mutex
	order *list.List
	index map[string]*list.Element
}

func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	return &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

func (c *LRUCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	it := el.Value.(*item)
	if time.Now().After(it.expiresAt) {
		c.remove(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	return it.value, true
}

func (c *LRUCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.order.MoveToFront(el)
		it := el.Value.(*item)
		it.value = value
		it.expiresAt = time.Now().Add(c.ttl)
		return
	}

	el := c.order.PushFront(&item{key: key, value: value, expiresAt: time.Now().Add(c.ttl)})
	c.index[key] = el

	if c.order.Len() > c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

// Delete evicts the entry, e.g. after an approval status change makes
// the cached actor stale.
func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.remove(el)
	}
}

func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Start launches a background janitor dropping expired entries until
// ctx is cancelled.
func (c *LRUCache) Start(ctx context.Context) error {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func (c *LRUCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*item).expiresAt) {
			c.remove(el)
		}
		el = prev
	}
}

func (c *LRUCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.index, el.Value.(*item).key)
}
