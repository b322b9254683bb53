package intent

import (
	"container/list"
	"sync"
)

// resultCache is a bounded least-recently-used cache from normalized
// question text to its classification. A hit promotes the entry to
// most-recently-used; an insert over capacity evicts the least-recently-used
// entry. A single mutex serializes both paths; entries never expire because
// a classification depends only on the question text, not on the uploaded
// data.
type resultCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*cacheEntry
	order    *list.List
}

type cacheEntry struct {
	key     string
	value   Classification
	element *list.Element
}

func newResultCache(capacity int) *resultCache {
	if capacity <= 0 {
		capacity = defaultCacheSize
	}
	return &resultCache{
		capacity: capacity,
		items:    make(map[string]*cacheEntry, capacity),
		order:    list.New(),
	}
}

func (c *resultCache) Get(key string) (Classification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.items[key]
	if !ok {
		return Classification{}, false
	}
	c.order.MoveToFront(ent.element)
	return ent.value, true
}

func (c *resultCache) Put(key string, value Classification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		ent.value = value
		c.order.MoveToFront(ent.element)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictOldest()
	}

	elem := c.order.PushFront(key)
	c.items[key] = &cacheEntry{key: key, value: value, element: elem}
}

func (c *resultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *resultCache) evictOldest() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	key := elem.Value.(string)
	if ent, ok := c.items[key]; ok {
		c.order.Remove(ent.element)
		delete(c.items, key)
	}
}
