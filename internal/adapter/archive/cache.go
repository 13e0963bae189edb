package archive

import (
	"container/list"
	"sync"

	"github.com/couchcryptid/msg2-etl/internal/domain"
)

// Getter fetches a record by ID.
type Getter interface {
	Get(id string) (domain.DecodedRecord, error)
}

// CachedGetter wraps a Getter with an in-memory LRU cache.
type CachedGetter struct {
	inner Getter
	cache *lruCache
}

// NewCachedGetter creates a cache decorator around a Getter.
func NewCachedGetter(inner Getter, maxEntries int) *CachedGetter {
	return &CachedGetter{
		inner: inner,
		cache: newLRUCache(maxEntries),
	}
}

// Get returns the cached record for id, falling back to the inner Getter.
// Archived records never change, so hits are never stale.
func (c *CachedGetter) Get(id string) (domain.DecodedRecord, error) {
	if rec, ok := c.cache.get(id); ok {
		return rec, nil
	}
	rec, err := c.inner.Get(id)
	if err != nil {
		// Misses are not cached; the record may be archived later.
		return rec, err
	}
	c.cache.put(id, rec)
	return rec, nil
}

// lruCache is a thread-safe LRU cache of decoded records. The front of
// order is the most recently used entry.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
}

type entry struct {
	id  string
	rec domain.DecodedRecord
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

func (c *lruCache) get(id string) (domain.DecodedRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[id]
	if !ok {
		return domain.DecodedRecord{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).rec, true
}

func (c *lruCache) put(id string, rec domain.DecodedRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[id]; ok {
		el.Value.(*entry).rec = rec
		c.order.MoveToFront(el)
		return
	}

	c.entries[id] = c.order.PushFront(&entry{id: id, rec: rec})
	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).id)
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
