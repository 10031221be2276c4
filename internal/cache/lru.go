// Package cache holds generated thumbnails in memory so repeat requests
// skip the disk.
package cache

import (
	"container/list"
	"sync"
)

// LRU is a thread-safe byte cache bounded by entry count and total size.
type LRU struct {
	capacity int
	maxSize  int64
	size     int64
	items    map[string]*list.Element
	order    *list.List
	mu       sync.RWMutex
}

type entry struct {
	key  string
	data []byte
}

func NewLRU(capacity int, maxSizeBytes int64) *LRU {
	return &LRU{
		capacity: capacity,
		maxSize:  maxSizeBytes,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *LRU) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*entry).data, true
}

func (c *LRU) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dataSize := int64(len(data))
	if dataSize > c.maxSize {
		// larger than the whole cache, not worth storing
		return
	}

	if elem, ok := c.items[key]; ok {
		old := elem.Value.(*entry)
		c.size += dataSize - int64(len(old.data))
		old.data = data
		c.order.MoveToFront(elem)
		return
	}

	for c.order.Len() >= c.capacity || (c.size+dataSize > c.maxSize && c.order.Len() > 0) {
		c.evictOldest()
	}

	c.items[key] = c.order.PushFront(&entry{key: key, data: data})
	c.size += dataSize
}

func (c *LRU) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

func (c *LRU) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

func (c *LRU) Size() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

func (c *LRU) evictOldest() {
	if elem := c.order.Back(); elem != nil {
		c.remove(elem)
	}
}

func (c *LRU) remove(elem *list.Element) {
	e := elem.Value.(*entry)
	c.order.Remove(elem)
	delete(c.items, e.key)
	c.size -= int64(len(e.data))
}
