package configcache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process store bounded by entry count. When full it evicts
// the entry inserted first (FIFO). Reads do not refresh an entry's position
// and overwriting a key keeps its original position, so this is not an LRU.
//
// Expired entries read as misses but stay in place until overwritten or
// evicted.
type Memory[V any] struct {
	opts options

	mu    sync.RWMutex
	items map[string]*list.Element
	order *list.List
}

type memoryEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

func NewMemory[V any](opts ...Option) *Memory[V] {
	return &Memory[V]{
		opts:  buildOptions(opts),
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

func (m *Memory[V]) Get(_ context.Context, shop, profileID string) (V, bool, error) {
	var zero V
	key := Key(shop, profileID)

	m.mu.RLock()
	elem, ok := m.items[key]
	var entry memoryEntry[V]
	if ok {
		entry = *elem.Value.(*memoryEntry[V])
	}
	m.mu.RUnlock()

	if !ok || !m.opts.now().Before(entry.expiresAt) {
		m.opts.metrics.miss(backendMemory)
		return zero, false, nil
	}
	m.opts.metrics.hit(backendMemory)
	return entry.value, true, nil
}

func (m *Memory[V]) Put(_ context.Context, shop, profileID string, value V) error {
	key := Key(shop, profileID)
	expiresAt := m.opts.now().Add(m.opts.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.items[key]; ok {
		entry := elem.Value.(*memoryEntry[V])
		entry.value = value
		entry.expiresAt = expiresAt
		return nil
	}

	m.items[key] = m.order.PushBack(&memoryEntry[V]{key: key, value: value, expiresAt: expiresAt})
	for m.order.Len() > m.opts.maxEntries {
		oldest := m.order.Front()
		m.order.Remove(oldest)
		delete(m.items, oldest.Value.(*memoryEntry[V]).key)
		m.opts.metrics.evict(backendMemory)
	}
	return nil
}

func (m *Memory[V]) Invalidate(_ context.Context, shop string) error {
	prefix := ShopPrefix(shop)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for elem := m.order.Front(); elem != nil; {
		next := elem.Next()
		entry := elem.Value.(*memoryEntry[V])
		if strings.HasPrefix(entry.key, prefix) {
			m.order.Remove(elem)
			delete(m.items, entry.key)
			removed++
		}
		elem = next
	}
	m.opts.metrics.invalidate(backendMemory, removed)
	return nil
}

// Keys returns the cached keys in insertion order, expired ones included.
func (m *Memory[V]) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, m.order.Len())
	for elem := m.order.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*memoryEntry[V]).key)
	}
	return keys
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.order.Len()
}
