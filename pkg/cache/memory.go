package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryOption configures a Memory cache.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	now        func() time.Time
	defaultTTL time.Duration
	maxEntries int
}

// WithDefaultTTL sets the TTL used when Set gets zero. Default: 1 minute.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.defaultTTL = d
	}
}

// WithMaxEntries bounds the cache; the least recently used entry is evicted
// first. Zero means unbounded. Default: 10000.
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) {
		o.maxEntries = n
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) {
		if now != nil {
			o.now = now
		}
	}
}

type item[V any] struct {
	expires time.Time
	value   V
	key     string
}

// Memory is an in-process LRU cache. Expired entries are dropped lazily on
// access and when they reach the LRU tail.
type Memory[V any] struct {
	opts   memoryOptions
	items  map[string]*list.Element
	lru    *list.List
	mu     sync.Mutex
	closed bool
}

// NewMemory creates an in-process cache.
//
//	decisions := cache.NewMemory[bool](cache.WithDefaultTTL(30 * time.Second))
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := memoryOptions{now: time.Now, defaultTTL: time.Minute, maxEntries: 10000}
	for _, opt := range opts {
		opt(&o)
	}
	return &Memory[V]{opts: o, items: make(map[string]*list.Element), lru: list.New()}
}

// Get implements Cache.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	if m.closed {
		return zero, ErrClosed
	}
	el, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	it := el.Value.(*item[V])
	if m.expired(it) {
		m.remove(el)
		return zero, ErrNotFound
	}
	m.lru.MoveToFront(el)
	return it.value, nil
}

// Set implements Cache.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}
	var expires time.Time
	if ttl > 0 {
		expires = m.opts.now().Add(ttl)
	}

	if el, ok := m.items[key]; ok {
		it := el.Value.(*item[V])
		it.value, it.expires = value, expires
		m.lru.MoveToFront(el)
		return nil
	}

	for m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		m.remove(m.lru.Back())
	}
	m.items[key] = m.lru.PushFront(&item[V]{key: key, value: value, expires: expires})
	return nil
}

// Delete implements Cache.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if el, ok := m.items[key]; ok {
		m.remove(el)
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close drops all entries. Further calls fail with ErrClosed.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.items = nil
	m.lru.Init()
	return nil
}

func (m *Memory[V]) expired(it *item[V]) bool {
	return !it.expires.IsZero() && !m.opts.now().Before(it.expires)
}

func (m *Memory[V]) remove(el *list.Element) {
	m.lru.Remove(el)
	delete(m.items, el.Value.(*item[V]).key)
}

var _ Cache[any] = (*Memory[any])(nil)
