package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

type counter struct {
	expiresAt time.Time
	count     int64
}

// Memory is a process-local Store.
type Memory struct {
	now      func() time.Time
	counters map[string]*counter
	done     chan struct{}
	mu       sync.Mutex
	closed   bool
}

// MemoryOption configures a Memory store.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	now             func() time.Time
	cleanupInterval time.Duration
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithCleanupInterval sets how often expired counters are purged.
// Zero disables the background janitor. Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.cleanupInterval = d
	}
}

// NewMemory creates an in-memory store. Call Close to stop the janitor.
//
// Example:
//
//	store := ratelimit.NewMemory(ratelimit.WithCleanupInterval(30 * time.Second))
//	defer store.Close()
func NewMemory(opts ...MemoryOption) *Memory {
	o := &memoryOptions{now: time.Now, cleanupInterval: time.Minute}
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory{
		now:      o.now,
		counters: make(map[string]*counter),
		done:     make(chan struct{}),
	}
	if o.cleanupInterval > 0 {
		go m.janitor(o.cleanupInterval)
	}
	return m
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) (int64, error) {
	if strings.TrimSpace(key) == "" {
		return 0, ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}

	c, ok := m.counters[key]
	if !ok || !m.now().Before(c.expiresAt) {
		return 0, nil
	}
	return c.count, nil
}

// Increment implements Store.
func (m *Memory) Increment(_ context.Context, key string, window time.Duration) error {
	if err := validate(key, window); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	now := m.now()
	c, ok := m.counters[key]
	if !ok || !now.Before(c.expiresAt) {
		m.counters[key] = &counter{count: 1, expiresAt: now.Add(window)}
		return nil
	}
	c.count++
	return nil
}

// Len returns the number of tracked keys, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.counters)
}

// Purge drops expired counters and returns how many were removed.
func (m *Memory) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for key, c := range m.counters {
		if !now.Before(c.expiresAt) {
			delete(m.counters, key)
			n++
		}
	}
	return n
}

// Close stops the janitor. Further calls fail with ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *Memory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.Purge()
		}
	}
}
