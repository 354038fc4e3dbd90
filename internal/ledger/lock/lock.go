// Package lock serializes scans per (employee, day) key. The memory
// backend covers tests and single-node runs; the redis backend extends the
// guarantee across instances.
package lock

import (
	"context"
	"sync"
)

// Locker hands out exclusive per-key sections. Acquire blocks until the key
// is free or ctx is done; the returned func releases the key.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Memory is a keyed-mutex locker. Keys are reference-counted and removed on
// last release so the map does not grow with every (employee, day) ever
// scanned.
type Memory struct {
	mu   sync.Mutex
	keys map[string]*memKey
}

type memKey struct {
	ch   chan struct{} // capacity 1; holding the token means holding the lock
	refs int
}

// NewMemory returns an empty in-process locker.
func NewMemory() *Memory {
	return &Memory{keys: make(map[string]*memKey)}
}

// Acquire takes the key's token, waiting on ctx.
func (m *Memory) Acquire(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	k, ok := m.keys[key]
	if !ok {
		k = &memKey{ch: make(chan struct{}, 1)}
		k.ch <- struct{}{}
		m.keys[key] = k
	}
	k.refs++
	m.mu.Unlock()

	select {
	case <-k.ch:
		return func() {
			k.ch <- struct{}{}
			m.put(key, k)
		}, nil
	case <-ctx.Done():
		m.put(key, k)
		return nil, ctx.Err()
	}
}

func (m *Memory) put(key string, k *memKey) {
	m.mu.Lock()
	k.refs--
	if k.refs == 0 {
		delete(m.keys, key)
	}
	m.mu.Unlock()
}
