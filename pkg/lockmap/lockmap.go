// Package lockmap provides keyed mutual exclusion: one mutex per key,
// created lazily. Loans are independent units of concurrency, so the
// ledger locks per loan ID and never across loans.
package lockmap

import "sync"

// LockMap hands out a mutex per key.
type LockMap struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an empty LockMap.
func New() *LockMap {
	return &LockMap{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use.
func (l *LockMap) Lock(key string) {
	l.get(key).Lock()
}

// Unlock releases the mutex for key. Unlocking a key that was never locked panics,
// matching sync.Mutex semantics.
func (l *LockMap) Unlock(key string) {
	l.get(key).Unlock()
}

func (l *LockMap) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}
