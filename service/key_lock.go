package service

import (
	"sync"

	"clubauction/models"
)

// keyLocker hands out one mutex per item key. Entries are dropped when the
// last holder unlocks, so the map only grows with concurrently used keys.
type keyLocker struct {
	mu    sync.Mutex
	locks map[models.ItemKey]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocker() *keyLocker {
	return &keyLocker{locks: make(map[models.ItemKey]*keyLock)}
}

// Lock blocks until the key is free and returns the matching unlock func
func (l *keyLocker) Lock(key models.ItemKey) func() {
	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &keyLock{}
		l.locks[key] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *keyLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
