package service

import (
	"slices"
	"sync"
)

// identityLocks serializes writes per task identity key. Lock takes every
// key of a batch in sorted order so overlapping batches cannot deadlock.
type identityLocks struct {
	mu    sync.Mutex
	locks map[string]*identityLock
}

type identityLock struct {
	mu   sync.Mutex
	refs int
}

func newIdentityLocks() *identityLocks {
	return &identityLocks{locks: make(map[string]*identityLock)}
}

// Lock blocks until every key is held and returns the release function.
func (l *identityLocks) Lock(keys ...string) func() {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	held := make([]*identityLock, 0, len(sorted))
	for _, k := range sorted {
		lk := l.acquire(k)
		lk.mu.Lock()
		held = append(held, lk)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(sorted[i], held[i])
		}
	}
}

func (l *identityLocks) acquire(key string) *identityLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk, ok := l.locks[key]
	if !ok {
		lk = &identityLock{}
		l.locks[key] = lk
	}
	lk.refs++
	return lk
}

func (l *identityLocks) release(key string, lk *identityLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, key)
	}
}
