package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdentityLocks_SameKeySerializes(t *testing.T) {
	l := newIdentityLocks()
	unlock := l.Lock("LEARN|m1|Learn")

	acquired := make(chan struct{})
	go func() {
		defer close(acquired)
		l.Lock("LEARN|m1|Learn")()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held key")
	case <-time.After(30 * time.Millisecond):
	}
	unlock()
	<-acquired
}

func TestIdentityLocks_DisjointKeysDoNotBlock(t *testing.T) {
	l := newIdentityLocks()
	unlock := l.Lock("a")
	defer unlock()

	done := make(chan struct{})
	go func() {
		l.Lock("b")()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disjoint key blocked")
	}
}

func TestIdentityLocks_OverlappingBatchesNoDeadlock(t *testing.T) {
	l := newIdentityLocks()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); l.Lock("a", "b", "a")() }()
		go func() { defer wg.Done(); l.Lock("b", "a")() }()
	}
	wg.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.locks, "released keys are forgotten")
}
