package optimistic

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned for a queued commit that a newer commit covering
// the same entries replaced before it could run.
var ErrSuperseded = errors.New("superseded by a newer change")

// Committer runs commits one at a time per key. A queued commit is dropped
// with ErrSuperseded when a newer request on the same key covers every entry
// it writes. Different keys never wait on each other.
type Committer struct {
	mu   sync.Mutex
	keys map[string]*keySlot
}

type keySlot struct {
	sem  chan struct{}
	seq  uint64
	refs int
	// reqs holds every request seen since the slot was created, so a request
	// that already ran still supersedes older ones queued behind it.
	reqs []*commitRequest
}

type commitRequest struct {
	seq uint64
	ids map[string]struct{} // nil covers the whole key
}

// covers reports whether r writes at least every entry of older.
func (r *commitRequest) covers(older *commitRequest) bool {
	if r.ids == nil {
		return true
	}
	if older.ids == nil {
		return false
	}
	for id := range older.ids {
		if _, ok := r.ids[id]; !ok {
			return false
		}
	}
	return true
}

func NewCommitter() *Committer {
	return &Committer{keys: make(map[string]*keySlot)}
}

// Do runs fn under the key's slot as a write of the whole key. A commit already
// running is never cancelled by a newer one.
func (c *Committer) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return c.DoEntries(ctx, key, nil, fn)
}

// DoEntries runs fn under the key's slot as a write of ids. Only a newer
// request covering all of ids can supersede it; writes of other entries on
// the same key still run, in order.
func (c *Committer) DoEntries(ctx context.Context, key string, ids []string, fn func(ctx context.Context) error) error {
	slot, req := c.enter(key, ids)
	defer c.leave(key, slot)

	select {
	case slot.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-slot.sem }()

	if c.superseded(slot, req) {
		return ErrSuperseded
	}
	return fn(ctx)
}

func (c *Committer) enter(key string, ids []string) (*keySlot, *commitRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.keys == nil {
		c.keys = make(map[string]*keySlot)
	}
	slot, ok := c.keys[key]
	if !ok {
		slot = &keySlot{sem: make(chan struct{}, 1)}
		c.keys[key] = slot
	}
	slot.seq++
	req := &commitRequest{seq: slot.seq}
	if ids != nil {
		req.ids = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			req.ids[id] = struct{}{}
		}
	}
	slot.reqs = append(slot.reqs, req)
	slot.refs++
	return slot, req
}

func (c *Committer) superseded(slot *keySlot, req *commitRequest) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range slot.reqs {
		if r.seq > req.seq && r.covers(req) {
			return true
		}
	}
	return false
}

func (c *Committer) leave(key string, slot *keySlot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(c.keys, key)
	}
}

// Queued returns how many commits on key are running or waiting.
func (c *Committer) Queued(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot, ok := c.keys[key]; ok {
		return slot.refs
	}
	return 0
}
