package optimistic

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// Pending is an applied change whose commit has not settled yet.
type Pending struct {
	Change  Change
	inverse Change
}

// Ledger owns the displayed state and the changes still in flight per key.
// It is safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	state   State
	pending map[string][]*Pending
}

func NewLedger(initial State) *Ledger {
	return &Ledger{state: maps.Clone(initial), pending: make(map[string][]*Pending)}
}

// Apply shows c immediately and returns the handle to settle once the commit
// returns.
func (l *Ledger) Apply(c Change) *Pending {
	l.mu.Lock()
	defer l.mu.Unlock()
	next, inverse := Apply(l.state, c)
	l.state = next
	p := &Pending{Change: c, inverse: inverse}
	l.pending[c.Key] = append(l.pending[c.Key], p)
	return p
}

// Settle records the outcome of p's commit and reports whether the displayed
// state was reverted.
//
// When p failed or was superseded, each entry it touched goes back to its
// previous status, unless a newer change on the same key is still in flight
// for that entry. In that case the previous status is handed to the newer
// change, so that if it fails as well the display returns to what the store
// actually holds.
func (l *Ledger) Settle(p *Pending, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	queue := l.pending[p.Change.Key]
	i := indexOf(queue, p)
	if i < 0 {
		return false
	}
	queue = append(queue[:i], queue[i+1:]...)
	if len(queue) == 0 {
		delete(l.pending, p.Change.Key)
	} else {
		l.pending[p.Change.Key] = queue
	}

	if err == nil {
		// Older changes still in flight must not undo a confirmed newer value.
		for _, older := range queue[:i] {
			for id := range p.Change.Set {
				delete(older.inverse.Set, id)
			}
		}
		return false
	}

	reverted := false
	for id, prev := range p.inverse.Set {
		if newer := firstTouching(queue[i:], id); newer != nil {
			newer.inverse.Set[id] = prev
			continue
		}
		if l.state == nil {
			l.state = State{}
		}
		l.state[id] = prev
		reverted = true
	}
	return reverted
}

// Commit runs fn for p through the committer and settles the outcome. Only a
// newer change writing the same entries can supersede p.
func (l *Ledger) Commit(ctx context.Context, c *Committer, p *Pending, fn func(ctx context.Context) error) (reverted bool, err error) {
	err = c.DoEntries(ctx, p.Change.Key, slices.Sorted(maps.Keys(p.Change.Set)), fn)
	return l.Settle(p, err), err
}

// Reset replaces the displayed state, typically after reloading the plan.
// Changes still in flight keep their handles but no longer revert anything.
func (l *Ledger) Reset(state State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = maps.Clone(state)
	l.pending = make(map[string][]*Pending)
}

func (l *Ledger) Status(id string) (domain.EntryStatus, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.state[id]
	return s, ok
}

func (l *Ledger) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.state)
}

// InFlight returns how many changes on key have not settled.
func (l *Ledger) InFlight(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending[key])
}

func firstTouching(queue []*Pending, id string) *Pending {
	for _, q := range queue {
		if _, ok := q.inverse.Set[id]; ok {
			return q
		}
	}
	return nil
}

func indexOf(queue []*Pending, p *Pending) int {
	for i, q := range queue {
		if q == p {
			return i
		}
	}
	return -1
}
