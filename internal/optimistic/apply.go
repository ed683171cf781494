// Package optimistic models status toggles that are shown before they are
// persisted: a synchronous Apply on the displayed state, a background commit
// serialized per task, and a revert when the commit fails.
package optimistic

import (
	"maps"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// State maps entry ids to their displayed status.
type State map[string]domain.EntryStatus

// Change sets statuses on a group of entries. Key identifies the task the
// entries belong to; changes sharing a key are ordered against each other.
type Change struct {
	Key string
	Set map[string]domain.EntryStatus
}

// NewChange builds a change moving every id to status.
func NewChange(key string, ids []string, status domain.EntryStatus) Change {
	set := make(map[string]domain.EntryStatus, len(ids))
	for _, id := range ids {
		set[id] = status
	}
	return Change{Key: key, Set: set}
}

// Apply returns a copy of state with c applied and the change that undoes it.
// Ids absent from state are ignored and left out of the inverse.
func Apply(state State, c Change) (State, Change) {
	next := maps.Clone(state)
	if next == nil {
		next = State{}
	}
	inverse := Change{Key: c.Key, Set: make(map[string]domain.EntryStatus, len(c.Set))}
	for id, status := range c.Set {
		prev, ok := state[id]
		if !ok {
			continue
		}
		inverse.Set[id] = prev
		next[id] = status
	}
	return next, inverse
}
