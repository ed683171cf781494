package domain

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError rejects an input before any write happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// StaleEntryError means targeted entries no longer exist, usually because the
// plan was regenerated underneath the caller. The caller must reload the plan.
type StaleEntryError struct {
	EntryIDs []string
}

func (e *StaleEntryError) Error() string {
	return fmt.Sprintf("plan entries no longer exist (%s); reload the plan before retrying",
		strings.Join(e.EntryIDs, ", "))
}

// UpdateConflictError means another write changed the entry between read and write.
type UpdateConflictError struct {
	EntryID         string
	ExpectedVersion int
}

func (e *UpdateConflictError) Error() string {
	return fmt.Sprintf("plan entry %s was modified concurrently (expected version %d)", e.EntryID, e.ExpectedVersion)
}

// AggregationIntegrityWarning reports an entry dropped from aggregation because
// its date falls outside the plan range. It is never returned as a failure.
type AggregationIntegrityWarning struct {
	EntryID    string
	Date       time.Time
	RangeStart time.Time
	RangeEnd   time.Time
}

func (w AggregationIntegrityWarning) Error() string {
	return fmt.Sprintf("entry %s dated %s is outside plan range %s..%s",
		w.EntryID, w.Date.Format(DayLayout), w.RangeStart.Format(DayLayout), w.RangeEnd.Format(DayLayout))
}
