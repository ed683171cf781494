package domain

import (
	"fmt"
	"time"
)

// DayLayout is the storage and display format for calendar days.
const DayLayout = "2006-01-02"

type PlanEntry struct {
	ID              string `validate:"required"`
	CourseID        string `validate:"required"`
	UserID          string
	Date            time.Time     `validate:"required"`
	TaskType        TaskType      `validate:"required,oneof=LEARN REVIEW PRACTICE"`
	ModuleID        *string       `validate:"required_if=TaskType LEARN"`
	Description     string        `validate:"required"`
	EstimatedBlocks int           `validate:"min=1"`
	Status          EntryStatus   `validate:"required,oneof=PENDING IN_PROGRESS COMPLETED SKIPPED"`
	SessionBucket   SessionBucket `validate:"omitempty,oneof=sessionCourte sessionLongue sessionCourteSupplementaire sessionLongueSupplementaire"`
	Version         int
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC calendar day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return t, nil
}

// ModuleKey returns the module id or "" when the entry has none.
func (e *PlanEntry) ModuleKey() string {
	if e.ModuleID == nil {
		return ""
	}
	return *e.ModuleID
}

// Identity returns the task identity used to collapse entries into one displayed task.
func (e *PlanEntry) Identity() TaskIdentity {
	return TaskIdentity{TaskType: e.TaskType, ModuleID: e.ModuleKey(), Description: e.Description}
}

// CheckTransition reports whether the entry may move to the given status.
// Same-status writes are allowed and are no-ops.
func (e *PlanEntry) CheckTransition(to EntryStatus) error {
	if to == StatusSkipped {
		return &ValidationError{Field: "status", Message: "SKIPPED is only set by plan maintenance"}
	}
	if !ValidEntryStatuses[string(to)] {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", to)}
	}
	if e.Status == to {
		return nil
	}
	switch e.Status {
	case StatusPending:
		if to == StatusInProgress || to == StatusCompleted {
			return nil
		}
	case StatusInProgress:
		if to == StatusCompleted || to == StatusPending {
			return nil
		}
	case StatusCompleted:
		if to == StatusPending {
			return nil
		}
	}
	return &ValidationError{
		Field:   "status",
		Message: fmt.Sprintf("cannot move entry %s from %s to %s", e.ID, e.Status, to),
	}
}

// TransitionTo applies a status change. It returns false when the entry already
// had the requested status.
func (e *PlanEntry) TransitionTo(to EntryStatus, now time.Time) (bool, error) {
	if err := e.CheckTransition(to); err != nil {
		return false, err
	}
	if e.Status == to {
		return false, nil
	}
	e.Status = to
	e.UpdatedAt = now
	if to == StatusCompleted {
		e.CompletedAt = &now
	} else {
		e.CompletedAt = nil
	}
	return true, nil
}

// Minutes returns the estimated study time in minutes.
func (e *PlanEntry) Minutes() int {
	return e.EstimatedBlocks * BlockMinutes
}

// TaskIdentity is the (taskType, moduleId, description) key shared by entries
// that display as one task.
type TaskIdentity struct {
	TaskType    TaskType
	ModuleID    string
	Description string
}

// Key renders the identity as a stable string, usable as a map or lock key.
func (k TaskIdentity) Key() string {
	return string(k.TaskType) + "|" + k.ModuleID + "|" + k.Description
}
