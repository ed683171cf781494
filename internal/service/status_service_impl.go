package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
)

type statusService struct {
	entries  repository.PlanEntryRepo
	uow      db.UnitOfWork
	cache    *PlanCache
	locks    *identityLocks
	now      func() time.Time
	observer UseCaseObserver
}

// NewStatusService creates the status authority. cache may be nil.
func NewStatusService(
	entries repository.PlanEntryRepo,
	uow db.UnitOfWork,
	cache *PlanCache,
	observers ...UseCaseObserver,
) StatusService {
	return &statusService{
		entries:  entries,
		uow:      uow,
		cache:    cache,
		locks:    newIdentityLocks(),
		now:      func() time.Time { return time.Now().UTC() },
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *statusService) UpdateEntryStatus(ctx context.Context, courseID, entryID string, status domain.EntryStatus) error {
	return s.SetTaskStatus(ctx, courseID, []string{entryID}, status)
}

// SetTaskStatus moves every entry in entryIDs to status, all or nothing.
//
// Entries already at status are left alone, so repeating a call is a no-op.
// When starting a task, entries of it that are already COMPLETED stay
// COMPLETED; starting a task whose entries are all COMPLETED is rejected.
func (s *statusService) SetTaskStatus(ctx context.Context, courseID string, entryIDs []string, status domain.EntryStatus) (err error) {
	startedAt := time.Now()
	fields := map[string]any{
		"course_id": courseID,
		"entries":   len(entryIDs),
		"status":    string(status),
	}
	defer func() { observe(ctx, s.observer, "set-task-status", startedAt, err, fields) }()

	ids := dedupe(entryIDs)
	if err = validateStatusRequest(courseID, ids, status); err != nil {
		return err
	}

	// Identity keys are read outside the transaction only to pick the locks;
	// the transaction re-reads and re-checks everything.
	current, err := s.entries.ListByIDs(ctx, courseID, ids)
	if err != nil {
		return fmt.Errorf("loading plan entries: %w", err)
	}
	if missing := missingIDs(ids, current); len(missing) > 0 {
		return &domain.StaleEntryError{EntryIDs: missing}
	}
	keys := make([]string, 0, len(current))
	for _, e := range current {
		keys = append(keys, e.Identity().Key())
	}
	unlock := s.locks.Lock(keys...)
	defer unlock()

	changed := 0
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		changed = 0
		txEntries := repository.NewSQLitePlanEntryRepo(tx)

		entries, err := txEntries.ListByIDs(ctx, courseID, ids)
		if err != nil {
			return fmt.Errorf("loading plan entries: %w", err)
		}
		if missing := missingIDs(ids, entries); len(missing) > 0 {
			return &domain.StaleEntryError{EntryIDs: missing}
		}

		targets, err := planTransitions(entries, status)
		if err != nil {
			return err
		}

		now := s.now()
		for _, e := range targets {
			expected := e.Version
			if _, err := e.TransitionTo(status, now); err != nil {
				return err
			}
			if err := txEntries.UpdateStatus(ctx, e, expected); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return err
	}

	fields["changed"] = changed
	if changed > 0 {
		s.cache.Invalidate(courseID)
	}
	return nil
}

func validateStatusRequest(courseID string, ids []string, status domain.EntryStatus) error {
	if courseID == "" {
		return &domain.ValidationError{Field: "course_id", Message: "is required"}
	}
	if len(ids) == 0 {
		return &domain.ValidationError{Field: "entry_ids", Message: "at least one entry is required"}
	}
	if status == domain.StatusSkipped {
		return &domain.ValidationError{Field: "status", Message: "SKIPPED is only set by plan maintenance"}
	}
	if !domain.ValidEntryStatuses[string(status)] {
		return &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	return nil
}

// planTransitions checks every entry before anything is written and returns
// the entries that actually change.
func planTransitions(entries []*domain.PlanEntry, status domain.EntryStatus) ([]*domain.PlanEntry, error) {
	candidates := entries
	if status == domain.StatusInProgress {
		candidates = candidates[:0:0]
		for _, e := range entries {
			if e.Status != domain.StatusCompleted {
				candidates = append(candidates, e)
			}
		}
		if len(candidates) == 0 {
			return nil, &domain.ValidationError{
				Field:   "status",
				Message: "task is already completed; reset it before starting again",
			}
		}
	}

	var targets []*domain.PlanEntry
	for _, e := range candidates {
		if err := e.CheckTransition(status); err != nil {
			return nil, err
		}
		if e.Status != status {
			targets = append(targets, e)
		}
	}
	return targets, nil
}
