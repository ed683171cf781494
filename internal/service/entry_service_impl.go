package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/google/uuid"
)

type entryService struct {
	entries  repository.PlanEntryRepo
	uow      db.UnitOfWork
	cache    *PlanCache
	observer UseCaseObserver
}

func NewEntryService(entries repository.PlanEntryRepo, uow db.UnitOfWork, cache *PlanCache, observers ...UseCaseObserver) EntryService {
	return &entryService{
		entries:  entries,
		uow:      uow,
		cache:    cache,
		observer: useCaseObserverOrNoop(observers),
	}
}

// prepareEntry fills in the fields a new entry gets by default and validates it.
func prepareEntry(e *domain.PlanEntry, now time.Time) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Status == "" {
		e.Status = domain.StatusPending
	}
	if e.Version == 0 {
		e.Version = 1
	}
	e.Date = domain.Day(e.Date)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	if e.Status == domain.StatusCompleted && e.CompletedAt == nil {
		completedAt := now
		e.CompletedAt = &completedAt
	}
	return domain.ValidateEntry(e)
}

func (s *entryService) Create(ctx context.Context, e *domain.PlanEntry) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"course_id": e.CourseID}
	defer func() { observe(ctx, s.observer, "create-entry", startedAt, err, fields) }()

	if err = prepareEntry(e, time.Now().UTC()); err != nil {
		return err
	}
	if err = s.entries.Create(ctx, e); err != nil {
		return err
	}
	s.cache.Invalidate(e.CourseID)
	return nil
}

func (s *entryService) GetByID(ctx context.Context, id string) (*domain.PlanEntry, error) {
	return s.entries.GetByID(ctx, id)
}

func (s *entryService) ListByCourse(ctx context.Context, courseID string) ([]*domain.PlanEntry, error) {
	return s.entries.ListByCourse(ctx, courseID)
}

func (s *entryService) ListByCourseRange(ctx context.Context, courseID string, from, to time.Time) ([]*domain.PlanEntry, error) {
	return s.entries.ListByCourseRange(ctx, courseID, from, to)
}

func (s *entryService) ListTask(ctx context.Context, courseID string, id domain.TaskIdentity) ([]*domain.PlanEntry, error) {
	return s.entries.ListByIdentity(ctx, courseID, id)
}

func (s *entryService) ReplacePlan(ctx context.Context, courseID string, entries []*domain.PlanEntry) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"course_id": courseID, "entries": len(entries)}
	defer func() { observe(ctx, s.observer, "replace-plan", startedAt, err, fields) }()

	now := time.Now().UTC()
	for i, e := range entries {
		if e.CourseID == "" {
			e.CourseID = courseID
		}
		if e.CourseID != courseID {
			return &domain.ValidationError{
				Field:   "course_id",
				Message: fmt.Sprintf("entry %d belongs to course %s", i, e.CourseID),
			}
		}
		if err = prepareEntry(e, now); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}

	var deleted int64
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txEntries := repository.NewSQLitePlanEntryRepo(tx)
		var err error
		deleted, err = txEntries.DeleteByCourse(ctx, courseID)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := txEntries.Create(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	fields["deleted"] = deleted
	s.cache.Invalidate(courseID)
	return nil
}
