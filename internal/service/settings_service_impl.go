package service

import (
	"context"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
)

type settingsService struct {
	settings repository.SettingsRepo
	cache    *PlanCache
	observer UseCaseObserver
}

func NewSettingsService(settings repository.SettingsRepo, cache *PlanCache, observers ...UseCaseObserver) SettingsService {
	return &settingsService{
		settings: settings,
		cache:    cache,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *settingsService) Get(ctx context.Context, courseID string) (*domain.CourseSettings, error) {
	return s.settings.Get(ctx, courseID)
}

// Upsert stores the settings after normalizing both dates to calendar days.
// Week boundaries move with them, so cached views of the course are dropped.
func (s *settingsService) Upsert(ctx context.Context, cs *domain.CourseSettings) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"course_id": cs.CourseID}
	defer func() { observe(ctx, s.observer, "upsert-settings", startedAt, err, fields) }()

	cs.Week1StartDate = domain.Day(cs.Week1StartDate)
	cs.ExamDate = domain.Day(cs.ExamDate)
	cs.UpdatedAt = time.Now().UTC()
	if err = domain.ValidateSettings(cs); err != nil {
		return err
	}
	if err = s.settings.Upsert(ctx, cs); err != nil {
		return err
	}
	s.cache.Invalidate(cs.CourseID)
	return nil
}
