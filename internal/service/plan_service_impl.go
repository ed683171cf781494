package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/alexanderramin/studyplan/internal/scheduler"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PlanConfig carries the policies the read side applies.
type PlanConfig struct {
	Buckets scheduler.BucketPolicy
	Behind  scheduler.BehindPolicy
	Logger  *zap.Logger
}

type planService struct {
	entries  repository.PlanEntryRepo
	settings repository.SettingsRepo
	modules  repository.ModuleRepo
	cache    *PlanCache
	cfg      PlanConfig
	logger   *zap.Logger
	observer UseCaseObserver
}

// NewPlanService creates the read side: weekly view, today's plan and the
// behind-schedule check. cache may be nil.
func NewPlanService(
	entries repository.PlanEntryRepo,
	settings repository.SettingsRepo,
	modules repository.ModuleRepo,
	cache *PlanCache,
	cfg PlanConfig,
	observers ...UseCaseObserver,
) PlanService {
	if cfg.Buckets.ByTaskType == nil && cfg.Buckets.Fallback == domain.BucketNone {
		cfg.Buckets = scheduler.DefaultBucketPolicy()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &planService{
		entries:  entries,
		settings: settings,
		modules:  modules,
		cache:    cache,
		cfg:      cfg,
		logger:   logger.Named("plan"),
		observer: useCaseObserverOrNoop(observers),
	}
}

const planDateKey = "plan"

func (s *planService) LoadPlan(ctx context.Context, courseID string) (resp *app.PlanResponse, err error) {
	startedAt := time.Now()
	fields := map[string]any{"course_id": courseID}
	defer func() { observe(ctx, s.observer, "load-plan", startedAt, err, fields) }()

	resp, hit, err := cached(s.cache, courseID, planDateKey, func() (*app.PlanResponse, error) {
		return s.buildPlan(ctx, courseID)
	})
	if err != nil {
		return nil, err
	}
	fields["cache"] = cacheResult(hit)
	if !hit {
		fields["warnings"] = len(resp.Warnings)
	}
	return resp, nil
}

func (s *planService) buildPlan(ctx context.Context, courseID string) (*app.PlanResponse, error) {
	var settings *domain.CourseSettings
	var entries []*domain.PlanEntry

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		settings, err = s.loadSettings(gctx, courseID)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.entries.ListByCourse(gctx, courseID)
		if err != nil {
			return fmt.Errorf("loading plan entries: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view, err := scheduler.BuildWeeklyView(entries, settings.Week1StartDate, settings.ExamDate)
	if err != nil {
		return nil, err
	}
	for _, w := range view.Warnings {
		s.logger.Warn("plan entry outside plan range",
			zap.String("course_id", courseID),
			zap.String("entry_id", w.EntryID),
			zap.String("date", w.Date.Format(domain.DayLayout)),
			zap.String("range_start", w.RangeStart.Format(domain.DayLayout)),
			zap.String("range_end", w.RangeEnd.Format(domain.DayLayout)),
		)
	}

	return &app.PlanResponse{
		CourseID:       courseID,
		Weeks:          view.Weeks,
		Week1StartDate: settings.Week1StartDate,
		ExamDate:       settings.ExamDate,
		Warnings:       view.Warnings,
	}, nil
}

func (s *planService) LoadTodaysPlan(ctx context.Context, courseID string, date time.Time) (resp *app.TodaysPlanResponse, err error) {
	startedAt := time.Now()
	day := domain.Day(date)
	fields := map[string]any{"course_id": courseID, "date": day.Format(domain.DayLayout)}
	defer func() { observe(ctx, s.observer, "load-todays-plan", startedAt, err, fields) }()

	resp, hit, err := cached(s.cache, courseID, day.Format(domain.DayLayout), func() (*app.TodaysPlanResponse, error) {
		return s.buildTodaysPlan(ctx, courseID, day)
	})
	if err != nil {
		return nil, err
	}
	fields["cache"] = cacheResult(hit)
	fields["total_blocks"] = resp.TotalBlocks
	return resp, nil
}

func (s *planService) buildTodaysPlan(ctx context.Context, courseID string, day time.Time) (*app.TodaysPlanResponse, error) {
	// The whole plan is needed to find the Phase 1 module.
	entries, err := s.entries.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("loading plan entries: %w", err)
	}
	plan, err := scheduler.BuildTodaysPlan(entries, day, s.cfg.Buckets)
	if err != nil {
		return nil, err
	}

	resp := &app.TodaysPlanResponse{CourseID: courseID, TodaysPlan: plan}
	if plan.Phase1ModuleID != nil {
		m, err := s.modules.GetByID(ctx, *plan.Phase1ModuleID)
		switch {
		case err == nil:
			resp.Phase1Module = m
		case errors.Is(err, repository.ErrNotFound):
			s.logger.Warn("phase 1 module missing",
				zap.String("course_id", courseID), zap.String("module_id", *plan.Phase1ModuleID))
		default:
			return nil, fmt.Errorf("loading phase 1 module: %w", err)
		}
	}
	return resp, nil
}

func (s *planService) CheckBehindSchedule(ctx context.Context, courseID string, today time.Time) (resp *app.BehindScheduleResponse, err error) {
	startedAt := time.Now()
	fields := map[string]any{"course_id": courseID}
	defer func() { observe(ctx, s.observer, "check-behind-schedule", startedAt, err, fields) }()

	plan, hit, err := cached(s.cache, courseID, planDateKey, func() (*app.PlanResponse, error) {
		return s.buildPlan(ctx, courseID)
	})
	if err != nil {
		return nil, err
	}
	fields["cache"] = cacheResult(hit)
	if !hit {
		fields["warnings"] = len(plan.Warnings)
	}
	settings, err := s.loadSettings(ctx, courseID)
	if err != nil {
		return nil, err
	}

	result := scheduler.CheckBehindSchedule(plan.Weeks, today, plan.ExamDate, s.cfg.Behind, settings)
	fields["is_behind"] = result.IsBehind
	fields["unlearned_modules"] = result.UnlearnedModules
	return &app.BehindScheduleResponse{
		CourseID:             courseID,
		Today:                domain.Day(today),
		ExamDate:             plan.ExamDate,
		BehindScheduleResult: result,
	}, nil
}

func (s *planService) loadSettings(ctx context.Context, courseID string) (*domain.CourseSettings, error) {
	settings, err := s.settings.Get(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("course %s has no settings yet (set the week 1 start and exam dates first): %w", courseID, err)
		}
		return nil, fmt.Errorf("loading course settings: %w", err)
	}
	return settings, nil
}

func cacheResult(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
