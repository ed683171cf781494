package service

import (
	"context"
	"time"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/domain"
)

type CourseService interface {
	Create(ctx context.Context, c *domain.Course) error
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	List(ctx context.Context) ([]*domain.Course, error)
}

type ModuleService interface {
	Create(ctx context.Context, m *domain.Module) error
	GetByID(ctx context.Context, id string) (*domain.Module, error)
	ListByCourse(ctx context.Context, courseID string) ([]*domain.Module, error)
}

type SettingsService interface {
	Get(ctx context.Context, courseID string) (*domain.CourseSettings, error)
	Upsert(ctx context.Context, s *domain.CourseSettings) error
}

// EntryService maintains the plan entries themselves. Status changes go
// through StatusService instead.
type EntryService interface {
	Create(ctx context.Context, e *domain.PlanEntry) error
	GetByID(ctx context.Context, id string) (*domain.PlanEntry, error)
	ListByCourse(ctx context.Context, courseID string) ([]*domain.PlanEntry, error)
	ListByCourseRange(ctx context.Context, courseID string, from, to time.Time) ([]*domain.PlanEntry, error)
	// ListTask returns every entry of the task across the whole plan.
	ListTask(ctx context.Context, courseID string, id domain.TaskIdentity) ([]*domain.PlanEntry, error)
	// ReplacePlan swaps every entry of the course for entries in one
	// transaction, as plan regeneration does.
	ReplacePlan(ctx context.Context, courseID string, entries []*domain.PlanEntry) error
}

type PlanService interface {
	app.LoadPlanUseCase
	app.LoadTodaysPlanUseCase
	app.CheckBehindScheduleUseCase
}

type StatusService interface {
	app.SetTaskStatusUseCase
}
