package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
)

type CourseRepo interface {
	Create(ctx context.Context, c *domain.Course) error
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	List(ctx context.Context) ([]*domain.Course, error)
}

type ModuleRepo interface {
	Create(ctx context.Context, m *domain.Module) error
	GetByID(ctx context.Context, id string) (*domain.Module, error)
	ListByCourse(ctx context.Context, courseID string) ([]*domain.Module, error)
}

type SettingsRepo interface {
	Get(ctx context.Context, courseID string) (*domain.CourseSettings, error)
	Upsert(ctx context.Context, s *domain.CourseSettings) error
}

type PlanEntryRepo interface {
	Create(ctx context.Context, e *domain.PlanEntry) error
	GetByID(ctx context.Context, id string) (*domain.PlanEntry, error)
	ListByIDs(ctx context.Context, courseID string, ids []string) ([]*domain.PlanEntry, error)
	ListByCourse(ctx context.Context, courseID string) ([]*domain.PlanEntry, error)
	ListByCourseRange(ctx context.Context, courseID string, from, to time.Time) ([]*domain.PlanEntry, error)
	ListByIdentity(ctx context.Context, courseID string, id domain.TaskIdentity) ([]*domain.PlanEntry, error)
	UpdateStatus(ctx context.Context, e *domain.PlanEntry, expectedVersion int) error
	DeleteByCourse(ctx context.Context, courseID string) (int64, error)
}
