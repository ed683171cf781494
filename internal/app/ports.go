package app

import (
	"context"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
)

type LoadPlanUseCase interface {
	LoadPlan(ctx context.Context, courseID string) (*PlanResponse, error)
}

type LoadTodaysPlanUseCase interface {
	LoadTodaysPlan(ctx context.Context, courseID string, date time.Time) (*TodaysPlanResponse, error)
}

// SetTaskStatusUseCase is the only way a displayed task's status changes.
type SetTaskStatusUseCase interface {
	SetTaskStatus(ctx context.Context, courseID string, entryIDs []string, status domain.EntryStatus) error
	UpdateEntryStatus(ctx context.Context, courseID, entryID string, status domain.EntryStatus) error
}

type CheckBehindScheduleUseCase interface {
	CheckBehindSchedule(ctx context.Context, courseID string, today time.Time) (*BehindScheduleResponse, error)
}
