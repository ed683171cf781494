package testutil

import (
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/google/uuid"
)

// Day builds a UTC calendar day.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func NewTestCourse(name string) *domain.Course {
	now := time.Now().UTC()
	return &domain.Course{
		ID:        uuid.New().String(),
		Name:      name,
		UserID:    "user-test",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewTestModule(courseID, title string, orderIndex int) *domain.Module {
	return &domain.Module{
		ID:         uuid.New().String(),
		CourseID:   courseID,
		Title:      title,
		OrderIndex: orderIndex,
		CreatedAt:  time.Now().UTC(),
	}
}

// Settings options
type SettingsOption func(*domain.CourseSettings)

func WithHours(minH, maxH int) SettingsOption {
	return func(s *domain.CourseSettings) {
		s.WeeklyHoursMin = minH
		s.WeeklyHoursMax = maxH
	}
}

func WithOrientationCompleted() SettingsOption {
	return func(s *domain.CourseSettings) {
		s.OrientationCompleted = true
	}
}

func NewTestSettings(courseID string, week1Start, exam time.Time, opts ...SettingsOption) *domain.CourseSettings {
	s := &domain.CourseSettings{
		CourseID:       courseID,
		WeeklyHoursMin: 5,
		WeeklyHoursMax: 10,
		Week1StartDate: domain.Day(week1Start),
		ExamDate:       domain.Day(exam),
		UpdatedAt:      time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlanEntry options
type EntryOption func(*domain.PlanEntry)

func WithDate(d time.Time) EntryOption {
	return func(e *domain.PlanEntry) {
		e.Date = domain.Day(d)
	}
}

func WithTaskType(tt domain.TaskType) EntryOption {
	return func(e *domain.PlanEntry) {
		e.TaskType = tt
	}
}

// WithModule sets the module id. An empty id clears it.
func WithModule(moduleID string) EntryOption {
	return func(e *domain.PlanEntry) {
		if moduleID == "" {
			e.ModuleID = nil
			return
		}
		e.ModuleID = &moduleID
	}
}

func WithStatus(s domain.EntryStatus) EntryOption {
	return func(e *domain.PlanEntry) {
		e.Status = s
		if s == domain.StatusCompleted {
			now := time.Now().UTC()
			e.CompletedAt = &now
		}
	}
}

func WithBlocks(n int) EntryOption {
	return func(e *domain.PlanEntry) {
		e.EstimatedBlocks = n
	}
}

func WithBucket(b domain.SessionBucket) EntryOption {
	return func(e *domain.PlanEntry) {
		e.SessionBucket = b
	}
}

func WithDescription(d string) EntryOption {
	return func(e *domain.PlanEntry) {
		e.Description = d
	}
}

func WithCreatedAt(t time.Time) EntryOption {
	return func(e *domain.PlanEntry) {
		e.CreatedAt = t
		e.UpdatedAt = t
	}
}

// NewTestEntry builds a PENDING REVIEW entry dated today with one block.
// LEARN entries need WithModule as well.
func NewTestEntry(courseID string, opts ...EntryOption) *domain.PlanEntry {
	now := time.Now().UTC()
	e := &domain.PlanEntry{
		ID:              uuid.New().String(),
		CourseID:        courseID,
		UserID:          "user-test",
		Date:            domain.Day(now),
		TaskType:        domain.TaskReview,
		Description:     "Review",
		EstimatedBlocks: 1,
		Status:          domain.StatusPending,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
