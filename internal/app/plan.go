package app

import (
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/scheduler"
)

type PlanResponse struct {
	CourseID       string
	Weeks          []scheduler.WeekSummary
	Week1StartDate time.Time
	ExamDate       time.Time
	// Warnings lists entries left out of the weeks because of their date.
	Warnings []domain.AggregationIntegrityWarning
}

// CurrentWeek returns the week containing day, or nil outside the plan.
func (r *PlanResponse) CurrentWeek(day time.Time) *scheduler.WeekSummary {
	d := domain.Day(day)
	for i := range r.Weeks {
		w := &r.Weeks[i]
		if !d.Before(w.StartDate) && !d.After(w.EndDate) {
			return w
		}
	}
	return nil
}

// CompletionPct is the share of completed tasks over the whole plan.
func (r *PlanResponse) CompletionPct() float64 {
	var total, done int
	for _, w := range r.Weeks {
		total += w.TotalTasks
		done += w.CompletedTasks
	}
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

type TodaysPlanResponse struct {
	CourseID string
	scheduler.TodaysPlan
	Phase1Module *domain.Module
}

type BehindScheduleResponse struct {
	CourseID string
	Today    time.Time
	ExamDate time.Time
	scheduler.BehindScheduleResult
}
