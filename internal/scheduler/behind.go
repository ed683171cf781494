package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// BehindPolicy holds the configurable thresholds of the behind-schedule check.
type BehindPolicy struct {
	// LateToleranceDays is how many days after a week ends its LEARN tasks
	// still count as on time.
	LateToleranceDays int
	// MaxUnlearnedModules is the largest count of overdue modules that is still
	// not behind. Zero means any overdue module is behind.
	MaxUnlearnedModules int
}

type BehindScheduleResult struct {
	IsBehind         bool
	Warning          *string
	Suggestions      []string
	UnlearnedModules int
	// OverdueTasks names the overdue LEARN tasks, in plan order.
	OverdueTasks  []TaskView
	DaysUntilExam int
}

const maxNamedCatchUp = 3

// CheckBehindSchedule counts the modules whose LEARN task is still unfinished
// in weeks that ended before today (less the tolerance) and decides whether the
// student is behind. settings may be nil.
func CheckBehindSchedule(weeks []WeekSummary, today, examDate time.Time, policy BehindPolicy, settings *domain.CourseSettings) BehindScheduleResult {
	day := domain.Day(today)
	result := BehindScheduleResult{
		Suggestions:   []string{},
		DaysUntilExam: daysBetween(day, domain.Day(examDate)),
	}

	seen := make(map[string]bool)
	for _, w := range weeks {
		deadline := domain.Day(w.EndDate).AddDate(0, 0, policy.LateToleranceDays)
		if !deadline.Before(day) {
			continue
		}
		for _, t := range w.Tasks {
			if t.TaskType != domain.TaskLearn || t.Status == domain.StatusCompleted {
				continue
			}
			key := t.ModuleID
			if key == "" {
				key = t.Key()
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			result.OverdueTasks = append(result.OverdueTasks, t)
		}
	}
	result.UnlearnedModules = len(result.OverdueTasks)

	if result.UnlearnedModules <= policy.MaxUnlearnedModules {
		return result
	}

	result.IsBehind = true
	warning := fmt.Sprintf("%d module%s from past weeks still not learned", result.UnlearnedModules, plural(result.UnlearnedModules))
	result.Warning = &warning
	result.Suggestions = suggestions(result, settings)
	return result
}

func suggestions(r BehindScheduleResult, settings *domain.CourseSettings) []string {
	var out []string

	names := make([]string, 0, maxNamedCatchUp)
	for i, t := range r.OverdueTasks {
		if i == maxNamedCatchUp {
			break
		}
		names = append(names, t.Description)
	}
	line := "Catch up on " + strings.Join(names, ", ")
	if extra := len(r.OverdueTasks) - len(names); extra > 0 {
		line += fmt.Sprintf(" and %d more", extra)
	}
	out = append(out, line+" before starting new modules")

	if settings != nil && settings.WeeklyHoursMax > 0 {
		out = append(out, fmt.Sprintf("Study toward the top of your weekly range (%dh) until you are back on track", settings.WeeklyHoursMax))
	}

	switch {
	case r.DaysUntilExam < 0:
	case r.DaysUntilExam <= 14:
		out = append(out, fmt.Sprintf("The exam is in %d day%s: favour short LEARN sessions on the missing modules over new practice", r.DaysUntilExam, plural(r.DaysUntilExam)))
	default:
		out = append(out, "Use the supplementary sessions of the coming days to absorb the backlog")
	}
	return out
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
