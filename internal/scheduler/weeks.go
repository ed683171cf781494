package scheduler

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
)

const daysPerWeek = 7

// TaskView is one displayed task: every entry of a week sharing the same
// identity collapsed into a single row.
type TaskView struct {
	domain.TaskIdentity
	EntryIDs        []string
	Status          domain.EntryStatus
	EstimatedBlocks int
	FirstDate       time.Time
}

type WeekSummary struct {
	WeekNumber     int
	StartDate      time.Time
	EndDate        time.Time
	IsExamWeek     bool
	Tasks          []TaskView
	TotalTasks     int
	CompletedTasks int
	TotalBlocks    int
	CompletionPct  float64
}

// WeeklyView is the aggregated plan plus the entries that could not be placed.
type WeeklyView struct {
	Weeks    []WeekSummary
	Warnings []domain.AggregationIntegrityWarning
}

// BuildWeeklyView partitions [week1Start, examDate] into 7-day windows and
// groups the entries of each window by task identity. The last window ends on
// examDate and is the exam week, however short. Entries dated outside the range
// are left out of every week and reported as warnings.
func BuildWeeklyView(entries []*domain.PlanEntry, week1Start, examDate time.Time) (WeeklyView, error) {
	start, exam := domain.Day(week1Start), domain.Day(examDate)
	if start.After(exam) {
		return WeeklyView{}, &domain.ValidationError{
			Field:   "week1_start_date",
			Message: fmt.Sprintf("%s is after exam date %s", start.Format(domain.DayLayout), exam.Format(domain.DayLayout)),
		}
	}
	if err := checkBlocks(entries); err != nil {
		return WeeklyView{}, err
	}
	if len(entries) == 0 {
		return WeeklyView{}, nil
	}

	weeks := partitionWeeks(start, exam)
	perWeek := make([][]*domain.PlanEntry, len(weeks))
	var warnings []domain.AggregationIntegrityWarning

	for _, e := range sortedEntries(entries) {
		day := domain.Day(e.Date)
		if day.Before(start) || day.After(exam) {
			warnings = append(warnings, domain.AggregationIntegrityWarning{
				EntryID: e.ID, Date: day, RangeStart: start, RangeEnd: exam,
			})
			continue
		}
		idx := daysBetween(start, day) / daysPerWeek
		perWeek[idx] = append(perWeek[idx], e)
	}

	for i := range weeks {
		w := &weeks[i]
		w.Tasks = GroupTasks(perWeek[i])
		w.TotalTasks = len(w.Tasks)
		for _, t := range w.Tasks {
			if t.Status == domain.StatusCompleted {
				w.CompletedTasks++
			}
			w.TotalBlocks += t.EstimatedBlocks
		}
		if w.TotalTasks > 0 {
			w.CompletionPct = float64(w.CompletedTasks) / float64(w.TotalTasks) * 100
		}
	}

	return WeeklyView{Weeks: weeks, Warnings: warnings}, nil
}

// GroupTasks collapses entries sharing a task identity into one TaskView. Tasks
// keep the order in which their identity first appears in entries.
func GroupTasks(entries []*domain.PlanEntry) []TaskView {
	if len(entries) == 0 {
		return nil
	}
	index := make(map[domain.TaskIdentity]int)
	var tasks []TaskView
	var statuses [][]domain.EntryStatus

	for _, e := range entries {
		id := e.Identity()
		i, ok := index[id]
		if !ok {
			i = len(tasks)
			index[id] = i
			tasks = append(tasks, TaskView{TaskIdentity: id, FirstDate: domain.Day(e.Date)})
			statuses = append(statuses, nil)
		}
		t := &tasks[i]
		t.EntryIDs = append(t.EntryIDs, e.ID)
		t.EstimatedBlocks += e.EstimatedBlocks
		if d := domain.Day(e.Date); d.Before(t.FirstDate) {
			t.FirstDate = d
		}
		statuses[i] = append(statuses[i], e.Status)
	}

	for i := range tasks {
		tasks[i].Status = CollapseStatus(statuses[i])
	}
	return tasks
}

// CollapseStatus derives the displayed status of a task from its entries:
// COMPLETED only when every entry is, IN_PROGRESS when any entry is, PENDING
// otherwise.
func CollapseStatus(statuses []domain.EntryStatus) domain.EntryStatus {
	if len(statuses) == 0 {
		return domain.StatusPending
	}
	allCompleted := true
	anyInProgress := false
	for _, s := range statuses {
		if s != domain.StatusCompleted {
			allCompleted = false
		}
		if s == domain.StatusInProgress {
			anyInProgress = true
		}
	}
	switch {
	case allCompleted:
		return domain.StatusCompleted
	case anyInProgress:
		return domain.StatusInProgress
	default:
		return domain.StatusPending
	}
}

func partitionWeeks(start, exam time.Time) []WeekSummary {
	n := daysBetween(start, exam)/daysPerWeek + 1
	weeks := make([]WeekSummary, n)
	for i := range weeks {
		ws := start.AddDate(0, 0, i*daysPerWeek)
		we := ws.AddDate(0, 0, daysPerWeek-1)
		if we.After(exam) {
			we = exam
		}
		weeks[i] = WeekSummary{WeekNumber: i + 1, StartDate: ws, EndDate: we}
	}
	weeks[n-1].EndDate = exam
	weeks[n-1].IsExamWeek = true
	return weeks
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// sortedEntries orders a copy of entries by day, creation time, then id.
func sortedEntries(entries []*domain.PlanEntry) []*domain.PlanEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b *domain.PlanEntry) int {
		if c := domain.Day(a.Date).Compare(domain.Day(b.Date)); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func checkBlocks(entries []*domain.PlanEntry) error {
	for _, e := range entries {
		if e.EstimatedBlocks < 1 {
			return &domain.ValidationError{
				Field:   "estimated_blocks",
				Message: fmt.Sprintf("entry %s has %d blocks, must be at least 1", e.ID, e.EstimatedBlocks),
			}
		}
	}
	return nil
}
