package scheduler

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(m time.Month, d int) time.Time {
	return testutil.Day(2024, m, d)
}

func learn(moduleID string, d time.Time, status domain.EntryStatus) *domain.PlanEntry {
	return testutil.NewTestEntry("c1",
		testutil.WithTaskType(domain.TaskLearn),
		testutil.WithModule(moduleID),
		testutil.WithDescription("Learn "+moduleID),
		testutil.WithDate(d),
		testutil.WithStatus(status),
	)
}

func TestBuildWeeklyView_ThreeWeeksPlusExamDay(t *testing.T) {
	entries := []*domain.PlanEntry{testutil.NewTestEntry("c1", testutil.WithDate(day(1, 3)))}

	view, err := BuildWeeklyView(entries, day(1, 1), day(1, 22))
	require.NoError(t, err)
	require.Len(t, view.Weeks, 4)

	for i, w := range view.Weeks {
		assert.Equal(t, i+1, w.WeekNumber)
		if i > 0 {
			assert.Equal(t, view.Weeks[i-1].EndDate.AddDate(0, 0, 1), w.StartDate, "no gap or overlap before week %d", w.WeekNumber)
		}
		assert.Equal(t, i == 3, w.IsExamWeek)
	}
	assert.Equal(t, day(1, 1), view.Weeks[0].StartDate)
	assert.Equal(t, day(1, 7), view.Weeks[0].EndDate)
	assert.Equal(t, day(1, 22), view.Weeks[3].StartDate)
	assert.Equal(t, day(1, 22), view.Weeks[3].EndDate, "exam week is a single day")
}

func TestBuildWeeklyView_ExamOnWeekBoundary(t *testing.T) {
	entries := []*domain.PlanEntry{testutil.NewTestEntry("c1", testutil.WithDate(day(1, 3)))}

	view, err := BuildWeeklyView(entries, day(1, 1), day(1, 21))
	require.NoError(t, err)
	require.Len(t, view.Weeks, 3)
	assert.True(t, view.Weeks[2].IsExamWeek)
	assert.Equal(t, day(1, 15), view.Weeks[2].StartDate)
}

func TestBuildWeeklyView_StartEqualsExam(t *testing.T) {
	entries := []*domain.PlanEntry{testutil.NewTestEntry("c1", testutil.WithDate(day(1, 1)))}

	view, err := BuildWeeklyView(entries, day(1, 1), day(1, 1))
	require.NoError(t, err)
	require.Len(t, view.Weeks, 1)
	assert.True(t, view.Weeks[0].IsExamWeek)
	assert.Equal(t, 1, view.Weeks[0].TotalTasks)
}

func TestBuildWeeklyView_EmptyEntries(t *testing.T) {
	view, err := BuildWeeklyView(nil, day(1, 1), day(1, 22))
	require.NoError(t, err)
	assert.Empty(t, view.Weeks)
	assert.Empty(t, view.Warnings)
}

func TestBuildWeeklyView_StartAfterExam(t *testing.T) {
	_, err := BuildWeeklyView(nil, day(2, 1), day(1, 1))
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "week1_start_date", vErr.Field)
}

func TestBuildWeeklyView_ZeroBlocksRejected(t *testing.T) {
	entries := []*domain.PlanEntry{testutil.NewTestEntry("c1", testutil.WithDate(day(1, 2)), testutil.WithBlocks(0))}

	_, err := BuildWeeklyView(entries, day(1, 1), day(1, 22))
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "estimated_blocks", vErr.Field)
}

func TestBuildWeeklyView_OutOfRangeEntriesDroppedWithWarning(t *testing.T) {
	before := testutil.NewTestEntry("c1", testutil.WithDate(day(1, 1).AddDate(0, 0, -1)))
	after := testutil.NewTestEntry("c1", testutil.WithDate(day(1, 23)))
	inside := testutil.NewTestEntry("c1", testutil.WithDate(day(1, 10)))

	view, err := BuildWeeklyView([]*domain.PlanEntry{before, inside, after}, day(1, 1), day(1, 22))
	require.NoError(t, err)

	require.Len(t, view.Warnings, 2)
	assert.Equal(t, before.ID, view.Warnings[0].EntryID)
	assert.Equal(t, after.ID, view.Warnings[1].EntryID)

	total := 0
	for _, w := range view.Weeks {
		total += w.TotalTasks
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{inside.ID}, view.Weeks[1].Tasks[0].EntryIDs)
}

func TestBuildWeeklyView_GroupsByIdentityWithinWeek(t *testing.T) {
	a := learn("mod-a", day(1, 1), domain.StatusCompleted)
	b := learn("mod-a", day(1, 3), domain.StatusPending)
	c := learn("mod-a", day(1, 9), domain.StatusCompleted)
	r := testutil.NewTestEntry("c1", testutil.WithDate(day(1, 2)), testutil.WithBlocks(2))

	view, err := BuildWeeklyView([]*domain.PlanEntry{c, b, r, a}, day(1, 1), day(1, 22))
	require.NoError(t, err)

	w1 := view.Weeks[0]
	require.Len(t, w1.Tasks, 2)
	assert.Equal(t, domain.TaskLearn, w1.Tasks[0].TaskType, "tasks keep first-appearance order")
	assert.Equal(t, []string{a.ID, b.ID}, w1.Tasks[0].EntryIDs)
	assert.Equal(t, domain.StatusPending, w1.Tasks[0].Status)
	assert.Equal(t, 2, w1.Tasks[0].EstimatedBlocks)
	assert.Equal(t, day(1, 1), w1.Tasks[0].FirstDate)
	assert.Equal(t, 0, w1.CompletedTasks)
	assert.Equal(t, 4, w1.TotalBlocks)

	w2 := view.Weeks[1]
	require.Len(t, w2.Tasks, 1)
	assert.Equal(t, domain.StatusCompleted, w2.Tasks[0].Status)
	assert.Equal(t, 1, w2.CompletedTasks)
	assert.InDelta(t, 100.0, w2.CompletionPct, 0.001)
}

func TestCollapseStatus(t *testing.T) {
	tests := []struct {
		name string
		in   []domain.EntryStatus
		want domain.EntryStatus
	}{
		{"all completed", []domain.EntryStatus{domain.StatusCompleted, domain.StatusCompleted}, domain.StatusCompleted},
		{"completed and pending", []domain.EntryStatus{domain.StatusCompleted, domain.StatusPending}, domain.StatusPending},
		{"in progress and pending", []domain.EntryStatus{domain.StatusInProgress, domain.StatusPending}, domain.StatusInProgress},
		{"completed and in progress", []domain.EntryStatus{domain.StatusCompleted, domain.StatusInProgress}, domain.StatusInProgress},
		{"completed and skipped", []domain.EntryStatus{domain.StatusCompleted, domain.StatusSkipped}, domain.StatusPending},
		{"all skipped", []domain.EntryStatus{domain.StatusSkipped}, domain.StatusPending},
		{"empty", nil, domain.StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CollapseStatus(tt.in))
		})
	}
}

// TestBuildWeeklyView_PartitionProperty checks on random plans that each
// in-range entry lands in exactly one week and completed never exceeds total.
func TestBuildWeeklyView_PartitionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	statuses := []domain.EntryStatus{domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted, domain.StatusSkipped}
	descs := []string{"A", "B", "C", "D"}

	for iter := 0; iter < 200; iter++ {
		start := day(1, 1).AddDate(0, 0, rng.Intn(30))
		exam := start.AddDate(0, 0, rng.Intn(60))
		span := int(exam.Sub(start).Hours()/24) + 1

		n := rng.Intn(40)
		var entries []*domain.PlanEntry
		for i := 0; i < n; i++ {
			entries = append(entries, testutil.NewTestEntry("c1",
				testutil.WithDate(start.AddDate(0, 0, rng.Intn(span+6)-3)),
				testutil.WithDescription(descs[rng.Intn(len(descs))]),
				testutil.WithStatus(statuses[rng.Intn(len(statuses))]),
				testutil.WithBlocks(1+rng.Intn(4)),
			))
		}

		view, err := BuildWeeklyView(entries, start, exam)
		require.NoError(t, err)

		seen := make(map[string]int)
		for _, w := range view.Weeks {
			assert.LessOrEqual(t, w.CompletedTasks, w.TotalTasks)
			identities := make(map[domain.TaskIdentity]bool)
			for _, task := range w.Tasks {
				identities[task.TaskIdentity] = true
				for _, id := range task.EntryIDs {
					seen[id]++
				}
			}
			assert.Equal(t, len(identities), w.TotalTasks)
		}

		inRange := 0
		for _, e := range entries {
			if e.Date.Before(start) || e.Date.After(exam) {
				assert.Zero(t, seen[e.ID], "out-of-range entry must not be aggregated")
				continue
			}
			inRange++
			assert.Equal(t, 1, seen[e.ID], "entry %s must appear exactly once", e.ID)
		}
		assert.Equal(t, len(entries)-inRange, len(view.Warnings))
	}
}
