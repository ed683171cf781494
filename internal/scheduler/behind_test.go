package scheduler

import (
	"fmt"
	"testing"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildWeeks(t *testing.T, entries []*domain.PlanEntry) []WeekSummary {
	t.Helper()
	view, err := BuildWeeklyView(entries, day(1, 1), day(2, 29))
	require.NoError(t, err)
	return view.Weeks
}

func TestCheckBehindSchedule_AnyPendingModuleIsBehind(t *testing.T) {
	var entries []*domain.PlanEntry
	for i := 0; i < 10; i++ {
		status := domain.StatusCompleted
		if i >= 7 {
			status = domain.StatusPending
		}
		entries = append(entries, learn(fmt.Sprintf("mod-%d", i), day(1, 1+i), status))
	}
	weeks := buildWeeks(t, entries)

	result := CheckBehindSchedule(weeks, day(2, 1), day(2, 29), BehindPolicy{}, nil)
	assert.True(t, result.IsBehind)
	assert.Equal(t, 3, result.UnlearnedModules)
	require.NotNil(t, result.Warning)
	assert.Contains(t, *result.Warning, "3 modules")
	assert.NotEmpty(t, result.Suggestions)
	assert.Equal(t, 28, result.DaysUntilExam)
}

func TestCheckBehindSchedule_OnTrack(t *testing.T) {
	weeks := buildWeeks(t, []*domain.PlanEntry{
		learn("mod-a", day(1, 2), domain.StatusCompleted),
		learn("mod-b", day(1, 30), domain.StatusPending),
	})

	result := CheckBehindSchedule(weeks, day(1, 30), day(2, 29), BehindPolicy{}, nil)
	assert.False(t, result.IsBehind)
	assert.Nil(t, result.Warning)
	assert.Empty(t, result.Suggestions)
	assert.NotNil(t, result.Suggestions)
	assert.Equal(t, 0, result.UnlearnedModules)
}

func TestCheckBehindSchedule_CurrentWeekDoesNotCount(t *testing.T) {
	weeks := buildWeeks(t, []*domain.PlanEntry{learn("mod-a", day(1, 2), domain.StatusPending)})

	// Week 1 ends on Jan 7; it is only past from Jan 8.
	assert.False(t, CheckBehindSchedule(weeks, day(1, 7), day(2, 29), BehindPolicy{}, nil).IsBehind)
	assert.True(t, CheckBehindSchedule(weeks, day(1, 8), day(2, 29), BehindPolicy{}, nil).IsBehind)
}

func TestCheckBehindSchedule_LateTolerance(t *testing.T) {
	weeks := buildWeeks(t, []*domain.PlanEntry{learn("mod-a", day(1, 2), domain.StatusPending)})
	policy := BehindPolicy{LateToleranceDays: 3}

	assert.False(t, CheckBehindSchedule(weeks, day(1, 10), day(2, 29), policy, nil).IsBehind)
	assert.True(t, CheckBehindSchedule(weeks, day(1, 11), day(2, 29), policy, nil).IsBehind)
}

func TestCheckBehindSchedule_Threshold(t *testing.T) {
	weeks := buildWeeks(t, []*domain.PlanEntry{
		learn("mod-a", day(1, 2), domain.StatusPending),
		learn("mod-b", day(1, 3), domain.StatusInProgress),
	})

	result := CheckBehindSchedule(weeks, day(1, 20), day(2, 29), BehindPolicy{MaxUnlearnedModules: 2}, nil)
	assert.False(t, result.IsBehind)
	assert.Equal(t, 2, result.UnlearnedModules)

	result = CheckBehindSchedule(weeks, day(1, 20), day(2, 29), BehindPolicy{MaxUnlearnedModules: 1}, nil)
	assert.True(t, result.IsBehind)
}

func TestCheckBehindSchedule_ModuleCountedOnce(t *testing.T) {
	weeks := buildWeeks(t, []*domain.PlanEntry{
		learn("mod-a", day(1, 2), domain.StatusPending),
		learn("mod-a", day(1, 9), domain.StatusPending),
	})

	result := CheckBehindSchedule(weeks, day(1, 30), day(2, 29), BehindPolicy{}, nil)
	assert.Equal(t, 1, result.UnlearnedModules)
}

func TestCheckBehindSchedule_IgnoresReviewAndPractice(t *testing.T) {
	weeks := buildWeeks(t, []*domain.PlanEntry{
		testutil.NewTestEntry("c1", testutil.WithDate(day(1, 2))),
		testutil.NewTestEntry("c1", testutil.WithDate(day(1, 3)), testutil.WithTaskType(domain.TaskPractice)),
	})

	assert.False(t, CheckBehindSchedule(weeks, day(1, 30), day(2, 29), BehindPolicy{}, nil).IsBehind)
}

func TestCheckBehindSchedule_SuggestionsUseSettings(t *testing.T) {
	weeks := buildWeeks(t, []*domain.PlanEntry{learn("mod-a", day(1, 2), domain.StatusPending)})
	settings := testutil.NewTestSettings("c1", day(1, 1), day(2, 29), testutil.WithHours(6, 12))

	result := CheckBehindSchedule(weeks, day(2, 20), day(2, 29), BehindPolicy{}, settings)
	require.True(t, result.IsBehind)
	require.Len(t, result.Suggestions, 3)
	assert.Contains(t, result.Suggestions[0], "Learn mod-a")
	assert.Contains(t, result.Suggestions[1], "12h")
	assert.Contains(t, result.Suggestions[2], "9 days")
}
