package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatusSvc(env *testEnv, cache *PlanCache, observers ...UseCaseObserver) StatusService {
	return NewStatusService(env.entries, testutil.NewTestUoW(env.db), cache, observers...)
}

func learnTask(t *testing.T, env *testEnv, moduleID string, n int) []*domain.PlanEntry {
	t.Helper()
	var out []*domain.PlanEntry
	for i := 0; i < n; i++ {
		out = append(out, env.addEntry(t,
			testutil.WithTaskType(domain.TaskLearn),
			testutil.WithModule(moduleID),
			testutil.WithDescription("Learn heart failure"),
			testutil.WithDate(testutil.Day(2024, 1, 1+i)),
		))
	}
	return out
}

func ids(entries []*domain.PlanEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestSetTaskStatus_CompletesEveryEntry(t *testing.T) {
	env := newTestEnv(t)
	mod := env.addModule(t, "Heart failure", 0)
	entries := learnTask(t, env, mod.ID, 3)
	svc := newStatusSvc(env, nil)

	require.NoError(t, svc.SetTaskStatus(context.Background(), env.course.ID, ids(entries), domain.StatusCompleted))

	for _, e := range entries {
		got := env.reload(t, e.ID)
		assert.Equal(t, domain.StatusCompleted, got.Status)
		assert.NotNil(t, got.CompletedAt)
		assert.Equal(t, 2, got.Version)
	}
}

func TestSetTaskStatus_ResetIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	mod := env.addModule(t, "Heart failure", 0)
	entries := learnTask(t, env, mod.ID, 2)
	obs := &recordingObserver{}
	svc := newStatusSvc(env, nil, obs)
	ctx := context.Background()

	require.NoError(t, svc.SetTaskStatus(ctx, env.course.ID, ids(entries), domain.StatusCompleted))
	require.NoError(t, svc.SetTaskStatus(ctx, env.course.ID, ids(entries), domain.StatusPending))
	require.NoError(t, svc.SetTaskStatus(ctx, env.course.ID, ids(entries), domain.StatusPending))

	assert.Equal(t, 0, obs.last(t, "set-task-status").Fields["changed"])
	for _, e := range entries {
		got := env.reload(t, e.ID)
		assert.Equal(t, domain.StatusPending, got.Status)
		assert.Nil(t, got.CompletedAt)
		assert.Equal(t, 3, got.Version, "the repeated reset must not write")
	}
}

func TestSetTaskStatus_RollsBackWholeBatch(t *testing.T) {
	env := newTestEnv(t)
	mod := env.addModule(t, "Heart failure", 0)
	entries := learnTask(t, env, mod.ID, 2)

	// One UPDATE per entry: the second one fails after the first was written.
	failUoW := &testutil.FailOnNthExecUoW{
		DB:     env.db,
		FailOn: 2,
		Match:  "UPDATE plan_entries",
		Err:    fmt.Errorf("injected update failure"),
	}
	svc := NewStatusService(env.entries, failUoW, nil)

	err := svc.SetTaskStatus(context.Background(), env.course.ID, ids(entries), domain.StatusCompleted)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected update failure")
	assert.Equal(t, 2, failUoW.Execs())

	for _, e := range entries {
		got := env.reload(t, e.ID)
		assert.Equal(t, domain.StatusPending, got.Status, "entry %s should be unchanged after rollback", e.ID)
		assert.Nil(t, got.CompletedAt)
		assert.Equal(t, 1, got.Version)
	}
}

func TestSetTaskStatus_StaleEntry(t *testing.T) {
	env := newTestEnv(t)
	mod := env.addModule(t, "Heart failure", 0)
	entries := learnTask(t, env, mod.ID, 1)
	svc := newStatusSvc(env, nil)

	err := svc.SetTaskStatus(context.Background(), env.course.ID,
		[]string{entries[0].ID, "gone"}, domain.StatusCompleted)

	var stale *domain.StaleEntryError
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, []string{"gone"}, stale.EntryIDs)
	assert.Equal(t, domain.StatusPending, env.reload(t, entries[0].ID).Status)
}

func TestSetTaskStatus_OtherCourseEntryIsStale(t *testing.T) {
	env := newTestEnv(t)
	other := testutil.NewTestCourse("Neurology")
	require.NoError(t, env.courses.Create(context.Background(), other))
	foreign := testutil.NewTestEntry(other.ID)
	require.NoError(t, env.entries.Create(context.Background(), foreign))
	svc := newStatusSvc(env, nil)

	err := svc.SetTaskStatus(context.Background(), env.course.ID, []string{foreign.ID}, domain.StatusCompleted)

	var stale *domain.StaleEntryError
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, domain.StatusPending, env.reload(t, foreign.ID).Status)
}

func TestSetTaskStatus_RejectsInvalidRequests(t *testing.T) {
	env := newTestEnv(t)
	e := env.addEntry(t)
	svc := newStatusSvc(env, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		courseID string
		ids      []string
		status   domain.EntryStatus
		field    string
	}{
		{"skipped", env.course.ID, []string{e.ID}, domain.StatusSkipped, "status"},
		{"unknown status", env.course.ID, []string{e.ID}, "DONE", "status"},
		{"no entries", env.course.ID, nil, domain.StatusCompleted, "entry_ids"},
		{"only blank ids", env.course.ID, []string{"", ""}, domain.StatusCompleted, "entry_ids"},
		{"no course", "", []string{e.ID}, domain.StatusCompleted, "course_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SetTaskStatus(ctx, tt.courseID, tt.ids, tt.status)
			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
	assert.Equal(t, 1, env.reload(t, e.ID).Version)
}

func TestSetTaskStatus_StartLeavesCompletedEntries(t *testing.T) {
	env := newTestEnv(t)
	mod := env.addModule(t, "Heart failure", 0)
	entries := learnTask(t, env, mod.ID, 2)
	svc := newStatusSvc(env, nil)
	ctx := context.Background()

	require.NoError(t, svc.UpdateEntryStatus(ctx, env.course.ID, entries[0].ID, domain.StatusCompleted))
	require.NoError(t, svc.SetTaskStatus(ctx, env.course.ID, ids(entries), domain.StatusInProgress))

	assert.Equal(t, domain.StatusCompleted, env.reload(t, entries[0].ID).Status)
	assert.Equal(t, domain.StatusInProgress, env.reload(t, entries[1].ID).Status)
}

func TestSetTaskStatus_StartCompletedTaskRejected(t *testing.T) {
	env := newTestEnv(t)
	mod := env.addModule(t, "Heart failure", 0)
	entries := learnTask(t, env, mod.ID, 2)
	svc := newStatusSvc(env, nil)
	ctx := context.Background()

	require.NoError(t, svc.SetTaskStatus(ctx, env.course.ID, ids(entries), domain.StatusCompleted))
	err := svc.SetTaskStatus(ctx, env.course.ID, ids(entries), domain.StatusInProgress)

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Message, "already completed")
	for _, e := range entries {
		assert.Equal(t, domain.StatusCompleted, env.reload(t, e.ID).Status)
	}
}

func TestSetTaskStatus_SkippedEntryBlocksBatch(t *testing.T) {
	env := newTestEnv(t)
	pending := env.addEntry(t)
	skipped := env.addEntry(t, testutil.WithStatus(domain.StatusSkipped))
	svc := newStatusSvc(env, nil)

	err := svc.SetTaskStatus(context.Background(), env.course.ID,
		[]string{pending.ID, skipped.ID}, domain.StatusCompleted)

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, domain.StatusPending, env.reload(t, pending.ID).Status)
	assert.Equal(t, domain.StatusSkipped, env.reload(t, skipped.ID).Status)
}

func TestSetTaskStatus_InvalidatesCachedPlan(t *testing.T) {
	env := newTestEnv(t)
	env.addSettings(t, testutil.Day(2024, 1, 1), testutil.Day(2024, 1, 28))
	mod := env.addModule(t, "Heart failure", 0)
	entries := learnTask(t, env, mod.ID, 2)
	cache := NewPlanCache(time.Hour)
	plans := NewPlanService(env.entries, env.settings, env.modules, cache, PlanConfig{})
	svc := newStatusSvc(env, cache)
	ctx := context.Background()

	before, err := plans.LoadPlan(ctx, env.course.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, before.Weeks[0].Tasks[0].Status)
	require.Equal(t, 1, cache.Len())

	require.NoError(t, svc.SetTaskStatus(ctx, env.course.ID, ids(entries), domain.StatusCompleted))
	assert.Equal(t, 0, cache.Len())

	after, err := plans.LoadPlan(ctx, env.course.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, after.Weeks[0].Tasks[0].Status)
	assert.Equal(t, 1, after.Weeks[0].CompletedTasks)
}

func TestSetTaskStatus_NoChangeKeepsCache(t *testing.T) {
	env := newTestEnv(t)
	env.addSettings(t, testutil.Day(2024, 1, 1), testutil.Day(2024, 1, 28))
	e := env.addEntry(t, testutil.WithDate(testutil.Day(2024, 1, 2)))
	cache := NewPlanCache(time.Hour)
	plans := NewPlanService(env.entries, env.settings, env.modules, cache, PlanConfig{})
	svc := newStatusSvc(env, cache)
	ctx := context.Background()

	_, err := plans.LoadPlan(ctx, env.course.ID)
	require.NoError(t, err)
	require.NoError(t, svc.SetTaskStatus(ctx, env.course.ID, []string{e.ID}, domain.StatusPending))
	assert.Equal(t, 1, cache.Len())
}

func TestSetTaskStatus_ConcurrentWritesOnOneTask(t *testing.T) {
	env := newTestEnv(t)
	mod := env.addModule(t, "Heart failure", 0)
	entries := learnTask(t, env, mod.ID, 2)
	obs := &recordingObserver{}
	svc := newStatusSvc(env, nil, obs)
	ctx := context.Background()

	const workers = 12
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		status := domain.StatusCompleted
		if i%2 == 1 {
			status = domain.StatusPending
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.SetTaskStatus(ctx, env.course.ID, ids(entries), status)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	changed := 0
	for _, ev := range obs.byName("set-task-status") {
		changed += ev.Fields["changed"].(int)
	}
	first, second := env.reload(t, entries[0].ID), env.reload(t, entries[1].ID)
	assert.Equal(t, first.Status, second.Status, "entries of one task must never diverge")
	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, changed, (first.Version-1)+(second.Version-1), "every write must be counted exactly once")
}
