package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/alexanderramin/studyplan/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db       *sql.DB
	courses  *repository.SQLiteCourseRepo
	modules  *repository.SQLiteModuleRepo
	settings *repository.SQLiteSettingsRepo
	entries  *repository.SQLitePlanEntryRepo
	course   *domain.Course
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	env := &testEnv{
		db:       database,
		courses:  repository.NewSQLiteCourseRepo(database),
		modules:  repository.NewSQLiteModuleRepo(database),
		settings: repository.NewSQLiteSettingsRepo(database),
		entries:  repository.NewSQLitePlanEntryRepo(database),
		course:   testutil.NewTestCourse("Cardiology"),
	}
	require.NoError(t, env.courses.Create(context.Background(), env.course))
	return env
}

func (env *testEnv) addModule(t *testing.T, title string, order int) *domain.Module {
	t.Helper()
	m := testutil.NewTestModule(env.course.ID, title, order)
	require.NoError(t, env.modules.Create(context.Background(), m))
	return m
}

func (env *testEnv) addEntry(t *testing.T, opts ...testutil.EntryOption) *domain.PlanEntry {
	t.Helper()
	e := testutil.NewTestEntry(env.course.ID, opts...)
	require.NoError(t, env.entries.Create(context.Background(), e))
	return e
}

func (env *testEnv) addSettings(t *testing.T, start, exam time.Time, opts ...testutil.SettingsOption) {
	t.Helper()
	require.NoError(t, env.settings.Upsert(context.Background(), testutil.NewTestSettings(env.course.ID, start, exam, opts...)))
}

func (env *testEnv) reload(t *testing.T, id string) *domain.PlanEntry {
	t.Helper()
	e, err := env.entries.GetByID(context.Background(), id)
	require.NoError(t, err)
	return e
}

// recordingObserver keeps every use-case event for assertions.
type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) byName(name string) []UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []UseCaseEvent
	for _, e := range o.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func (o *recordingObserver) last(t *testing.T, name string) UseCaseEvent {
	t.Helper()
	events := o.byName(name)
	require.NotEmpty(t, events, "no %s event recorded", name)
	return events[len(events)-1]
}
