package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/studyplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteCourseRepo(db)
	ctx := context.Background()

	c := testutil.NewTestCourse("Cardiology")
	require.NoError(t, repo.Create(ctx, c))

	fetched, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", fetched.Name)
	assert.Equal(t, "user-test", fetched.UserID)
	assert.WithinDuration(t, c.CreatedAt, fetched.CreatedAt, time.Microsecond)
}

func TestCourseRepo_GetByID_NotFound(t *testing.T) {
	repo := NewSQLiteCourseRepo(testutil.NewTestDB(t))

	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCourseRepo_List(t *testing.T) {
	repo := NewSQLiteCourseRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	first := testutil.NewTestCourse("First")
	second := testutil.NewTestCourse("Second")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, first))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestModuleRepo_ListByCourse_OrderedByIndex(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	courses := NewSQLiteCourseRepo(db)
	modules := NewSQLiteModuleRepo(db)

	c := testutil.NewTestCourse("Course")
	require.NoError(t, courses.Create(ctx, c))

	m2 := testutil.NewTestModule(c.ID, "Neurology", 2)
	m1 := testutil.NewTestModule(c.ID, "Cardiology", 1)
	require.NoError(t, modules.Create(ctx, m2))
	require.NoError(t, modules.Create(ctx, m1))

	list, err := modules.ListByCourse(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Cardiology", list[0].Title)
	assert.Equal(t, "Neurology", list[1].Title)

	fetched, err := modules.GetByID(ctx, m1.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, fetched.CourseID)

	_, err = modules.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettingsRepo_UpsertAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	courses := NewSQLiteCourseRepo(db)
	settings := NewSQLiteSettingsRepo(db)

	c := testutil.NewTestCourse("Course")
	require.NoError(t, courses.Create(ctx, c))

	_, err := settings.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	s := testutil.NewTestSettings(c.ID, testutil.Day(2024, 1, 1), testutil.Day(2024, 3, 1))
	require.NoError(t, settings.Upsert(ctx, s))

	fetched, err := settings.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.Day(2024, 1, 1), fetched.Week1StartDate)
	assert.Equal(t, testutil.Day(2024, 3, 1), fetched.ExamDate)
	assert.False(t, fetched.OrientationCompleted)

	s.ExamDate = testutil.Day(2024, 4, 1)
	s.OrientationCompleted = true
	s.WeeklyHoursMax = 12
	require.NoError(t, settings.Upsert(ctx, s))

	fetched, err = settings.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.Day(2024, 4, 1), fetched.ExamDate)
	assert.True(t, fetched.OrientationCompleted)
	assert.Equal(t, 12, fetched.WeeklyHoursMax)
}
