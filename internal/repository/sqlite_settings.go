package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
)

// SQLiteSettingsRepo implements SettingsRepo using a SQLite database.
type SQLiteSettingsRepo struct {
	db db.DBTX
}

// NewSQLiteSettingsRepo creates a new SQLiteSettingsRepo.
func NewSQLiteSettingsRepo(db db.DBTX) *SQLiteSettingsRepo {
	return &SQLiteSettingsRepo{db: db}
}

func (r *SQLiteSettingsRepo) Get(ctx context.Context, courseID string) (*domain.CourseSettings, error) {
	query := `SELECT course_id, orientation_completed, weekly_hours_min, weekly_hours_max,
		week1_start_date, exam_date, updated_at
		FROM course_settings WHERE course_id = ?`

	var s domain.CourseSettings
	var orientation int
	var startStr, examStr, updatedAtStr string
	err := r.db.QueryRowContext(ctx, query, courseID).Scan(
		&s.CourseID, &orientation, &s.WeeklyHoursMin, &s.WeeklyHoursMax,
		&startStr, &examStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("course settings: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning course settings: %w", err)
	}

	s.OrientationCompleted = intToBool(orientation)
	if s.Week1StartDate, err = time.Parse(domain.DayLayout, startStr); err != nil {
		return nil, fmt.Errorf("parsing week1_start_date: %w", err)
	}
	if s.ExamDate, err = time.Parse(domain.DayLayout, examStr); err != nil {
		return nil, fmt.Errorf("parsing exam_date: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &s, nil
}

func (r *SQLiteSettingsRepo) Upsert(ctx context.Context, s *domain.CourseSettings) error {
	query := `INSERT INTO course_settings (course_id, orientation_completed, weekly_hours_min, weekly_hours_max,
			week1_start_date, exam_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(course_id) DO UPDATE SET
			orientation_completed = excluded.orientation_completed,
			weekly_hours_min = excluded.weekly_hours_min,
			weekly_hours_max = excluded.weekly_hours_max,
			week1_start_date = excluded.week1_start_date,
			exam_date = excluded.exam_date,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		s.CourseID,
		boolToInt(s.OrientationCompleted),
		s.WeeklyHoursMin,
		s.WeeklyHoursMax,
		domain.Day(s.Week1StartDate).Format(domain.DayLayout),
		domain.Day(s.ExamDate).Format(domain.DayLayout),
		s.UpdatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("upserting course settings: %w", err)
	}
	return nil
}
