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

// planEntryColumns is the canonical SELECT column list for plan_entries.
const planEntryColumns = `id, course_id, user_id, date, task_type, module_id, description,
		estimated_blocks, status, session_bucket, version, completed_at, created_at, updated_at`

// planEntryOrder keeps listings deterministic: by day, then insertion, then id.
const planEntryOrder = ` ORDER BY date, created_at, id`

// SQLitePlanEntryRepo implements PlanEntryRepo using a SQLite database.
type SQLitePlanEntryRepo struct {
	db db.DBTX
}

// NewSQLitePlanEntryRepo creates a new SQLitePlanEntryRepo. Pass a *sql.Tx to
// scope it to a unit of work.
func NewSQLitePlanEntryRepo(db db.DBTX) *SQLitePlanEntryRepo {
	return &SQLitePlanEntryRepo{db: db}
}

func (r *SQLitePlanEntryRepo) Create(ctx context.Context, e *domain.PlanEntry) error {
	if e.Version == 0 {
		e.Version = 1
	}
	query := `INSERT INTO plan_entries (` + planEntryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.CourseID,
		e.UserID,
		domain.Day(e.Date).Format(domain.DayLayout),
		string(e.TaskType),
		nullableStringToValue(e.ModuleID),
		e.Description,
		e.EstimatedBlocks,
		string(e.Status),
		string(e.SessionBucket),
		e.Version,
		nullableTimeToString(e.CompletedAt, timestampLayout),
		e.CreatedAt.UTC().Format(timestampLayout),
		e.UpdatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting plan entry: %w", err)
	}
	return nil
}

func (r *SQLitePlanEntryRepo) GetByID(ctx context.Context, id string) (*domain.PlanEntry, error) {
	query := `SELECT ` + planEntryColumns + ` FROM plan_entries WHERE id = ?`
	return r.scanEntry(r.db.QueryRowContext(ctx, query, id))
}

// ListByIDs returns the entries of the course among ids. Ids that do not exist
// or belong to another course are simply absent from the result.
func (r *SQLitePlanEntryRepo) ListByIDs(ctx context.Context, courseID string, ids []string) ([]*domain.PlanEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, courseID)
	for _, id := range ids {
		args = append(args, id)
	}
	query := `SELECT ` + planEntryColumns + ` FROM plan_entries
		WHERE course_id = ? AND id IN (` + inPlaceholders(len(ids)) + `)` + planEntryOrder
	return r.queryEntries(ctx, "listing plan entries by id", query, args...)
}

func (r *SQLitePlanEntryRepo) ListByCourse(ctx context.Context, courseID string) ([]*domain.PlanEntry, error) {
	query := `SELECT ` + planEntryColumns + ` FROM plan_entries WHERE course_id = ?` + planEntryOrder
	return r.queryEntries(ctx, "listing plan entries by course", query, courseID)
}

// ListByCourseRange returns entries dated within [from, to], both inclusive.
func (r *SQLitePlanEntryRepo) ListByCourseRange(ctx context.Context, courseID string, from, to time.Time) ([]*domain.PlanEntry, error) {
	query := `SELECT ` + planEntryColumns + ` FROM plan_entries
		WHERE course_id = ? AND date >= ? AND date <= ?` + planEntryOrder
	return r.queryEntries(ctx, "listing plan entries by range", query,
		courseID, domain.Day(from).Format(domain.DayLayout), domain.Day(to).Format(domain.DayLayout))
}

func (r *SQLitePlanEntryRepo) ListByIdentity(ctx context.Context, courseID string, id domain.TaskIdentity) ([]*domain.PlanEntry, error) {
	query := `SELECT ` + planEntryColumns + ` FROM plan_entries
		WHERE course_id = ? AND task_type = ? AND COALESCE(module_id, '') = ? AND description = ?` + planEntryOrder
	return r.queryEntries(ctx, "listing plan entries by identity", query,
		courseID, string(id.TaskType), id.ModuleID, id.Description)
}

// UpdateStatus writes the entry's status fields if the stored version still
// equals expectedVersion, and bumps the version on success.
func (r *SQLitePlanEntryRepo) UpdateStatus(ctx context.Context, e *domain.PlanEntry, expectedVersion int) error {
	query := `UPDATE plan_entries
		SET status = ?, completed_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(e.Status),
		nullableTimeToString(e.CompletedAt, timestampLayout),
		e.UpdatedAt.UTC().Format(timestampLayout),
		e.ID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("updating plan entry status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 1 {
		e.Version = expectedVersion + 1
		return nil
	}

	// Nothing matched: either the row is gone or its version moved on.
	if _, err := r.GetByID(ctx, e.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &domain.StaleEntryError{EntryIDs: []string{e.ID}}
		}
		return err
	}
	return &domain.UpdateConflictError{EntryID: e.ID, ExpectedVersion: expectedVersion}
}

// DeleteByCourse removes every entry of a course. Plan regeneration uses it
// before inserting a fresh entry set.
func (r *SQLitePlanEntryRepo) DeleteByCourse(ctx context.Context, courseID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plan_entries WHERE course_id = ?`, courseID)
	if err != nil {
		return 0, fmt.Errorf("deleting plan entries: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLitePlanEntryRepo) queryEntries(ctx context.Context, op, query string, args ...any) ([]*domain.PlanEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []*domain.PlanEntry
	for rows.Next() {
		e, err := r.scanFrom(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plan entries: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLitePlanEntryRepo) scanEntry(row *sql.Row) (*domain.PlanEntry, error) {
	e, err := r.scanFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plan entry: %w", ErrNotFound)
		}
		return nil, err
	}
	return e, nil
}

func (r *SQLitePlanEntryRepo) scanFrom(s rowScanner) (*domain.PlanEntry, error) {
	var e domain.PlanEntry
	var dateStr, taskType, status, bucket, createdAtStr, updatedAtStr string
	var moduleID, completedAtStr sql.NullString

	err := s.Scan(
		&e.ID, &e.CourseID, &e.UserID, &dateStr, &taskType, &moduleID, &e.Description,
		&e.EstimatedBlocks, &status, &bucket, &e.Version, &completedAtStr, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning plan entry: %w", err)
	}

	e.TaskType = domain.TaskType(taskType)
	e.Status = domain.EntryStatus(status)
	e.SessionBucket = domain.SessionBucket(bucket)
	e.ModuleID = stringPtrFromNull(moduleID)
	e.CompletedAt = parseNullableTime(completedAtStr, time.RFC3339Nano)

	var parseErr error
	e.Date, parseErr = time.Parse(domain.DayLayout, dateStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing date: %w", parseErr)
	}
	e.CreatedAt, parseErr = time.Parse(time.RFC3339Nano, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	e.UpdatedAt, parseErr = time.Parse(time.RFC3339Nano, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &e, nil
}
