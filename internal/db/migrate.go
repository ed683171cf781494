package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent so the
// whole list is replayed on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE has no IF NOT EXISTS form in SQLite.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateNormalizeLegacyStatus(db); err != nil {
		return fmt.Errorf("normalizing plan entry status: %w", err)
	}
	return nil
}

// migrateNormalizeLegacyStatus rewrites lower-case status values written by
// early builds into the canonical upper-case form. Idempotent.
func migrateNormalizeLegacyStatus(db *sql.DB) error {
	ctx := context.Background()

	var count int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM plan_entries WHERE status != UPPER(status)`).Scan(&count); err != nil {
		return fmt.Errorf("counting legacy status rows: %w", err)
	}
	if count == 0 {
		return nil
	}
	if _, err := db.ExecContext(ctx,
		`UPDATE plan_entries SET status = UPPER(status) WHERE status != UPPER(status)`); err != nil {
		return fmt.Errorf("updating legacy status rows: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS courses (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		user_id    TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS modules (
		id          TEXT PRIMARY KEY,
		course_id   TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_modules_course ON modules(course_id, order_index)`,

	`CREATE TABLE IF NOT EXISTS course_settings (
		course_id             TEXT PRIMARY KEY REFERENCES courses(id) ON DELETE CASCADE,
		orientation_completed INTEGER NOT NULL DEFAULT 0,
		weekly_hours_min      INTEGER NOT NULL DEFAULT 0,
		weekly_hours_max      INTEGER NOT NULL DEFAULT 0,
		week1_start_date      TEXT NOT NULL,
		exam_date             TEXT NOT NULL,
		updated_at            TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS plan_entries (
		id               TEXT PRIMARY KEY,
		course_id        TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		user_id          TEXT NOT NULL DEFAULT '',
		date             TEXT NOT NULL,
		task_type        TEXT NOT NULL
		                 CHECK(task_type IN ('LEARN','REVIEW','PRACTICE')),
		module_id        TEXT REFERENCES modules(id) ON DELETE SET NULL,
		description      TEXT NOT NULL,
		estimated_blocks INTEGER NOT NULL CHECK(estimated_blocks >= 1),
		status           TEXT NOT NULL DEFAULT 'PENDING',
		session_bucket   TEXT NOT NULL DEFAULT '',
		completed_at     TEXT,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_plan_entries_course_date ON plan_entries(course_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_entries_identity ON plan_entries(course_id, task_type, module_id)`,

	// Optimistic concurrency counter, bumped on every status write.
	`ALTER TABLE plan_entries ADD COLUMN version INTEGER NOT NULL DEFAULT 1`,
}
