package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
)

// DBTX is the query surface repositories need. *sql.DB and *sql.Tx both
// satisfy it, so a repository built on a transaction joins that transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// UnitOfWork runs fn inside one transaction: every write fn makes commits
// together or not at all. fn may run more than once and must not keep state
// between attempts.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// MaxTxAttempts bounds how often a transaction is replayed after SQLite
// reported the database busy.
const MaxTxAttempts = 30

// SQLiteUnitOfWork runs transactions against a SQLite pool. A transaction
// that started as a reader and lost the race to upgrade to a writer fails
// with SQLITE_BUSY no matter the busy timeout; it is rolled back and replayed.
type SQLiteUnitOfWork struct {
	db      *sql.DB
	backoff func(attempt int) time.Duration
}

func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db, backoff: defaultBackoff}
}

func defaultBackoff(attempt int) time.Duration {
	return time.Duration(min(1<<attempt, 50)) * time.Millisecond
}

func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	var err error
	for attempt := 0; attempt < MaxTxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w (after %d attempts: %v)", ctx.Err(), attempt, err)
			case <-time.After(u.backoff(attempt)):
			}
		}
		err = u.attempt(ctx, fn)
		if err == nil || !IsBusy(err) {
			return err
		}
	}
	return fmt.Errorf("database stayed busy after %d attempts: %w", MaxTxAttempts, err)
}

func (u *SQLiteUnitOfWork) attempt(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SQLite primary result codes for lock contention.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// IsBusy reports whether err is SQLite lock contention, which is safe to retry
// once the transaction has been rolled back.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code() & 0xff
		return code == sqliteBusy || code == sqliteLocked
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
