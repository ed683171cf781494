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

// SQLiteModuleRepo implements ModuleRepo using a SQLite database.
type SQLiteModuleRepo struct {
	db db.DBTX
}

// NewSQLiteModuleRepo creates a new SQLiteModuleRepo.
func NewSQLiteModuleRepo(db db.DBTX) *SQLiteModuleRepo {
	return &SQLiteModuleRepo{db: db}
}

func (r *SQLiteModuleRepo) Create(ctx context.Context, m *domain.Module) error {
	query := `INSERT INTO modules (id, course_id, title, order_index, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.CourseID, m.Title, m.OrderIndex, m.CreatedAt.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("inserting module: %w", err)
	}
	return nil
}

func (r *SQLiteModuleRepo) GetByID(ctx context.Context, id string) (*domain.Module, error) {
	query := `SELECT id, course_id, title, order_index, created_at FROM modules WHERE id = ?`
	var m domain.Module
	var createdAtStr string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.CourseID, &m.Title, &m.OrderIndex, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("module: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning module: %w", err)
	}
	if m.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &m, nil
}

func (r *SQLiteModuleRepo) ListByCourse(ctx context.Context, courseID string) ([]*domain.Module, error) {
	query := `SELECT id, course_id, title, order_index, created_at FROM modules
		WHERE course_id = ? ORDER BY order_index, created_at`
	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("listing modules: %w", err)
	}
	defer rows.Close()

	var modules []*domain.Module
	for rows.Next() {
		var m domain.Module
		var createdAtStr string
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.OrderIndex, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning module row: %w", err)
		}
		if m.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		modules = append(modules, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating modules: %w", err)
	}
	return modules, nil
}
