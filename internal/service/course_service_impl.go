package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/google/uuid"
)

type courseService struct {
	courses repository.CourseRepo
}

func NewCourseService(courses repository.CourseRepo) CourseService {
	return &courseService{courses: courses}
}

func (s *courseService) Create(ctx context.Context, c *domain.Course) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := domain.Validate(c); err != nil {
		return err
	}
	return s.courses.Create(ctx, c)
}

func (s *courseService) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	return s.courses.GetByID(ctx, id)
}

func (s *courseService) List(ctx context.Context) ([]*domain.Course, error) {
	return s.courses.List(ctx)
}

type moduleService struct {
	modules repository.ModuleRepo
	courses repository.CourseRepo
}

func NewModuleService(modules repository.ModuleRepo, courses repository.CourseRepo) ModuleService {
	return &moduleService{modules: modules, courses: courses}
}

// Create adds a module to an existing course. A zero OrderIndex appends it
// after the course's current modules.
func (s *moduleService) Create(ctx context.Context, m *domain.Module) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now().UTC()
	if err := domain.Validate(m); err != nil {
		return err
	}
	if _, err := s.courses.GetByID(ctx, m.CourseID); err != nil {
		return fmt.Errorf("looking up course %s: %w", m.CourseID, err)
	}
	if m.OrderIndex == 0 {
		existing, err := s.modules.ListByCourse(ctx, m.CourseID)
		if err != nil {
			return err
		}
		for _, other := range existing {
			if other.OrderIndex >= m.OrderIndex {
				m.OrderIndex = other.OrderIndex + 1
			}
		}
	}
	return s.modules.Create(ctx, m)
}

func (s *moduleService) GetByID(ctx context.Context, id string) (*domain.Module, error) {
	return s.modules.GetByID(ctx, id)
}

func (s *moduleService) ListByCourse(ctx context.Context, courseID string) ([]*domain.Module, error) {
	return s.modules.ListByCourse(ctx, courseID)
}
