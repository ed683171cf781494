package domain

import "time"

type Course struct {
	ID        string `validate:"required"`
	Name      string `validate:"required"`
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Module struct {
	ID         string `validate:"required"`
	CourseID   string `validate:"required"`
	Title      string `validate:"required"`
	OrderIndex int
	CreatedAt  time.Time
}

// CourseSettings holds the student's per-course planning parameters.
// The aggregator and the detector only read it.
type CourseSettings struct {
	CourseID             string `validate:"required"`
	OrientationCompleted bool
	WeeklyHoursMin       int       `validate:"gte=0"`
	WeeklyHoursMax       int       `validate:"gtefield=WeeklyHoursMin"`
	Week1StartDate       time.Time `validate:"required"`
	ExamDate             time.Time `validate:"required"`
	UpdatedAt            time.Time
}

// DaysUntilExam returns the whole days from today to the exam (negative once passed).
func (s *CourseSettings) DaysUntilExam(today time.Time) int {
	return int(Day(s.ExamDate).Sub(Day(today)).Hours() / 24)
}
