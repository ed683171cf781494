package domain

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks struct tags on a domain value and converts the first failure
// into a ValidationError.
func Validate(v any) error {
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Field:   toSnake(fe.Field()),
			Message: describeTag(fe),
		}
	}
	return &ValidationError{Message: err.Error()}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required for LEARN entries"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), fe.Value())
	case "gtefield":
		return fmt.Sprintf("must not be less than %s", toSnake(fe.Param()))
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidateEntry validates a plan entry, including the LEARN/module rule for
// entries whose module id is set but empty.
func ValidateEntry(e *PlanEntry) error {
	if err := Validate(e); err != nil {
		return err
	}
	if e.TaskType == TaskLearn && e.ModuleKey() == "" {
		return &ValidationError{Field: "module_id", Message: "is required for LEARN entries"}
	}
	return nil
}

// ValidateSettings validates course settings including the date ordering.
func ValidateSettings(s *CourseSettings) error {
	if err := Validate(s); err != nil {
		return err
	}
	if Day(s.Week1StartDate).After(Day(s.ExamDate)) {
		return &ValidationError{Field: "week1_start_date", Message: "must not be after the exam date"}
	}
	return nil
}
