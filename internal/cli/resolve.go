package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/spf13/cobra"
)

// courseInput returns the --course flag, falling back to the configured default.
func courseInput(cmd *cobra.Command, app *App) string {
	if v, err := cmd.Flags().GetString("course"); err == nil && v != "" {
		return v
	}
	if app.Config != nil {
		return app.Config.Course
	}
	return ""
}

// resolveCourse finds the course named by input, which can be:
//   - empty, when exactly one course exists
//   - a full id or a unique id prefix
//   - a course name (case-insensitive)
func resolveCourse(ctx context.Context, app *App, input string) (*domain.Course, error) {
	courses, err := app.Courses.List(ctx)
	if err != nil {
		return nil, err
	}

	if input == "" {
		switch len(courses) {
		case 0:
			return nil, fmt.Errorf("no course yet (create one with 'studyplan course add')")
		case 1:
			return courses[0], nil
		default:
			return nil, fmt.Errorf("%d courses exist; pick one with --course", len(courses))
		}
	}

	for _, c := range courses {
		if c.ID == input {
			return c, nil
		}
	}
	for _, c := range courses {
		if strings.EqualFold(c.Name, input) {
			return c, nil
		}
	}

	var matches []*domain.Course
	for _, c := range courses {
		if strings.HasPrefix(c.ID, input) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("course not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("course id prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func resolveCourseFlag(cmd *cobra.Command, app *App) (*domain.Course, error) {
	return resolveCourse(cmd.Context(), app, courseInput(cmd, app))
}

// resolveModuleID accepts a module id, a unique id prefix, its 1-based
// position in the course, or its title.
func resolveModuleID(ctx context.Context, app *App, courseID, input string) (string, error) {
	modules, err := app.Modules.ListByCourse(ctx, courseID)
	if err != nil {
		return "", err
	}
	if pos, err := strconv.Atoi(input); err == nil {
		if pos < 1 || pos > len(modules) {
			return "", fmt.Errorf("module #%d not found (course has %d modules)", pos, len(modules))
		}
		return modules[pos-1].ID, nil
	}

	var matches []string
	for _, m := range modules {
		if m.ID == input || strings.EqualFold(m.Title, input) {
			return m.ID, nil
		}
		if strings.HasPrefix(m.ID, input) {
			matches = append(matches, m.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("module not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("module id prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveEntryIDs expands each input, a full entry id or a unique prefix,
// among entries.
func resolveEntryIDs(entries []*domain.PlanEntry, inputs []string) ([]string, error) {
	ids := make([]string, 0, len(inputs))
	for _, in := range inputs {
		var matches []string
		for _, e := range entries {
			if e.ID == in {
				matches = []string{e.ID}
				break
			}
			if strings.HasPrefix(e.ID, in) {
				matches = append(matches, e.ID)
			}
		}
		switch len(matches) {
		case 0:
			return nil, fmt.Errorf("entry not found: %q", in)
		case 1:
			ids = append(ids, matches[0])
		default:
			return nil, fmt.Errorf("entry id prefix %q is ambiguous (%d matches)", in, len(matches))
		}
	}
	return ids, nil
}

// dayOrToday parses a --date value, defaulting to the app's today.
func dayOrToday(app *App, s string) (time.Time, error) {
	if s == "" {
		return domain.Day(app.now()), nil
	}
	return domain.ParseDay(s)
}
