package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/alexanderramin/studyplan/internal/scheduler"
	"github.com/spf13/cobra"
)

func newCourseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "Manage courses",
	}

	cmd.AddCommand(
		newCourseAddCmd(app),
		newCourseListCmd(app),
		newCourseShowCmd(app),
	)

	return cmd
}

func newCourseAddCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a course",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &domain.Course{Name: name}
			if err := app.Courses.Create(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created course %s (%s)\n", c.Name, c.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Course name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newCourseListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			courses, err := app.Courses.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(courses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No courses found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCourseList(courses))
			return nil
		},
	}
}

func newCourseShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show a course with its settings and modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			course, err := resolveCourseFlag(cmd, app)
			if err != nil {
				return err
			}

			overview := formatter.CourseOverview{Course: course, LearnStatus: map[string]domain.EntryStatus{}}
			overview.Settings, err = app.Settings.Get(ctx, course.ID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			if overview.Modules, err = app.Modules.ListByCourse(ctx, course.ID); err != nil {
				return err
			}

			entries, err := app.Entries.ListByCourse(ctx, course.ID)
			if err != nil {
				return err
			}
			byModule := make(map[string][]domain.EntryStatus)
			for _, e := range entries {
				if e.TaskType == domain.TaskLearn && e.ModuleKey() != "" {
					byModule[e.ModuleKey()] = append(byModule[e.ModuleKey()], e.Status)
				}
			}
			for id, learn := range byModule {
				overview.LearnStatus[id] = scheduler.CollapseStatus(learn)
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatCourse(overview))
			return nil
		},
	}
}
