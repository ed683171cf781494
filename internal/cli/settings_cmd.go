package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/spf13/cobra"
)

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change a course's planning settings",
	}

	cmd.AddCommand(
		newSettingsShowCmd(app),
		newSettingsSetCmd(app),
	)

	return cmd
}

func newSettingsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the course settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			course, err := resolveCourseFlag(cmd, app)
			if err != nil {
				return err
			}
			s, err := app.Settings.Get(cmd.Context(), course.ID)
			if errors.Is(err, repository.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s has no settings yet (use 'studyplan settings set').\n", course.Name)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSettings(s))
			return nil
		},
	}
}

func newSettingsSetCmd(app *App) *cobra.Command {
	var start, exam string
	var hoursMin, hoursMax int
	var orientation bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update the course settings",
		Long: "Create or update the course settings. Only the flags given are changed;\n" +
			"the week 1 start and exam dates are required the first time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			course, err := resolveCourseFlag(cmd, app)
			if err != nil {
				return err
			}

			s, err := app.Settings.Get(ctx, course.ID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				if start == "" || exam == "" {
					return fmt.Errorf("--start and --exam are required for a course without settings")
				}
				s = &domain.CourseSettings{CourseID: course.ID}
			case err != nil:
				return err
			}

			flags := cmd.Flags()
			if start != "" {
				if s.Week1StartDate, err = domain.ParseDay(start); err != nil {
					return fmt.Errorf("invalid start date %q: %w", start, err)
				}
			}
			if exam != "" {
				if s.ExamDate, err = domain.ParseDay(exam); err != nil {
					return fmt.Errorf("invalid exam date %q: %w", exam, err)
				}
			}
			if flags.Changed("hours-min") {
				s.WeeklyHoursMin = hoursMin
			}
			if flags.Changed("hours-max") {
				s.WeeklyHoursMax = hoursMax
			}
			if flags.Changed("orientation-done") {
				s.OrientationCompleted = orientation
			}

			if err := app.Settings.Upsert(ctx, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved settings for %s\n", course.Name)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSettings(s))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Week 1 start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&exam, "exam", "", "Exam date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&hoursMin, "hours-min", 0, "Minimum weekly study hours")
	cmd.Flags().IntVar(&hoursMax, "hours-max", 0, "Maximum weekly study hours")
	cmd.Flags().BoolVar(&orientation, "orientation-done", false, "Mark the orientation as completed")

	return cmd
}
