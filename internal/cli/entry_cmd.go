package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/spf13/cobra"
)

func newEntryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Add, list or clear plan entries",
	}

	cmd.AddCommand(
		newEntryAddCmd(app),
		newEntryListCmd(app),
		newEntryClearCmd(app),
	)

	return cmd
}

// sessionAliases are the short names accepted by --session.
var sessionAliases = map[string]domain.SessionBucket{
	"short":       domain.BucketSessionCourte,
	"long":        domain.BucketSessionLongue,
	"extra-short": domain.BucketSessionCourteSupp,
	"extra-long":  domain.BucketSessionLongueSupp,
}

func parseSession(s string) (domain.SessionBucket, error) {
	if s == "" {
		return domain.BucketNone, nil
	}
	if b, ok := sessionAliases[strings.ToLower(s)]; ok {
		return b, nil
	}
	if domain.ValidSessionBuckets[s] {
		return domain.SessionBucket(s), nil
	}
	return "", fmt.Errorf("unknown session %q (use short, long, extra-short or extra-long)", s)
}

func newEntryAddCmd(app *App) *cobra.Command {
	var date, taskType, module, description, session string
	var blocks int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a plan entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			course, err := resolveCourseFlag(cmd, app)
			if err != nil {
				return err
			}

			day, err := domain.ParseDay(date)
			if err != nil {
				return err
			}
			bucket, err := parseSession(session)
			if err != nil {
				return err
			}

			e := &domain.PlanEntry{
				CourseID:        course.ID,
				UserID:          course.UserID,
				Date:            day,
				TaskType:        domain.TaskType(strings.ToUpper(taskType)),
				Description:     description,
				EstimatedBlocks: blocks,
				SessionBucket:   bucket,
			}
			if module != "" {
				moduleID, err := resolveModuleID(ctx, app, course.ID, module)
				if err != nil {
					return err
				}
				e.ModuleID = &moduleID
			}

			if err := app.Entries.Create(ctx, e); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q on %s (%s)\n",
				e.TaskType, e.Description, e.Date.Format(domain.DayLayout), e.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day of the entry (YYYY-MM-DD)")
	cmd.Flags().StringVar(&taskType, "type", string(domain.TaskReview), "Task type: LEARN, REVIEW or PRACTICE")
	cmd.Flags().StringVar(&module, "module", "", "Module id, position or title (required for LEARN)")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().IntVar(&blocks, "blocks", 1, "Estimated 25-minute blocks")
	cmd.Flags().StringVar(&session, "session", "", "Session: short, long, extra-short or extra-long")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newEntryListCmd(app *App) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plan entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			course, err := resolveCourseFlag(cmd, app)
			if err != nil {
				return err
			}

			var entries []*domain.PlanEntry
			if from == "" && to == "" {
				entries, err = app.Entries.ListByCourse(ctx, course.ID)
			} else {
				entries, err = listRange(cmd, app, course.ID, from, to)
			}
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entries found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEntryList(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD)")

	return cmd
}

func listRange(cmd *cobra.Command, app *App, courseID, from, to string) ([]*domain.PlanEntry, error) {
	if from == "" || to == "" {
		return nil, fmt.Errorf("--from and --to go together")
	}
	fromDay, err := domain.ParseDay(from)
	if err != nil {
		return nil, err
	}
	toDay, err := domain.ParseDay(to)
	if err != nil {
		return nil, err
	}
	return app.Entries.ListByCourseRange(cmd.Context(), courseID, fromDay, toDay)
}

func newEntryClearCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry of a course",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			course, err := resolveCourseFlag(cmd, app)
			if err != nil {
				return err
			}
			entries, err := app.Entries.ListByCourse(ctx, course.ID)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entries to clear.")
				return nil
			}

			if !yes {
				if !app.interactive() {
					return fmt.Errorf("refusing to clear %d entries without --yes", len(entries))
				}
				confirmed := false
				form := confirmForm(
					fmt.Sprintf("Delete all %d entries of %s?", len(entries), course.Name),
					"Statuses are lost as well.",
					&confirmed,
				)
				if err := form.RunWithContext(ctx); err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			if err := app.Entries.ReplacePlan(ctx, course.ID, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d entries.\n", len(entries))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation")

	return cmd
}
