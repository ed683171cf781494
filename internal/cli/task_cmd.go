package cli

import (
	"fmt"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Change the status of a task",
		Long: "Change the status of a task. Each ENTRY names one plan entry by id or id\n" +
			"prefix; every entry of the same task in that week changes with it unless\n" +
			"--entry-only is given. --all-weeks extends it to the task in every week.",
	}

	cmd.AddCommand(
		newTaskStatusCmd(app, "start", "Mark a task in progress", domain.StatusInProgress),
		newTaskStatusCmd(app, "complete", "Mark a task completed", domain.StatusCompleted),
		newTaskStatusCmd(app, "reset", "Put a task back to pending", domain.StatusPending),
	)

	return cmd
}

func newTaskStatusCmd(app *App, use, short string, status domain.EntryStatus) *cobra.Command {
	var entryOnly, allWeeks bool

	cmd := &cobra.Command{
		Use:   use + " ENTRY...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
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
			ids, err := resolveEntryIDs(entries, args)
			if err != nil {
				return err
			}

			switch {
			case entryOnly:
			case allWeeks:
				ids, err = identityEntryIDs(cmd, app, course.ID, entries, ids)
				if err != nil {
					return err
				}
			default:
				plan, err := app.Plans.LoadPlan(ctx, course.ID)
				if err != nil {
					return err
				}
				ids = taskEntryIDs(plan, ids)
			}

			if err := app.Status.SetTaskStatus(ctx, course.ID, ids, status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d %s\n", status, len(ids), entryNoun(len(ids)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&entryOnly, "entry-only", false, "Change only the named entries")
	cmd.Flags().BoolVar(&allWeeks, "all-weeks", false, "Change the task in every week of the plan")
	cmd.MarkFlagsMutuallyExclusive("entry-only", "all-weeks")

	return cmd
}

func entryNoun(n int) string {
	if n == 1 {
		return "entry"
	}
	return "entries"
}

// identityEntryIDs expands ids to every entry sharing a task identity with
// one of them, across the whole plan.
func identityEntryIDs(cmd *cobra.Command, app *App, courseID string, entries []*domain.PlanEntry, ids []string) ([]string, error) {
	byID := make(map[string]*domain.PlanEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	var out []string
	seen := make(map[string]bool)
	done := make(map[domain.TaskIdentity]bool)
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
			continue
		}
		identity := e.Identity()
		if done[identity] {
			continue
		}
		done[identity] = true
		task, err := app.Entries.ListTask(cmd.Context(), courseID, identity)
		if err != nil {
			return nil, err
		}
		for _, t := range task {
			if !seen[t.ID] {
				seen[t.ID] = true
				out = append(out, t.ID)
			}
		}
	}
	return out, nil
}
