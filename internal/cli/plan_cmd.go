package cli

import (
	"fmt"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newPlanCmd(a *App) *cobra.Command {
	var week int

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the plan week by week",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			course, err := resolveCourseFlag(cmd, a)
			if err != nil {
				return err
			}
			resp, err := a.Plans.LoadPlan(ctx, course.ID)
			if err != nil {
				return err
			}

			if week > 0 {
				if week > len(resp.Weeks) {
					return fmt.Errorf("week %d does not exist (the plan has %d weeks)", week, len(resp.Weeks))
				}
				narrowed := *resp
				narrowed.Weeks = resp.Weeks[week-1 : week]
				resp = &narrowed
			}

			titles, err := moduleTitles(cmd, a, course.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatWeeks(resp, titles, a.now()))
			return nil
		},
	}

	cmd.Flags().IntVar(&week, "week", 0, "Show only this week number")

	return cmd
}

func moduleTitles(cmd *cobra.Command, a *App, courseID string) (map[string]string, error) {
	modules, err := a.Modules.ListByCourse(cmd.Context(), courseID)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(modules))
	for _, m := range modules {
		titles[m.ID] = m.Title
	}
	return titles, nil
}

func newBehindCmd(a *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "behind",
		Short: "Check whether past weeks left modules unlearned",
		RunE: func(cmd *cobra.Command, args []string) error {
			course, err := resolveCourseFlag(cmd, a)
			if err != nil {
				return err
			}
			today, err := dayOrToday(a, date)
			if err != nil {
				return err
			}
			resp, err := a.Plans.CheckBehindSchedule(cmd.Context(), course.ID, today)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBehind(resp))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Check as of this day (YYYY-MM-DD, default today)")

	return cmd
}

func newTodayCmd(a *App) *cobra.Command {
	var (
		date        string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the day's sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			course, err := resolveCourseFlag(cmd, a)
			if err != nil {
				return err
			}
			day, err := dayOrToday(a, date)
			if err != nil {
				return err
			}

			if interactive {
				if !a.interactive() {
					return fmt.Errorf("--interactive needs a terminal")
				}
				m := newTodayModel(ctx, a.Plans, a.Status, course.ID, day)
				_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout())).Run()
				return err
			}

			resp, err := a.Plans.LoadTodaysPlan(ctx, course.ID, day)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatToday(resp))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to show (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Tick tasks off in a checklist")

	return cmd
}

// taskEntryIDs expands entry ids to every entry of the tasks they belong to.
// Entries outside the plan's weeks stand alone.
func taskEntryIDs(plan *app.PlanResponse, ids []string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range ids {
		found := false
		for _, w := range plan.Weeks {
			for _, t := range w.Tasks {
				for _, eid := range t.EntryIDs {
					if eid == id {
						found = true
						break
					}
				}
				if found {
					for _, eid := range t.EntryIDs {
						add(eid)
					}
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			add(id)
		}
	}
	return out
}
