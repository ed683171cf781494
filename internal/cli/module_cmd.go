package cli

import (
	"fmt"

	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/spf13/cobra"
)

func newModuleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Manage the modules of a course",
	}

	cmd.AddCommand(
		newModuleAddCmd(app),
		newModuleListCmd(app),
	)

	return cmd
}

func newModuleAddCmd(app *App) *cobra.Command {
	var title string
	var order int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a module to a course",
		RunE: func(cmd *cobra.Command, args []string) error {
			course, err := resolveCourseFlag(cmd, app)
			if err != nil {
				return err
			}
			m := &domain.Module{CourseID: course.ID, Title: title, OrderIndex: order}
			if err := app.Modules.Create(cmd.Context(), m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added module %s to %s (%s)\n", m.Title, course.Name, m.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Module title")
	cmd.Flags().IntVar(&order, "order", 0, "Position in the course (default: after the last module)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newModuleListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the modules of a course",
		RunE: func(cmd *cobra.Command, args []string) error {
			course, err := resolveCourseFlag(cmd, app)
			if err != nil {
				return err
			}
			modules, err := app.Modules.ListByCourse(cmd.Context(), course.ID)
			if err != nil {
				return err
			}
			if len(modules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No modules found.")
				return nil
			}

			rows := make([][]string, 0, len(modules))
			for i, m := range modules {
				rows = append(rows, []string{fmt.Sprintf("%d", i+1), formatter.TruncID(m.ID), m.Title})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable([]string{"#", "ID", "TITLE"}, rows))
			return nil
		},
	}
}
