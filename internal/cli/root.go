package cli

import (
	"time"

	"github.com/alexanderramin/studyplan/internal/config"
	"github.com/alexanderramin/studyplan/internal/metrics"
	"github.com/alexanderramin/studyplan/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App holds the services used by CLI commands.
type App struct {
	Courses  service.CourseService
	Modules  service.ModuleService
	Settings service.SettingsService
	Entries  service.EntryService
	Plans    service.PlanService
	Status   service.StatusService

	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Config  *config.Config

	// Wire is called once the configuration is loaded, before any command
	// runs, to open storage and fill in the services. Tests leave it nil and
	// set the services directly.
	Wire func(app *App) error

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool
	// Now is the clock used for "today". Defaults to time.Now.
	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "studyplan" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "studyplan",
		Short:         "Study plan progress tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd, configFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default: ./studyplan.yaml or ~/.studyplan/studyplan.yaml)")
	flags.String("db", "", "SQLite database path")
	flags.String("course", "", "Course id, id prefix or name")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newCourseCmd(app),
		newModuleCmd(app),
		newSettingsCmd(app),
		newEntryCmd(app),
		newPlanCmd(app),
		newTodayCmd(app),
		newTaskCmd(app),
		newBehindCmd(app),
		newServeMetricsCmd(app),
	)

	return root
}

func (a *App) setup(cmd *cobra.Command, configFile string) error {
	if a.Config == nil {
		cfg, err := config.Load(configFile, cmd.Root().PersistentFlags())
		if err != nil {
			return err
		}
		a.Config = cfg
	}
	if a.Wire != nil {
		wire := a.Wire
		a.Wire = nil
		if err := wire(a); err != nil {
			return err
		}
	}
	if a.Logger == nil {
		a.Logger = zap.NewNop()
	}
	return nil
}
