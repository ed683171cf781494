package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/alexanderramin/studyplan/internal/cli"
	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/logger"
	"github.com/alexanderramin/studyplan/internal/metrics"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/alexanderramin/studyplan/internal/service"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var database *sql.DB

	app := &cli.App{}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Storage and services are built once the configuration is known.
	app.Wire = func(app *cli.App) error {
		cfg := app.Config

		log, err := logger.New(cfg.Log)
		if err != nil {
			return err
		}
		app.Logger = log

		database, err = db.OpenDB(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		log.Debug("database opened", zap.String("path", cfg.DB.Path))

		courseRepo := repository.NewSQLiteCourseRepo(database)
		moduleRepo := repository.NewSQLiteModuleRepo(database)
		settingsRepo := repository.NewSQLiteSettingsRepo(database)
		entryRepo := repository.NewSQLitePlanEntryRepo(database)
		uow := db.NewSQLiteUnitOfWork(database)

		cache := service.NewPlanCache(cfg.Cache.TTL)
		app.Metrics = metrics.New()
		observers := []service.UseCaseObserver{
			service.NewZapUseCaseObserver(log),
			app.Metrics,
		}

		app.Courses = service.NewCourseService(courseRepo)
		app.Modules = service.NewModuleService(moduleRepo, courseRepo)
		app.Settings = service.NewSettingsService(settingsRepo, cache, observers...)
		app.Entries = service.NewEntryService(entryRepo, uow, cache, observers...)
		app.Plans = service.NewPlanService(entryRepo, settingsRepo, moduleRepo, cache, service.PlanConfig{
			Buckets: cfg.BucketPolicy(),
			Behind:  cfg.BehindPolicy(),
			Logger:  log,
		}, observers...)
		app.Status = service.NewStatusService(entryRepo, uow, cache, observers...)
		return nil
	}

	err := cli.NewRootCmd(app).Execute()

	if database != nil {
		database.Close()
	}
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
	return err
}
