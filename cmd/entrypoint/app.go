package main

import (
	"log/slog"

	"github.com/taskflow/entrypoint/internal/config"
	"github.com/taskflow/entrypoint/internal/launch"
	"github.com/taskflow/entrypoint/internal/migrate"
)

// newMigrationRunner builds the migration runner selected by configuration.
func newMigrationRunner(cfg *config.Config, logger *slog.Logger) migrate.Runner {
	if cfg.Migrate.Mode == "command" {
		return migrate.NewCommandRunner(cfg.Migrate.CommandArgv(), cfg.Migrate.Timeout, logger)
	}

	return migrate.NewEmbeddedRunner(migrate.EmbeddedConfig{
		DatabaseURL: cfg.Database.EffectiveURL(),
		Command:     migrate.CommandUp,
		Table:       cfg.Migrate.Table,
		WaitTimeout: cfg.Migrate.WaitTimeout,
		Timeout:     cfg.Migrate.Timeout,
	}, logger)
}

// newLauncher builds the hand-off strategy selected by configuration.
func newLauncher(cfg *config.Config, logger *slog.Logger) launch.Launcher {
	if cfg.Launch.Mode == "supervise" {
		return launch.NewSuperviseLauncher(logger)
	}
	return launch.NewExecLauncher(logger)
}
