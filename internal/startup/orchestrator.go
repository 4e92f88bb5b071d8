package startup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/taskflow/entrypoint/internal/launch"
	"github.com/taskflow/entrypoint/internal/migrate"
)

// ErrMigrationFailed marks the single recognized failure kind: the
// migration step did not complete successfully (including a migration tool
// that could not be invoked at all).
var ErrMigrationFailed = errors.New("migration step failed")

// Human-readable phase status lines, written to stdout so container logs
// show phase boundaries even when structured logging is filtered.
const (
	StatusMigrationsBegin = "beginning migrations"
	StatusMigrationsOK    = "✓ migrations applied successfully"
	StatusMigrationsFail  = "✗ migrations failed"
	StatusServiceBegin    = "beginning service start"
)

// Orchestrator gates service launch on migration success.
type Orchestrator struct {
	migrator migrate.Runner
	launcher launch.Launcher
	logger   *slog.Logger

	// stdout carries the phase status lines; swappable for tests.
	stdout io.Writer
}

// New creates an Orchestrator from a migration runner and a launcher.
func New(migrator migrate.Runner, launcher launch.Launcher, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		migrator: migrator,
		launcher: launcher,
		logger:   logger,
		stdout:   os.Stdout,
	}
}

// Run executes the migration step and, only on success, hands the process
// over to the service identified by launchArgv. It returns an error on the
// failure paths; on the success path the launcher does not return.
//
// There is no retry: a failed migration is terminal for this run, and the
// surrounding deployment layer owns restart policy.
func (o *Orchestrator) Run(ctx context.Context, launchArgv []string) error {
	if err := o.Migrate(ctx); err != nil {
		return err
	}

	// Nothing to run after a successful migration is a misconfiguration,
	// not a clean shutdown.
	if len(launchArgv) == 0 {
		o.logger.Error("no service command given after successful migration")
		return fmt.Errorf("%w: supply the service command as trailing arguments", launch.ErrEmptyCommand)
	}

	fmt.Fprintln(o.stdout, StatusServiceBegin)
	o.logger.Info("handing off to service", "argv", launchArgv)

	if err := o.launcher.Launch(launchArgv); err != nil {
		return fmt.Errorf("failed to launch service: %w", err)
	}

	// Reached only by launchers that legitimately return (tests).
	return nil
}

// Migrate runs only the migration phase, with the same status lines and
// failure semantics as Run. Used directly for migrate-only invocations.
func (o *Orchestrator) Migrate(ctx context.Context) error {
	fmt.Fprintln(o.stdout, StatusMigrationsBegin)
	o.logger.Info("migration phase starting")

	if err := o.migrator.Run(ctx); err != nil {
		fmt.Fprintf(o.stdout, "%s: %v\n", StatusMigrationsFail, err)
		o.logger.Error("migration phase failed", "error", err)
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}

	fmt.Fprintln(o.stdout, StatusMigrationsOK)
	o.logger.Info("migration phase completed")
	return nil
}
