// Package main implements the TaskFlow container entrypoint. It brings the
// database schema to the latest version and, only when that succeeds, hands
// the process over to the API server command supplied as trailing
// arguments:
//
//	entrypoint [flags] -- uvicorn app:main --host 0.0.0.0
//
// A failed migration terminates the process with a non-zero exit code and
// the service command is never started.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/taskflow/entrypoint/internal/config"
	"github.com/taskflow/entrypoint/internal/launch"
	"github.com/taskflow/entrypoint/internal/platform/logger"
	"github.com/taskflow/entrypoint/internal/startup"
)

// Exit codes used on the paths where the entrypoint itself terminates.
// After a successful hand-off the exit code belongs to the service.
const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the testable body of main. It returns the process exit code for
// every path that does not hand off to the service.
func run(args []string) int {
	fs := flag.NewFlagSet("entrypoint", flag.ContinueOnError)
	configFile := fs.String("config", "",
		"optional config file; environment variables take precedence")
	migrateOnly := fs.Bool("migrate-only", false,
		"run migrations and exit without starting a service")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	log := logger.Setup(cfg.Server)

	orch := startup.New(newMigrationRunner(cfg, log), newLauncher(cfg, log), log)

	// Termination signals cancel the migration phase; exec wipes this
	// handler on hand-off, and the supervising launcher installs its own
	// forwarding.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *migrateOnly {
		if err := orch.Migrate(ctx); err != nil {
			return exitFailure
		}
		return 0
	}

	if err := orch.Run(ctx, fs.Args()); err != nil {
		if errors.Is(err, launch.ErrEmptyCommand) {
			fmt.Fprintln(os.Stderr, "usage: entrypoint [flags] -- service-command [args...]")
			return exitUsage
		}
		return exitFailure
	}

	// Unreachable with the real launchers: on success the service owns
	// the process.
	return 0
}
