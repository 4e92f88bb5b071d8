package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// CommandRunner executes an external migration tool ("alembic upgrade
// head"-style) as a child process. The child inherits this process's
// environment and standard streams; only its exit status is consumed.
// A tool that cannot be started at all is reported the same way as a tool
// that exited non-zero.
type CommandRunner struct {
	argv    []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewCommandRunner creates a CommandRunner for the given argument vector.
// A zero timeout means the migration step is not bounded.
func NewCommandRunner(argv []string, timeout time.Duration, logger *slog.Logger) *CommandRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandRunner{
		argv:    argv,
		timeout: timeout,
		logger:  logger,
	}
}

// Run executes the migration command to completion.
func (r *CommandRunner) Run(ctx context.Context) error {
	if len(r.argv) == 0 {
		return errors.New("migration command is empty")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.argv[0], r.argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	r.logger.Info("running migration command",
		"command", r.argv[0],
		"args", r.argv[1:],
		"timeout", r.timeout)

	startTime := time.Now()
	err := cmd.Run()
	duration := time.Since(startTime)

	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			r.logger.Error("migration command timed out",
				"command", r.argv[0],
				"timeout", r.timeout,
				"duration_ms", duration.Milliseconds())
			return fmt.Errorf("migration command timed out after %s: %w", r.timeout, err)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			r.logger.Error("migration command failed",
				"command", r.argv[0],
				"exit_code", exitErr.ExitCode(),
				"duration_ms", duration.Milliseconds())
			return fmt.Errorf("migration command exited with status %d: %w", exitErr.ExitCode(), err)
		}

		// Tool missing or not executable: same failure kind as a
		// non-zero exit, never an unhandled crash.
		r.logger.Error("migration command could not be started",
			"command", r.argv[0],
			"error", err)
		return fmt.Errorf("migration command failed to start: %w", err)
	}

	r.logger.Info("migration command completed",
		"command", r.argv[0],
		"duration_ms", duration.Milliseconds())
	return nil
}
