package launch

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
)

// ExecLauncher replaces the current process image with the service command.
// The service inherits the process identity, environment, and standard
// streams, so signals and the final exit code reach the process manager
// without an intermediary.
type ExecLauncher struct {
	logger *slog.Logger
}

// NewExecLauncher creates an ExecLauncher.
func NewExecLauncher(logger *slog.Logger) *ExecLauncher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecLauncher{logger: logger}
}

// Launch resolves the service binary on PATH and execs it. On success this
// call does not return.
func (l *ExecLauncher) Launch(argv []string) error {
	if len(argv) == 0 {
		return ErrEmptyCommand
	}

	binary, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("failed to resolve service binary %q: %w", argv[0], err)
	}

	l.logger.Info("replacing process image with service",
		"binary", binary,
		"args", argv[1:])

	// argv[0] stays as given so the service sees its own name unmodified.
	if err := syscall.Exec(binary, argv, os.Environ()); err != nil {
		return fmt.Errorf("failed to exec service %q: %w", binary, err)
	}

	// Unreachable: Exec only returns on error.
	return nil
}
