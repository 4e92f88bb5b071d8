package launch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

// SuperviseLauncher runs the service as a child process, forwards signals
// to it, and exits with the child's exit code once it terminates. Used
// where replacing the process image is not available or not wanted; from
// the outside it behaves like ExecLauncher except that a thin parent
// remains.
type SuperviseLauncher struct {
	logger *slog.Logger

	// exit is swappable for tests; defaults to os.Exit.
	exit func(code int)
}

// NewSuperviseLauncher creates a SuperviseLauncher.
func NewSuperviseLauncher(logger *slog.Logger) *SuperviseLauncher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SuperviseLauncher{logger: logger, exit: os.Exit}
}

// Launch starts the service and blocks until it terminates, then exits the
// current process with the service's exit code. Returns only when the
// service could not be started.
func (l *SuperviseLauncher) Launch(argv []string) error {
	code, err := l.run(argv)
	if err != nil {
		return err
	}
	l.exit(code)
	return nil
}

// run is the testable core of Launch: it supervises the child and returns
// the exit code to propagate instead of exiting.
func (l *SuperviseLauncher) run(argv []string) (int, error) {
	if len(argv) == 0 {
		return 0, ErrEmptyCommand
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start service %q: %w", argv[0], err)
	}

	l.logger.Info("service started under supervision",
		"binary", argv[0],
		"pid", cmd.Process.Pid)

	// Forward every forwardable signal to the child so the supervising
	// parent stays transparent to the process manager.
	sigCh := make(chan os.Signal, 16)
	signal.Notify(sigCh)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigCh:
				if sig == syscall.SIGCHLD {
					continue
				}
				if err := cmd.Process.Signal(sig); err != nil {
					l.logger.Debug("failed to forward signal to service",
						"signal", sig.String(),
						"error", err)
				}
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	close(done)

	return exitCodeFromWait(cmd, err), nil
}

// exitCodeFromWait maps a Wait result onto the exit code to propagate,
// using the 128+signal convention for signal-terminated children.
func exitCodeFromWait(cmd *exec.Cmd, waitErr error) int {
	if waitErr == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		// Wait itself failed; nothing better to report than a generic
		// failure code.
		return 1
	}

	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}

	return exitErr.ExitCode()
}
