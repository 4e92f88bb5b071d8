package startup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/entrypoint/internal/launch"
)

// stubRunner is a migrate.Runner returning a canned result.
type stubRunner struct {
	err   error
	calls int
}

func (r *stubRunner) Run(ctx context.Context) error {
	r.calls++
	return r.err
}

// stubLauncher records the argv it was launched with. Unlike the real
// launchers it returns on success so tests can observe the hand-off.
type stubLauncher struct {
	argv  [][]string
	err   error
	calls int
}

func (l *stubLauncher) Launch(argv []string) error {
	l.calls++
	l.argv = append(l.argv, argv)
	return l.err
}

func newTestOrchestrator(r *stubRunner, l *stubLauncher) (*Orchestrator, *bytes.Buffer) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	o := New(r, l, logger)
	var stdout bytes.Buffer
	o.stdout = &stdout
	return o, &stdout
}

// TestRunSuccessHandsOffVerbatim verifies that after a successful migration
// the launcher receives exactly the provided argument vector, and that the
// success status line precedes the hand-off marker.
func TestRunSuccessHandsOffVerbatim(t *testing.T) {
	runner := &stubRunner{}
	launcher := &stubLauncher{}
	o, stdout := newTestOrchestrator(runner, launcher)

	argv := []string{"uvicorn", "app:main", "--host", "0.0.0.0"}
	err := o.Run(context.Background(), argv)

	require.NoError(t, err)
	assert.Equal(t, 1, runner.calls, "the migration step should run exactly once")
	require.Equal(t, 1, launcher.calls, "the service should be launched exactly once")
	assert.Equal(t, argv, launcher.argv[0], "the launch argv must pass through unmodified")

	out := stdout.String()
	assert.Contains(t, out, StatusMigrationsBegin)
	assert.Contains(t, out, StatusMigrationsOK)
	assert.Contains(t, out, StatusServiceBegin)
	assert.Less(t,
		strings.Index(out, StatusMigrationsOK),
		strings.Index(out, StatusServiceBegin),
		"the migration outcome must be reported before the hand-off")
}

// TestRunMigrationFailureNeverLaunches verifies the fail-fast gate for
// every failure shape the migration step can produce.
func TestRunMigrationFailureNeverLaunches(t *testing.T) {
	failures := []error{
		fmt.Errorf("migration command exited with status 1"),
		fmt.Errorf("migration command exited with status 255"),
		fmt.Errorf("migration command failed to start: no such file"),
		fmt.Errorf("failed to connect to database"),
	}

	for _, failure := range failures {
		t.Run(failure.Error(), func(t *testing.T) {
			runner := &stubRunner{err: failure}
			launcher := &stubLauncher{}
			o, stdout := newTestOrchestrator(runner, launcher)

			err := o.Run(context.Background(), []string{"uvicorn", "app:main"})

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMigrationFailed)
			assert.Zero(t, launcher.calls, "the service must never launch after a failed migration")
			assert.Contains(t, stdout.String(), StatusMigrationsFail)
			assert.NotContains(t, stdout.String(), StatusServiceBegin)
		})
	}
}

// TestRunEmptyLaunchArgv verifies that a successful migration followed by
// nothing to run is surfaced as a startup error rather than a silent exit.
func TestRunEmptyLaunchArgv(t *testing.T) {
	runner := &stubRunner{}
	launcher := &stubLauncher{}
	o, _ := newTestOrchestrator(runner, launcher)

	err := o.Run(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, launch.ErrEmptyCommand)
	assert.Zero(t, launcher.calls)
	assert.Equal(t, 1, runner.calls, "the migration step still runs before the misconfiguration surfaces")
}

// TestRunLauncherFailure verifies that a launcher error propagates.
func TestRunLauncherFailure(t *testing.T) {
	runner := &stubRunner{}
	launcher := &stubLauncher{err: fmt.Errorf("failed to resolve service binary")}
	o, _ := newTestOrchestrator(runner, launcher)

	err := o.Run(context.Background(), []string{"missing-service"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMigrationFailed, "a launch failure is not a migration failure")
}
