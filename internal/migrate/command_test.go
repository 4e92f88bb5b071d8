package migrate

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// discardLogger returns a logger whose output the tests ignore.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// TestCommandRunnerSuccess verifies that a zero-exit migration command is
// reported as success.
func TestCommandRunnerSuccess(t *testing.T) {
	r := NewCommandRunner([]string{"true"}, 0, discardLogger())

	err := r.Run(context.Background())

	assert.NoError(t, err, "a migration command exiting 0 should succeed")
}

// TestCommandRunnerNonZeroExit verifies that every non-zero exit status is
// surfaced as an error carrying the status.
func TestCommandRunnerNonZeroExit(t *testing.T) {
	for _, code := range []int{1, 2, 42, 255} {
		t.Run(fmt.Sprintf("exit_%d", code), func(t *testing.T) {
			r := NewCommandRunner([]string{"sh", "-c", fmt.Sprintf("exit %d", code)}, 0, discardLogger())

			err := r.Run(context.Background())

			require.Error(t, err, "a migration command exiting %d should fail", code)
			assert.Contains(t, err.Error(), fmt.Sprintf("status %d", code))
		})
	}
}

// TestCommandRunnerToolMissing verifies that an unresolvable migration tool
// is treated as a migration failure, not an unhandled crash.
func TestCommandRunnerToolMissing(t *testing.T) {
	r := NewCommandRunner([]string{"/nonexistent/migration-tool"}, 0, discardLogger())

	err := r.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start")
}

// TestCommandRunnerEmptyArgv verifies the misconfiguration guard.
func TestCommandRunnerEmptyArgv(t *testing.T) {
	r := NewCommandRunner(nil, 0, discardLogger())

	err := r.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

// TestCommandRunnerTimeout verifies the optional migration timeout.
func TestCommandRunnerTimeout(t *testing.T) {
	r := NewCommandRunner([]string{"sleep", "30"}, 100*time.Millisecond, discardLogger())

	start := time.Now()
	err := r.Run(context.Background())

	require.Error(t, err, "a migration command exceeding the timeout should fail")
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 10*time.Second, "the command should be killed promptly")
}

// TestCommandRunnerContextCancellation verifies that cancellation while the
// migration step is in flight terminates the child.
func TestCommandRunnerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewCommandRunner([]string{"sleep", "30"}, 0, discardLogger())

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := r.Run(ctx)

	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}
