package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/taskflow/entrypoint/internal/migrate/migrations"
)

// Embedded runner commands.
const (
	CommandUp      = "up"
	CommandStatus  = "status"
	CommandVersion = "version"
)

// pingTimeout bounds the connectivity check that precedes migration.
const pingTimeout = 5 * time.Second

// EmbeddedRunner applies the goose SQL migrations compiled into this binary
// against Postgres via the pgx stdlib driver.
type EmbeddedRunner struct {
	databaseURL string
	command     string
	table       string
	waitTimeout time.Duration
	timeout     time.Duration
	logger      *slog.Logger
}

// EmbeddedConfig carries the settings for an EmbeddedRunner.
type EmbeddedConfig struct {
	// DatabaseURL is the Postgres connection URL.
	DatabaseURL string

	// Command is one of CommandUp, CommandStatus, or CommandVersion.
	// Empty means CommandUp.
	Command string

	// Table is the goose version-tracking table. Empty means goose's
	// default.
	Table string

	// WaitTimeout, when non-zero, makes Run poll the database until it
	// accepts connections (or the timeout elapses) before migrating.
	WaitTimeout time.Duration

	// Timeout, when non-zero, bounds the whole migration run.
	Timeout time.Duration
}

// NewEmbeddedRunner creates an EmbeddedRunner from the given settings.
func NewEmbeddedRunner(cfg EmbeddedConfig, logger *slog.Logger) *EmbeddedRunner {
	if logger == nil {
		logger = slog.Default()
	}
	command := cfg.Command
	if command == "" {
		command = CommandUp
	}
	return &EmbeddedRunner{
		databaseURL: cfg.DatabaseURL,
		command:     command,
		table:       cfg.Table,
		waitTimeout: cfg.WaitTimeout,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
}

// Run executes the embedded migrations to completion.
func (r *EmbeddedRunner) Run(ctx context.Context) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	// A correlation ID ties together all log records of one migration run.
	correlationID := uuid.New().String()
	migrationLogger := r.logger.With(
		"correlation_id", correlationID,
		"component", "migrations",
		"command", r.command,
	)

	if r.databaseURL == "" {
		migrationLogger.Error("database URL is empty",
			"resolution", "set TASKFLOW_DATABASE_URL or the discrete TASKFLOW_DATABASE_* variables")
		return errors.New("database URL is empty: check your configuration")
	}

	migrationLogger.Info("starting migration run",
		"url", MaskDatabaseURL(r.databaseURL))

	db, err := sql.Open("pgx", r.databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			migrationLogger.Error("error closing database connection", "error", closeErr)
		}
	}()

	// The connection only lives for the duration of the migration step, so
	// the pool stays small.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := r.waitForDatabase(ctx, db, migrationLogger); err != nil {
		return err
	}

	goose.SetLogger(&slogGooseLogger{logger: migrationLogger})
	goose.SetBaseFS(migrations.Files)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if r.table != "" {
		goose.SetTableName(r.table)
	}

	startTime := time.Now()
	switch r.command {
	case CommandUp:
		err = goose.UpContext(ctx, db, ".")
	case CommandStatus:
		err = goose.StatusContext(ctx, db, ".")
	case CommandVersion:
		err = goose.VersionContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown migration command: %s (expected %s, %s, or %s)",
			r.command, CommandUp, CommandStatus, CommandVersion)
	}
	duration := time.Since(startTime)

	if err != nil {
		migrationLogger.Error("migration command failed",
			"error", err,
			"duration_ms", duration.Milliseconds())
		return fmt.Errorf("migration command %q failed: %w", r.command, err)
	}

	migrationLogger.Info("migration command completed",
		"duration_ms", duration.Milliseconds())
	return nil
}

// waitForDatabase verifies connectivity with a ping, optionally retrying
// until waitTimeout elapses. Without a wait timeout a single ping failure
// is terminal, matching the fail-fast contract.
func (r *EmbeddedRunner) waitForDatabase(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	deadline := time.Now().Add(r.waitTimeout)
	attempt := 0
	backoff := 500 * time.Millisecond

	for {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := db.PingContext(pingCtx)
		cancel()

		if err == nil {
			logger.Info("database connection verified", "attempt", attempt)
			return nil
		}

		if r.waitTimeout <= 0 || time.Now().Add(backoff).After(deadline) {
			return classifyPingError(err)
		}

		logger.Warn("database not ready, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("canceled while waiting for database: %w", ctx.Err())
		case <-time.After(backoff):
		}
		if backoff < 5*time.Second {
			backoff *= 2
		}
	}
}

// classifyPingError wraps a ping failure with targeted advice.
func classifyPingError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf(
			"database ping timed out after %s: %w (check network connectivity, firewall rules, and server load)",
			pingTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf(
			"network error connecting to database: %w (check hostname, port, and network connectivity)",
			err)
	}

	return fmt.Errorf(
		"failed to connect to database: %w (check connection string, credentials, and database availability)",
		err)
}
