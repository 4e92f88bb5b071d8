package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds all entrypoint configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Migrate  MigrateConfig  `mapstructure:"migrate"  validate:"required"`
	Launch   LaunchConfig   `mapstructure:"launch"   validate:"required"`
}

// ServerConfig contains settings that apply to the entrypoint process itself.
type ServerConfig struct {
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// Either a full connection URL or the discrete parts may be supplied;
// the URL wins when both are present.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"      validate:"omitempty,uri"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"     validate:"gt=0,lt=65536"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"  validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
}

// EffectiveURL returns the connection URL to use: the explicit URL when
// configured, otherwise one composed from the discrete parts. Returns an
// empty string when neither form is usable.
func (c DatabaseConfig) EffectiveURL() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Host == "" || c.Name == "" {
		return ""
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{c.SSLMode}}.Encode()
	}
	return u.String()
}

// MigrateConfig controls how the migration phase is executed.
type MigrateConfig struct {
	// Mode selects the migration runner: "embedded" applies the SQL
	// migrations compiled into this binary, "command" shells out to an
	// external migration tool and consumes only its exit status.
	Mode string `mapstructure:"mode" validate:"required,oneof=embedded command"`

	// Command is the external migration invocation used in "command" mode,
	// e.g. "alembic upgrade head". Split on whitespace into an argv.
	Command string `mapstructure:"command"`

	// Table is the migration bookkeeping table used in "embedded" mode.
	Table string `mapstructure:"table" validate:"required"`

	// Timeout bounds the whole migration step. Zero means no timeout,
	// which matches the original entrypoint behavior; a non-zero value is
	// an addition this implementation offers as a configuration point.
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`

	// WaitTimeout, when non-zero, makes the embedded runner wait up to
	// this long for the database to accept connections before migrating.
	// This is an addition for container startup ordering, not a
	// reproduction of original behavior.
	WaitTimeout time.Duration `mapstructure:"wait_timeout" validate:"min=0"`
}

// CommandArgv returns the external migration invocation as an argument
// vector, or nil when no command is configured.
func (c MigrateConfig) CommandArgv() []string {
	fields := strings.Fields(c.Command)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// LaunchConfig controls how the service process is started after a
// successful migration.
type LaunchConfig struct {
	// Mode selects the hand-off strategy: "exec" replaces the current
	// process image, "supervise" spawns a child, forwards signals to it,
	// and exits with its exit code.
	Mode string `mapstructure:"mode" validate:"required,oneof=exec supervise"`
}
