package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all entrypoint environment variables,
// e.g. TASKFLOW_DATABASE_URL maps to the "database.url" key.
const envPrefix = "TASKFLOW"

// Load reads configuration from environment variables and, optionally, a
// config file. Environment variables take precedence over file values.
// An empty configFile means no file is read; a missing explicit file is an
// error. Returns a populated Config or an error if loading or validation
// fails.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers a default for every known key. Viper only exposes
// environment-variable values through Unmarshal for keys it already knows
// about, so every key needs at least an empty default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.log_level", "info")

	// Database defaults mirror the development docker-compose setup.
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "devuser")
	v.SetDefault("database.password", "devpass")
	v.SetDefault("database.name", "task_manager")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("migrate.mode", "embedded")
	v.SetDefault("migrate.command", "")
	v.SetDefault("migrate.table", "schema_migrations")
	v.SetDefault("migrate.timeout", "0")
	v.SetDefault("migrate.wait_timeout", "0")

	v.SetDefault("launch.mode", "exec")
}

// validate checks struct-level constraints plus the cross-field rules the
// tag language cannot express.
func validate(cfg *Config) error {
	val := validator.New()
	if err := val.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	switch cfg.Migrate.Mode {
	case "embedded":
		if cfg.Database.EffectiveURL() == "" {
			return errors.New(
				"invalid configuration: embedded migrations need database.url or database.host+database.name",
			)
		}
	case "command":
		if len(cfg.Migrate.CommandArgv()) == 0 {
			return errors.New(
				"invalid configuration: migrate.mode is \"command\" but migrate.command is empty",
			)
		}
	}

	return nil
}
