// Package config loads the roster engine settings.
//
// Priority: environment variables (ROSTER_*) > config file > defaults.
// A .env file in the working directory is loaded into the environment first.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Backup    BackupConfig    `mapstructure:"backup"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig is the HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// StorageConfig is handed to the storage adapter at construction.
type StorageConfig struct {
	Path                string        `mapstructure:"path"`
	BusyTimeout         time.Duration `mapstructure:"busy_timeout"`
	RegenerationLockTTL time.Duration `mapstructure:"regeneration_lock_ttl"`
}

// BackupConfig controls database snapshots.
type BackupConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
	Keep      int    `mapstructure:"keep"`
}

// SchedulerConfig controls the background reconciliation sweep.
type SchedulerConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Every   time.Duration `mapstructure:"every"`

	// WeeksAhead is the number of weeks after the current one to reconcile.
	WeeksAhead int `mapstructure:"weeks_ahead"`
}

// LogConfig is the logger configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// Load reads configuration from path (optional) and the environment.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("roster")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("storage.path", "./data/planning.db")
	v.SetDefault("storage.busy_timeout", "5s")
	v.SetDefault("storage.regeneration_lock_ttl", "2m")

	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.directory", "./data/backups")
	v.SetDefault("backup.keep", 14)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.every", "1h")
	v.SetDefault("scheduler.weeks_ahead", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be between 1 and 65535")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("invalid config: storage.path is required")
	}
	if c.Backup.Enabled && c.Backup.Directory == "" {
		return fmt.Errorf("invalid config: backup.directory is required when backups are enabled")
	}
	if c.Backup.Keep < 0 {
		return fmt.Errorf("invalid config: backup.keep must not be negative")
	}
	if c.Scheduler.Enabled && c.Scheduler.Every <= 0 {
		return fmt.Errorf("invalid config: scheduler.every must be positive")
	}
	if c.Scheduler.WeeksAhead < 0 {
		return fmt.Errorf("invalid config: scheduler.weeks_ahead must not be negative")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid config: log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

// loadDotEnv loads a .env file if present. Existing variables win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
