// Package config loads HoopHub configuration from hoophub.yaml and
// HOOPHUB_* environment variables.
package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
)

// Config is the full application configuration.
type Config struct {
	// Backend is the active storage backend: sqlite, file or memory.
	Backend string `mapstructure:"backend"`
	// DataDir is the file backend's data root.
	DataDir string `mapstructure:"data_dir"`
	// SQLitePath is the SQLite database file.
	SQLitePath string `mapstructure:"sqlite_path"`
	// Log configures the sync log destination and rotation.
	Log LogConfig `mapstructure:"log"`
}

// LogConfig configures the optional rotating log file. When File is empty
// everything goes to stderr.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Load reads configuration from the given file, or from hoophub.yaml in the
// working directory when path is empty. Missing files are not an error;
// defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("backend", "sqlite")
	v.SetDefault("data_dir", ".hoophub/data")
	v.SetDefault("sqlite_path", ".hoophub/hoophub.db")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetEnvPrefix("HOOPHUB")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hoophub")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; an explicitly named one
		// that cannot be read is not.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if _, err := storage.ParseBackend(cfg.Backend); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ActiveBackend returns the configured backend.
func (c *Config) ActiveBackend() storage.Backend {
	b, _ := storage.ParseBackend(c.Backend)
	return b
}

// Logger builds a logger with the given prefix, writing to the rotating log
// file when one is configured and to stderr otherwise.
func (c *Config) Logger(prefix string) *log.Logger {
	var w io.Writer = os.Stderr
	if c.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.Log.File), 0755); err == nil {
			w = &lumberjack.Logger{
				Filename:   c.Log.File,
				MaxSize:    c.Log.MaxSizeMB,
				MaxBackups: c.Log.MaxBackups,
				MaxAge:     c.Log.MaxAgeDays,
			}
		}
	}
	return log.New(w, prefix, log.LstdFlags)
}
