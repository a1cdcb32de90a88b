// Package config provides configuration for the typecodec demonstration
// CLI. The codec library itself takes no configuration; this package
// only serves cmd/typecodec.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the CLI's runtime settings.
type Config struct {
	DBURL     string
	LogLevel  string
	LogFormat string
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		DBURL:     "sqlite://typecodec.db",
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// Load loads configuration from file using viper. CLI flags > environment
// > config file > defaults precedence; flags are bound by the caller
// after Load returns the file/env-resolved values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("db_url", "sqlite://typecodec.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetEnvPrefix("TYPECODEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		DBURL:     v.GetString("db_url"),
		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}
	if cfg.DBURL == "" {
		return fmt.Errorf("db_url must not be empty")
	}
	return nil
}
