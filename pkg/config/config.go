// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
)

// Config represents the application configuration
type Config struct {
	// External services
	Postgres *PostgresConfig
	Google   *GoogleConfig

	// Sync settings
	MappingFile string // path to the sheet→table mapping document
	Schedule    string // optional cron expression; empty means run once

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		MappingFile: getEnv("SHEETS_CONFIG", "config.json"),
		Schedule:    getEnv("SYNC_SCHEDULE", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		LogFile:     getEnv("LOG_FILE", "logs.txt"),
	}

	pgConfig, err := LoadPostgresConfig()
	if err != nil {
		return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
	}
	cfg.Postgres = pgConfig

	gConfig, err := LoadGoogleConfig()
	if err != nil {
		return nil, errors.New("failed to load Google credentials configuration: " + err.Error())
	}
	cfg.Google = gConfig

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.Postgres == nil {
		return errors.New("postgreSQL configuration is required")
	}

	if c.Google == nil {
		return errors.New("google credentials configuration is required")
	}

	if c.MappingFile == "" {
		return errors.New("sheet mapping file path cannot be empty")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
