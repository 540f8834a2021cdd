// pkg/config/config_test.go
package config

import (
	"strings"
	"testing"
)

func setPostgresEnv(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_USER", "ingress")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "sheets")
}

func TestLoadConfigDefaults(t *testing.T) {
	setPostgresEnv(t)
	t.Setenv("GOOGLE_CRED", `{"type":"service_account"}`)
	t.Setenv("SHEETS_CONFIG", "")
	t.Setenv("SYNC_SCHEDULE", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.MappingFile != "config.json" {
		t.Errorf("MappingFile = %q, want config.json", cfg.MappingFile)
	}
	if cfg.Schedule != "" {
		t.Errorf("Schedule = %q, want empty (run once)", cfg.Schedule)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
}

func TestLoadPostgresConfigRequiredVars(t *testing.T) {
	tests := []struct {
		name    string
		missing string
	}{
		{"missing user", "POSTGRES_USER"},
		{"missing password", "POSTGRES_PASSWORD"},
		{"missing database", "POSTGRES_DB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setPostgresEnv(t)
			t.Setenv(tt.missing, "")

			if _, err := LoadPostgresConfig(); err == nil {
				t.Errorf("LoadPostgresConfig() succeeded without %s", tt.missing)
			}
		})
	}
}

func TestLoadPostgresConfigDefaults(t *testing.T) {
	setPostgresEnv(t)

	cfg, err := LoadPostgresConfig()
	if err != nil {
		t.Fatalf("LoadPostgresConfig() error = %v", err)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want 127.0.0.1", cfg.Host)
	}
	if cfg.Port != 5432 {
		t.Errorf("Port = %d, want 5432", cfg.Port)
	}
	if cfg.SSLMode != "prefer" {
		t.Errorf("SSLMode = %q, want prefer", cfg.SSLMode)
	}
}

func TestConnectionString(t *testing.T) {
	cfg := &PostgresConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "ingress",
		Password: "secret",
		Database: "sheets",
		SSLMode:  "require",
	}

	got := cfg.ConnectionString()
	want := "host=db.internal port=5433 user=ingress password=secret dbname=sheets sslmode=require"
	if got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}

func TestLoadGoogleConfig(t *testing.T) {
	t.Run("payload env wins", func(t *testing.T) {
		t.Setenv("GOOGLE_CRED", `{"type":"service_account"}`)
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

		cfg, err := LoadGoogleConfig()
		if err != nil {
			t.Fatalf("LoadGoogleConfig() error = %v", err)
		}
		if !strings.Contains(string(cfg.CredentialsJSON), "service_account") {
			t.Error("credential payload not carried through")
		}
	})

	t.Run("neither set", func(t *testing.T) {
		t.Setenv("GOOGLE_CRED", "")
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

		if _, err := LoadGoogleConfig(); err == nil {
			t.Error("LoadGoogleConfig() succeeded with no credential source")
		}
	})
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT_VALUE", "42")
	if got := getEnvAsInt("TEST_INT_VALUE", 7); got != 42 {
		t.Errorf("getEnvAsInt = %d, want 42", got)
	}

	t.Setenv("TEST_INT_VALUE", "not-a-number")
	if got := getEnvAsInt("TEST_INT_VALUE", 7); got != 7 {
		t.Errorf("getEnvAsInt with bad value = %d, want fallback 7", got)
	}

	if got := getEnvAsInt("TEST_INT_UNSET", 7); got != 7 {
		t.Errorf("getEnvAsInt unset = %d, want fallback 7", got)
	}
}
