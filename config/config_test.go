package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("REDBUS_API_URL", "")
	t.Setenv("REDBUS_TIMEOUT", "")
	t.Setenv("REDBUS_DEBUG", "")
	t.Setenv("REDBUS_LOG_FILE", "")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.APIBaseURL != "http://localhost:8080/api" {
		t.Fatalf("unexpected base URL: %q", cfg.APIBaseURL)
	}
	if cfg.Timeout != 12*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.Timeout)
	}
	if cfg.Debug {
		t.Fatal("expected debug off by default")
	}
	if cfg.LogFile != "" {
		t.Fatalf("expected no log file, got %q", cfg.LogFile)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDBUS_API_URL", "https://bus.example.com/api/")
	t.Setenv("REDBUS_TIMEOUT", "30")
	t.Setenv("REDBUS_DEBUG", "true")
	t.Setenv("REDBUS_LOG_FILE", "/tmp/redbus.log")

	cfg := Load()
	if cfg.APIBaseURL != "https://bus.example.com/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.APIBaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.Timeout)
	}
	if !cfg.Debug {
		t.Fatal("expected debug on")
	}
	if cfg.LogFile != "/tmp/redbus.log" {
		t.Fatalf("unexpected log file: %q", cfg.LogFile)
	}
}

func TestLoad_IgnoresInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDBUS_TIMEOUT", "not-a-number")
	t.Setenv("REDBUS_DEBUG", "maybe")

	cfg := Load()
	if cfg.Timeout != 12*time.Second {
		t.Fatalf("expected default timeout, got %v", cfg.Timeout)
	}
	if cfg.Debug {
		t.Fatal("expected debug off for unparsable value")
	}
}
