package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBaseURL = "http://localhost:8080/api"
	defaultTimeout    = 12 * time.Second
)

// Config holds all client configuration, sourced from the environment.
type Config struct {
	APIBaseURL string
	Timeout    time.Duration
	Debug      bool
	LogFile    string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; it never overrides variables that
// are already set.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		APIBaseURL: defaultAPIBaseURL,
		Timeout:    defaultTimeout,
	}

	if v := strings.TrimSpace(os.Getenv("REDBUS_API_URL")); v != "" {
		cfg.APIBaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("REDBUS_TIMEOUT")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Timeout = time.Duration(secs) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("REDBUS_DEBUG")); v != "" {
		cfg.Debug, _ = strconv.ParseBool(v)
	}
	cfg.LogFile = strings.TrimSpace(os.Getenv("REDBUS_LOG_FILE"))

	return cfg
}
