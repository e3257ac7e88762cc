// Package logging sets up the debug log. The TUI owns the terminal, so
// request logging goes to a file instead of stderr.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"redbus-cli/config"
)

// New builds the application logger. When debug is disabled the logger
// discards everything, so call sites can log unconditionally.
func New(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(io.Discard)

	if !cfg.Debug {
		return logger
	}

	path := cfg.LogFile
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return logger
		}
		path = filepath.Join(dir, "redbus-cli", "debug.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return logger
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return logger
	}

	logger.SetOutput(f)
	logger.SetLevel(logrus.DebugLevel)
	return logger
}
