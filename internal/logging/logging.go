// Package logging builds the process logger and carries it through contexts.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	Service string
	Version string
	Level   string // debug, info, warn, error
	Format  string // json, text
	File    string // optional; stderr when empty
}

// New returns a configured logger and installs it as the slog default. The
// returned closer releases the log file, if any.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	logger := NewWithWriter(cfg, out)
	slog.SetDefault(logger)
	return logger, closer, nil
}

// NewWithWriter is New without the side effects, for tests and embedding.
func NewWithWriter(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	if cfg.Version != "" {
		logger = logger.With("version", cfg.Version)
	}
	return logger
}

// ParseLevel maps a level name to slog.Level. Unknown names mean info.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard is a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
