// Package logging configures the CLI's structured logger.
//
// Human-facing output goes to stdout/stderr through the command helpers; this
// logger records request diagnostics to a rotating JSON file instead.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB = 10
	defaultMaxFiles  = 5
	defaultMaxAgeDay = 30
)

// Options holds logging configuration.
type Options struct {
	Level    string // debug, info, warn, error (default: warn)
	File     string // log file path (empty = {dir}/logs/cli.log)
	MaxSize  int    // max log file size in MB (default: 10)
	MaxFiles int    // max rotated files to keep (default: 5)
}

// ParseLevel maps a level name to a slog.Level. Unknown names map to warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// DefaultFile returns the log path used when Options.File is empty.
func DefaultFile(dir string) string {
	return filepath.Join(dir, "logs", "cli.log")
}

// New builds a JSON logger writing to a rotating file under dir. The returned
// closer flushes and closes the file.
func New(dir string, opts Options) (*slog.Logger, io.Closer, error) {
	path := opts.File
	if path == "" {
		path = DefaultFile(dir)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = defaultMaxSizeMB
	}
	maxFiles := opts.MaxFiles
	if maxFiles <= 0 {
		maxFiles = defaultMaxFiles
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize, // MB
		MaxBackups: maxFiles,
		MaxAge:     defaultMaxAgeDay,
		Compress:   true,
	}
	return NewWithWriter(w, opts.Level), w, nil
}

// NewWithWriter builds a JSON logger over an arbitrary writer.
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(h)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
