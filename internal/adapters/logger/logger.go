// Package logger implements a logging adapter using log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger       *slog.Logger
	level        *slog.LevelVar
	mu           sync.RWMutex
	jsonMode     bool
	runnerGroups bool
	output       io.Writer
}

// New creates a new Logger instance writing pretty output to stderr.
func New() ports.Logger {
	l := &Logger{
		level:  &slog.LevelVar{},
		output: os.Stderr,
	}
	l.rebuild()
	return l
}

// Configure applies the log settings.
func (l *Logger) Configure(s domain.LogSettings) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = s.Format == domain.LogFormatJSON
	l.runnerGroups = s.Groups
	if s.Debug {
		l.level.Set(slog.LevelDebug)
	} else {
		l.level.Set(slog.LevelInfo)
	}
	l.rebuild()
}

// SetOutput updates the logger's output destination.
// It preserves the current JSON mode setting.
// If w is nil, os.Stderr is used as the default.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// rebuild replaces the slog handler. The caller holds the write lock or owns l.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: l.level}

	var handler slog.Handler
	if l.jsonMode {
		handler = slog.NewJSONHandler(l.output, opts)
	} else {
		handler = NewPrettyHandler(l.output, opts)
	}
	l.logger = slog.New(handler)
}

// Debug logs a diagnostic message, shown only when debug logging is enabled.
func (l *Logger) Debug(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Debug(msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error with its cause chain.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}

	l.logger.Error(formatErrorEntries(collectErrorEntries(err)))
}

// Group starts a block of log lines titled title.
//
// On a CI runner that understands workflow commands the block is collapsible;
// elsewhere a heading line is written and the returned function does nothing.
func (l *Logger) Group(title string) func() {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.runnerGroups || l.jsonMode {
		l.logger.Info(title, slog.Bool(headingKey, true))
		return func() {}
	}

	w := l.output
	_, _ = io.WriteString(w, "::group::"+title+"\n")
	return func() {
		l.mu.RLock()
		defer l.mu.RUnlock()
		_, _ = io.WriteString(w, "::endgroup::\n")
	}
}
