// Package nodectx implements per-node configuration and logger handles,
// decoupled from the executor core. Nodes construct one (or receive one
// from the daemon/registry wiring) and use it for GetEnv/CreateLogger/
// LoadYAML; the executor packages never import this package.
package nodectx

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with chainable fields scoped to this runtime's
// own identifiers: node name and run ID.
type Logger struct {
	logger *slog.Logger
}

// LoggingConfig configures a Logger's handler.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	Level string
	// Output is where logs are written; defaults to os.Stdout.
	Output io.Writer
	// Pretty selects a human-readable text handler instead of JSON.
	Pretty bool
}

// DefaultLoggingConfig returns the JSON-to-stdout, info-level default.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{Level: "info", Output: os.Stdout}
}

// NewLogger builds a Logger from cfg.
func NewLogger(cfg LoggingConfig) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Pretty {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}
	return &Logger{logger: slog.New(handler)}
}

// DefaultLogger returns a Logger using DefaultLoggingConfig.
func DefaultLogger() *Logger { return NewLogger(DefaultLoggingConfig()) }

func parseLevel(level string) slog.Level {
	switch level {
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

// WithNode returns a child Logger tagging every line with the node's name.
func (l *Logger) WithNode(name string) *Logger {
	return &Logger{logger: l.logger.With(slog.String("node", name))}
}

// WithRun returns a child Logger tagging every line with an execution ID.
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{logger: l.logger.With(slog.String("run_id", runID))}
}

// WithError returns a child Logger with err attached.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{logger: l.logger.With(slog.Any("error", err))}
}

// Debug logs a debug-level message.
func (l *Logger) Debug(msg string) { l.logger.Debug(msg) }

// Debugf logs a formatted debug-level message.
func (l *Logger) Debugf(format string, args ...any) { l.logger.Debug(fmt.Sprintf(format, args...)) }

// Info logs an info-level message.
func (l *Logger) Info(msg string) { l.logger.Info(msg) }

// Infof logs a formatted info-level message.
func (l *Logger) Infof(format string, args ...any) { l.logger.Info(fmt.Sprintf(format, args...)) }

// Warn logs a warn-level message.
func (l *Logger) Warn(msg string) { l.logger.Warn(msg) }

// Warnf logs a formatted warn-level message.
func (l *Logger) Warnf(format string, args ...any) { l.logger.Warn(fmt.Sprintf(format, args...)) }

// Error logs an error-level message.
func (l *Logger) Error(msg string) { l.logger.Error(msg) }

// Errorf logs a formatted error-level message.
func (l *Logger) Errorf(format string, args ...any) { l.logger.Error(fmt.Sprintf(format, args...)) }

// Slog returns the underlying *slog.Logger for call sites that need it
// directly (e.g. passing into topology.FromSources).
func (l *Logger) Slog() *slog.Logger { return l.logger }
