// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-aware logger that can be used to log
// messages with different log levels. It uses the slog package for
// structured logging.
//
// The log level is not read from the environment or from global process
// arguments: the top-level entry point sets it explicitly via SetVerbosity,
// scoped to one program invocation, and the logger travels with the
// context from there.
package ctxlog

import (
	"context"
	"log/slog"
	"os"
)

type loggerKey struct{}

// LevelVar holds the active log level. The default is Warn; SetVerbosity
// raises it.
var LevelVar = &slog.LevelVar{}

// DefaultLogger is a pretty console logger used if no logger is provided.
var DefaultLogger = slog.New(NewPrettyHandler(&slog.HandlerOptions{
	Level: LevelVar,
},
	WithDestinationWriter(os.Stdout),
))

// JSONLogger writes structured JSON log lines, for non-interactive use.
var JSONLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: LevelVar,
}))

func init() {
	LevelVar.Set(slog.LevelWarn)
}

// SetVerbosity maps a verbosity count to a log level: 0 is Warn, 1 is Info
// and 2 or more is Debug.
func SetVerbosity(n int) {
	switch {
	case n <= 0:
		LevelVar.Set(slog.LevelWarn)
	case n == 1:
		LevelVar.Set(slog.LevelInfo)
	default:
		LevelVar.Set(slog.LevelDebug)
	}
}

// New creates a new context with the given logger.
// If logger is nil, it uses the default logger.
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger from the context, or the default logger if not found.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return DefaultLogger
	}

	return logger
}

// Info logs an info message with the given context.
func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Info(msg, args...)
}

// Debug logs a debug message with the given context.
func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Debug(msg, args...)
}

// Warn logs a warning message with the given context.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Warn(msg, args...)
}

// Error logs an error message with the given context.
func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Error(msg, args...)
}
