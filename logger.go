// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger for structured logging throughout the application
type Logger struct {
	*slog.Logger
	out io.Writer // destination for UserMessage output
}

// NewLogger creates a new structured logger
func NewLogger(debug bool) *Logger {
	return newLogger(os.Stdout, debug, false)
}

// NewJSONLogger creates a new JSON structured logger (useful for production/log aggregation)
func NewJSONLogger(debug bool) *Logger {
	return newLogger(os.Stdout, debug, true)
}

func newLogger(w io.Writer, debug, jsonOutput bool) *Logger {
	var level slog.Level
	if debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{
		Logger: slog.New(handler),
		out:    w,
	}
}

// WithComponent returns a logger with a component field pre-set
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", component),
		out:    l.out,
	}
}

// WithRunID returns a logger with a run_id field pre-set
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", runID),
		out:    l.out,
	}
}

// WithSource returns a logger with a source field pre-set
func (l *Logger) WithSource(source Source) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", string(source)),
		out:    l.out,
	}
}

// LogAPIRequest logs an API request with common fields
func (l *Logger) LogAPIRequest(method, endpoint string, statusCode int, duration float64) {
	l.Info("API request",
		"method", method,
		"endpoint", endpoint,
		"status_code", statusCode,
		"duration_ms", duration*1000,
	)
}

// LogAPIError logs an API error with details
func (l *Logger) LogAPIError(err error, endpoint string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		l.Error("API request failed",
			"endpoint", endpoint,
			"status_code", apiErr.StatusCode,
			"retryable", apiErr.Retryable,
			"error", apiErr.Error(),
		)
	} else {
		l.Error("API request failed",
			"endpoint", endpoint,
			"error", err.Error(),
		)
	}
}

// LogCacheHit logs a cache hit
func (l *Logger) LogCacheHit(source Source, path string, rows int) {
	l.Debug("Cache hit",
		"cache_type", string(source),
		"path", path,
		"rows", rows,
	)
}

// LogCacheMiss logs a cache miss
func (l *Logger) LogCacheMiss(source Source, reason string) {
	l.Debug("Cache miss",
		"cache_type", string(source),
		"reason", reason,
	)
}

// UserMessage outputs a user-friendly message (bypasses structured logging)
// Use this for primary user-facing output
func (l *Logger) UserMessage(format string, args ...interface{}) {
	fmt.Fprintf(l.out, format+"\n", args...)
}

// UserMessagef outputs a user-friendly message without newline
func (l *Logger) UserMessagef(format string, args ...interface{}) {
	fmt.Fprintf(l.out, format, args...)
}

// Writer exposes the user-facing output stream
func (l *Logger) Writer() io.Writer {
	return l.out
}
