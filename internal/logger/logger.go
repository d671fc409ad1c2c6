// Package logger adapts the teacher's tag/Banner logging vocabulary onto
// structured zerolog output, so every call site still reads
// "logger.Info(TAG, message)" while the underlying record is a structured
// zerolog event with tag, level, and (when supplied) extra key=value
// fields, rendered to stdout through zerolog's console writer.
package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once sync.Once
	base zerolog.Logger
)

func logger() zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339
		out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		base = zerolog.New(out).With().Timestamp().Logger()
	})
	return base
}

// Field is an extra key=value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field { return Field{Key: key, Value: value} }

func withFields(e *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		e = e.Interface(f.Key, f.Value)
	}
	return e
}

// Info logs an informational line tagged with a subsystem name, e.g.
// logger.Info("ORCHESTRATOR", "tick started").
func Info(tag, message string, fields ...Field) {
	withFields(logger().Info().Str("tag", tag), fields).Msg(message)
}

// Success logs a successful-completion line.
func Success(tag, message string, fields ...Field) {
	withFields(logger().Info().Str("tag", tag).Bool("ok", true), fields).Msg(message)
}

// Warn logs a recoverable-condition line.
func Warn(tag, message string, fields ...Field) {
	withFields(logger().Warn().Str("tag", tag), fields).Msg(message)
}

// Error logs an error-level line. Per SPEC_FULL.md §7, CandidateRejected
// outcomes must never be logged through this function — only counted.
func Error(tag, message string, fields ...Field) {
	withFields(logger().Error().Str("tag", tag), fields).Msg(message)
}

// Debug logs a debug-level line, used for per-stage annotation tracing.
func Debug(tag, message string, fields ...Field) {
	withFields(logger().Debug().Str("tag", tag), fields).Msg(message)
}

// Banner prints a one-line startup banner; kept as a distinct call (not
// routed through zerolog) because it is operator-facing chrome, not a
// structured log record.
func Banner(version string) {
	v := version
	if v == "" {
		v = "dev"
	}
	fmt.Fprintf(os.Stdout, "=== TCG Radar Signal Engine (%s) ===\n", v)
}

// Section prints a section divider for human-facing startup output.
func Section(title string) {
	fmt.Fprintf(os.Stdout, "--- %s ---\n", title)
}

// Stats prints a single key/value startup statistic line.
func Stats(key string, value any) {
	fmt.Fprintf(os.Stdout, "  %-20s %v\n", key, value)
}
