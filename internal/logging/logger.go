// Package logging provides structured logging for the faultline engine.
//
// It is a deliberately small, boring logger: five levels, named loggers
// per component, and key-value fields for searchability.
//
//	logger := logging.GetLogger("engine")
//	logger.Info("batch analyzed")
//	logger.InfoWithFields("batch analyzed",
//	    logging.Field("entries", len(entries)),
//	    logging.Field("skipped", len(errs)),
//	)
//
// Logger instances are immutable; WithField returns a child logger and
// the originals stay safe for concurrent use. DEBUG/INFO/WARN go to
// stdout, ERROR/FATAL to stderr. The LOG_TIMESTAMP env var overrides the
// timestamp for deterministic test output.
package logging

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents the logging level
type Level int

const (
	// LevelDebug for detailed debugging information
	LevelDebug Level = iota
	// LevelInfo for informational messages
	LevelInfo
	// LevelWarn for potentially problematic situations
	LevelWarn
	// LevelError for failures that do not stop the application
	LevelError
	// LevelFatal for failures that terminate the application
	LevelFatal
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// LogField is a structured logging field
type LogField struct {
	Key   string
	Value interface{}
}

// Field creates a structured logging field
func Field(key string, value interface{}) LogField {
	return LogField{Key: key, Value: value}
}

// Logger writes leveled, optionally structured log lines
type Logger struct {
	level  Level
	name   string
	fields map[string]interface{}
}

var (
	defaultLevel = LevelInfo
	levelMu      sync.RWMutex
	// exitFunc is called by Fatal, overridable for tests
	exitFunc = os.Exit
)

// Initialize sets the default level for loggers created afterwards.
// Unknown level names fall back to info.
func Initialize(levelStr string) {
	levelMu.Lock()
	defer levelMu.Unlock()
	defaultLevel = ParseLevel(levelStr)
}

// ParseLevel converts a level name to a Level, defaulting to info
func ParseLevel(levelStr string) Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return LevelDebug
	case "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// GetLogger returns a named logger at the configured default level
func GetLogger(name string) *Logger {
	levelMu.RLock()
	defer levelMu.RUnlock()
	return &Logger{level: defaultLevel, name: name}
}

// WithField returns a child logger carrying an additional persistent field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	child := &Logger{
		level:  l.level,
		name:   l.name,
		fields: make(map[string]interface{}, len(l.fields)+1),
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	child.fields[key] = value
	return child
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) { l.logf(LevelDebug, msg, args...) }

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) { l.logf(LevelInfo, msg, args...) }

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) { l.logf(LevelWarn, msg, args...) }

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) { l.logf(LevelError, msg, args...) }

// ErrorWithErr logs an error message with an error object appended
func (l *Logger) ErrorWithErr(msg string, err error) {
	l.logf(LevelError, "%s - %v", msg, err)
}

// Fatal logs a fatal message and exits with code 1
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.logf(LevelFatal, msg, args...)
	exitFunc(1)
}

// DebugWithFields logs a debug message with structured fields
func (l *Logger) DebugWithFields(msg string, fields ...LogField) {
	l.logFields(LevelDebug, msg, fields...)
}

// InfoWithFields logs an info message with structured fields
func (l *Logger) InfoWithFields(msg string, fields ...LogField) {
	l.logFields(LevelInfo, msg, fields...)
}

// WarnWithFields logs a warning message with structured fields
func (l *Logger) WarnWithFields(msg string, fields ...LogField) {
	l.logFields(LevelWarn, msg, fields...)
}

// ErrorWithFields logs an error message with structured fields
func (l *Logger) ErrorWithFields(msg string, fields ...LogField) {
	l.logFields(LevelError, msg, fields...)
}

func (l *Logger) logf(level Level, msg string, args ...interface{}) {
	if level < l.level {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.write(level, msg, nil)
}

func (l *Logger) logFields(level Level, msg string, fields ...LogField) {
	if level < l.level {
		return
	}
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}
	l.write(level, msg, merged)
}

// write formats one line and routes it by severity:
// DEBUG/INFO/WARN to stdout, ERROR/FATAL to stderr.
func (l *Logger) write(level Level, msg string, fields map[string]interface{}) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] [%s] %s: %s", timestamp(), levelNames[level], l.name, msg)

	if len(fields) > 0 {
		// Sorted keys keep lines stable for tests and grepping
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" |")
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, fields[k])
		}
	}

	out := os.Stdout
	if level >= LevelError {
		out = os.Stderr
	}
	fmt.Fprintln(out, sb.String())
}

// timestamp returns an RFC3339 timestamp, overridable via LOG_TIMESTAMP
// for deterministic test output.
func timestamp() string {
	if override := os.Getenv("LOG_TIMESTAMP"); override != "" {
		return override
	}
	return time.Now().Format(time.RFC3339)
}
