package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/killallgit/stagewise/pkg/config"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger provides a unified logging interface
type Logger struct {
	level  LogLevel
	logger *log.Logger
	file   *os.File
}

var defaultLogger atomic.Pointer[Logger]

// Init initializes the default logger from logging settings
func Init(settings config.LoggingConfig) error {
	l, err := New(ParseLevel(settings.Level), settings.File, settings.Preserve)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if prev := defaultLogger.Swap(l); prev != nil {
		prev.Close()
	}
	return nil
}

// New creates a Logger writing to logFile. Relative paths are resolved
// against the settings directory. preserve appends instead of truncating.
func New(level LogLevel, logFile string, preserve bool) (*Logger, error) {
	logPath := logFile
	if !filepath.IsAbs(logPath) {
		logPath = config.BuildSettingsPath(filepath.Base(logPath))
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if preserve {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	file, err := os.OpenFile(logPath, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &Logger{
		level:  level,
		logger: log.New(file, "", log.LstdFlags),
		file:   file,
	}, nil
}

// NewWriter creates a Logger writing to w (useful for testing)
func NewWriter(level LogLevel, w io.Writer) *Logger {
	return &Logger{
		level:  level,
		logger: log.New(w, "", 0),
	}
}

// SetDefault replaces the default logger; nil disables logging
func SetDefault(l *Logger) {
	defaultLogger.Store(l)
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// ParseLevel converts a string level to LogLevel
func ParseLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *Logger) log(level LogLevel, prefix, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] %s%s", level.String(), prefix, message)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, "", format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, "", format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, "", format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, "", format, args...)
}

// ComponentLogger prefixes every message with a component name. It resolves
// the default logger on each call, so it is safe to create before Init.
type ComponentLogger struct {
	prefix string
}

// WithComponent returns a logger scoped to component
func WithComponent(component string) *ComponentLogger {
	return &ComponentLogger{prefix: "[" + component + "] "}
}

func (c *ComponentLogger) log(level LogLevel, format string, args ...interface{}) {
	if l := defaultLogger.Load(); l != nil {
		l.log(level, c.prefix, format, args...)
	}
}

func (c *ComponentLogger) Debug(format string, args ...interface{}) {
	c.log(LevelDebug, format, args...)
}

func (c *ComponentLogger) Info(format string, args ...interface{}) {
	c.log(LevelInfo, format, args...)
}

func (c *ComponentLogger) Warn(format string, args ...interface{}) {
	c.log(LevelWarn, format, args...)
}

func (c *ComponentLogger) Error(format string, args ...interface{}) {
	c.log(LevelError, format, args...)
}

// Package-level convenience functions using the default logger

// Debug logs a debug message using the default logger
func Debug(format string, args ...interface{}) {
	if l := defaultLogger.Load(); l != nil {
		l.Debug(format, args...)
	}
}

// Info logs an info message using the default logger
func Info(format string, args ...interface{}) {
	if l := defaultLogger.Load(); l != nil {
		l.Info(format, args...)
	}
}

// Warn logs a warning message using the default logger
func Warn(format string, args ...interface{}) {
	if l := defaultLogger.Load(); l != nil {
		l.Warn(format, args...)
	}
}

// Error logs an error message using the default logger
func Error(format string, args ...interface{}) {
	if l := defaultLogger.Load(); l != nil {
		l.Error(format, args...)
	}
}

// Close closes the default logger
func Close() error {
	if l := defaultLogger.Swap(nil); l != nil {
		return l.Close()
	}
	return nil
}
