package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// ParseLevel maps a config string to a Level; unknown strings yield LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// -----------------------------------------------------------------------------

// Logger is a named, levelled logger shared by the components of the tracker.
type Logger struct {
	name   string
	level  Level
	logger *log.Logger
}

// New creates a Logger writing to stdout.
func New(name string, level Level) *Logger {
	return NewWithWriter(os.Stdout, name, level)
}

// NewWithWriter creates a Logger writing to w.
func NewWithWriter(w io.Writer, name string, level Level) *Logger {
	return &Logger{name: name, level: level, logger: log.New(w, "", log.LstdFlags)}
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() *Logger {
	return NewWithWriter(io.Discard, "discard", LevelError+1)
}

// Named returns a child logger sharing output and level.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{name: name, level: l.level, logger: l.logger}
}

// -----------------------------------------------------------------------------

func (l *Logger) Debug(format string, args ...any)   { l.printf(LevelDebug, "DEBUG", format, args...) }
func (l *Logger) Info(format string, args ...any)    { l.printf(LevelInfo, "INFO", format, args...) }
func (l *Logger) Warning(format string, args ...any) { l.printf(LevelWarning, "WARNING", format, args...) }
func (l *Logger) Error(format string, args ...any)   { l.printf(LevelError, "ERROR", format, args...) }

// Fatal logs and exits the process.
func (l *Logger) Fatal(format string, args ...any) {
	l.printf(LevelError, "FATAL", format, args...)
	os.Exit(1)
}

func (l *Logger) printf(level Level, tag, format string, args ...any) {
	// a nil logger is silent
	if l == nil || level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] %s: %s", l.name, tag, msg)
}
