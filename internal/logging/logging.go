package logging

import (
	"io"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
)

// Log level constants
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Setup sends log output to w in human readable form and sets the level.
func Setup(w io.Writer, level string) error {
	log.SetHandler(cli.New(w))
	return SetLevel(level)
}

// SetLevel sets the global logging level
func SetLevel(level string) error {
	l, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(l)
	return nil
}

// Logger returns the shared logger, for packages that take a log.Interface.
func Logger() log.Interface {
	return log.Log
}

func WithFields(fields log.Fields) *log.Entry {
	return log.WithFields(fields)
}

// Debug logs a debug message
func Debug(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	log.Errorf(format, args...)
}
