// Package logging provides leveled logging for the whole module.
// Library packages log sparingly (debug-level diagnostics only); the
// CLI raises or lowers the level from its configuration.
package logging

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once sync.Once
	std  *log.Logger
)

func logger() *log.Logger {
	once.Do(func() {
		std = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "three-csg",
		})
		std.SetLevel(log.InfoLevel)
	})
	return std
}

// SetLevel adjusts the minimum reported level by name
// (debug, info, warn, error, fatal).
func SetLevel(name string) error {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	logger().SetLevel(lvl)
	return nil
}

// Debug logs a formatted message at debug level.
func Debug(format string, args ...interface{}) {
	logger().Debugf(format, args...)
}

// Info logs a formatted message at info level.
func Info(format string, args ...interface{}) {
	logger().Infof(format, args...)
}

// Warn logs a formatted message at warn level.
func Warn(format string, args ...interface{}) {
	logger().Warnf(format, args...)
}

// Error logs a formatted message at error level.
func Error(format string, args ...interface{}) {
	logger().Errorf(format, args...)
}

// Fatal logs a formatted message and exits.
func Fatal(format string, args ...interface{}) {
	logger().Fatalf(format, args...)
}
