// Package logging builds the launcher's hclog loggers.
package logging

import (
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	envLogLevel = "CRAFTER_LOG_LEVEL"
	envJSONLog  = "CRAFTER_JSON_LOG"

	// DefaultLevel keeps normal runs quiet; the game owns the terminal.
	DefaultLevel = "warn"
)

// NewLogger creates a logger writing to output, or stderr when output is
// nil. Text output is prefixed per line; CRAFTER_JSON_LOG=1 switches to
// JSON without a prefix.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv(envJSONLog) == "1"
	if !jsonFormat {
		output = NewPrefixWriter(linePrefix(), output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// linePrefix is ASCII on Windows consoles, which mangle emoji.
func linePrefix() string {
	if runtime.GOOS == "windows" {
		return "[crafter] "
	}
	return "☕ "
}

// GetLogLevel returns CRAFTER_LOG_LEVEL, or DefaultLevel when it is unset
// or not a level hclog knows.
func GetLogLevel() string {
	level := strings.TrimSpace(os.Getenv(envLogLevel))
	if level == "" || hclog.LevelFromString(level) == hclog.NoLevel {
		return DefaultLevel
	}
	return level
}
