// Package logger provides the leveled, translatable logger used by the server
// and the CLI. All output goes to stderr; stdout belongs to the protocol.
package logger

import "strings"

// Level is the severity of a log message.
type Level int

const (
	// LevelDebug is for per-request details.
	LevelDebug Level = iota
	// LevelInfo is for lifecycle messages (startup, shutdown).
	LevelInfo
	// LevelWarn is for failed requests and recoverable problems.
	LevelWarn
	// LevelError is for problems that stop the server.
	LevelError
	// LevelQuiet suppresses all output.
	LevelQuiet
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLevel parses a level name. Unknown names select LevelInfo and report false.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "quiet", "off":
		return LevelQuiet, true
	default:
		return LevelInfo, false
	}
}

// Logger is a leveled logger. msg is a message key that may be translated
// before formatting with args.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the component name.
	WithComponent(component string) Logger
}
