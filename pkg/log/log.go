// Package log wires zerolog for the chat binaries. Library packages receive
// a zerolog.Logger explicitly; only the entry points touch the global here.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide root logger.
var Logger zerolog.Logger

// Config holds logging configuration.
type Config struct {
	// Level is one of debug, info, warn, error. Unknown values fall back to
	// info.
	Level string

	// JSONOutput selects machine-readable output over the console writer.
	JSONOutput bool

	// Output defaults to stderr.
	Output io.Writer
}

// Init initializes the root logger.
func Init(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if !cfg.JSONOutput {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	Logger = zerolog.New(output).With().Timestamp().Logger()
}

// WithComponent creates a child logger carrying a component field.
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}
