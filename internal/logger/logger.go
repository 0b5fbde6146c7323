package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns the service logger: human-readable console output in
// development, JSON elsewhere.
func New(environment string) zerolog.Logger {
	if environment == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
}
