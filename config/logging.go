package config

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Logger builds the run logger. An unknown level falls back to info.
func (l LoggingConfig) Logger(out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		level = zerolog.InfoLevel
	}
	if l.Format == "json" {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}
	output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
