package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger at the named level ("info" if unknown).
func New(level string, out io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "profile-client").
		Logger()
}
