// Package logging builds the zerolog logger used by applications embedding the
// urlencoded extractor.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/tomasbasham/enumform/config"
)

func New(conf config.LoggingConfig) zerolog.Logger {
	return NewWithWriter(conf, os.Stdout)
}

// NewWithWriter writes human readable lines for the text format and one JSON
// object per event otherwise.
func NewWithWriter(conf config.LoggingConfig, w io.Writer) zerolog.Logger {
	if conf.Format == config.LogTextFormat {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}

	return zerolog.New(w).
		Level(conf.Level).
		With().
		Timestamp().
		Str("component", "enumform").
		Logger()
}
