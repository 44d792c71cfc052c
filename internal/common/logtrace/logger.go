// Package logtrace sets up the process-wide zerolog logger.
package logtrace

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global logger to write human readable lines to stderr.
// Debug level is enabled when debug is true, Info otherwise.
func InitLogger(debug bool) {
	InitLoggerWithWriter(os.Stderr, debug)
}

// InitLoggerWithWriter is InitLogger with an explicit destination.
func InitLoggerWithWriter(w io.Writer, debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	log.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
}
