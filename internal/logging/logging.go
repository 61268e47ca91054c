// Package logging is the core's logging collaborator (spec.md §6): a thin
// wrapper over github.com/rs/zerolog exposing per-component loggers, in
// the style observed in bryanchriswhite/FocusStreamer's
// logger.WithComponent(name) usage.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var base zerolog.Logger

func init() {
	base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()
}

// SetLevel configures the minimum severity emitted, one of zerolog's level
// names ("trace", "debug", "info", "warn", "error"). An unrecognized name
// falls back to info.
func SetLevel(name string) {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// Component returns a logger tagged with the name of the subsystem
// emitting the record (e.g. "manager", "workspace", "keybind").
func Component(name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}
