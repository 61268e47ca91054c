package manager

import (
	"errors"

	"github.com/blinklad/rdwm/internal/x11"
)

// Fatal startup errors, per spec.md §7's error taxonomy. NoDisplay and
// NoScreen are fatal at startup; ManagerConflict is fatal and maps to exit
// code 2 (spec.md §6's CLI surface).
var (
	ErrNoDisplay       = errors.New("no display")
	ErrNoScreen        = errors.New("no screen")
	ErrManagerConflict = errors.New("manager already running")
)

// ErrBadWindowAttrs aborts a single frame() operation (spec.md §7); it
// never propagates past the event handler that produced it.
var ErrBadWindowAttrs = errors.New("bad window attributes")

// ProtocolError wraps an asynchronous X protocol error observed outside
// startup. It is logged and swallowed per spec.md §7's propagation
// policy — "the application that issued the offending request will see
// the X-level failure but the manager continues."
type ProtocolError struct {
	Code    byte
	Request string
}

func (e *ProtocolError) Error() string {
	return "protocol error " + e.Request + ": " + x11.ErrorName(e.Code)
}
