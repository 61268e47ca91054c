// Package client holds the data model for one managed application window:
// its frame (manager-owned decoration) and context (the application's
// original top-level window), its flag set, and its geometry, per
// spec.md §3.
package client

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/blinklad/rdwm/internal/geom"
)

// Flags is the mutually-consistent flag subset a Client carries.
type Flags uint8

const (
	None       Flags = 0
	Tiling     Flags = 1 << 0
	Floating   Flags = 1 << 1
	Urgent     Flags = 1 << 2
	Fullscreen Flags = 1 << 3
	NeverFocus Flags = 1 << 4
	Fixed      Flags = 1 << 5
)

// Has reports whether every bit in want is set.
func (f Flags) Has(want Flags) bool { return f&want == want }

// Set returns f with every bit of add set.
func (f Flags) Set(add Flags) Flags { return f | add }

// Clear returns f with every bit of rm cleared.
func (f Flags) Clear(rm Flags) Flags { return f &^ rm }

// Client represents one managed application window.
type Client struct {
	Name    string
	Frame   xproto.Window
	Context xproto.Window
	Flags   Flags

	// Hints is the geometry the application requested (read with
	// GetGeometry at frame time, zero if that query failed); Geometry is what the manager has
	// actually assigned the frame/context most recently.
	Hints    geom.Rect
	Geometry geom.Rect
}

// New constructs a Client with the TILING flag set, matching
// Workspace.create_window's default per spec.md §4.2.
func New(name string, frame, context xproto.Window, hints geom.Rect) *Client {
	return &Client{
		Name:    name,
		Frame:   frame,
		Context: context,
		Flags:   Tiling,
		Hints:   hints,
	}
}

// Tiles reports whether c currently participates in the tiling partition:
// TILING set, and neither FLOATING, FIXED nor FULLSCREEN (spec.md §3,
// "FIXED implies no tiling participation; FULLSCREEN overrides tiling
// geometry").
func (c *Client) Tiles() bool {
	return c.Flags.Has(Tiling) && !c.Flags.Has(Floating) && !c.Flags.Has(Fixed) && !c.Flags.Has(Fullscreen)
}
