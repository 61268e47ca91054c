package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// WindowAttrs is the subset of GetWindowAttributes' reply the core
// consults (spec.md §4.3's override-redirect/map-state filter).
type WindowAttrs struct {
	OverrideRedirect bool
	Viewable         bool
}

// Requester is the X11 request surface the core's workspace, keybind and
// manager packages depend on, instead of a concrete connection type. *Conn
// implements it against a real github.com/BurntSushi/xgb connection;
// x11test.Fake implements it in-memory, recording a request trace, for the
// mock-X-server tests spec.md §8 requires. The boundary mirrors the one
// tesselslate-resetti's internal/x11 package and bryanchriswhite/
// FocusStreamer's X11Backend draw around the raw xgb calls their
// window-management logic issues.
type Requester interface {
	Root() xproto.Window
	ScreenSize() (w, h uint32)

	NewWindowID() (xproto.Window, error)
	CreateWindow(id xproto.Window, x, y int16, w, h, borderWidth uint16, borderColor uint32) error
	ChangeWindowAttributes(win xproto.Window, mask uint32, values []uint32) error
	ReparentWindow(win, parent xproto.Window, x, y int16) error
	MapWindow(win xproto.Window) error
	UnmapWindow(win xproto.Window) error
	DestroyWindow(win xproto.Window) error
	ConfigureWindow(win xproto.Window, mask uint16, values []uint32) error
	GrabButton(win xproto.Window, button xproto.Button, modifiers uint16) error
	GrabKey(root xproto.Window, modifiers uint16, code xproto.Keycode) error
	GrabServer() error
	UngrabServer() error
	QueryTree(win xproto.Window) ([]xproto.Window, error)
	GetWindowAttributes(win xproto.Window) (WindowAttrs, error)
	GetGeometry(win xproto.Window) (x, y int16, w, h uint16, err error)
	GetKeyboardMapping() (Keymap, error)
	Atom(name string) (xproto.Atom, error)
	GetProtocolAtoms(win xproto.Window, wmProtocols xproto.Atom) ([]xproto.Atom, error)
	SendClientMessage(win xproto.Window, msgType xproto.Atom, data [5]uint32) error
	KillClient(win xproto.Window) error
	SaveSetInsert(win xproto.Window) error
	SaveSetDelete(win xproto.Window) error

	WaitForEvent() (xgb.Event, error)
	Close()

	// Trace returns the recorded request trace, in order. The real
	// connection returns nil; fakes record every call for assertions
	// against spec.md §8's testable properties.
	Trace() []string
}
