// Package x11 wraps github.com/BurntSushi/xgb and xgb/xproto with the
// subset of the X11 protocol the core window manager needs: connection
// setup, the root window and screen, atom interning, keysym/keycode
// translation and save-set bookkeeping. Every request is issued through
// the Checked cookie variant and resolved with .Check(), the xgb
// equivalent of Xlib's synchronous error-handler callback (spec.md §6).
package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Conn is the production Requester, issuing requests against a real
// *xgb.Conn. Workspace, keybind and manager depend on the Requester
// interface rather than this type directly, so tests can substitute
// x11test.Fake.
type Conn struct {
	*xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo

	atoms map[string]xproto.Atom
}

var _ Requester = (*Conn)(nil)

// ErrNoDisplay and ErrNoScreen distinguish Connect's two startup failure
// modes (spec.md §7): no $DISPLAY reachable at all, versus a connection
// that came up but whose setup reply carries no usable screen. manager.New
// wraps whichever of these it sees in its own sentinel of the same name.
var (
	ErrNoDisplay = errors.New("no display")
	ErrNoScreen  = errors.New("no screen")
)

// Connect opens a connection to the X server named by $DISPLAY and reads
// screen zero's root window and geometry.
func Connect() (*Conn, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDisplay, err)
	}
	setup := xproto.Setup(conn)
	if setup == nil || len(setup.Roots) < 1 {
		conn.Close()
		return nil, ErrNoScreen
	}
	screen := &setup.Roots[0]
	return &Conn{
		Conn:   conn,
		root:   screen.Root,
		screen: screen,
		atoms:  make(map[string]xproto.Atom),
	}, nil
}

// Close releases the display connection.
func (c *Conn) Close() {
	if c.Conn != nil {
		c.Conn.Close()
	}
}

func (c *Conn) Root() xproto.Window { return c.root }

func (c *Conn) ScreenSize() (uint32, uint32) {
	return uint32(c.screen.WidthInPixels), uint32(c.screen.HeightInPixels)
}

// Trace is nil for the real connection; only x11test.Fake records one.
func (c *Conn) Trace() []string { return nil }

func (c *Conn) NewWindowID() (xproto.Window, error) {
	return xproto.NewWindowId(c.Conn)
}

// CreateWindow creates an InputOutput window of the root's visual and
// depth, with borderColor as its initial CwBorderPixel. Event selection
// is left to a follow-up ChangeWindowAttributes call, since every caller
// overwrites it before mapping.
func (c *Conn) CreateWindow(id xproto.Window, x, y int16, w, h, borderWidth uint16, borderColor uint32) error {
	return xproto.CreateWindowChecked(
		c.Conn, c.screen.RootDepth, id, c.root,
		x, y, w, h, borderWidth,
		xproto.WindowClassInputOutput, c.screen.RootVisual,
		xproto.CwBorderPixel,
		[]uint32{borderColor},
	).Check()
}

func (c *Conn) ChangeWindowAttributes(win xproto.Window, mask uint32, values []uint32) error {
	return xproto.ChangeWindowAttributesChecked(c.Conn, win, mask, values).Check()
}

func (c *Conn) ReparentWindow(win, parent xproto.Window, x, y int16) error {
	return xproto.ReparentWindowChecked(c.Conn, win, parent, x, y).Check()
}

func (c *Conn) MapWindow(win xproto.Window) error {
	return xproto.MapWindowChecked(c.Conn, win).Check()
}

func (c *Conn) UnmapWindow(win xproto.Window) error {
	return xproto.UnmapWindowChecked(c.Conn, win).Check()
}

func (c *Conn) DestroyWindow(win xproto.Window) error {
	return xproto.DestroyWindowChecked(c.Conn, win).Check()
}

func (c *Conn) ConfigureWindow(win xproto.Window, mask uint16, values []uint32) error {
	return xproto.ConfigureWindowChecked(c.Conn, win, mask, values).Check()
}

func (c *Conn) GrabButton(win xproto.Window, button xproto.Button, modifiers uint16) error {
	return xproto.GrabButtonChecked(
		c.Conn, false, win,
		uint16(xproto.EventMaskButtonPress),
		xproto.GrabModeSync, xproto.GrabModeSync,
		0, 0,
		button, modifiers,
	).Check()
}

func (c *Conn) GrabKey(root xproto.Window, modifiers uint16, code xproto.Keycode) error {
	return xproto.GrabKeyChecked(
		c.Conn, false, root, modifiers, code,
		xproto.GrabModeSync, xproto.GrabModeSync,
	).Check()
}

func (c *Conn) GrabServer() error   { return xproto.GrabServerChecked(c.Conn).Check() }
func (c *Conn) UngrabServer() error { return xproto.UngrabServerChecked(c.Conn).Check() }

func (c *Conn) QueryTree(win xproto.Window) ([]xproto.Window, error) {
	reply, err := xproto.QueryTree(c.Conn, win).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Children, nil
}

func (c *Conn) GetWindowAttributes(win xproto.Window) (WindowAttrs, error) {
	reply, err := xproto.GetWindowAttributes(c.Conn, win).Reply()
	if err != nil {
		return WindowAttrs{}, err
	}
	return WindowAttrs{
		OverrideRedirect: reply.OverrideRedirect,
		Viewable:         reply.MapState == xproto.MapStateViewable,
	}, nil
}

func (c *Conn) GetGeometry(win xproto.Window) (x, y int16, w, h uint16, err error) {
	reply, err := xproto.GetGeometry(c.Conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return reply.X, reply.Y, reply.Width, reply.Height, nil
}

func (c *Conn) GetKeyboardMapping() (Keymap, error) {
	return loadKeymap(c.Conn)
}

// Atom interns name, caching the result for subsequent lookups.
func (c *Conn) Atom(name string) (xproto.Atom, error) {
	if a, ok := c.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(c.Conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern atom %q: %w", name, err)
	}
	c.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// GetProtocolAtoms returns the WM_PROTOCOLS property's atom list for win,
// queried through wmProtocols (the interned WM_PROTOCOLS atom).
func (c *Conn) GetProtocolAtoms(win xproto.Window, wmProtocols xproto.Atom) ([]xproto.Atom, error) {
	reply, err := xproto.GetProperty(c.Conn, false, win, wmProtocols, xproto.GetPropertyTypeAny, 0, 64).Reply()
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, nil
	}
	var out []xproto.Atom
	for v := reply.Value; len(v) >= 4; v = v[4:] {
		out = append(out, xproto.Atom(uint32(v[0])|uint32(v[1])<<8|uint32(v[2])<<16|uint32(v[3])<<24))
	}
	return out, nil
}

func (c *Conn) SendClientMessage(win xproto.Window, msgType xproto.Atom, data [5]uint32) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   msgType,
		Data:   xproto.ClientMessageDataUnionData32New(data[:]),
	}
	return xproto.SendEventChecked(c.Conn, false, win, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}

func (c *Conn) KillClient(win xproto.Window) error {
	return xproto.KillClientChecked(c.Conn, uint32(win)).Check()
}

// SaveSetInsert adds win to the server's save-set, so that if this process
// dies the server reparents win back to the root instead of destroying it.
func (c *Conn) SaveSetInsert(win xproto.Window) error {
	return xproto.ChangeSaveSetChecked(c.Conn, xproto.SetModeInsert, win).Check()
}

// SaveSetDelete removes win from the save-set, used on clean teardown.
func (c *Conn) SaveSetDelete(win xproto.Window) error {
	return xproto.ChangeSaveSetChecked(c.Conn, xproto.SetModeDelete, win).Check()
}

// ErrorCode maps an error returned from a Requester call to its X11
// protocol error code, for building manager.ProtocolError out of an
// asynchronous error observed via WaitForEvent. ok is false for anything
// that isn't one of xproto's typed protocol errors (e.g. a connection
// read failure), which callers should treat as fatal rather than logged
// and swallowed.
func ErrorCode(err error) (code byte, ok bool) {
	switch err.(type) {
	case xproto.RequestError:
		return 1, true
	case xproto.ValueError:
		return 2, true
	case xproto.WindowError:
		return 3, true
	case xproto.PixmapError:
		return 4, true
	case xproto.AtomError:
		return 5, true
	case xproto.CursorError:
		return 6, true
	case xproto.FontError:
		return 7, true
	case xproto.MatchError:
		return 8, true
	case xproto.DrawableError:
		return 9, true
	case xproto.AccessError:
		return 10, true
	case xproto.AllocError:
		return 11, true
	case xproto.ColormapError:
		return 12, true
	case xproto.GContextError:
		return 13, true
	case xproto.IDChoiceError:
		return 14, true
	case xproto.NameError:
		return 15, true
	case xproto.LengthError:
		return 16, true
	case xproto.ImplementationError:
		return 17, true
	default:
		return 0, false
	}
}

// ErrorName returns the symbolic name of an X11 error code, per spec.md
// §6's recognized error list.
func ErrorName(code byte) string {
	switch code {
	case 0:
		return "Success"
	case 1:
		return "BadRequest"
	case 2:
		return "BadValue"
	case 3:
		return "BadWindow"
	case 4:
		return "BadPixmap"
	case 5:
		return "BadAtom"
	case 6:
		return "BadCursor"
	case 7:
		return "BadFont"
	case 8:
		return "BadMatch"
	case 9:
		return "BadDrawable"
	case 10:
		return "BadAccess"
	case 11:
		return "BadAlloc"
	case 12:
		return "BadColor"
	case 13:
		return "BadGC"
	case 14:
		return "BadIDChoice"
	case 15:
		return "BadName"
	case 16:
		return "BadLength"
	case 17:
		return "BadImplementation"
	default:
		return "Unknown"
	}
}
