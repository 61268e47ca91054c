// Package x11test provides an in-memory x11.Requester that records every
// request it receives, for the mock-X-server tests described in spec.md
// §8 ("a mock X server that records request traces"). It never opens a
// real display connection.
package x11test

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/blinklad/rdwm/internal/x11"
)

type window struct {
	attrs    x11.WindowAttrs
	x, y     int16
	w, h     uint16
	children []xproto.Window
}

// Fake is an x11.Requester backed by plain Go maps instead of a socket.
// Zero value is not usable; construct with New.
type Fake struct {
	root   xproto.Window
	w, h   uint32
	nextID xproto.Window

	windows   map[xproto.Window]*window
	atoms     map[string]xproto.Atom
	nextAtom  xproto.Atom
	protocols map[xproto.Window][]xproto.Atom
	keymap    x11.Keymap
	queue     []queued

	trace []string

	// AccessErrorOnRootEvents makes the next ChangeWindowAttributes call
	// against the root window fail with xproto.AccessError, simulating a
	// competing window manager already holding substructure redirect
	// (spec.md §8 scenario: startup conflict).
	AccessErrorOnRootEvents bool
}

var _ x11.Requester = (*Fake)(nil)

// New builds a Fake with the given root window id and screen size. The
// root window always exists in the window table.
func New(root xproto.Window, w, h uint32) *Fake {
	f := &Fake{
		root:      root,
		w:         w,
		h:         h,
		nextID:    root + 1,
		windows:   make(map[xproto.Window]*window),
		atoms:     make(map[string]xproto.Atom),
		nextAtom:  1,
		protocols: make(map[xproto.Window][]xproto.Atom),
	}
	f.windows[root] = &window{attrs: x11.WindowAttrs{Viewable: true}}
	return f
}

// AddExisting registers win as a pre-existing, viewable, non-override
// window and makes it a child of root, for startup-scan tests
// (spec.md §4.1 step 7).
func (f *Fake) AddExisting(win xproto.Window, x, y int16, w, h uint16) {
	f.windows[win] = &window{
		attrs: x11.WindowAttrs{Viewable: true},
		x:     x, y: y, w: w, h: h,
	}
	root := f.windows[f.root]
	root.children = append(root.children, win)
}

// MarkOverrideRedirect flags win as override-redirect, so a startup scan
// skips it (spec.md §4.1/§4.3's override-redirect filter).
func (f *Fake) MarkOverrideRedirect(win xproto.Window) {
	if w, ok := f.windows[win]; ok {
		w.attrs.OverrideRedirect = true
	}
}

// SetProtocols records the WM_PROTOCOLS atom list win advertises, so
// supportsProtocol-style lookups against it succeed.
func (f *Fake) SetProtocols(win xproto.Window, protocols ...xproto.Atom) {
	f.protocols[win] = protocols
}

// SetKeymap installs the keymap GetKeyboardMapping returns.
func (f *Fake) SetKeymap(km x11.Keymap) { f.keymap = km }

// Trace returns every request issued, in call order, formatted as
// "Method(args)".
func (f *Fake) Trace() []string { return f.trace }

func (f *Fake) record(format string, args ...interface{}) {
	f.trace = append(f.trace, fmt.Sprintf(format, args...))
}

func (f *Fake) Root() xproto.Window        { return f.root }
func (f *Fake) ScreenSize() (uint32, uint32) { return f.w, f.h }

func (f *Fake) NewWindowID() (xproto.Window, error) {
	id := f.nextID
	f.nextID++
	f.record("NewWindowID() -> %d", id)
	return id, nil
}

func (f *Fake) CreateWindow(id xproto.Window, x, y int16, w, h, borderWidth uint16, borderColor uint32) error {
	f.record("CreateWindow(%d, %d,%d %dx%d border=%d color=%#x)", id, x, y, w, h, borderWidth, borderColor)
	f.windows[id] = &window{x: x, y: y, w: w, h: h}
	return nil
}

func (f *Fake) ChangeWindowAttributes(win xproto.Window, mask uint32, values []uint32) error {
	f.record("ChangeWindowAttributes(%d, mask=%#x)", win, mask)
	if f.AccessErrorOnRootEvents && win == f.root && mask&uint32(xproto.CwEventMask) != 0 {
		f.AccessErrorOnRootEvents = false
		return xproto.AccessError{}
	}
	return nil
}

func (f *Fake) ReparentWindow(win, parent xproto.Window, x, y int16) error {
	f.record("ReparentWindow(%d -> %d, %d,%d)", win, parent, x, y)
	if w, ok := f.windows[win]; ok {
		w.x, w.y = x, y
	}
	return nil
}

func (f *Fake) MapWindow(win xproto.Window) error {
	f.record("MapWindow(%d)", win)
	if w, ok := f.windows[win]; ok {
		w.attrs.Viewable = true
	}
	return nil
}

func (f *Fake) UnmapWindow(win xproto.Window) error {
	f.record("UnmapWindow(%d)", win)
	if w, ok := f.windows[win]; ok {
		w.attrs.Viewable = false
	}
	return nil
}

func (f *Fake) DestroyWindow(win xproto.Window) error {
	f.record("DestroyWindow(%d)", win)
	if _, ok := f.windows[win]; !ok {
		return xproto.WindowError{}
	}
	delete(f.windows, win)
	return nil
}

func (f *Fake) ConfigureWindow(win xproto.Window, mask uint16, values []uint32) error {
	f.record("ConfigureWindow(%d, mask=%#x, values=%v)", win, mask, values)
	return nil
}

func (f *Fake) GrabButton(win xproto.Window, button xproto.Button, modifiers uint16) error {
	f.record("GrabButton(%d, button=%d, mods=%#x)", win, button, modifiers)
	return nil
}

func (f *Fake) GrabKey(root xproto.Window, modifiers uint16, code xproto.Keycode) error {
	f.record("GrabKey(root=%d, mods=%#x, code=%d)", root, modifiers, code)
	return nil
}

func (f *Fake) GrabServer() error   { f.record("GrabServer()"); return nil }
func (f *Fake) UngrabServer() error { f.record("UngrabServer()"); return nil }

func (f *Fake) QueryTree(win xproto.Window) ([]xproto.Window, error) {
	f.record("QueryTree(%d)", win)
	w, ok := f.windows[win]
	if !ok {
		return nil, xproto.WindowError{}
	}
	return append([]xproto.Window(nil), w.children...), nil
}

func (f *Fake) GetWindowAttributes(win xproto.Window) (x11.WindowAttrs, error) {
	f.record("GetWindowAttributes(%d)", win)
	w, ok := f.windows[win]
	if !ok {
		return x11.WindowAttrs{}, xproto.WindowError{}
	}
	return w.attrs, nil
}

func (f *Fake) GetGeometry(win xproto.Window) (x, y int16, w, h uint16, err error) {
	f.record("GetGeometry(%d)", win)
	win2, ok := f.windows[win]
	if !ok {
		return 0, 0, 0, 0, xproto.DrawableError{}
	}
	return win2.x, win2.y, win2.w, win2.h, nil
}

func (f *Fake) GetKeyboardMapping() (x11.Keymap, error) {
	f.record("GetKeyboardMapping()")
	return f.keymap, nil
}

func (f *Fake) Atom(name string) (xproto.Atom, error) {
	if a, ok := f.atoms[name]; ok {
		return a, nil
	}
	a := f.nextAtom
	f.nextAtom++
	f.atoms[name] = a
	f.record("Atom(%q) -> %d", name, a)
	return a, nil
}

func (f *Fake) GetProtocolAtoms(win xproto.Window, wmProtocols xproto.Atom) ([]xproto.Atom, error) {
	f.record("GetProtocolAtoms(%d)", win)
	return f.protocols[win], nil
}

func (f *Fake) SendClientMessage(win xproto.Window, msgType xproto.Atom, data [5]uint32) error {
	f.record("SendClientMessage(%d, type=%d, data=%v)", win, msgType, data)
	return nil
}

func (f *Fake) KillClient(win xproto.Window) error {
	f.record("KillClient(%d)", win)
	delete(f.windows, win)
	return nil
}

func (f *Fake) SaveSetInsert(win xproto.Window) error {
	f.record("SaveSetInsert(%d)", win)
	return nil
}

func (f *Fake) SaveSetDelete(win xproto.Window) error {
	f.record("SaveSetDelete(%d)", win)
	return nil
}

// queued holds either an event or an asynchronous error, in the order
// QueueEvent/QueueError were called, so tests can interleave the two the
// way a real connection's WaitForEvent can return either.
type queued struct {
	ev  xgb.Event
	err error
}

// QueueEvent appends an event WaitForEvent will return, in FIFO order.
func (f *Fake) QueueEvent(ev xgb.Event) { f.queue = append(f.queue, queued{ev: ev}) }

// QueueError appends an error WaitForEvent will return in place of an
// event, for exercising the asynchronous-protocol-error path (spec.md §7).
func (f *Fake) QueueError(err error) { f.queue = append(f.queue, queued{err: err}) }

// WaitForEvent pops the next queued event or error. Once drained it
// returns (nil, nil) rather than blocking, since there is no real
// connection to block on; callers driving Manager.Run against a Fake
// should queue an Exit-bound KeyPress or stop calling Run once their
// scenario is done.
func (f *Fake) WaitForEvent() (xgb.Event, error) {
	if len(f.queue) == 0 {
		return nil, nil
	}
	q := f.queue[0]
	f.queue = f.queue[1:]
	return q.ev, q.err
}

func (f *Fake) Close() { f.record("Close()") }
