// Package workspace implements the per-workspace client collection, the
// tiling arrangement algorithm, and focus/selection tracking described in
// spec.md §4.2. A Workspace owns an ordered sequence of clients (realized
// as a stable-key map plus an explicit order vector, per the Design Note
// in spec.md §9 resolving Open Question (a)), the index of the selected
// client, a screen rectangle, and a count of floating clients.
package workspace

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/blinklad/rdwm/internal/client"
	"github.com/blinklad/rdwm/internal/geom"
	"github.com/blinklad/rdwm/internal/x11"
)

// Options carries the subset of configuration (spec.md §6) that affects
// arrangement and border decoration.
type Options struct {
	InnerGap      uint32
	OuterGap      uint32
	SmartGaps     bool
	BorderWidth   uint32
	ActiveColor   uint32
	InactiveColor uint32
}

// Workspace is a logical grouping of clients sharing a tiling area.
type Workspace struct {
	screen   geom.Rect
	opts     Options
	clients  map[xproto.Window]*client.Client
	order    []xproto.Window
	selected int
	floating int
	current  bool
}

// New creates an empty workspace sized to screen. A new workspace starts
// current; callers that create additional, not-yet-viewed workspaces (e.g.
// Manager.newWorkspaceLike) must call SetCurrent(false) on it.
func New(screen geom.Rect, opts Options) *Workspace {
	return &Workspace{
		screen:  screen,
		opts:    opts,
		clients: make(map[xproto.Window]*client.Client),
		current: true,
	}
}

// Len returns the number of managed clients.
func (w *Workspace) Len() int { return len(w.order) }

// SetCurrent marks whether this workspace is the one currently viewed
// (spec.md §4.2's "every Client's frame is mapped iff the workspace is
// current"). Arrange only maps frames while current is true.
func (w *Workspace) SetCurrent(current bool) { w.current = current }

// IsCurrent reports whether this workspace is the currently viewed one.
func (w *Workspace) IsCurrent() bool { return w.current }

// Resize updates the screen rectangle this workspace tiles into (used when
// the output geometry changes) and re-arranges.
func (w *Workspace) Resize(conn x11.Requester, screen geom.Rect) error {
	w.screen = screen
	return w.Arrange(conn)
}

// Client looks up a managed client by its context window.
func (w *Workspace) Client(context xproto.Window) (*client.Client, bool) {
	c, ok := w.clients[context]
	return c, ok
}

// IndexOfFrame returns the tiling-order position of the client whose frame
// is win, used by EnterNotify handling (spec.md §4.1) to drive
// UpdateSelected.
func (w *Workspace) IndexOfFrame(win xproto.Window) (int, bool) {
	for i, ctx := range w.order {
		if w.clients[ctx].Frame == win {
			return i, true
		}
	}
	return 0, false
}

// Selected returns the currently selected client, or nil if the workspace
// is empty.
func (w *Workspace) Selected() *client.Client {
	if len(w.order) == 0 {
		return nil
	}
	return w.clients[w.order[w.selected]]
}

// SelectedIndex returns the current selected index (0 when empty).
func (w *Workspace) SelectedIndex() int { return w.selected }

// Clients returns the managed clients in insertion/tiling order. The
// returned slice must not be mutated.
func (w *Workspace) Clients() []*client.Client {
	out := make([]*client.Client, len(w.order))
	for i, ctx := range w.order {
		out[i] = w.clients[ctx]
	}
	return out
}

// CreateWindow implements Workspace.create_window (spec.md §4.2): creates a
// frame sized to half the screen width and full height at the origin,
// reparents context under it, maps both, grabs Button1+Shift for
// move/resize dispatch, and appends a new TILING client.
func (w *Workspace) CreateWindow(conn x11.Requester, context xproto.Window, hints geom.Rect) (*client.Client, error) {
	frame, err := w.createFrame(conn)
	if err != nil {
		return nil, fmt.Errorf("create frame: %w", err)
	}

	evMask := uint32(xproto.EventMaskSubstructureRedirect |
		xproto.EventMaskSubstructureNotify |
		xproto.EventMaskFocusChange |
		xproto.EventMaskEnterWindow |
		xproto.EventMaskLeaveWindow)
	if err := conn.ChangeWindowAttributes(frame, xproto.CwEventMask, []uint32{evMask}); err != nil {
		return nil, fmt.Errorf("select frame events: %w", err)
	}

	if err := conn.ReparentWindow(context, frame, 0, 0); err != nil {
		return nil, fmt.Errorf("reparent context: %w", err)
	}
	if err := conn.SaveSetInsert(context); err != nil {
		return nil, fmt.Errorf("add to save set: %w", err)
	}
	if err := conn.MapWindow(frame); err != nil {
		return nil, fmt.Errorf("map frame: %w", err)
	}
	if err := conn.MapWindow(context); err != nil {
		return nil, fmt.Errorf("map context: %w", err)
	}

	if err := conn.GrabButton(context, xproto.ButtonIndex1, xproto.ModMaskShift); err != nil {
		return nil, fmt.Errorf("grab button: %w", err)
	}

	c := client.New("", frame, context, hints)
	w.clients[context] = c
	w.order = append(w.order, context)

	if err := w.Arrange(conn); err != nil {
		return c, fmt.Errorf("arrange: %w", err)
	}
	return c, nil
}

func (w *Workspace) createFrame(conn x11.Requester) (xproto.Window, error) {
	id, err := conn.NewWindowID()
	if err != nil {
		return 0, err
	}
	err = conn.CreateWindow(id, 0, 0, uint16(w.screen.W/2), uint16(w.screen.H), uint16(w.opts.BorderWidth), w.opts.InactiveColor)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// DestroyWindow implements Workspace.destroy_window (spec.md §4.2). The
// teardown ordering (unmap context, unmap frame, reparent context to
// root, destroy context, destroy frame) is the critical protocol
// invariant from spec.md §5 — destroying a frame while the context is
// still a child would cause the server to destroy the application window.
func (w *Workspace) DestroyWindow(conn x11.Requester, root xproto.Window, context xproto.Window) error {
	c, ok := w.clients[context]
	if !ok {
		return fmt.Errorf("no client for context %v", context)
	}

	_ = conn.UnmapWindow(c.Context)
	_ = conn.UnmapWindow(c.Frame)
	if err := conn.ReparentWindow(c.Context, root, 0, 0); err != nil {
		return fmt.Errorf("reparent context to root: %w", err)
	}
	_ = conn.SaveSetDelete(c.Context)
	if err := conn.DestroyWindow(c.Context); err != nil {
		return fmt.Errorf("destroy context: %w", err)
	}
	if err := conn.DestroyWindow(c.Frame); err != nil {
		return fmt.Errorf("destroy frame: %w", err)
	}

	w.removeClient(context)

	return w.Arrange(conn)
}

// removeClient deletes the client from the map and order vector, and
// adjusts the selected index if it was at or past the removed position
// (spec.md §4.2).
func (w *Workspace) removeClient(context xproto.Window) {
	if c, ok := w.clients[context]; ok && c.Flags.Has(client.Floating) {
		w.floating--
	}
	delete(w.clients, context)
	pos := -1
	for i, ctx := range w.order {
		if ctx == context {
			pos = i
			break
		}
	}
	if pos == -1 {
		return
	}
	w.order = append(w.order[:pos], w.order[pos+1:]...)
	if len(w.order) == 0 {
		w.selected = 0
	} else if w.selected >= pos && w.selected > 0 {
		w.selected--
	}
	if w.selected >= len(w.order) && len(w.order) > 0 {
		w.selected = len(w.order) - 1
	}
}

// UpdateSelected implements Workspace.update_selected (spec.md §4.2): sets
// the previously-selected frame's border to the inactive color, the newly
// selected frame's border to the active color, then updates the index. An
// out-of-range newIndex snaps to count-1 (most-recent-used fallback).
func (w *Workspace) UpdateSelected(conn x11.Requester, newIndex int) error {
	if len(w.order) == 0 {
		return nil
	}
	if prev := w.clients[w.order[w.selected]]; prev != nil {
		_ = setBorder(conn, prev.Frame, w.opts.InactiveColor)
	}
	if newIndex < 0 || newIndex >= len(w.order) {
		newIndex = len(w.order) - 1
	}
	w.selected = newIndex
	cur := w.clients[w.order[w.selected]]
	return setBorder(conn, cur.Frame, w.opts.ActiveColor)
}

func setBorder(conn x11.Requester, win xproto.Window, color uint32) error {
	return conn.ChangeWindowAttributes(win, xproto.CwBorderPixel, []uint32{color})
}

// tilingArea returns the screen rectangle available for tiling after
// subtracting the outer gap.
func (w *Workspace) tilingArea() geom.Rect {
	if w.opts.OuterGap == 0 {
		return w.screen
	}
	return w.screen.Inset(w.opts.OuterGap)
}

// Arrange implements Workspace.arrange (spec.md §4.2): tiles the TILING
// clients horizontally, each of the N tiled clients receiving an equal
// width column of the tiling area (the screen inset by the outer gap) at
// its full height, in insertion order; each column is then inset by the
// inner gap, except for a sole tiled client under smart gaps. Floating and
// fixed clients are skipped and retain their last geometry; fullscreen
// clients are left out of the partition and placed over the whole screen
// rectangle (invariant 4 of spec.md §3).
func (w *Workspace) Arrange(conn x11.Requester) error {
	var tiled []*client.Client
	for _, ctx := range w.order {
		c := w.clients[ctx]
		if c.Tiles() {
			tiled = append(tiled, c)
		}
	}

	area := w.tilingArea()
	gap := w.opts.InnerGap
	if w.opts.SmartGaps && len(tiled) == 1 {
		gap = 0
	}

	cols := area.SplitColumns(len(tiled))
	for i, c := range tiled {
		frameRect := cols[i]
		if gap > 0 {
			frameRect = frameRect.Inset(gap)
		}
		if err := w.placeFrame(conn, c, frameRect); err != nil {
			return err
		}
	}

	for _, ctx := range w.order {
		c := w.clients[ctx]
		if c.Flags.Has(client.Fullscreen) {
			if err := w.placeFrame(conn, c, w.screen); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Workspace) placeFrame(conn x11.Requester, c *client.Client, frameRect geom.Rect) error {
	c.Geometry = frameRect
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	if err := conn.ConfigureWindow(c.Frame, mask, []uint32{
		frameRect.X, frameRect.Y, frameRect.W, frameRect.H,
	}); err != nil {
		return fmt.Errorf("configure frame: %w", err)
	}
	if err := conn.ConfigureWindow(c.Context, mask, []uint32{
		0, 0, frameRect.W, frameRect.H,
	}); err != nil {
		return fmt.Errorf("configure context: %w", err)
	}
	if !w.current {
		return nil
	}
	if err := conn.MapWindow(c.Frame); err != nil {
		return fmt.Errorf("map frame: %w", err)
	}
	if err := conn.MapWindow(c.Context); err != nil {
		return fmt.Errorf("map context: %w", err)
	}
	return nil
}

// ToggleFloating implements the FloatFocus/GroundFocus actions of spec.md
// §4.4: toggles the FLOATING flag on the client and re-arranges.
func (w *Workspace) ToggleFloating(conn x11.Requester, context xproto.Window) error {
	c, ok := w.clients[context]
	if !ok {
		return fmt.Errorf("no client for context %v", context)
	}
	if c.Flags.Has(client.Floating) {
		c.Flags = c.Flags.Clear(client.Floating)
		w.floating--
	} else {
		c.Flags = c.Flags.Set(client.Floating)
		w.floating++
	}
	return w.Arrange(conn)
}

// ToggleFullscreen implements the FullScreen action of spec.md §4.4: when
// turning on, assigns the selected client's frame the full screen
// rectangle and skips it from Arrange's tiling partition; turning off
// restores normal tiling participation.
func (w *Workspace) ToggleFullscreen(conn x11.Requester, context xproto.Window) error {
	c, ok := w.clients[context]
	if !ok {
		return fmt.Errorf("no client for context %v", context)
	}
	if c.Flags.Has(client.Fullscreen) {
		c.Flags = c.Flags.Clear(client.Fullscreen)
	} else {
		c.Flags = c.Flags.Set(client.Fullscreen)
	}
	return w.Arrange(conn)
}

// FloatingCount returns the number of clients currently carrying the
// FLOATING flag, maintained as an invariant alongside the client
// collection (spec.md §3).
func (w *Workspace) FloatingCount() int { return w.floating }

// RemoveForMove detaches the client identified by context from this
// workspace without issuing any teardown X requests, for use by
// MoveWorkspace (spec.md §4.4), which reparents the client onto another
// workspace rather than destroying it.
func (w *Workspace) RemoveForMove(context xproto.Window) (*client.Client, bool) {
	c, ok := w.clients[context]
	if !ok {
		return nil, false
	}
	w.removeClient(context)
	return c, true
}

// AdoptFromMove attaches a client detached via RemoveForMove to this
// workspace, appending it to tiling order.
func (w *Workspace) AdoptFromMove(c *client.Client) {
	w.clients[c.Context] = c
	w.order = append(w.order, c.Context)
	if c.Flags.Has(client.Floating) {
		w.floating++
	}
}

// NeighborIndex returns the tiling-order index of the selected client's
// neighbor in dir within the horizontal column partition. Since Arrange
// lays tiled clients out in a single row (spec.md §4.2's "entire tiling
// algorithm"), only Left/Right have neighbors; Up/Down report no movement
// (ok=false), matching spec.md §9(b)'s deliberate "no guessing" stance on
// behavior the original left unspecified beyond the single-row layout.
// Clients outside the partition (floating, fixed, fullscreen) are stepped
// over.
func (w *Workspace) NeighborIndex(dir int) (int, bool) {
	if len(w.order) < 2 {
		return w.selected, false
	}
	switch {
	case dir < 0:
		for i := w.selected - 1; i >= 0; i-- {
			if w.clients[w.order[i]].Tiles() {
				return i, true
			}
		}
	case dir > 0:
		for i := w.selected + 1; i < len(w.order); i++ {
			if w.clients[w.order[i]].Tiles() {
				return i, true
			}
		}
	}
	return w.selected, false
}
