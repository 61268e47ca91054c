package manager

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/blinklad/rdwm/internal/geom"
	"github.com/blinklad/rdwm/internal/workspace"
	"github.com/blinklad/rdwm/internal/x11"
)

// Run starts the event loop (spec.md §4.1): block for the next X event,
// dispatch by type, repeat until the monotonic done flag is set. Handlers
// run to completion before the next event is read (spec.md §5's
// single-threaded cooperative scheduling model).
func (m *Manager) Run() error {
	for !m.done {
		ev, err := m.conn.WaitForEvent()
		if err != nil {
			if code, ok := x11.ErrorCode(err); ok {
				pe := &ProtocolError{Code: code, Request: err.Error()}
				log.Warn().Err(pe).Msg("asynchronous protocol error, continuing")
				continue
			}
			log.Error().Err(err).Msg("connection read failed")
			m.done = true
			return err
		}
		if ev == nil {
			continue
		}
		m.dispatch(ev)
	}
	return nil
}

func (m *Manager) dispatch(ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.KeyPressEvent:
		if err := m.handleKeyPress(e); err != nil {
			log.Error().Err(err).Msg("key press handling failed")
		}
	case xproto.ButtonPressEvent:
		log.Trace().Msg("button press (reserved for move/resize, no-op in core)")
	case xproto.EnterNotifyEvent:
		if err := m.handleEnterNotify(e); err != nil {
			log.Error().Err(err).Msg("enter notify handling failed")
		}
	case xproto.LeaveNotifyEvent:
		log.Trace().Msg("leave notify")
	case xproto.FocusInEvent, xproto.FocusOutEvent:
		log.Trace().Msg("focus change")
	case xproto.MapRequestEvent:
		if err := m.handleMapRequest(e); err != nil {
			log.Error().Err(err).Msg("map request handling failed")
		}
	case xproto.UnmapNotifyEvent:
		if err := m.handleUnmapNotify(e); err != nil {
			log.Error().Err(err).Msg("unmap notify handling failed")
		}
	case xproto.DestroyNotifyEvent:
		if err := m.handleDestroyNotify(e); err != nil {
			log.Error().Err(err).Msg("destroy notify handling failed")
		}
	case xproto.ConfigureRequestEvent:
		if err := m.handleConfigureRequest(e); err != nil {
			log.Error().Err(err).Msg("configure request handling failed")
		}
	case xproto.ConfigureNotifyEvent:
		if err := m.handleConfigureNotify(e); err != nil {
			log.Error().Err(err).Msg("configure notify handling failed")
		}
	case xproto.CreateNotifyEvent, xproto.MapNotifyEvent, xproto.ReparentNotifyEvent:
		log.Trace().Msg("notify event, no mutation")
	default:
		// ignored
	}
}

func (m *Manager) handleKeyPress(e xproto.KeyPressEvent) error {
	action := m.table.Lookup(e.Detail, e.State)
	return m.execute(action)
}

func (m *Manager) handleEnterNotify(e xproto.EnterNotifyEvent) error {
	ws := m.ws[m.current]
	idx, ok := ws.IndexOfFrame(e.Event)
	if !ok {
		return nil
	}
	return ws.UpdateSelected(m.conn, idx)
}

func (m *Manager) handleMapRequest(e xproto.MapRequestEvent) error {
	if err := m.frame(e.Window, false); err != nil {
		return err
	}
	return m.conn.MapWindow(e.Window)
}

func (m *Manager) handleUnmapNotify(e xproto.UnmapNotifyEvent) error {
	if e.Event == m.conn.Root() {
		return nil
	}
	for _, ws := range m.ws {
		if _, ok := ws.Client(e.Window); ok {
			return ws.DestroyWindow(m.conn, m.conn.Root(), e.Window)
		}
	}
	return nil
}

// handleDestroyNotify implements spec.md §4.1's "drop the Client if still
// present" — the window is already gone server-side, so this only forgets
// our bookkeeping rather than re-issuing teardown requests.
func (m *Manager) handleDestroyNotify(e xproto.DestroyNotifyEvent) error {
	for _, ws := range m.ws {
		if _, ok := ws.Client(e.Window); ok {
			ws.RemoveForMove(e.Window)
			return nil
		}
	}
	return nil
}

// handleConfigureRequest implements on_configure_request (spec.md §4.3):
// propagate the requested geometry to both frame and context for managed
// windows, or to the context alone for unmanaged ones.
func (m *Manager) handleConfigureRequest(e xproto.ConfigureRequestEvent) error {
	values := configureValues(e)

	if ws, ok := m.workspaceOf(e.Window); ok {
		if c, ok := ws.Client(e.Window); ok {
			if err := m.conn.ConfigureWindow(c.Frame, uint16(e.ValueMask), values); err != nil {
				return fmt.Errorf("configure frame: %w", err)
			}
		}
	}
	return m.conn.ConfigureWindow(e.Window, uint16(e.ValueMask), values)
}

// configureValues builds the value-list matching the bits set in
// e.ValueMask, in the wire order xproto.ConfigureWindow expects.
func configureValues(e xproto.ConfigureRequestEvent) []uint32 {
	var values []uint32
	if e.ValueMask&xproto.ConfigWindowX != 0 {
		values = append(values, uint32(e.X))
	}
	if e.ValueMask&xproto.ConfigWindowY != 0 {
		values = append(values, uint32(e.Y))
	}
	if e.ValueMask&xproto.ConfigWindowWidth != 0 {
		values = append(values, uint32(e.Width))
	}
	if e.ValueMask&xproto.ConfigWindowHeight != 0 {
		values = append(values, uint32(e.Height))
	}
	if e.ValueMask&xproto.ConfigWindowBorderWidth != 0 {
		values = append(values, uint32(e.BorderWidth))
	}
	if e.ValueMask&xproto.ConfigWindowSibling != 0 {
		values = append(values, uint32(e.Sibling))
	}
	if e.ValueMask&xproto.ConfigWindowStackMode != 0 {
		values = append(values, uint32(e.StackMode))
	}
	return values
}

// handleConfigureNotify resizes every workspace when the root window's
// geometry changes (e.g. an xrandr mode switch), feeding Workspace.Resize
// the new screen rectangle so tiling re-arranges against it.
func (m *Manager) handleConfigureNotify(e xproto.ConfigureNotifyEvent) error {
	if e.Window != m.conn.Root() {
		return nil
	}
	screen := geom.FromSize(uint32(e.Width), uint32(e.Height))
	for _, ws := range m.ws {
		if err := ws.Resize(m.conn, screen); err != nil {
			return fmt.Errorf("resize workspace: %w", err)
		}
	}
	return nil
}

func (m *Manager) workspaceOf(context xproto.Window) (*workspace.Workspace, bool) {
	for _, ws := range m.ws {
		if _, ok := ws.Client(context); ok {
			return ws, true
		}
	}
	return nil, false
}
