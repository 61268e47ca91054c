package manager

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/blinklad/rdwm/internal/geom"
)

// frame implements the framing protocol of spec.md §4.3: query the
// window's attributes, filter transient popups/menus encountered during
// startup scan, delegate to the current workspace's create_window, and
// add the context to the save-set (done inside Workspace.CreateWindow).
func (m *Manager) frame(win xproto.Window, alreadyExisting bool) error {
	attrs, err := m.conn.GetWindowAttributes(win)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadWindowAttrs, err)
	}

	if alreadyExisting && (attrs.OverrideRedirect || !attrs.Viewable) {
		log.Trace().Uint32("window", uint32(win)).Msg("skipping override-redirect or unviewable window at startup")
		return nil
	}

	x, y, width, height, err := m.conn.GetGeometry(win)
	hints := geom.Rect{}
	if err == nil {
		hints = geom.Rect{
			X: uint32(x), Y: uint32(y),
			W: uint32(width), H: uint32(height),
		}
	}

	ws := m.ws[m.current]
	_, err = ws.CreateWindow(m.conn, win, hints)
	return err
}
