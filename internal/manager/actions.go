package manager

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/blinklad/rdwm/internal/keybind"
)

// execute dispatches a resolved Action to its core effect, per the table
// in spec.md §4.4.
func (m *Manager) execute(a keybind.Action) error {
	switch a.Kind {
	case keybind.NoAction:
		return nil
	case keybind.KillFocus:
		return m.killFocus()
	case keybind.MoveFocus:
		return m.moveFocus(a.Direction)
	case keybind.FloatFocus, keybind.GroundFocus:
		return m.toggleFloating()
	case keybind.FullScreen:
		return m.toggleFullscreen()
	case keybind.Minimize:
		log.Debug().Msg("minimize: no core effect beyond unmap, left to external policy")
		return nil
	case keybind.SplitHorizontal:
		log.Debug().Msg("split horizontal: not recorded, arrange has a single-row layout")
		return nil
	case keybind.SplitVertical:
		log.Debug().Msg("split vertical: not recorded, arrange has a single-row layout")
		return nil
	case keybind.MoveWorkspace:
		return m.moveWorkspace(a.Workspace)
	case keybind.Execute:
		return spawnExecute(a.Command)
	case keybind.Exit:
		m.done = true
		return nil
	default:
		return fmt.Errorf("unhandled action kind %v", a.Kind)
	}
}

// killFocus implements the KillFocus action (spec.md §4.4): send
// WM_DELETE_WINDOW if the client advertises support for it via
// WM_PROTOCOLS, otherwise destroy it outright.
func (m *Manager) killFocus() error {
	ws := m.ws[m.current]
	c := ws.Selected()
	if c == nil {
		return nil
	}

	supportsDelete, err := m.supportsProtocol(c.Context, m.atoms.wmDeleteWindow)
	if err != nil {
		return fmt.Errorf("query WM_PROTOCOLS: %w", err)
	}
	if supportsDelete {
		return m.sendDeleteWindow(c.Context)
	}
	return m.conn.KillClient(c.Context)
}

func (m *Manager) supportsProtocol(win xproto.Window, atom xproto.Atom) (bool, error) {
	atoms, err := m.conn.GetProtocolAtoms(win, m.atoms.wmProtocols)
	if err != nil {
		return false, err
	}
	for _, got := range atoms {
		if got == atom {
			return true, nil
		}
	}
	return false, nil
}

func (m *Manager) sendDeleteWindow(win xproto.Window) error {
	return m.conn.SendClientMessage(win, m.atoms.wmProtocols, [5]uint32{uint32(m.atoms.wmDeleteWindow), 0, 0, 0, 0})
}

// moveFocus implements MoveFocusUp/Down/Left/Right (spec.md §4.4): change
// the workspace's selected client to its neighbor in the tiled partition.
func (m *Manager) moveFocus(dir keybind.Direction) error {
	ws := m.ws[m.current]
	var delta int
	switch dir {
	case keybind.Left:
		delta = -1
	case keybind.Right:
		delta = 1
	default:
		delta = 0
	}
	idx, ok := ws.NeighborIndex(delta)
	if !ok {
		return nil
	}
	return ws.UpdateSelected(m.conn, idx)
}

// toggleFloating implements FloatFocus/GroundFocus (spec.md §4.4).
func (m *Manager) toggleFloating() error {
	ws := m.ws[m.current]
	c := ws.Selected()
	if c == nil {
		return nil
	}
	return ws.ToggleFloating(m.conn, c.Context)
}

// toggleFullscreen implements FullScreen (spec.md §4.4).
func (m *Manager) toggleFullscreen() error {
	ws := m.ws[m.current]
	c := ws.Selected()
	if c == nil {
		return nil
	}
	return ws.ToggleFullscreen(m.conn, c.Context)
}

// moveWorkspace implements MoveWorkspace(n) (spec.md §4.4): move the
// selected client from the current workspace to workspace n, re-arranging
// both. Workspaces are created on demand up to the index requested,
// matching spec.md §3's "created ... on user request" Workspace lifecycle.
//
// spec.md §4.2's invariant is that a Client's frame is mapped iff its
// workspace is current. dst.Arrange skips mapping when dst isn't current,
// but the moved client's frame/context may already be mapped from its time
// on src, so that transition is unmapped explicitly below.
func (m *Manager) moveWorkspace(n int) error {
	if n < 0 {
		return fmt.Errorf("invalid workspace index %d", n)
	}
	src := m.ws[m.current]
	c := src.Selected()
	if c == nil {
		return nil
	}
	for len(m.ws) <= n {
		m.ws = append(m.ws, m.newWorkspaceLike(src))
	}
	dst := m.ws[n]

	moved, ok := src.RemoveForMove(c.Context)
	if !ok {
		return nil
	}
	dst.AdoptFromMove(moved)

	if err := src.Arrange(m.conn); err != nil {
		return fmt.Errorf("arrange source workspace: %w", err)
	}
	if err := dst.Arrange(m.conn); err != nil {
		return fmt.Errorf("arrange destination workspace: %w", err)
	}
	if !dst.IsCurrent() {
		if err := m.conn.UnmapWindow(moved.Context); err != nil {
			return fmt.Errorf("unmap moved context: %w", err)
		}
		if err := m.conn.UnmapWindow(moved.Frame); err != nil {
			return fmt.Errorf("unmap moved frame: %w", err)
		}
	}
	return nil
}
