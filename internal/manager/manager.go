// Package manager implements the core event-driven window management
// engine described in spec.md §4.1: acquisition of substructure
// redirection on the root window, the main event pump, and the
// keybinding/input-grab protocol wiring the Workspace and Client model
// (internal/workspace, internal/client) to the X server
// (internal/x11).
package manager

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/blinklad/rdwm/internal/config"
	"github.com/blinklad/rdwm/internal/geom"
	"github.com/blinklad/rdwm/internal/keybind"
	"github.com/blinklad/rdwm/internal/logging"
	"github.com/blinklad/rdwm/internal/spawn"
	"github.com/blinklad/rdwm/internal/workspace"
	"github.com/blinklad/rdwm/internal/x11"
)

var log = logging.Component("manager")

// Manager owns the display connection, the root window, the ordered
// sequence of Workspaces and the index of the current workspace, and the
// keybinding table (spec.md §3). conn is held as the x11.Requester
// interface, not the concrete *x11.Conn, so tests can substitute
// x11test.Fake and assert on its recorded request trace (spec.md §8).
type Manager struct {
	conn    x11.Requester
	config  config.Config
	table   *keybind.Table
	ws      []*workspace.Workspace
	current int
	done    bool // monotonic; set only by Exit action or a fatal read error

	atoms struct {
		wmProtocols    xproto.Atom
		wmDeleteWindow xproto.Atom
	}
}

// New opens the X display connection. No substructure-redirect grab has
// been attempted yet; call Init to complete startup.
func New(cfg config.Config) (*Manager, error) {
	conn, err := x11.Connect()
	if err != nil {
		switch {
		case errors.Is(err, x11.ErrNoScreen):
			return nil, fmt.Errorf("%w: %v", ErrNoScreen, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrNoDisplay, err)
		}
	}
	return &Manager{conn: conn, config: cfg}, nil
}

// newWithRequester builds a Manager around an already-open Requester,
// bypassing x11.Connect. Tests use this to drive the core against
// x11test.Fake instead of a real display.
func newWithRequester(conn x11.Requester, cfg config.Config) *Manager {
	return &Manager{conn: conn, config: cfg}
}

// Close releases the display connection (spec.md §4.1 lifecycle: "destroyed
// when the event loop exits, at which point the display handle is
// released").
func (m *Manager) Close() {
	if m.conn != nil {
		m.conn.Close()
	}
}

// Init performs the startup sequence of spec.md §4.1: select for
// substructure redirect on root (detecting a competing manager), load the
// keymap and grab configured keybindings, scan and frame pre-existing
// viewable windows, and push the initial workspace.
func (m *Manager) Init() error {
	if err := m.becomeWM(); err != nil {
		if isAccessError(err) {
			return ErrManagerConflict
		}
		return fmt.Errorf("select root events: %w", err)
	}

	for _, name := range []string{"WM_PROTOCOLS", "WM_DELETE_WINDOW"} {
		atom, err := m.conn.Atom(name)
		if err != nil {
			return fmt.Errorf("intern %s: %w", name, err)
		}
		switch name {
		case "WM_PROTOCOLS":
			m.atoms.wmProtocols = atom
		case "WM_DELETE_WINDOW":
			m.atoms.wmDeleteWindow = atom
		}
	}

	keymap, err := m.conn.GetKeyboardMapping()
	if err != nil {
		return fmt.Errorf("load keymap: %w", err)
	}
	bindings, err := buildBindings(m.config.Bindings)
	if err != nil {
		return fmt.Errorf("build bindings: %w", err)
	}
	m.table = keybind.NewTable(keymap, bindings)
	if err := m.table.Grab(m.conn); err != nil {
		return fmt.Errorf("grab keys: %w", err)
	}

	w, h := m.conn.ScreenSize()
	screen := geom.FromSize(w, h)
	m.ws = append(m.ws, workspace.New(screen, m.wsOptions()))
	m.current = 0

	if err := m.scanExisting(); err != nil {
		return fmt.Errorf("scan existing windows: %w", err)
	}

	return nil
}

// newWorkspaceLike creates an additional Workspace sized to the same
// screen as like, used when MoveWorkspace targets a not-yet-created
// workspace index (spec.md §3: Workspaces are "created at startup (at
// least one) and on user request").
func (m *Manager) newWorkspaceLike(like *workspace.Workspace) *workspace.Workspace {
	w, h := m.conn.ScreenSize()
	ws := workspace.New(geom.FromSize(w, h), m.wsOptions())
	ws.SetCurrent(false)
	return ws
}

func (m *Manager) wsOptions() workspace.Options {
	return workspace.Options{
		InnerGap:      m.config.Windows.InnerGap,
		OuterGap:      m.config.Windows.OuterGap,
		SmartGaps:     m.config.Windows.SmartGaps,
		BorderWidth:   m.config.Borders.Width,
		ActiveColor:   m.config.Borders.ActiveColor,
		InactiveColor: m.config.Borders.InactiveColor,
	}
}

// becomeWM selects SubstructureRedirect/Notify and FocusChange on the root,
// per spec.md §4.1 steps 4-5. The Checked cookie forces the round-trip, so
// a BadAccess error here means a competing manager is already registered
// for substructure redirection.
func (m *Manager) becomeWM() error {
	mask := uint32(xproto.EventMaskSubstructureRedirect |
		xproto.EventMaskSubstructureNotify |
		xproto.EventMaskFocusChange)
	return m.conn.ChangeWindowAttributes(m.conn.Root(), xproto.CwEventMask, []uint32{mask})
}

func isAccessError(err error) bool {
	_, ok := err.(xproto.AccessError)
	return ok
}

// scanExisting implements spec.md §4.1 step 7: grab the server, enumerate
// existing viewable top-level windows, frame each one that is viewable and
// does not have override-redirect set, ungrab the server.
func (m *Manager) scanExisting() error {
	if err := m.conn.GrabServer(); err != nil {
		return err
	}
	defer m.conn.UngrabServer()

	children, err := m.conn.QueryTree(m.conn.Root())
	if err != nil {
		return fmt.Errorf("query tree: %w", err)
	}
	for _, win := range children {
		if err := m.frame(win, true); err != nil {
			log.Warn().Err(err).Uint32("window", uint32(win)).Msg("failed to frame existing window at startup")
		}
	}
	return nil
}

// buildBindings resolves configuration bindings (symbolic key/modifier
// names plus an action string) into keybind.Binding values.
func buildBindings(cfgBindings []config.Binding) ([]keybind.Binding, error) {
	out := make([]keybind.Binding, 0, len(cfgBindings))
	for _, b := range cfgBindings {
		sym, ok := keybind.KeysymByName(b.Key)
		if !ok {
			return nil, fmt.Errorf("unknown key name %q", b.Key)
		}
		mods := keybind.ModifierMask(b.Modifiers)
		action, err := parseAction(b)
		if err != nil {
			return nil, err
		}
		out = append(out, keybind.Binding{Sym: sym, Mods: mods, Action: action})
	}
	return out, nil
}

func parseAction(b config.Binding) (keybind.Action, error) {
	switch b.Action {
	case "fullscreen":
		return keybind.Action{Kind: keybind.FullScreen}, nil
	case "minimize":
		return keybind.Action{Kind: keybind.Minimize}, nil
	case "floatfocus":
		return keybind.Action{Kind: keybind.FloatFocus}, nil
	case "groundfocus":
		return keybind.Action{Kind: keybind.GroundFocus}, nil
	case "killfocus":
		return keybind.Action{Kind: keybind.KillFocus}, nil
	case "movefocus:up":
		return keybind.Action{Kind: keybind.MoveFocus, Direction: keybind.Up}, nil
	case "movefocus:down":
		return keybind.Action{Kind: keybind.MoveFocus, Direction: keybind.Down}, nil
	case "movefocus:left":
		return keybind.Action{Kind: keybind.MoveFocus, Direction: keybind.Left}, nil
	case "movefocus:right":
		return keybind.Action{Kind: keybind.MoveFocus, Direction: keybind.Right}, nil
	case "splithorizontal":
		return keybind.Action{Kind: keybind.SplitHorizontal}, nil
	case "splitvertical":
		return keybind.Action{Kind: keybind.SplitVertical}, nil
	case "exit":
		return keybind.Action{Kind: keybind.Exit}, nil
	case "moveworkspace":
		return keybind.Action{Kind: keybind.MoveWorkspace, Workspace: b.Workspace}, nil
	case "execute":
		return keybind.Action{Kind: keybind.Execute, Command: b.Command}, nil
	case "", "noaction":
		return keybind.Action{Kind: keybind.NoAction}, nil
	default:
		return keybind.Action{}, fmt.Errorf("unknown action %q", b.Action)
	}
}

// spawnExecute is the seam through which Execute actions reach the
// process-execution collaborator (spec.md §6); a package variable so tests
// can substitute a recording fake without touching the real shell.
var spawnExecute = spawn.Run
