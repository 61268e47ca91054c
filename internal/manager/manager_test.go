package manager

import (
	"fmt"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklad/rdwm/internal/config"
	"github.com/blinklad/rdwm/internal/geom"
	"github.com/blinklad/rdwm/internal/keybind"
	"github.com/blinklad/rdwm/internal/x11/x11test"
)

func testConfig() config.Config {
	return config.Default()
}

// keymapFor builds a minimal keymap covering every distinct keysym cfg's
// bindings reference, one physical keycode per keysym (as a real keyboard
// would report), since x11test.Fake does not synthesize one on its own.
func keymapFor(t *testing.T, cfg config.Config) map[xproto.Keycode][]xproto.Keysym {
	t.Helper()
	km := make(map[xproto.Keycode][]xproto.Keysym)
	codeOf := make(map[xproto.Keysym]xproto.Keycode)
	var next xproto.Keycode = 9
	for _, b := range cfg.Bindings {
		sym, ok := keybind.KeysymByName(b.Key)
		require.True(t, ok, "unbound test keysym %q", b.Key)
		if _, ok := codeOf[sym]; ok {
			continue
		}
		codeOf[sym] = next
		km[next] = []xproto.Keysym{sym}
		next++
	}
	return km
}

// keycodeFor returns the keycode keymapFor assigned to name's keysym.
func keycodeFor(t *testing.T, cfg config.Config, name string) xproto.Keycode {
	t.Helper()
	target, ok := keybind.KeysymByName(name)
	require.True(t, ok)
	seen := make(map[xproto.Keysym]xproto.Keycode)
	var next xproto.Keycode = 9
	for _, b := range cfg.Bindings {
		sym, _ := keybind.KeysymByName(b.Key)
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = next
		next++
	}
	code, ok := seen[target]
	require.True(t, ok)
	return code
}

func initManager(t *testing.T, fake *x11test.Fake, cfg config.Config) *Manager {
	t.Helper()
	fake.SetKeymap(keymapFor(t, cfg))
	m := newWithRequester(fake, cfg)
	require.NoError(t, m.Init())
	return m
}

// TestInitDetectsCompetingManager is the startup-conflict testable
// property of spec.md §8: a BadAccess on the root event-mask selection
// must surface as ErrManagerConflict, not a generic startup error.
func TestInitDetectsCompetingManager(t *testing.T) {
	require := require.New(t)

	fake := x11test.New(1, 1920, 1080)
	fake.AccessErrorOnRootEvents = true

	m := newWithRequester(fake, testConfig())
	err := m.Init()

	require.ErrorIs(err, ErrManagerConflict)
}

// TestInitSucceedsAndGrabsBindings covers the keybinding-grab portion of
// startup against a clean fake.
func TestInitSucceedsAndGrabsBindings(t *testing.T) {
	assert := assert.New(t)

	fake := x11test.New(1, 1920, 1080)
	cfg := testConfig()
	m := initManager(t, fake, cfg)

	assert.Len(m.ws, 1)
	assert.Equal(0, m.current)

	var grabCount int
	for _, line := range fake.Trace() {
		if hasPrefix(line, "GrabKey(") {
			grabCount++
		}
	}
	assert.Equal(len(cfg.Bindings), grabCount)
}

// TestScanExistingSkipsOverrideRedirect is scenario D: a pre-existing
// override-redirect window (e.g. a tooltip) must not be framed.
func TestScanExistingSkipsOverrideRedirect(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	fake := x11test.New(1, 1920, 1080)
	const normalWin xproto.Window = 50
	const overrideWin xproto.Window = 51
	fake.AddExisting(normalWin, 0, 0, 200, 100)
	fake.AddExisting(overrideWin, 0, 0, 50, 20)
	fake.MarkOverrideRedirect(overrideWin)

	m := initManager(t, fake, testConfig())

	_, normalFramed := m.ws[0].Client(normalWin)
	_, overrideFramed := m.ws[0].Client(overrideWin)
	require.True(normalFramed)
	assert.False(overrideFramed, "override-redirect windows must not be framed at startup")
}

// TestHandleMapRequestFramesNewWindow exercises the MapRequest dispatch
// path end to end against the fake.
func TestHandleMapRequestFramesNewWindow(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	fake := x11test.New(1, 1920, 1080)
	m := initManager(t, fake, testConfig())

	const appWin xproto.Window = 200
	fake.AddExisting(appWin, 0, 0, 640, 480)

	require.NoError(m.handleMapRequest(xproto.MapRequestEvent{Window: appWin}))

	_, ok := m.ws[0].Client(appWin)
	assert.True(ok)
}

// TestHandleUnmapNotifyTearsDownClient exercises the UnmapNotify dispatch
// path, verifying the client is dropped from the workspace.
func TestHandleUnmapNotifyTearsDownClient(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	fake := x11test.New(1, 1920, 1080)
	m := initManager(t, fake, testConfig())

	const appWin xproto.Window = 200
	fake.AddExisting(appWin, 0, 0, 640, 480)
	require.NoError(m.handleMapRequest(xproto.MapRequestEvent{Window: appWin}))

	require.NoError(m.handleUnmapNotify(xproto.UnmapNotifyEvent{Window: appWin, Event: appWin}))

	_, ok := m.ws[0].Client(appWin)
	assert.False(ok)
}

// TestRunSwallowsProtocolErrorThenExits covers spec.md §7's propagation
// policy for asynchronous protocol errors: WaitForEvent surfacing one must
// be logged and the loop must keep running, not abort, until an Exit
// action sets the done flag.
func TestRunSwallowsProtocolErrorThenExits(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	fake := x11test.New(1, 1920, 1080)
	cfg := testConfig()
	m := initManager(t, fake, cfg)

	exitBinding := findBinding(t, cfg, "exit")
	mods := keybind.ModifierMask(exitBinding.Modifiers)
	code := keycodeFor(t, cfg, exitBinding.Key)

	fake.QueueError(xproto.WindowError{})
	fake.QueueEvent(xproto.KeyPressEvent{Detail: code, State: mods})

	require.NoError(m.Run())
	assert.True(m.done)
}

// TestHandleKeyPressResolvesBindingAndExecutes is scenario E: a KeyPress
// resolving to an Execute action reaches the spawn collaborator with the
// configured command line.
func TestHandleKeyPressResolvesBindingAndExecutes(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var gotCmd string
	orig := spawnExecute
	spawnExecute = func(cmd string) error {
		gotCmd = cmd
		return nil
	}
	defer func() { spawnExecute = orig }()

	fake := x11test.New(1, 1920, 1080)
	cfg := testConfig()
	m := initManager(t, fake, cfg)

	executeBinding := findBinding(t, cfg, "execute")
	mods := keybind.ModifierMask(executeBinding.Modifiers)
	code := keycodeFor(t, cfg, executeBinding.Key)

	action := m.table.Lookup(code, mods)
	require.Equal(keybind.Execute, action.Kind)

	require.NoError(m.handleKeyPress(xproto.KeyPressEvent{Detail: code, State: mods}))
	assert.Equal(executeBinding.Command, gotCmd)
}

// TestKillFocusSendsDeleteWindowWhenSupported covers the KillFocus action
// branch that prefers a graceful WM_DELETE_WINDOW over KillClient.
func TestKillFocusSendsDeleteWindowWhenSupported(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	fake := x11test.New(1, 1920, 1080)
	m := initManager(t, fake, testConfig())

	const appWin xproto.Window = 200
	fake.AddExisting(appWin, 0, 0, 640, 480)
	require.NoError(m.handleMapRequest(xproto.MapRequestEvent{Window: appWin}))
	fake.SetProtocols(appWin, m.atoms.wmDeleteWindow)

	require.NoError(m.killFocus())

	var sawDelete, sawKill bool
	for _, line := range fake.Trace() {
		if hasPrefix(line, "SendClientMessage(200") {
			sawDelete = true
		}
		if hasPrefix(line, "KillClient(200") {
			sawKill = true
		}
	}
	assert.True(sawDelete)
	assert.False(sawKill)
}

// TestKillFocusKillsClientWhenProtocolUnsupported covers the fallback
// branch: no WM_DELETE_WINDOW support means an outright KillClient.
func TestKillFocusKillsClientWhenProtocolUnsupported(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	fake := x11test.New(1, 1920, 1080)
	m := initManager(t, fake, testConfig())

	const appWin xproto.Window = 200
	fake.AddExisting(appWin, 0, 0, 640, 480)
	require.NoError(m.handleMapRequest(xproto.MapRequestEvent{Window: appWin}))

	require.NoError(m.killFocus())

	var sawKill bool
	for _, line := range fake.Trace() {
		if hasPrefix(line, "KillClient(200") {
			sawKill = true
		}
	}
	assert.True(sawKill)
}

// TestMoveWorkspaceHidesClientOnNonCurrentDestination is the regression
// case for spec.md §4.2's invariant "every Client's frame is mapped iff
// the workspace is current": moving the selected client onto a
// not-yet-viewed workspace must leave it framed but unmapped, never
// visible on top of the workspace still being viewed.
func TestMoveWorkspaceHidesClientOnNonCurrentDestination(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	fake := x11test.New(1, 1920, 1080)
	m := initManager(t, fake, testConfig())

	const appWin xproto.Window = 200
	fake.AddExisting(appWin, 0, 0, 640, 480)
	require.NoError(m.handleMapRequest(xproto.MapRequestEvent{Window: appWin}))

	c, ok := m.ws[0].Client(appWin)
	require.True(ok)
	frame, context := c.Frame, c.Context

	require.NoError(m.moveWorkspace(1))

	require.Len(m.ws, 2)
	_, stillOnSrc := m.ws[0].Client(appWin)
	assert.False(stillOnSrc)
	_, onDst := m.ws[1].Client(appWin)
	assert.True(onDst)
	assert.False(m.ws[1].IsCurrent())

	var sawUnmapFrame, sawUnmapContext bool
	for _, line := range fake.Trace() {
		if line == fmtUnmap(frame) {
			sawUnmapFrame = true
		}
		if line == fmtUnmap(context) {
			sawUnmapContext = true
		}
	}
	assert.True(sawUnmapFrame, "moved frame must be unmapped once its workspace is not current")
	assert.True(sawUnmapContext, "moved context must be unmapped once its workspace is not current")
}

func fmtUnmap(win xproto.Window) string {
	return fmt.Sprintf("UnmapWindow(%d)", win)
}

// TestHandleConfigureNotifyResizesWorkspaces covers the root-geometry-change
// path: an xrandr-style ConfigureNotify on the root window must resize and
// re-arrange every workspace against the new screen rectangle.
func TestHandleConfigureNotifyResizesWorkspaces(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	fake := x11test.New(1, 1000, 800)
	m := initManager(t, fake, testConfig())

	const appWin xproto.Window = 200
	fake.AddExisting(appWin, 0, 0, 640, 480)
	require.NoError(m.handleMapRequest(xproto.MapRequestEvent{Window: appWin}))

	require.NoError(m.handleConfigureNotify(xproto.ConfigureNotifyEvent{
		Window: fake.Root(), Width: 500, Height: 400,
	}))

	c, ok := m.ws[0].Client(appWin)
	require.True(ok)
	assert.Equal(geom.Rect{X: 4, Y: 4, W: 492, H: 392}, c.Geometry)
}

func findBinding(t *testing.T, cfg config.Config, action string) config.Binding {
	t.Helper()
	for _, b := range cfg.Bindings {
		if b.Action == action {
			return b
		}
	}
	t.Fatalf("no %q binding in config", action)
	return config.Binding{}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
