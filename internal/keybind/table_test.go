package keybind

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklad/rdwm/internal/x11"
	"github.com/blinklad/rdwm/internal/x11/x11test"
)

func testKeymap() x11.Keymap {
	return x11.Keymap{
		38: {xproto.Keysym('a')},
		36: {0xff0d}, // Return
	}
}

func TestTableLookupResolvesBoundKey(t *testing.T) {
	assert := assert.New(t)

	km := testKeymap()
	table := NewTable(km, []Binding{
		{Sym: xproto.Keysym('a'), Mods: xproto.ModMask4, Action: Action{Kind: KillFocus}},
	})

	got := table.Lookup(38, xproto.ModMask4)
	assert.Equal(KillFocus, got.Kind)
}

func TestTableLookupNoMatchReturnsNoAction(t *testing.T) {
	assert := assert.New(t)

	table := NewTable(testKeymap(), []Binding{
		{Sym: xproto.Keysym('a'), Mods: xproto.ModMask4, Action: Action{Kind: KillFocus}},
	})

	got := table.Lookup(38, xproto.ModMaskShift)
	assert.Equal(NoAction, got.Kind)

	got = table.Lookup(99, xproto.ModMask4)
	assert.Equal(NoAction, got.Kind)
}

func TestTableGrabIssuesGrabKeyPerBinding(t *testing.T) {
	require := require.New(t)

	km := testKeymap()
	table := NewTable(km, []Binding{
		{Sym: xproto.Keysym('a'), Mods: xproto.ModMask4, Action: Action{Kind: KillFocus}},
		{Sym: 0xff0d, Mods: xproto.ModMask4, Action: Action{Kind: Exit}},
	})

	fake := x11test.New(1, 1920, 1080)
	require.NoError(table.Grab(fake))

	trace := fake.Trace()
	require.Len(trace, 2)
	require.Contains(trace[0], "GrabKey(root=1")
	require.Contains(trace[1], "GrabKey(root=1")
}

func TestTableGrabFailsOnUnboundKeysym(t *testing.T) {
	require := require.New(t)

	table := NewTable(x11.Keymap{}, []Binding{
		{Sym: xproto.Keysym('z'), Mods: 0, Action: Action{Kind: Exit}},
	})

	fake := x11test.New(1, 1920, 1080)
	require.Error(table.Grab(fake))
}
