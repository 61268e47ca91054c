package client

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"

	"github.com/blinklad/rdwm/internal/geom"
)

func TestNewClientTilesByDefault(t *testing.T) {
	assert := assert.New(t)

	c := New("xterm", 10, 11, geom.Rect{W: 640, H: 480})

	assert.True(c.Flags.Has(Tiling))
	assert.True(c.Tiles())
	assert.Equal(xproto.Window(10), c.Frame)
	assert.Equal(xproto.Window(11), c.Context)
}

func TestTilesFalseWhenFloatingFixedOrFullscreen(t *testing.T) {
	assert := assert.New(t)

	c := New("", 1, 2, geom.Rect{})
	assert.True(c.Tiles())

	c.Flags = c.Flags.Set(Floating)
	assert.False(c.Tiles())
	c.Flags = c.Flags.Clear(Floating)
	assert.True(c.Tiles())

	c.Flags = c.Flags.Set(Fixed)
	assert.False(c.Tiles())
	c.Flags = c.Flags.Clear(Fixed)

	c.Flags = c.Flags.Set(Fullscreen)
	assert.False(c.Tiles())
}

func TestFlagsHasSetClear(t *testing.T) {
	assert := assert.New(t)

	var f Flags
	assert.False(f.Has(Urgent))

	f = f.Set(Urgent | NeverFocus)
	assert.True(f.Has(Urgent))
	assert.True(f.Has(NeverFocus))

	f = f.Clear(Urgent)
	assert.False(f.Has(Urgent))
	assert.True(f.Has(NeverFocus))
}
