package keybind

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// Well-known X11 keysym values (X11/keysymdef.h), the subset commonly
// bound by window manager configurations. A full keysymdef transliteration
// is out of scope; this mirrors what driusan/dewm's keysym package and the
// teacher's binding table actually exercise.
const (
	xkBackSpace xproto.Keysym = 0xff08
	xkTab       xproto.Keysym = 0xff09
	xkReturn    xproto.Keysym = 0xff0d
	xkEscape    xproto.Keysym = 0xff1b
	xkSpace     xproto.Keysym = 0x0020
	xkLeft      xproto.Keysym = 0xff51
	xkUp        xproto.Keysym = 0xff52
	xkRight     xproto.Keysym = 0xff53
	xkDown      xproto.Keysym = 0xff54
)

// keysymByName maps the symbolic key names accepted in configuration
// (spec.md §6) to their X11 keysym values. Letters and digits are derived
// programmatically; everything else is hand enumerated.
var keysymByName = map[string]xproto.Keysym{
	"backspace": xkBackSpace,
	"tab":       xkTab,
	"return":    xkReturn,
	"enter":     xkReturn,
	"escape":    xkEscape,
	"esc":       xkEscape,
	"space":     xkSpace,
	"left":      xkLeft,
	"up":        xkUp,
	"right":     xkRight,
	"down":      xkDown,
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		keysymByName[string(c)] = xproto.Keysym(c)
	}
	for c := '0'; c <= '9'; c++ {
		keysymByName[string(c)] = xproto.Keysym(c)
	}
	for n := 1; n <= 12; n++ {
		// XK_F1..XK_F12 are contiguous starting at 0xffbe.
		keysymByName[fKeyName(n)] = xproto.Keysym(0xffbe + n - 1)
	}
}

func fKeyName(n int) string {
	return fmt.Sprintf("f%d", n)
}

// KeysymByName looks up the keysym bound to a symbolic key name. The
// lookup is case-insensitive at the caller's discretion; names are stored
// lowercase.
func KeysymByName(name string) (xproto.Keysym, bool) {
	sym, ok := keysymByName[name]
	return sym, ok
}
