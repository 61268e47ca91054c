package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Keymap maps a keycode to the keysyms bound to it, following
// driusan/dewm's GetKeyboardMapping slicing pattern.
type Keymap map[xproto.Keycode][]xproto.Keysym

// loadKeymap queries the full keycode range from the server and returns
// the resulting table. Conn.GetKeyboardMapping wraps this for Requester
// callers.
func loadKeymap(conn *xgb.Conn) (Keymap, error) {
	const (
		loKey = 8
		hiKey = 255
	)
	reply, err := xproto.GetKeyboardMapping(conn, loKey, hiKey-loKey+1).Reply()
	if err != nil {
		return nil, fmt.Errorf("get keyboard mapping: %w", err)
	}
	if reply == nil || reply.KeysymsPerKeycode == 0 {
		return nil, fmt.Errorf("get keyboard mapping: empty reply")
	}
	km := make(Keymap, hiKey-loKey+1)
	perCode := int(reply.KeysymsPerKeycode)
	for i := 0; i <= hiKey-loKey; i++ {
		lo := i * perCode
		hi := lo + perCode
		if hi > len(reply.Keysyms) {
			break
		}
		km[xproto.Keycode(loKey+i)] = reply.Keysyms[lo:hi]
	}
	return km, nil
}

// Keysym returns the primary (group 0, level 0) keysym bound to code, or
// 0 if the code is unmapped.
func (km Keymap) Keysym(code xproto.Keycode) xproto.Keysym {
	syms := km[code]
	if len(syms) == 0 {
		return 0
	}
	return syms[0]
}

// Keycodes returns every keycode bound to sym (a keysym can legitimately
// sit on more than one physical key in the server's mapping, and a
// binding grabs every one of them).
func (km Keymap) Keycodes(sym xproto.Keysym) []xproto.Keycode {
	var out []xproto.Keycode
	for code, syms := range km {
		for _, s := range syms {
			if s == sym {
				out = append(out, code)
				break
			}
		}
	}
	return out
}
