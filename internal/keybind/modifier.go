package keybind

import "github.com/BurntSushi/xgb/xproto"

// modifierByName maps the symbolic modifier names accepted in configuration
// to the X11 modifier mask bits, including the aliases named in spec.md
// §4.4 (Super→Mod4, Alt→Mod1).
var modifierByName = map[string]uint16{
	"shift":   xproto.ModMaskShift,
	"lock":    xproto.ModMaskLock,
	"control": xproto.ModMaskControl,
	"ctrl":    xproto.ModMaskControl,
	"mod1":    xproto.ModMask1,
	"alt":     xproto.ModMask1,
	"mod2":    xproto.ModMask2,
	"mod3":    xproto.ModMask3,
	"mod4":    xproto.ModMask4,
	"super":   xproto.ModMask4,
	"mod5":    xproto.ModMask5,
}

// ModifierByName looks up the mask bit for a symbolic modifier name.
func ModifierByName(name string) (uint16, bool) {
	mask, ok := modifierByName[name]
	return mask, ok
}

// ModifierMask ORs together the mask bits for a list of modifier names,
// skipping (rather than failing on) names it does not recognize. An
// unrecognized name is dropped silently and is not reported to the caller.
func ModifierMask(names []string) uint16 {
	var mask uint16
	for _, n := range names {
		if m, ok := modifierByName[n]; ok {
			mask |= m
		}
	}
	return mask
}
