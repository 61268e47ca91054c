// Package keybind implements the keysym/keycode grab protocol and the
// binding table lookup described in spec.md §4.4: translating configured
// (modifiers, key) pairs to X keycodes, issuing passive key grabs on the
// root window, and resolving KeyPress events back to an Action.
package keybind

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/blinklad/rdwm/internal/x11"
)

// Binding pairs a (keysym, modifier-mask) with the Action it triggers.
type Binding struct {
	Sym    xproto.Keysym
	Mods   uint16
	Action Action
}

// Table is the keybinding table owned by the Manager (spec.md §3). It
// holds the resolved keymap snapshot taken at startup so KeyPress events
// can be translated back to a Binding without re-querying the server.
type Table struct {
	keymap   x11.Keymap
	bindings []Binding
}

// NewTable builds a Table from a resolved keymap and a set of bindings.
func NewTable(keymap x11.Keymap, bindings []Binding) *Table {
	return &Table{keymap: keymap, bindings: bindings}
}

// Grab issues a passive key grab on root for every configured binding,
// using GrabModeSync for both pointer and keyboard as spec.md §4.4
// requires. If any grab fails, Grab returns the error and leaves any
// already-issued grabs in place (the Manager treats this as a startup
// failure and tears the connection down, which releases all grabs).
func (t *Table) Grab(conn x11.Requester) error {
	root := conn.Root()
	for _, b := range t.bindings {
		codes := t.keymap.Keycodes(b.Sym)
		if len(codes) == 0 {
			return fmt.Errorf("no keycode bound to keysym %#x", b.Sym)
		}
		for _, code := range codes {
			if err := conn.GrabKey(root, b.Mods, code); err != nil {
				return fmt.Errorf("grab key %#x mods %#x: %w", b.Sym, b.Mods, err)
			}
		}
	}
	return nil
}

// Lookup translates a KeyPress event's keycode and modifier state back to
// the Action of the matching Binding, or NoAction's zero value if nothing
// matches.
func (t *Table) Lookup(code xproto.Keycode, state uint16) Action {
	sym := t.keymap.Keysym(code)
	for _, b := range t.bindings {
		if b.Sym == sym && b.Mods == state {
			return b.Action
		}
	}
	return Action{Kind: NoAction}
}
