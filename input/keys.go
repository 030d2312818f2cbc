package input

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// Modifiers is a bit set of held modifier keys
type Modifiers uint8

const (
	ModCtrl Modifiers = 1 << iota
	ModAlt
	ModShift
	ModMeta
)

var modifierNames = []struct {
	name string
	mod  Modifiers
}{
	{"ctrl", ModCtrl},
	{"alt", ModAlt},
	{"shift", ModShift},
	{"meta", ModMeta},
}

// Event is one key press. Key is a lower case name: a printable character,
// or one of up, down, left, right, enter, escape, space, tab, backspace,
// home, end, pageup, pagedown, delete, insert, f1..f12.
type Event struct {
	Key  string
	Mods Modifiers
}

// String renders the event the way shortcuts are written, e.g. "ctrl,z"
func (ev Event) String() string {
	var parts []string
	for _, m := range modifierNames {
		if ev.Mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, ev.Key), ",")
}

// ParseShortcut parses "ctrl,z" style shortcuts: modifiers in any order, then
// exactly one key
func ParseShortcut(shortcut string) (Event, error) {
	parts := strings.Split(shortcut, ",")
	var ev Event
	for i, p := range parts {
		name := normalizeName(p)
		last := i == len(parts)-1
		if last {
			if name == "" || isModifier(name) {
				return Event{}, fmt.Errorf("%w: shortcut %q has no key", ErrBadBinding, shortcut)
			}
			ev.Key = name
			break
		}
		mod, ok := modifier(name)
		if !ok {
			return Event{}, fmt.Errorf("%w: %q is not a modifier in %q", ErrBadBinding, p, shortcut)
		}
		ev.Mods |= mod
	}
	if ev.Mods == 0 {
		return Event{}, fmt.Errorf("%w: shortcut %q has no modifier", ErrBadBinding, shortcut)
	}
	return ev, nil
}

func modifier(name string) (Modifiers, bool) {
	for _, m := range modifierNames {
		if m.name == name {
			return m.mod, true
		}
	}
	return 0, false
}

func isModifier(name string) bool {
	_, ok := modifier(name)
	return ok
}

var browserKeys = map[string]string{
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
	"esc":        "escape",
	" ":          "space",
	"spacebar":   "space",
	"return":     "enter",
	"del":        "delete",
}

// normalizeName lower cases a key name and maps browser KeyboardEvent.key
// names onto ours
func normalizeName(key string) string {
	if key == " " {
		return "space"
	}
	name := strings.ToLower(strings.TrimSpace(key))
	if mapped, ok := browserKeys[name]; ok {
		return mapped
	}
	return name
}

// FromBrowser builds an event from a browser KeyboardEvent. Pressing a
// modifier on its own yields an event with an empty key.
func FromBrowser(key string, ctrl, alt, shift, meta bool) Event {
	ev := Event{Key: normalizeName(key)}
	if isModifier(ev.Key) || ev.Key == "control" {
		ev.Key = ""
	}
	if ctrl {
		ev.Mods |= ModCtrl
	}
	if alt {
		ev.Mods |= ModAlt
	}
	if shift {
		ev.Mods |= ModShift
	}
	if meta {
		ev.Mods |= ModMeta
	}
	return ev
}

var tcellKeys = map[tcell.Key]string{
	tcell.KeyUp:         "up",
	tcell.KeyDown:       "down",
	tcell.KeyLeft:       "left",
	tcell.KeyRight:      "right",
	tcell.KeyEnter:      "enter",
	tcell.KeyEscape:     "escape",
	tcell.KeyTab:        "tab",
	tcell.KeyBackspace:  "backspace",
	tcell.KeyBackspace2: "backspace",
	tcell.KeyHome:       "home",
	tcell.KeyEnd:        "end",
	tcell.KeyPgUp:       "pageup",
	tcell.KeyPgDn:       "pagedown",
	tcell.KeyDelete:     "delete",
	tcell.KeyInsert:     "insert",
	tcell.KeyF1:         "f1",
	tcell.KeyF2:         "f2",
	tcell.KeyF3:         "f3",
	tcell.KeyF4:         "f4",
	tcell.KeyF5:         "f5",
	tcell.KeyF6:         "f6",
	tcell.KeyF7:         "f7",
	tcell.KeyF8:         "f8",
	tcell.KeyF9:         "f9",
	tcell.KeyF10:        "f10",
	tcell.KeyF11:        "f11",
	tcell.KeyF12:        "f12",
}

// FromTcell builds an event from the parts of a *tcell.EventKey. Terminals
// report ctrl+letter as a control key; it becomes the letter with ModCtrl.
func FromTcell(key tcell.Key, ch rune, mods tcell.ModMask) Event {
	var ev Event
	if mods&tcell.ModCtrl != 0 {
		ev.Mods |= ModCtrl
	}
	if mods&tcell.ModAlt != 0 {
		ev.Mods |= ModAlt
	}
	if mods&tcell.ModShift != 0 {
		ev.Mods |= ModShift
	}
	if mods&tcell.ModMeta != 0 {
		ev.Mods |= ModMeta
	}

	if name, ok := tcellKeys[key]; ok {
		ev.Key = name
		return ev
	}
	switch {
	case key == tcell.KeyRune:
		if ch == ' ' {
			ev.Key = "space"
		} else if utf8.ValidRune(ch) {
			ev.Key = strings.ToLower(string(ch))
		}
	case key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ:
		ev.Key = string(rune('a' + int(key-tcell.KeyCtrlA)))
		ev.Mods |= ModCtrl
	}
	return ev
}
