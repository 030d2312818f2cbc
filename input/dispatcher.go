package input

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// AnyKey is the catch-all binding, called for events nothing else claimed
const AnyKey = "any"

// ErrBadBinding is returned for shortcuts and sequences that cannot be parsed
var ErrBadBinding = errors.New("bad key binding")

// Handler reacts to a key event
type Handler func(Event)

// CommandTable is the set of bindings a screen owns while it is shown
type CommandTable struct {
	Name string
	// Keys maps a key name, or AnyKey, to its handler.
	Keys map[string]Handler
	// Shortcuts maps modifier combinations such as "ctrl,z".
	Shortcuts map[string]Handler
	// Sequences maps comma separated key runs such as "up,down,b,a".
	Sequences map[string]Handler
}

type sequence struct {
	keys    []string
	handler Handler
}

// Dispatcher routes key events to bound handlers. It is not safe for
// concurrent use; the goroutine reading input owns it.
type Dispatcher struct {
	keys      map[string]Handler
	shortcuts map[string]Handler
	sequences map[string]sequence
	history   []string
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher with no bindings
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		keys:      make(map[string]Handler),
		shortcuts: make(map[string]Handler),
		sequences: make(map[string]sequence),
		logger:    logger,
	}
}

// BindKey binds a single unmodified key, replacing any earlier binding
func (d *Dispatcher) BindKey(key string, h Handler) {
	d.keys[normalizeName(key)] = h
}

func (d *Dispatcher) UnbindKey(key string) {
	delete(d.keys, normalizeName(key))
}

// BindShortcut binds a modifier combination written as "ctrl,z" or
// "ctrl,shift,s"; the last element is the key
func (d *Dispatcher) BindShortcut(shortcut string, h Handler) error {
	ev, err := ParseShortcut(shortcut)
	if err != nil {
		return err
	}
	d.shortcuts[ev.String()] = h
	return nil
}

func (d *Dispatcher) UnbindShortcut(shortcut string) error {
	ev, err := ParseShortcut(shortcut)
	if err != nil {
		return err
	}
	delete(d.shortcuts, ev.String())
	return nil
}

// BindSequence binds a run of keys pressed one after another
func (d *Dispatcher) BindSequence(seq string, h Handler) error {
	keys, err := parseSequence(seq)
	if err != nil {
		return err
	}
	d.sequences[strings.Join(keys, ",")] = sequence{keys: keys, handler: h}
	return nil
}

func (d *Dispatcher) UnbindSequence(seq string) error {
	keys, err := parseSequence(seq)
	if err != nil {
		return err
	}
	delete(d.sequences, strings.Join(keys, ","))
	return nil
}

// Enter binds everything in table
func (d *Dispatcher) Enter(table *CommandTable) error {
	for key, h := range table.Keys {
		d.BindKey(key, h)
	}
	for sc, h := range table.Shortcuts {
		if err := d.BindShortcut(sc, h); err != nil {
			return fmt.Errorf("table %s: %w", table.Name, err)
		}
	}
	for sq, h := range table.Sequences {
		if err := d.BindSequence(sq, h); err != nil {
			return fmt.Errorf("table %s: %w", table.Name, err)
		}
	}
	d.history = d.history[:0]
	d.logger.Debug("entered command table", zap.String("table", table.Name))
	return nil
}

// Exit removes every binding table made
func (d *Dispatcher) Exit(table *CommandTable) error {
	for key := range table.Keys {
		d.UnbindKey(key)
	}
	for sc := range table.Shortcuts {
		if err := d.UnbindShortcut(sc); err != nil {
			return fmt.Errorf("table %s: %w", table.Name, err)
		}
	}
	for sq := range table.Sequences {
		if err := d.UnbindSequence(sq); err != nil {
			return fmt.Errorf("table %s: %w", table.Name, err)
		}
	}
	d.history = d.history[:0]
	d.logger.Debug("exited command table", zap.String("table", table.Name))
	return nil
}

// Dispatch delivers ev and reports whether any handler ran. A shortcut
// takes the event before a plain key binding does; AnyKey only sees events
// neither claimed. Sequences watch every key independently.
func (d *Dispatcher) Dispatch(ev Event) bool {
	ev.Key = normalizeName(ev.Key)
	if ev.Key == "" {
		return false
	}
	handled := false

	if ev.Mods != 0 {
		if h, ok := d.shortcuts[ev.String()]; ok {
			h(ev)
			handled = true
		}
	}
	if !handled && ev.Mods&^ModShift == 0 {
		if h, ok := d.keys[ev.Key]; ok {
			h(ev)
			handled = true
		}
	}
	if !handled {
		if h, ok := d.keys[AnyKey]; ok {
			h(ev)
			handled = true
		}
	}

	if d.matchSequence(ev) {
		handled = true
	}
	return handled
}

// matchSequence records ev in the history and fires the first sequence the
// history now ends with
func (d *Dispatcher) matchSequence(ev Event) bool {
	if len(d.sequences) == 0 {
		return false
	}
	d.history = append(d.history, ev.Key)
	longest := 0
	for _, seq := range d.sequences {
		if len(seq.keys) > longest {
			longest = len(seq.keys)
		}
	}
	if len(d.history) > longest {
		d.history = d.history[len(d.history)-longest:]
	}

	for _, seq := range d.sequences {
		if endsWith(d.history, seq.keys) {
			d.history = d.history[:0]
			seq.handler(ev)
			return true
		}
	}
	return false
}

func endsWith(history, keys []string) bool {
	if len(keys) > len(history) {
		return false
	}
	tail := history[len(history)-len(keys):]
	for i := range keys {
		if tail[i] != keys[i] {
			return false
		}
	}
	return true
}

func parseSequence(seq string) ([]string, error) {
	parts := strings.Split(seq, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		key := normalizeName(p)
		if key == "" {
			return nil, fmt.Errorf("%w: empty key in sequence %q", ErrBadBinding, seq)
		}
		keys = append(keys, key)
	}
	if len(keys) < 2 {
		return nil, fmt.Errorf("%w: sequence %q needs at least two keys", ErrBadBinding, seq)
	}
	return keys, nil
}
