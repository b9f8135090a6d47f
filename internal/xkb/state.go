package xkb

// State tracks the modifier and group state the compositor reports via
// wl_keyboard.modifiers. The polled controls read only first-level
// symbols, but the state object keeps the layout and mask together the
// way the protocol hands them out.
type State struct {
	keymap *Keymap

	modsDepressed uint32
	modsLatched   uint32
	modsLocked    uint32
	group         uint32
}

// NewState creates a state for the given compiled keymap.
func NewState(k *Keymap) *State {
	return &State{keymap: k}
}

// Keymap returns the layout this state depends on.
func (s *State) Keymap() *Keymap {
	return s.keymap
}

// UpdateMask applies a wl_keyboard.modifiers event.
func (s *State) UpdateMask(depressed, latched, locked, group uint32) {
	s.modsDepressed = depressed
	s.modsLatched = latched
	s.modsLocked = locked
	s.group = group
}

// KeyGetSym resolves the first-level symbol for kc.
func (s *State) KeyGetSym(kc Keycode) Keysym {
	return s.keymap.KeySym(kc)
}
