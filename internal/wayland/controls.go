package wayland

import (
	"fmt"

	"github.com/wayseat/wayseat/internal/xkb"
)

// The control views are read-only adapters over the owning seat's State.
// Identity (name, index, polarity) is fixed at construction; state is
// recomputed from shared state on every read.

// Longest accepted resolved key name.
const keyNameMax = 64

type keyControl struct {
	name    string
	keycode xkb.Keycode
	state   *State
}

// newKeyControl resolves the display name for a keycode from the
// compiled layout. A keycode whose symbol is the NoSymbol sentinel, lies
// outside the Unicode keysym range, or has no resolvable name produces a
// control with an empty name, which the caller discards.
func newKeyControl(st *xkb.State, kc xkb.Keycode, state *State) *keyControl {
	sym := st.KeyGetSym(kc)

	// Fold lowercase letters so the name reads "A", not "a".
	if sym >= 97 && sym <= 122 {
		sym -= 32
	}

	if sym == xkb.NoSymbol || sym > xkb.KeysymMax {
		return &keyControl{}
	}

	name := xkb.KeysymName(sym)
	if !acceptKeyName(name) {
		return &keyControl{}
	}
	return &keyControl{name: name, keycode: kc, state: state}
}

// acceptKeyName reports whether a resolved keysym name can label a
// control. Unresolvable names and names at or past the cap are dropped.
func acceptKeyName(name string) bool {
	return name != "" && len(name) < keyNameMax
}

func (k *keyControl) Name() string {
	return k.name
}

func (k *keyControl) State() float64 {
	if k.state.Keys[k.keycode/8]&(1<<(k.keycode%8)) != 0 {
		return 1
	}
	return 0
}

type buttonControl struct {
	index uint32
	state *State
}

func (b *buttonControl) Name() string {
	return fmt.Sprintf("Click %d", b.index+1)
}

func (b *buttonControl) State() float64 {
	if b.state.Buttons&(1<<b.index) != 0 {
		return 1
	}
	return 0
}

type cursorControl struct {
	axis     int
	positive bool
	state    *State
}

func (c *cursorControl) Name() string {
	return fmt.Sprintf("Cursor %c%c", 'X'+rune(c.axis), polaritySign(c.positive))
}

func (c *cursorControl) State() float64 {
	v := c.state.Cursor[c.axis]
	if !c.positive {
		v = -v
	}
	return max(0, v)
}

type axisControl struct {
	axis        int
	positive    bool
	sensitivity float64
	state       *State
}

func (a *axisControl) Name() string {
	return fmt.Sprintf("Axis %c%c", 'X'+rune(a.axis), polaritySign(a.positive))
}

func (a *axisControl) State() float64 {
	v := a.state.Axis[a.axis] / a.sensitivity
	if !a.positive {
		v = -v
	}
	return max(0, v)
}

func polaritySign(positive bool) rune {
	if positive {
		return '+'
	}
	return '-'
}
