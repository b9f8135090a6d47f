package wayland

import (
	"strings"
	"testing"

	"github.com/wayseat/wayseat/internal/xkb"
)

const controlsKeymap = `xkb_keymap {
	xkb_keycodes "test" {
		minimum = 8;
		maximum = 14;
		<A> = 9;
		<B> = 10;
		<C> = 11;
		<D> = 12;
		<E> = 13;
	};
	xkb_symbols "test" {
		key <A> { [ q ] };
		key <B> { [ Escape ] };
		key <C> { [ VoidSymbol ] };
		key <D> { [ U00E9 ] };
		key <E> { [ 0x11000000 ] };
	};
};`

func controlsState(t *testing.T) *xkb.State {
	t.Helper()
	keymap, err := xkb.NewKeymapFromBuffer([]byte(controlsKeymap))
	if err != nil {
		t.Fatalf("compile keymap: %v", err)
	}
	return xkb.NewState(keymap)
}

func TestNewKeyControl(t *testing.T) {
	st := controlsState(t)
	var state State

	t.Run("folds lowercase letters", func(t *testing.T) {
		k := newKeyControl(st, 9, &state)
		if k.Name() != "Q" {
			t.Errorf("expected Q, got %q", k.Name())
		}
	})

	t.Run("keeps named keysyms", func(t *testing.T) {
		k := newKeyControl(st, 10, &state)
		if k.Name() != "Escape" {
			t.Errorf("expected Escape, got %q", k.Name())
		}
	})

	t.Run("names unicode keysyms in U+ form", func(t *testing.T) {
		k := newKeyControl(st, 12, &state)
		if k.Name() != "U+00E9" {
			t.Errorf("expected U+00E9, got %q", k.Name())
		}
	})

	t.Run("discards unbound keycodes", func(t *testing.T) {
		k := newKeyControl(st, 14, &state)
		if k.Name() != "" {
			t.Errorf("expected empty name, got %q", k.Name())
		}
	})

	t.Run("discards keysyms beyond the unicode range", func(t *testing.T) {
		k := newKeyControl(st, 13, &state)
		if k.Name() != "" {
			t.Errorf("expected empty name, got %q", k.Name())
		}
	})
}

func TestAcceptKeyName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"empty", "", false},
		{"ordinary", "Escape", true},
		{"just under the cap", strings.Repeat("a", 63), true},
		{"at the cap", strings.Repeat("a", 64), false},
		{"past the cap", strings.Repeat("a", 200), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := acceptKeyName(tc.in); got != tc.want {
				t.Errorf("acceptKeyName(%d chars) = %v, want %v", len(tc.in), got, tc.want)
			}
		})
	}
}

func TestKeyControlState(t *testing.T) {
	st := controlsState(t)
	state := State{Keys: make([]byte, 3)}
	k := newKeyControl(st, 9, &state)

	if k.State() != 0 {
		t.Error("expected released key to read 0")
	}
	state.Keys[9/8] |= 1 << (9 % 8)
	if k.State() != 1 {
		t.Error("expected pressed key to read 1")
	}
}

func TestButtonControl(t *testing.T) {
	var state State
	first := &buttonControl{index: 0, state: &state}
	last := &buttonControl{index: 31, state: &state}

	if first.Name() != "Click 1" || last.Name() != "Click 32" {
		t.Errorf("unexpected names %q, %q", first.Name(), last.Name())
	}

	state.Buttons = 1 << 31
	if first.State() != 0 {
		t.Error("expected Click 1 to read 0")
	}
	if last.State() != 1 {
		t.Error("expected Click 32 to read 1")
	}
}

func TestCursorControlHalves(t *testing.T) {
	state := State{Cursor: [2]float64{-0.5, 0.25}}

	cases := []struct {
		name string
		c    *cursorControl
		want float64
	}{
		{"Cursor X-", &cursorControl{axis: 0, positive: false, state: &state}, 0.5},
		{"Cursor X+", &cursorControl{axis: 0, positive: true, state: &state}, 0},
		{"Cursor Y-", &cursorControl{axis: 1, positive: false, state: &state}, 0},
		{"Cursor Y+", &cursorControl{axis: 1, positive: true, state: &state}, 0.25},
	}
	for _, tc := range cases {
		if tc.c.Name() != tc.name {
			t.Errorf("expected name %q, got %q", tc.name, tc.c.Name())
		}
		if tc.c.State() != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, tc.c.State())
		}
	}
}

func TestAxisControlScalesBySensitivity(t *testing.T) {
	state := State{Axis: [2]float64{0, -4}}
	neg := &axisControl{axis: 1, positive: false, sensitivity: 8, state: &state}
	pos := &axisControl{axis: 1, positive: true, sensitivity: 8, state: &state}

	if neg.Name() != "Axis Y-" || pos.Name() != "Axis Y+" {
		t.Errorf("unexpected names %q, %q", neg.Name(), pos.Name())
	}
	if neg.State() != 0.5 {
		t.Errorf("expected 0.5, got %v", neg.State())
	}
	if pos.State() != 0 {
		t.Errorf("expected 0, got %v", pos.State())
	}
}
