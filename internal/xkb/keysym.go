// Package xkb compiles keyboard layouts from the keymap buffer a Wayland
// compositor transfers with wl_keyboard.keymap. It understands the
// xkb_keymap text format well enough to recover the keycode range and the
// first-level keysym of every key, which is all a polled key control needs.
package xkb

import (
	"fmt"
	"strconv"
	"strings"
)

// Keycode is an xkb keycode. Wayland key events are evdev-based and must
// be offset by 8 before use as a Keycode.
type Keycode uint32

// Keysym is an xkb key symbol.
type Keysym uint32

// NoSymbol is the "no symbol" sentinel.
const NoSymbol Keysym = 0

// KeysymMax is the top of the Unicode keysym range per keysymdef.h.
const KeysymMax Keysym = 0x0110ffff

const unicodeOffset Keysym = 0x01000000

// Names of the printable Latin-1 keysyms 0x20..0x7e, indexed by
// codepoint-0x20. Letters and digits are their own names.
var latin1Names = [...]string{
	"space", "exclam", "quotedbl", "numbersign", "dollar", "percent",
	"ampersand", "apostrophe", "parenleft", "parenright", "asterisk",
	"plus", "comma", "minus", "period", "slash",
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"colon", "semicolon", "less", "equal", "greater", "question", "at",
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	"bracketleft", "backslash", "bracketright", "asciicircum",
	"underscore", "grave",
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
	"braceleft", "bar", "braceright", "asciitilde",
}

// namedKeysyms covers the function, modifier, keypad and navigation
// keysyms that show up in compositor keymaps. Keys whose symbols are not
// listed here simply produce no control, which mirrors a failed
// xkb_keysym_get_name lookup.
var namedKeysyms = map[string]Keysym{
	"NoSymbol":   0,
	"VoidSymbol": 0xffffff,

	"BackSpace":   0xff08,
	"Tab":         0xff09,
	"Linefeed":    0xff0a,
	"Clear":       0xff0b,
	"Return":      0xff0d,
	"Pause":       0xff13,
	"Scroll_Lock": 0xff14,
	"Sys_Req":     0xff15,
	"Escape":      0xff1b,
	"Delete":      0xffff,
	"Multi_key":   0xff20,

	"Home":      0xff50,
	"Left":      0xff51,
	"Up":        0xff52,
	"Right":     0xff53,
	"Down":      0xff54,
	"Prior":     0xff55,
	"Page_Up":   0xff55,
	"Next":      0xff56,
	"Page_Down": 0xff56,
	"End":       0xff57,
	"Begin":     0xff58,

	"Select":    0xff60,
	"Print":     0xff61,
	"Execute":   0xff62,
	"Insert":    0xff63,
	"Undo":      0xff65,
	"Redo":      0xff66,
	"Menu":      0xff67,
	"Find":      0xff68,
	"Cancel":    0xff69,
	"Help":      0xff6a,
	"Break":     0xff6b,
	"Num_Lock":  0xff7f,

	"KP_Space":     0xff80,
	"KP_Tab":       0xff89,
	"KP_Enter":     0xff8d,
	"KP_Home":      0xff95,
	"KP_Left":      0xff96,
	"KP_Up":        0xff97,
	"KP_Right":     0xff98,
	"KP_Down":      0xff99,
	"KP_Prior":     0xff9a,
	"KP_Page_Up":   0xff9a,
	"KP_Next":      0xff9b,
	"KP_Page_Down": 0xff9b,
	"KP_End":       0xff9c,
	"KP_Begin":     0xff9d,
	"KP_Insert":    0xff9e,
	"KP_Delete":    0xff9f,
	"KP_Equal":     0xffbd,
	"KP_Multiply":  0xffaa,
	"KP_Add":       0xffab,
	"KP_Separator": 0xffac,
	"KP_Subtract":  0xffad,
	"KP_Decimal":   0xffae,
	"KP_Divide":    0xffaf,
	"KP_0":         0xffb0,
	"KP_1":         0xffb1,
	"KP_2":         0xffb2,
	"KP_3":         0xffb3,
	"KP_4":         0xffb4,
	"KP_5":         0xffb5,
	"KP_6":         0xffb6,
	"KP_7":         0xffb7,
	"KP_8":         0xffb8,
	"KP_9":         0xffb9,

	"F1":  0xffbe,
	"F2":  0xffbf,
	"F3":  0xffc0,
	"F4":  0xffc1,
	"F5":  0xffc2,
	"F6":  0xffc3,
	"F7":  0xffc4,
	"F8":  0xffc5,
	"F9":  0xffc6,
	"F10": 0xffc7,
	"F11": 0xffc8,
	"F12": 0xffc9,
	"F13": 0xffca,
	"F14": 0xffcb,
	"F15": 0xffcc,
	"F16": 0xffcd,
	"F17": 0xffce,
	"F18": 0xffcf,
	"F19": 0xffd0,
	"F20": 0xffd1,
	"F21": 0xffd2,
	"F22": 0xffd3,
	"F23": 0xffd4,
	"F24": 0xffd5,

	"Shift_L":    0xffe1,
	"Shift_R":    0xffe2,
	"Control_L":  0xffe3,
	"Control_R":  0xffe4,
	"Caps_Lock":  0xffe5,
	"Shift_Lock": 0xffe6,
	"Meta_L":     0xffe7,
	"Meta_R":     0xffe8,
	"Alt_L":      0xffe9,
	"Alt_R":      0xffea,
	"Super_L":    0xffeb,
	"Super_R":    0xffec,
	"Hyper_L":    0xffed,
	"Hyper_R":    0xffee,

	"ISO_Lock":         0xfe01,
	"ISO_Level2_Latch": 0xfe02,
	"ISO_Level3_Shift": 0xfe03,
	"ISO_Level3_Latch": 0xfe04,
	"ISO_Level5_Shift": 0xfe11,
	"ISO_Left_Tab":     0xfe20,

	"dead_grave":      0xfe50,
	"dead_acute":      0xfe51,
	"dead_circumflex": 0xfe52,
	"dead_tilde":      0xfe53,
	"dead_diaeresis":  0xfe57,
	"dead_cedilla":    0xfe5b,
}

var keysymNames map[Keysym]string

func init() {
	keysymNames = make(map[Keysym]string, len(namedKeysyms)+len(latin1Names))
	// First writer wins so aliases (Prior/Page_Up) resolve to a stable
	// canonical name; map iteration order makes ties arbitrary, so pin
	// the canonical aliases explicitly afterwards.
	for name, sym := range namedKeysyms {
		if _, ok := keysymNames[sym]; !ok {
			keysymNames[sym] = name
		}
	}
	keysymNames[0xff55] = "Prior"
	keysymNames[0xff56] = "Next"
	keysymNames[0xff9a] = "KP_Prior"
	keysymNames[0xff9b] = "KP_Next"
	keysymNames[0] = "NoSymbol"
	for i, name := range latin1Names {
		keysymNames[Keysym(0x20+i)] = name
	}
}

// KeysymFromName resolves a symbol name as it appears in an xkb_symbols
// section: a known symbolic name, a UXXXX Unicode form, or a hex literal.
// Unknown names yield NoSymbol.
func KeysymFromName(name string) Keysym {
	if sym, ok := namedKeysyms[name]; ok {
		return sym
	}
	if len(name) == 1 {
		c := name[0]
		if c >= 0x20 && c <= 0x7e {
			return Keysym(c)
		}
	}
	for i, n := range latin1Names {
		if n == name {
			return Keysym(0x20 + i)
		}
	}
	if len(name) > 1 && name[0] == 'U' {
		if cp, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return unicodeOffset + Keysym(cp)
		}
	}
	if strings.HasPrefix(name, "0x") {
		if v, err := strconv.ParseUint(name[2:], 16, 32); err == nil {
			return Keysym(v)
		}
	}
	return NoSymbol
}

// KeysymName returns the canonical name of sym, or "" when the symbol has
// no name this layer knows.
func KeysymName(sym Keysym) string {
	if name, ok := keysymNames[sym]; ok {
		return name
	}
	if sym > unicodeOffset && sym <= KeysymMax {
		return fmt.Sprintf("U+%04X", uint32(sym-unicodeOffset))
	}
	return ""
}
