package xkb

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Highest keycode a layout may declare. Real layouts stay in the
// hundreds; evdev itself tops out below 0x300. Anything bigger is a
// malformed or hostile buffer.
const keycodeRangeLimit Keycode = 0xFFF

// Keymap is a compiled keyboard layout: the keycode range plus the
// first-level keysym of each key.
type Keymap struct {
	minKeycode Keycode
	maxKeycode Keycode
	syms       map[Keycode]Keysym
}

// NewKeymapFromBuffer compiles a keymap from the text transferred by the
// compositor. The buffer may carry a trailing NUL.
func NewKeymapFromBuffer(buf []byte) (*Keymap, error) {
	src := string(buf)
	if i := strings.IndexByte(src, 0); i >= 0 {
		src = src[:i]
	}

	keycodes, ok := section(src, "xkb_keycodes")
	if !ok {
		return nil, errors.New("keymap has no xkb_keycodes section")
	}
	symbols, ok := section(src, "xkb_symbols")
	if !ok {
		return nil, errors.New("keymap has no xkb_symbols section")
	}

	km := &Keymap{syms: make(map[Keycode]Keysym)}

	codes, aliases, err := km.parseKeycodes(keycodes)
	if err != nil {
		return nil, err
	}
	if km.maxKeycode == 0 {
		return nil, errors.New("keymap declares no keycodes")
	}
	if km.maxKeycode > keycodeRangeLimit {
		return nil, fmt.Errorf("keymap maximum keycode %d out of range", km.maxKeycode)
	}
	if km.minKeycode > km.maxKeycode {
		return nil, fmt.Errorf("keymap keycode range %d..%d is inverted", km.minKeycode, km.maxKeycode)
	}
	km.parseSymbols(symbols, codes, aliases)

	return km, nil
}

// MinKeycode returns the lowest declared keycode.
func (k *Keymap) MinKeycode() Keycode {
	return k.minKeycode
}

// MaxKeycode returns the highest declared keycode.
func (k *Keymap) MaxKeycode() Keycode {
	return k.maxKeycode
}

// KeySym returns the first-level keysym bound to kc, or NoSymbol.
func (k *Keymap) KeySym(kc Keycode) Keysym {
	return k.syms[kc]
}

// parseKeycodes reads "minimum"/"maximum" plus every <NAME> = N and
// alias statement.
func (k *Keymap) parseKeycodes(body string) (map[string]Keycode, map[string]string, error) {
	codes := make(map[string]Keycode)
	aliases := make(map[string]string)

	for _, stmt := range statements(body) {
		switch {
		case strings.HasPrefix(stmt, "minimum"):
			v, err := trailingNumber(stmt)
			if err != nil {
				return nil, nil, fmt.Errorf("bad minimum keycode: %w", err)
			}
			k.minKeycode = Keycode(v)
		case strings.HasPrefix(stmt, "maximum"):
			v, err := trailingNumber(stmt)
			if err != nil {
				return nil, nil, fmt.Errorf("bad maximum keycode: %w", err)
			}
			k.maxKeycode = Keycode(v)
		case strings.HasPrefix(stmt, "alias"):
			// alias <FROM> = <TO>
			from := angleName(stmt)
			rest := stmt[strings.Index(stmt, "=")+1:]
			to := angleName(rest)
			if from != "" && to != "" {
				aliases[from] = to
			}
		case strings.HasPrefix(stmt, "<"):
			name := angleName(stmt)
			v, err := trailingNumber(stmt)
			if err != nil || name == "" {
				continue
			}
			codes[name] = Keycode(v)
		}
	}
	return codes, aliases, nil
}

// parseSymbols walks key statements and records the first symbol of the
// first group for each resolvable keycode name.
func (k *Keymap) parseSymbols(body string, codes map[string]Keycode, aliases map[string]string) {
	for _, stmt := range statements(body) {
		if !strings.HasPrefix(stmt, "key ") && !strings.HasPrefix(stmt, "key<") {
			continue
		}
		name := angleName(stmt)
		if name == "" {
			continue
		}
		if target, ok := aliases[name]; ok {
			name = target
		}
		kc, ok := codes[name]
		if !ok || kc < k.minKeycode || kc > k.maxKeycode {
			continue
		}
		symName, ok := firstSymbol(stmt)
		if !ok {
			continue
		}
		if sym := KeysymFromName(symName); sym != NoSymbol {
			k.syms[kc] = sym
		}
	}
}

// section extracts the brace-delimited body of the named top-level block.
func section(src, name string) (string, bool) {
	i := strings.Index(src, name)
	if i < 0 {
		return "", false
	}
	open := strings.IndexByte(src[i:], '{')
	if open < 0 {
		return "", false
	}
	start := i + open + 1
	depth := 1
	inString := false
	for j := start; j < len(src); j++ {
		switch src[j] {
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return src[start:j], true
				}
			}
		}
	}
	return "", false
}

// statements splits a section body on top-level semicolons, trimming
// whitespace. Braced sub-blocks (key { ... }) stay intact.
func statements(body string) []string {
	var out []string
	depth := 0
	inString := false
	start := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
			}
		case ';':
			if !inString && depth == 0 {
				if s := strings.TrimSpace(body[start:i]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(body[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// angleName returns the first <NAME> token in s.
func angleName(s string) string {
	open := strings.IndexByte(s, '<')
	if open < 0 {
		return ""
	}
	end := strings.IndexByte(s[open:], '>')
	if end < 0 {
		return ""
	}
	return s[open+1 : open+end]
}

// trailingNumber parses the decimal after the last '=' in s.
func trailingNumber(s string) (uint64, error) {
	i := strings.LastIndexByte(s, '=')
	if i < 0 {
		return 0, errors.New("no assignment")
	}
	return strconv.ParseUint(strings.TrimSpace(s[i+1:]), 10, 32)
}

// firstSymbol finds the first keysym list in a key statement and returns
// its first entry. A list's opening bracket follows '{', '=' or ',' --
// anything else (symbols[Group1]) is an index expression.
func firstSymbol(stmt string) (string, bool) {
	lastMeaningful := byte(0)
	for i := 0; i < len(stmt); i++ {
		c := stmt[i]
		if c == ' ' || c == '\t' || c == '\n' {
			continue
		}
		if c == '[' && (lastMeaningful == '{' || lastMeaningful == '=' || lastMeaningful == ',') {
			end := strings.IndexByte(stmt[i:], ']')
			if end < 0 {
				return "", false
			}
			list := stmt[i+1 : i+end]
			first := list
			if j := strings.IndexByte(list, ','); j >= 0 {
				first = list[:j]
			}
			first = strings.TrimSpace(first)
			if first == "" {
				return "", false
			}
			return first, true
		}
		lastMeaningful = c
	}
	return "", false
}
