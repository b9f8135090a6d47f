package wl

const (
	opKeyboardRelease uint16 = 0

	evKeyboardKeymap     uint16 = 0
	evKeyboardEnter      uint16 = 1
	evKeyboardLeave      uint16 = 2
	evKeyboardKey        uint16 = 3
	evKeyboardModifiers  uint16 = 4
	evKeyboardRepeatInfo uint16 = 5
)

// KeyboardListener receives wl_keyboard events. The Keymap handler owns
// the passed file descriptor and must close it.
type KeyboardListener interface {
	Keymap(format uint32, fd int, size uint32)
	Enter(serial uint32, surface uint32, keys []byte)
	Leave(serial uint32, surface uint32)
	Key(serial, time, key, state uint32)
	Modifiers(serial, modsDepressed, modsLatched, modsLocked, group uint32)
	RepeatInfo(rate, delay int32)
}

// Keyboard is a wl_keyboard binding.
type Keyboard struct {
	BaseProxy

	listener KeyboardListener
}

// SetListener installs the keyboard event handler.
func (k *Keyboard) SetListener(l KeyboardListener) {
	k.listener = l
}

func (k *Keyboard) wantsFD(opcode uint16) bool {
	return opcode == evKeyboardKeymap
}

// Dispatch implements Proxy.
func (k *Keyboard) Dispatch(ev *Event) {
	if k.listener == nil {
		return
	}
	switch ev.Opcode {
	case evKeyboardKeymap:
		// fd travels as ancillary data; the body is format then size.
		format := ev.Uint32()
		size := ev.Uint32()
		k.listener.Keymap(format, ev.FD(), size)
	case evKeyboardEnter:
		serial := ev.Uint32()
		surface := ev.Uint32()
		keys := ev.Array()
		k.listener.Enter(serial, surface, keys)
	case evKeyboardLeave:
		serial := ev.Uint32()
		surface := ev.Uint32()
		k.listener.Leave(serial, surface)
	case evKeyboardKey:
		serial := ev.Uint32()
		t := ev.Uint32()
		key := ev.Uint32()
		state := ev.Uint32()
		k.listener.Key(serial, t, key, state)
	case evKeyboardModifiers:
		serial := ev.Uint32()
		dep := ev.Uint32()
		lat := ev.Uint32()
		lock := ev.Uint32()
		group := ev.Uint32()
		k.listener.Modifiers(serial, dep, lat, lock, group)
	case evKeyboardRepeatInfo:
		rate := ev.Int32()
		delay := ev.Int32()
		k.listener.RepeatInfo(rate, delay)
	}
}

// Release gives up the keyboard gracefully when supported, destructively
// otherwise.
func (k *Keyboard) Release() {
	if k.version >= KeyboardReleaseSinceVersion {
		_ = k.display.SendRequest(k.id, opKeyboardRelease)
	}
	k.display.unregister(k.id)
}
