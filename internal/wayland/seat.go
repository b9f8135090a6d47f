package wayland

import (
	"golang.org/x/sys/unix"

	"github.com/wayseat/wayseat/internal/config"
	"github.com/wayseat/wayseat/internal/input"
	"github.com/wayseat/wayseat/internal/logger"
	"github.com/wayseat/wayseat/internal/wl"
	"github.com/wayseat/wayseat/internal/xkb"
)

// Wayland keycodes are evdev-based; xkb keycodes are offset by 8.
const keycodeOffset = 8

// Button codes start at BTN_LEFT.
const buttonBase = 0x110

// Number of button controls synthesized per pointer.
const buttonCount = 32

// State is the live input state a seat's controls read from. It is
// mutated only inside this seat's event handlers and the smoothing step
// of UpdateInput.
type State struct {
	// Keys is a bitmap over xkb keycodes, sized from the compiled
	// keymap's keycode range.
	Keys []byte
	// Buttons is a bitmask of pressed pointer buttons.
	Buttons uint32
	// Cursor is the pointer position normalized to [-1, 1] per axis.
	Cursor [2]float64
	// AccumAxis accumulates raw scroll deltas within one poll cycle.
	AccumAxis [2]float64
	// Axis is the smoothed scroll output the axis controls report.
	Axis [2]float64
}

// WindowEnv supplies the window geometry the cursor controls normalize
// against. Implementations come from the host's windowing layer.
type WindowEnv interface {
	Size() (width, height int32)
	InputScale() (x, y float64)
}

// Seat is one input device per advertised wl_seat. Capabilities are
// snapshotted at construction: the control list never changes afterward,
// and losing a negotiated capability (or the seat itself, or the keymap
// changing underneath us) invalidates the whole device.
type Seat struct {
	proxy     *Proxy
	seatID    uint32
	surfaceID uint32
	win       WindowEnv

	smoothing   float64
	sensitivity float64
	scaleX      float64
	scaleY      float64

	seat     *wl.Seat
	pointer  *wl.Pointer
	keyboard *wl.Keyboard

	keymap   *xkb.Keymap
	keyState *xkb.State

	name        string
	constructed bool
	valid       bool
	inSurface   bool

	state    State
	controls []input.Control
}

// NewSeat binds the advertised seat and performs one roundtrip so the
// initial capability and name events arrive before it returns.
func NewSeat(proxy *Proxy, seatID, seatVersion uint32, surfaceID uint32, win WindowEnv) *Seat {
	tuning := config.Get().Input
	s := &Seat{
		proxy:       proxy,
		seatID:      seatID,
		surfaceID:   surfaceID,
		win:         win,
		smoothing:   tuning.AxisSmoothing,
		sensitivity: tuning.AxisSensitivity,
		scaleX:      tuning.ScaleX,
		scaleY:      tuning.ScaleY,
		name:        "Seat",
		valid:       true,
	}
	s.seat = proxy.BindSeat(seatID, seatVersion)
	if s.seat != nil {
		s.seat.SetListener(seatListener{s})
	}
	proxy.Roundtrip()
	s.constructed = true
	return s
}

// IsValid implements input.Device.
func (s *Seat) IsValid() bool {
	return s.valid
}

// Name implements input.Device.
func (s *Seat) Name() string {
	return s.name
}

// Source implements input.Device.
func (s *Seat) Source() string {
	return "Wayland"
}

// Controls implements input.Device.
func (s *Seat) Controls() []input.Control {
	return s.controls
}

// UpdateInput pulls in all queued events since the previous poll, applies
// scroll smoothing, and re-checks that the compositor still advertises
// this seat. The smoothing is a weighted running average: each cycle the
// filtered value moves toward the motion accumulated during that cycle,
// with the old value weighted smoothing:1.
func (s *Seat) UpdateInput() {
	s.proxy.Roundtrip()

	for i := range s.state.Axis {
		s.state.Axis[i] = (s.state.Axis[i]*s.smoothing + s.state.AccumAxis[i]) / (s.smoothing + 1)
		s.state.AccumAxis[i] = 0
	}

	if !s.proxy.HasSeatID(s.seatID) {
		s.valid = false
	}
}

// Destroy releases the layout objects and protocol bindings. Safe from
// any state.
func (s *Seat) Destroy() {
	s.clearKeymap()
	if s.pointer != nil {
		s.pointer.Release()
		s.pointer = nil
	}
	if s.keyboard != nil {
		s.keyboard.Release()
		s.keyboard = nil
	}
	if s.seat != nil {
		s.seat.Release()
		s.seat = nil
	}
}

func (s *Seat) clearKeymap() {
	s.keyState = nil
	s.keymap = nil
}

// capabilities is considered once, at construct time, so the host's view
// of the device never changes. Losing the pointer or keyboard afterward
// invalidates the entire device.
func (s *Seat) capabilities(caps uint32) {
	if s.constructed {
		if (s.pointer != nil && caps&wl.SeatCapabilityPointer == 0) ||
			(s.keyboard != nil && caps&wl.SeatCapabilityKeyboard == 0) {
			s.valid = false
		}
		return
	}

	if s.pointer == nil && caps&wl.SeatCapabilityPointer != 0 {
		pointer, err := s.seat.GetPointer()
		if err != nil {
			logger.Error("failed to get wl_pointer", "seat", s.seatID, "err", err)
		} else {
			s.pointer = pointer
			s.pointer.SetListener(pointerListener{s})

			for i := uint32(0); i < buttonCount; i++ {
				s.addControl(&buttonControl{index: i, state: &s.state})
			}
			// Cursor X-/X+/Y-/Y+ then the smoothed scroll axes.
			for i := 0; i != 4; i++ {
				s.addControl(&cursorControl{axis: i >> 1, positive: i&1 != 0, state: &s.state})
			}
			for i := 0; i != 4; i++ {
				s.addControl(&axisControl{axis: i >> 1, positive: i&1 != 0, sensitivity: s.sensitivity, state: &s.state})
			}
		}
	}

	if s.keyboard == nil && caps&wl.SeatCapabilityKeyboard != 0 {
		keyboard, err := s.seat.GetKeyboard()
		if err != nil {
			logger.Error("failed to get wl_keyboard", "seat", s.seatID, "err", err)
			return
		}
		s.keyboard = keyboard
		s.keyboard.SetListener(keyboardListener{s})

		// Roundtrip to force keymap delivery.
		s.proxy.Roundtrip()

		if s.keyState != nil {
			minKeycode := s.keymap.MinKeycode()
			maxKeycode := s.keymap.MaxKeycode()

			if maxKeycode > 0 {
				s.state.Keys = make([]byte, maxKeycode/8+1)
			}

			for kc := minKeycode; kc <= maxKeycode; kc++ {
				key := newKeyControl(s.keyState, kc, &s.state)
				if key.name != "" {
					s.addControl(key)
				}
			}
		}
	}
}

func (s *Seat) addControl(c input.Control) {
	s.controls = append(s.controls, c)
}

func (s *Seat) seatName(name string) {
	if name != "" {
		s.name = name
	} else {
		s.name = "Seat"
	}
}

// keymapEvent compiles the transferred layout. A keymap change after
// construction alters the host's view of the device, so the device is
// invalidated instead of reconfigured.
func (s *Seat) keymapEvent(format uint32, fd int, size uint32) {
	if fd >= 0 {
		defer unix.Close(fd)
	}

	if s.constructed {
		s.valid = false
		return
	}

	s.clearKeymap()

	if format != wl.KeyboardKeymapFormatXkbV1 || fd < 0 {
		return
	}

	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		logger.Error("failed to map keymap buffer", "seat", s.seatID, "err", err)
		return
	}
	defer func() {
		_ = unix.Munmap(data)
	}()

	keymap, err := xkb.NewKeymapFromBuffer(data)
	if err != nil {
		logger.Error("failed to compile keymap", "seat", s.seatID, "err", err)
		return
	}
	s.keymap = keymap
	s.keyState = xkb.NewState(keymap)
}

func (s *Seat) key(key uint32, state uint32) {
	kc := key + keycodeOffset
	byteIdx := kc / 8
	if int(byteIdx) >= len(s.state.Keys) {
		return
	}
	if state == wl.KeyboardKeyStatePressed {
		s.state.Keys[byteIdx] |= 1 << (kc % 8)
	} else {
		s.state.Keys[byteIdx] &^= 1 << (kc % 8)
	}
}

func (s *Seat) modifiers(depressed, latched, locked, group uint32) {
	if s.keyState != nil {
		s.keyState.UpdateMask(depressed, latched, locked, group)
	}
}

func (s *Seat) button(button uint32, state uint32) {
	if button < buttonBase || button >= buttonBase+buttonCount {
		return
	}
	bit := uint32(1) << (button - buttonBase)
	if state == wl.PointerButtonStatePressed {
		s.state.Buttons |= bit
	} else {
		s.state.Buttons &^= bit
	}
}

func (s *Seat) motion(sx, sy wl.Fixed) {
	if !s.inSurface {
		return
	}

	// Configured scale stacks with whatever the windowing layer reports.
	var width, height int32
	scaleX, scaleY := s.scaleX, s.scaleY
	if s.win != nil {
		width, height = s.win.Size()
		wx, wy := s.win.InputScale()
		scaleX *= wx
		scaleY *= wy
	}

	if width > 0 && height > 0 {
		// The position as a range from -1 to 1.
		s.state.Cursor[0] = (sx.Float64()/float64(width)*2 - 1) * scaleX
		s.state.Cursor[1] = (sy.Float64()/float64(height)*2 - 1) * scaleY
	} else {
		s.state.Cursor[0] = 0
		s.state.Cursor[1] = 0
	}
}

func (s *Seat) axis(axis uint32, value wl.Fixed) {
	if axis == wl.PointerAxisHorizontalScroll {
		s.state.AccumAxis[0] += value.Float64()
	} else {
		s.state.AccumAxis[1] += value.Float64()
	}
}

// Listener adapters. Each forwards protocol events to the seat's own
// handlers; events scoped to other surfaces are filtered here.

type seatListener struct {
	s *Seat
}

func (l seatListener) Capabilities(caps uint32) { l.s.capabilities(caps) }
func (l seatListener) Name(name string)         { l.s.seatName(name) }

type pointerListener struct {
	s *Seat
}

func (l pointerListener) Enter(_ uint32, surface uint32, _, _ wl.Fixed) {
	if surface == l.s.surfaceID {
		l.s.inSurface = true
	}
}

func (l pointerListener) Leave(_ uint32, surface uint32) {
	if surface == l.s.surfaceID {
		l.s.inSurface = false
	}
}

func (l pointerListener) Motion(_ uint32, sx, sy wl.Fixed) { l.s.motion(sx, sy) }

func (l pointerListener) Button(_, _, button, state uint32) { l.s.button(button, state) }

func (l pointerListener) Axis(_ uint32, axis uint32, value wl.Fixed) { l.s.axis(axis, value) }

func (l pointerListener) Frame()                     {}
func (l pointerListener) AxisSource(uint32)          {}
func (l pointerListener) AxisStop(uint32, uint32)    {}
func (l pointerListener) AxisDiscrete(uint32, int32) {}

type keyboardListener struct {
	s *Seat
}

func (l keyboardListener) Keymap(format uint32, fd int, size uint32) {
	l.s.keymapEvent(format, fd, size)
}

func (l keyboardListener) Enter(uint32, uint32, []byte) {}
func (l keyboardListener) Leave(uint32, uint32)         {}

func (l keyboardListener) Key(_, _, key, state uint32) { l.s.key(key, state) }

func (l keyboardListener) Modifiers(_, depressed, latched, locked, group uint32) {
	l.s.modifiers(depressed, latched, locked, group)
}

func (l keyboardListener) RepeatInfo(int32, int32) {}
