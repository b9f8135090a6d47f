// Package wl implements the client side of the Wayland wire protocol for
// the core input interfaces: wl_display, wl_registry, wl_callback, wl_seat,
// wl_pointer and wl_keyboard.
//
// The implementation is deliberately small. Messages are framed as an
// 8-byte header (object id, then size<<16|opcode) followed by 32-bit
// aligned arguments, all little-endian. File descriptors ride along as
// SCM_RIGHTS ancillary data. Every proxy belongs to an event queue;
// events for a proxy on another queue are buffered, never dispatched,
// so one consumer of a connection can poll its own traffic without
// touching anyone else's.
package wl

// Interface names used with wl_registry.bind.
const (
	SeatInterface = "wl_seat"
)

// wl_seat capability bitmask.
const (
	SeatCapabilityPointer  uint32 = 1
	SeatCapabilityKeyboard uint32 = 2
	SeatCapabilityTouch    uint32 = 4
)

// wl_pointer.button states.
const (
	PointerButtonStateReleased uint32 = 0
	PointerButtonStatePressed  uint32 = 1
)

// wl_pointer.axis values.
const (
	PointerAxisVerticalScroll   uint32 = 0
	PointerAxisHorizontalScroll uint32 = 1
)

// wl_keyboard.key states.
const (
	KeyboardKeyStateReleased uint32 = 0
	KeyboardKeyStatePressed  uint32 = 1
)

// wl_keyboard.keymap formats.
const (
	KeyboardKeymapFormatNoKeymap uint32 = 0
	KeyboardKeymapFormatXkbV1    uint32 = 1
)

// Protocol versions that introduced the graceful release request.
const (
	SeatReleaseSinceVersion     uint32 = 5
	PointerReleaseSinceVersion  uint32 = 3
	KeyboardReleaseSinceVersion uint32 = 3
)

// Fixed is a Wayland 24.8 signed fixed-point number.
type Fixed int32

// Float64 converts f to a float64.
func (f Fixed) Float64() float64 {
	return float64(f) / 256.0
}

// NewFixed converts v to fixed-point representation.
func NewFixed(v float64) Fixed {
	return Fixed(v * 256.0)
}

// Proxy is the client-side representation of a protocol object.
type Proxy interface {
	ID() uint32
	// Dispatch delivers one event addressed to this proxy. It is called
	// from inside Display.DispatchQueue only.
	Dispatch(*Event)
}
