package wl

const (
	opSeatGetPointer  uint16 = 0
	opSeatGetKeyboard uint16 = 1
	opSeatRelease     uint16 = 3

	evSeatCapabilities uint16 = 0
	evSeatName         uint16 = 1
)

// SeatListener receives wl_seat events.
type SeatListener interface {
	Capabilities(capabilities uint32)
	Name(name string)
}

// Seat is a wl_seat binding.
type Seat struct {
	BaseProxy

	listener SeatListener
}

// SetListener installs the seat event handler.
func (s *Seat) SetListener(l SeatListener) {
	s.listener = l
}

// Dispatch implements Proxy.
func (s *Seat) Dispatch(ev *Event) {
	if s.listener == nil {
		return
	}
	switch ev.Opcode {
	case evSeatCapabilities:
		s.listener.Capabilities(ev.Uint32())
	case evSeatName:
		s.listener.Name(ev.String())
	}
}

// GetPointer creates the seat's wl_pointer on the seat's queue.
func (s *Seat) GetPointer() (*Pointer, error) {
	p := &Pointer{
		BaseProxy: BaseProxy{
			id:      s.display.AllocateID(),
			display: s.display,
			version: s.version,
		},
	}
	s.display.register(p, s.display.queueOf(s.id))
	if err := s.display.SendRequest(s.id, opSeatGetPointer, p.id); err != nil {
		s.display.unregister(p.id)
		return nil, err
	}
	return p, nil
}

// GetKeyboard creates the seat's wl_keyboard on the seat's queue.
func (s *Seat) GetKeyboard() (*Keyboard, error) {
	k := &Keyboard{
		BaseProxy: BaseProxy{
			id:      s.display.AllocateID(),
			display: s.display,
			version: s.version,
		},
	}
	s.display.register(k, s.display.queueOf(s.id))
	if err := s.display.SendRequest(s.id, opSeatGetKeyboard, k.id); err != nil {
		s.display.unregister(k.id)
		return nil, err
	}
	return k, nil
}

// Release gives up the seat gracefully when the negotiated version has
// the release request, and just drops the proxy otherwise.
func (s *Seat) Release() {
	if s.version >= SeatReleaseSinceVersion {
		_ = s.display.SendRequest(s.id, opSeatRelease)
	}
	s.display.unregister(s.id)
}
