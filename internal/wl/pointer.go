package wl

const (
	opPointerRelease uint16 = 1

	evPointerEnter        uint16 = 0
	evPointerLeave        uint16 = 1
	evPointerMotion       uint16 = 2
	evPointerButton       uint16 = 3
	evPointerAxis         uint16 = 4
	evPointerFrame        uint16 = 5
	evPointerAxisSource   uint16 = 6
	evPointerAxisStop     uint16 = 7
	evPointerAxisDiscrete uint16 = 8
)

// PointerListener receives wl_pointer events. Surfaces are identified by
// their object id; this layer never owns surfaces itself.
type PointerListener interface {
	Enter(serial uint32, surface uint32, surfaceX, surfaceY Fixed)
	Leave(serial uint32, surface uint32)
	Motion(time uint32, surfaceX, surfaceY Fixed)
	Button(serial, time, button, state uint32)
	Axis(time uint32, axis uint32, value Fixed)
	Frame()
	AxisSource(source uint32)
	AxisStop(time uint32, axis uint32)
	AxisDiscrete(axis uint32, discrete int32)
}

// Pointer is a wl_pointer binding.
type Pointer struct {
	BaseProxy

	listener PointerListener
}

// SetListener installs the pointer event handler.
func (p *Pointer) SetListener(l PointerListener) {
	p.listener = l
}

// Dispatch implements Proxy.
func (p *Pointer) Dispatch(ev *Event) {
	if p.listener == nil {
		return
	}
	switch ev.Opcode {
	case evPointerEnter:
		serial := ev.Uint32()
		surface := ev.Uint32()
		sx := ev.Fixed()
		sy := ev.Fixed()
		p.listener.Enter(serial, surface, sx, sy)
	case evPointerLeave:
		serial := ev.Uint32()
		surface := ev.Uint32()
		p.listener.Leave(serial, surface)
	case evPointerMotion:
		t := ev.Uint32()
		sx := ev.Fixed()
		sy := ev.Fixed()
		p.listener.Motion(t, sx, sy)
	case evPointerButton:
		serial := ev.Uint32()
		t := ev.Uint32()
		button := ev.Uint32()
		state := ev.Uint32()
		p.listener.Button(serial, t, button, state)
	case evPointerAxis:
		t := ev.Uint32()
		axis := ev.Uint32()
		value := ev.Fixed()
		p.listener.Axis(t, axis, value)
	case evPointerFrame:
		p.listener.Frame()
	case evPointerAxisSource:
		p.listener.AxisSource(ev.Uint32())
	case evPointerAxisStop:
		t := ev.Uint32()
		axis := ev.Uint32()
		p.listener.AxisStop(t, axis)
	case evPointerAxisDiscrete:
		axis := ev.Uint32()
		discrete := ev.Int32()
		p.listener.AxisDiscrete(axis, discrete)
	}
}

// Release gives up the pointer gracefully when supported, destructively
// otherwise.
func (p *Pointer) Release() {
	if p.version >= PointerReleaseSinceVersion {
		_ = p.display.SendRequest(p.id, opPointerRelease)
	}
	p.display.unregister(p.id)
}
