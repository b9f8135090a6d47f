package wayland

import (
	"github.com/wayseat/wayseat/internal/logger"
	"github.com/wayseat/wayseat/internal/wl"
)

// Sticking to wl_seat version 4: gnome misbehaves when bound at 5.
const maxSeatVersion uint32 = 4

// Proxy owns a dedicated event queue, display wrapper and registry on a
// shared compositor connection, so seat traffic can be polled
// independently of whatever event loop the host runs. A Proxy that
// failed setup is inert: it discovers no seats and every operation is a
// no-op.
type Proxy struct {
	display  *wl.Display
	queue    *wl.Queue
	wrapper  *wl.Wrapper
	registry *wl.Registry

	// Advertised seat registry name -> clamped version.
	seatIDs map[uint32]uint32
}

type registryListener struct {
	p *Proxy
}

func (l registryListener) Global(name uint32, iface string, version uint32) {
	if iface != wl.SeatInterface {
		return
	}
	if version > maxSeatVersion {
		version = maxSeatVersion
	}
	l.p.seatIDs[name] = version
}

func (l registryListener) GlobalRemove(name uint32) {
	delete(l.p.seatIDs, name)
}

// Setup binds the proxy to an existing compositor connection: a fresh
// queue, a display wrapper routed through it, and a registry listening
// for seat advertisements. Failure leaves the proxy inert and is not
// fatal to the host.
func (p *Proxy) Setup(display *wl.Display) {
	p.display = display
	p.seatIDs = make(map[uint32]uint32)

	p.queue = display.NewQueue()
	p.wrapper = display.Wrap(p.queue)

	registry, err := p.wrapper.GetRegistry()
	if err != nil {
		logger.Error("failed to create wayland registry", "err", err)
		p.Finish()
		return
	}
	p.registry = registry
	p.registry.SetListener(registryListener{p})
}

// Roundtrip blocks until the compositor has processed everything sent so
// far, dispatching this proxy's queue along the way. This is the only
// path by which seat events reach the devices. On a dispatch error the
// proxy logs, distinguishes a lost compositor from a protocol fault, and
// tears itself down.
func (p *Proxy) Roundtrip() {
	if p.queue == nil {
		return
	}
	if err := p.roundtripSync(); err != nil {
		if wl.IsConnReset(err) {
			logger.Error("lost connection to the wayland compositor", "err", err)
		} else {
			logger.Error("wayland fatal error", "err", err)
		}
		p.Finish()
	}
}

// roundtripSync issues wl_display.sync on the wrapper and busy-dispatches
// the dedicated queue until the callback fires.
func (p *Proxy) roundtripSync() error {
	cb, err := p.wrapper.Sync()
	if err != nil {
		return err
	}

	done := false
	cb.Done = func(uint32) {
		done = true
	}

	for !done {
		if _, err := p.display.DispatchQueue(p.queue); err != nil {
			cb.Destroy()
			return err
		}
	}
	return nil
}

// SeatIDs returns a snapshot of the advertised seats (registry name to
// negotiated version). A snapshot, because constructing a device
// dispatches events that may change the live set mid-iteration.
func (p *Proxy) SeatIDs() map[uint32]uint32 {
	ids := make(map[uint32]uint32, len(p.seatIDs))
	for id, version := range p.seatIDs {
		ids[id] = version
	}
	return ids
}

// HasSeatID reports whether the seat is still advertised.
func (p *Proxy) HasSeatID(id uint32) bool {
	_, ok := p.seatIDs[id]
	return ok
}

// BindSeat binds an advertised seat, or returns nil if the registry is
// not ready.
func (p *Proxy) BindSeat(id uint32, version uint32) *wl.Seat {
	if p.registry == nil {
		return nil
	}
	seat, err := p.registry.BindSeat(id, version)
	if err != nil {
		logger.Error("failed to bind wl_seat", "id", id, "err", err)
		return nil
	}
	return seat
}

// Finish releases all owned protocol objects in dependency order and
// clears the seat bookkeeping. Idempotent.
func (p *Proxy) Finish() {
	for id := range p.seatIDs {
		delete(p.seatIDs, id)
	}
	if p.registry != nil {
		p.registry.Destroy()
		p.registry = nil
	}
	p.wrapper = nil
	p.queue = nil
	p.display = nil
}
