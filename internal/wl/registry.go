package wl

const (
	opRegistryBind uint16 = 0

	evRegistryGlobal       uint16 = 0
	evRegistryGlobalRemove uint16 = 1
)

// RegistryListener receives global advertisement events.
type RegistryListener interface {
	Global(name uint32, iface string, version uint32)
	GlobalRemove(name uint32)
}

// Registry is a wl_registry bound to one event queue.
type Registry struct {
	BaseProxy

	listener RegistryListener
}

// SetListener installs the advertisement handler. Must be called before
// the first dispatch of the registry's queue.
func (r *Registry) SetListener(l RegistryListener) {
	r.listener = l
}

// Dispatch implements Proxy.
func (r *Registry) Dispatch(ev *Event) {
	if r.listener == nil {
		return
	}
	switch ev.Opcode {
	case evRegistryGlobal:
		name := ev.Uint32()
		iface := ev.String()
		version := ev.Uint32()
		r.listener.Global(name, iface, version)
	case evRegistryGlobalRemove:
		r.listener.GlobalRemove(ev.Uint32())
	}
}

// BindSeat binds the advertised global name as a wl_seat at the given
// version. The seat inherits the registry's event queue.
func (r *Registry) BindSeat(name uint32, version uint32) (*Seat, error) {
	s := &Seat{
		BaseProxy: BaseProxy{
			id:      r.display.AllocateID(),
			display: r.display,
			version: version,
		},
	}
	r.display.register(s, r.display.queueOf(r.id))
	// new_id in wl_registry.bind is carried as (interface, version, id).
	if err := r.display.SendRequest(r.id, opRegistryBind, name, SeatInterface, version, s.id); err != nil {
		r.display.unregister(s.id)
		return nil, err
	}
	return s, nil
}

// Destroy drops the client-side registry object.
func (r *Registry) Destroy() {
	r.display.unregister(r.id)
}
