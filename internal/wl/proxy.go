package wl

// BaseProxy carries the identity every protocol object shares.
type BaseProxy struct {
	id      uint32
	display *Display
	version uint32
}

// ID returns the object id.
func (p *BaseProxy) ID() uint32 {
	return p.id
}

// Version returns the negotiated interface version.
func (p *BaseProxy) Version() uint32 {
	return p.version
}

// Display returns the owning connection.
func (p *BaseProxy) Display() *Display {
	return p.display
}

const opCallbackDone uint16 = 0

// Callback is a wl_callback. It fires once and is then dead.
type Callback struct {
	BaseProxy

	// Done is invoked with the callback data when the event arrives.
	Done func(data uint32)
}

// Dispatch implements Proxy.
func (c *Callback) Dispatch(ev *Event) {
	if ev.Opcode == opCallbackDone {
		data := ev.Uint32()
		c.display.unregister(c.id)
		if c.Done != nil {
			c.Done(data)
		}
	}
}

// Destroy drops the client-side object. wl_callback has no destructor
// request; the id is reclaimed when the server confirms via delete_id.
func (c *Callback) Destroy() {
	c.display.unregister(c.id)
}
