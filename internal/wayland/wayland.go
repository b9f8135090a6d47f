// Package wayland turns the seats a Wayland compositor advertises into
// polled input devices. A Proxy isolates all of its protocol traffic on
// a dedicated event queue over a shared compositor connection; each
// discovered seat becomes one device whose keys, buttons, cursor axes
// and smoothed scroll axes are exposed as scalar controls.
package wayland

import (
	"github.com/wayseat/wayseat/internal/input"
	"github.com/wayseat/wayseat/internal/wl"
)

// Init creates a proxy with an independent queue and registry on an
// existing compositor connection and starts listening for seat
// advertisements. The proxy must not outlive the connection.
func Init(display *wl.Display) *Proxy {
	p := &Proxy{}
	p.Setup(display)
	return p
}

// PopulateDevices constructs one device per currently advertised seat,
// scoped to the given surface, and hands each to the host registry. The
// initial roundtrip makes sure all pending registry events have been
// seen first.
func PopulateDevices(p *Proxy, surfaceID uint32, registry *input.Registry, win WindowEnv) {
	p.Roundtrip()

	for id, version := range p.SeatIDs() {
		registry.Add(NewSeat(p, id, version, surfaceID, win))
	}
}

// DeInit tears down the proxy. Devices constructed from it report
// invalid on their next poll.
func DeInit(p *Proxy) {
	p.Finish()
}
