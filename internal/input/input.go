// Package input defines the polled controller contract the host
// application consumes: devices exposing named scalar controls, and a
// registry that collects them.
package input

// Control is one pollable scalar input. State is a pure function of the
// owning device's state at poll time; implementations never cache.
type Control interface {
	Name() string
	State() float64
}

// Device is a polled input device. The host calls UpdateInput once per
// frame, then reads controls. A device whose backing resources went away
// reports IsValid false and is dropped by the host; it is inert but safe
// to keep calling.
type Device interface {
	IsValid() bool
	Name() string
	Source() string
	UpdateInput()
	Controls() []Control
}

// Registry collects the devices a backend discovered.
type Registry struct {
	devices []Device
}

// Add hands a fully constructed device to the host.
func (r *Registry) Add(d Device) {
	r.devices = append(r.devices, d)
}

// Devices returns the current device list.
func (r *Registry) Devices() []Device {
	return r.devices
}

// PruneInvalid drops devices that report invalid and returns how many
// were removed.
func (r *Registry) PruneInvalid() int {
	kept := r.devices[:0]
	removed := 0
	for _, d := range r.devices {
		if d.IsValid() {
			kept = append(kept, d)
		} else {
			removed++
		}
	}
	r.devices = kept
	return removed
}
