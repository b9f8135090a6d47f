package wl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const (
	opDisplaySync        uint16 = 0
	opDisplayGetRegistry uint16 = 1

	evDisplayError    uint16 = 0
	evDisplayDeleteID uint16 = 1
)

type objectEntry struct {
	proxy Proxy
	queue *Queue
}

// Display is a connection to a Wayland compositor. It owns the object id
// space and routes incoming events to per-proxy queues.
type Display struct {
	conn  *net.UnixConn
	owned bool

	nextID  uint32
	objects map[uint32]objectEntry

	// Locally released fd-consuming objects, kept until the server
	// confirms with delete_id so in-flight events still consume their
	// ancillary fds in order.
	zombies map[uint32]fdConsumer

	// Default queue for proxies created without an explicit one.
	defaultQueue *Queue

	inBuf []byte
	fds   []int

	// Sticky transport or protocol failure. Once set, every dispatch
	// returns it.
	err error
}

// Connect dials the compositor socket. An empty name falls back to
// WAYLAND_DISPLAY, then "wayland-0", resolved under XDG_RUNTIME_DIR.
func Connect(name string) (*Display, error) {
	if name == "" {
		name = os.Getenv("WAYLAND_DISPLAY")
		if name == "" {
			name = "wayland-0"
		}
	}
	if !filepath.IsAbs(name) {
		runDir := os.Getenv("XDG_RUNTIME_DIR")
		if runDir == "" {
			return nil, errors.New("XDG_RUNTIME_DIR not set")
		}
		name = filepath.Join(runDir, name)
	}

	conn, err := net.Dial("unix", name)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to wayland socket: %w", err)
	}

	d := NewDisplay(conn.(*net.UnixConn))
	d.owned = true
	return d, nil
}

// NewDisplay wraps an already-connected compositor socket. The caller
// keeps ownership of conn; Close will not close it.
func NewDisplay(conn *net.UnixConn) *Display {
	d := &Display{
		conn:    conn,
		nextID:  2, // 1 is wl_display itself
		objects: make(map[uint32]objectEntry),
		zombies: make(map[uint32]fdConsumer),
	}
	d.defaultQueue = &Queue{display: d}
	return d
}

// Close tears down the connection if this Display opened it.
func (d *Display) Close() error {
	if d.owned {
		return d.conn.Close()
	}
	return nil
}

// Err returns the sticky connection error, if any.
func (d *Display) Err() error {
	return d.err
}

// AllocateID reserves a fresh client-side object id.
func (d *Display) AllocateID() uint32 {
	id := d.nextID
	d.nextID++
	return id
}

// NewQueue creates an event queue scoped to this connection.
func (d *Display) NewQueue() *Queue {
	return &Queue{display: d}
}

// Wrap returns a display handle whose created objects (sync callbacks,
// the registry) are assigned to q instead of the default queue. This is
// the isolation mechanism that lets one consumer poll its own protocol
// traffic independently of the rest of the connection.
func (d *Display) Wrap(q *Queue) *Wrapper {
	return &Wrapper{display: d, queue: q}
}

func (d *Display) register(p Proxy, q *Queue) {
	if q == nil {
		q = d.defaultQueue
	}
	d.objects[p.ID()] = objectEntry{proxy: p, queue: q}
}

func (d *Display) unregister(id uint32) {
	if e, ok := d.objects[id]; ok {
		if fc, ok := e.proxy.(fdConsumer); ok {
			d.zombies[id] = fc
		}
	}
	delete(d.objects, id)
}

func (d *Display) queueOf(id uint32) *Queue {
	if e, ok := d.objects[id]; ok {
		return e.queue
	}
	return nil
}

// SendRequest marshals and writes one request. Supported argument types
// are uint32, int32, Fixed, string and Proxy (marshalled as its id).
func (d *Display) SendRequest(objectID uint32, opcode uint16, args ...interface{}) error {
	if d.err != nil {
		return d.err
	}

	body := make([]byte, 0, 32)
	for _, arg := range args {
		var err error
		body, err = appendArg(body, arg)
		if err != nil {
			return err
		}
	}

	size := 8 + len(body)
	if size > 0xFFFF {
		return fmt.Errorf("request too large: %d bytes", size)
	}

	msg := make([]byte, size)
	binary.LittleEndian.PutUint32(msg[0:4], objectID)
	binary.LittleEndian.PutUint32(msg[4:8], uint32(size)<<16|uint32(opcode))
	copy(msg[8:], body)

	if _, err := d.conn.Write(msg); err != nil {
		d.err = fmt.Errorf("failed to write request: %w", err)
		return d.err
	}
	return nil
}

func appendArg(buf []byte, arg interface{}) ([]byte, error) {
	switch v := arg.(type) {
	case uint32:
		return binary.LittleEndian.AppendUint32(buf, v), nil
	case int32:
		return binary.LittleEndian.AppendUint32(buf, uint32(v)), nil
	case Fixed:
		return binary.LittleEndian.AppendUint32(buf, uint32(v)), nil
	case string:
		n := len(v) + 1
		buf = binary.LittleEndian.AppendUint32(buf, uint32(n))
		buf = append(buf, v...)
		buf = append(buf, 0)
		for i := 0; i < pad4(n); i++ {
			buf = append(buf, 0)
		}
		return buf, nil
	case Proxy:
		if v == nil {
			return binary.LittleEndian.AppendUint32(buf, 0), nil
		}
		return binary.LittleEndian.AppendUint32(buf, v.ID()), nil
	case nil:
		return binary.LittleEndian.AppendUint32(buf, 0), nil
	default:
		return nil, fmt.Errorf("unsupported argument type %T", arg)
	}
}

// Queue buffers events for the proxies assigned to it until the owner
// dispatches them.
type Queue struct {
	display *Display
	pending []*Event
}

// DispatchQueue delivers pending events for q, reading from the
// connection if the queue is empty. It blocks until at least one event
// for q has been dispatched or an error occurs, and returns the number
// of events delivered.
func (d *Display) DispatchQueue(q *Queue) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	if n := d.drain(q); n > 0 {
		return n, nil
	}
	for {
		if err := d.readOnce(); err != nil {
			d.err = err
			return 0, err
		}
		if err := d.demux(); err != nil {
			d.err = err
			return 0, err
		}
		if n := d.drain(q); n > 0 {
			return n, nil
		}
	}
}

// drain delivers buffered events one at a time. Each event is removed
// from the queue before its handler runs, so handlers may re-enter
// DispatchQueue (the seat constructor does, to force keymap delivery).
func (d *Display) drain(q *Queue) int {
	n := 0
	for len(q.pending) > 0 {
		ev := q.pending[0]
		q.pending = q.pending[1:]
		n++
		if e, ok := d.objects[ev.ProxyID]; ok {
			e.proxy.Dispatch(ev)
		} else if ev.fd >= 0 {
			unix.Close(ev.fd)
		}
	}
	return n
}

// readOnce blocks for one chunk of socket data plus any ancillary fds.
func (d *Display) readOnce() error {
	buf := make([]byte, 4096)
	oob := make([]byte, 256)
	n, oobn, _, _, err := d.conn.ReadMsgUnix(buf, oob)
	if err != nil {
		return fmt.Errorf("failed to read from compositor: %w", err)
	}
	if oobn > 0 {
		cmsgs, err := unix.ParseSocketControlMessage(oob[:oobn])
		if err == nil {
			for _, cmsg := range cmsgs {
				if fds, err := unix.ParseUnixRights(&cmsg); err == nil {
					d.fds = append(d.fds, fds...)
				}
			}
		}
	}
	d.inBuf = append(d.inBuf, buf[:n]...)
	return nil
}

// demux splits complete messages out of the input buffer and files each
// event on its target proxy's queue. Display-level events are handled
// inline. No user code runs here.
func (d *Display) demux() error {
	for len(d.inBuf) >= 8 {
		objectID := binary.LittleEndian.Uint32(d.inBuf[0:4])
		sizeOpcode := binary.LittleEndian.Uint32(d.inBuf[4:8])
		size := int(sizeOpcode >> 16)
		opcode := uint16(sizeOpcode & 0xFFFF)
		if size < 8 {
			return fmt.Errorf("invalid message size %d", size)
		}
		if len(d.inBuf) < size {
			return nil // incomplete, wait for more data
		}

		body := make([]byte, size-8)
		copy(body, d.inBuf[8:size])
		d.inBuf = d.inBuf[size:]

		if objectID == 1 {
			if err := d.handleDisplayEvent(opcode, body); err != nil {
				return err
			}
			continue
		}

		e, ok := d.objects[objectID]
		if !ok {
			// Event for an object we already dropped. If its signature
			// carries an fd, consume and close it so the next keymap
			// does not pick up the wrong descriptor.
			if z, ok := d.zombies[objectID]; ok && z.wantsFD(opcode) {
				if fd := d.popFD(); fd >= 0 {
					unix.Close(fd)
				}
			}
			continue
		}
		ev := &Event{ProxyID: objectID, Opcode: opcode, data: body, fd: -1}
		if fc, ok := e.proxy.(fdConsumer); ok && fc.wantsFD(opcode) {
			ev.fd = d.popFD()
		}
		e.queue.pending = append(e.queue.pending, ev)
	}
	return nil
}

func (d *Display) popFD() int {
	if len(d.fds) == 0 {
		return -1
	}
	fd := d.fds[0]
	d.fds = d.fds[1:]
	return fd
}

func (d *Display) handleDisplayEvent(opcode uint16, body []byte) error {
	ev := &Event{ProxyID: 1, Opcode: opcode, data: body, fd: -1}
	switch opcode {
	case evDisplayError:
		objID := ev.Uint32()
		code := ev.Uint32()
		msg := ev.String()
		return fmt.Errorf("wayland protocol error on object %d, code %d: %s", objID, code, msg)
	case evDisplayDeleteID:
		id := ev.Uint32()
		d.unregister(id)
		// The server is done with the id; no more events can arrive.
		delete(d.zombies, id)
	}
	return nil
}

// fdConsumer marks proxies whose events carry a file descriptor.
type fdConsumer interface {
	wantsFD(opcode uint16) bool
}

// Wrapper is a wl_display handle bound to a specific event queue.
type Wrapper struct {
	display *Display
	queue   *Queue
}

// Sync issues wl_display.sync. The returned callback fires on the
// wrapper's queue once the compositor has processed all prior requests.
func (w *Wrapper) Sync() (*Callback, error) {
	cb := &Callback{
		BaseProxy: BaseProxy{id: w.display.AllocateID(), display: w.display},
	}
	w.display.register(cb, w.queue)
	if err := w.display.SendRequest(1, opDisplaySync, cb.id); err != nil {
		w.display.unregister(cb.id)
		return nil, err
	}
	return cb, nil
}

// GetRegistry creates a wl_registry whose events arrive on the
// wrapper's queue.
func (w *Wrapper) GetRegistry() (*Registry, error) {
	r := &Registry{
		BaseProxy: BaseProxy{id: w.display.AllocateID(), display: w.display},
	}
	w.display.register(r, w.queue)
	if err := w.display.SendRequest(1, opDisplayGetRegistry, r.id); err != nil {
		w.display.unregister(r.id)
		return nil, err
	}
	return r, nil
}

// IsConnReset reports whether err looks like the compositor went away
// (broken pipe, reset, or a clean remote close) rather than a protocol
// fault on our side.
func IsConnReset(err error) bool {
	return errors.Is(err, unix.EPIPE) ||
		errors.Is(err, unix.ECONNRESET) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
