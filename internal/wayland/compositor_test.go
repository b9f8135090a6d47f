package wayland

import (
	"encoding/binary"
	"io"
	"net"
	"os"
	"sync"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/wayseat/wayseat/internal/wl"
)

// fakeCompositor speaks just enough of the server side of the wire
// protocol to exercise the proxy and seat state machines over a
// socketpair: it advertises scripted seats, answers sync with a callback
// done, and reacts to seat binds and get_pointer/get_keyboard the way a
// real compositor does.
type fakeCompositor struct {
	t    *testing.T
	conn *net.UnixConn

	mu         sync.Mutex
	registryID uint32
	seatObjID  uint32
	pointerID  uint32
	keyboardID uint32
	serial     uint32

	// Script knobs, fixed before the client connects.
	seats      map[uint32]uint32 // advertised name -> version
	caps       uint32
	seatName   string
	keymapText string
}

func newFakeCompositor(t *testing.T) (*fakeCompositor, *wl.Display) {
	t.Helper()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}

	clientConn := fdToUnixConn(t, fds[0])
	serverConn := fdToUnixConn(t, fds[1])
	t.Cleanup(func() {
		clientConn.Close()
		serverConn.Close()
	})

	c := &fakeCompositor{
		t:        t,
		conn:     serverConn,
		seats:    map[uint32]uint32{},
		seatName: "seat0",
	}
	return c, wl.NewDisplay(clientConn)
}

func fdToUnixConn(t *testing.T, fd int) *net.UnixConn {
	t.Helper()
	f := os.NewFile(uintptr(fd), "socketpair")
	conn, err := net.FileConn(f)
	if err != nil {
		t.Fatalf("FileConn: %v", err)
	}
	f.Close()
	return conn.(*net.UnixConn)
}

// run serves requests until the peer goes away. Call in a goroutine.
func (c *fakeCompositor) run() {
	for {
		objectID, opcode, body, err := c.readRequest()
		if err != nil {
			return
		}
		c.handle(objectID, opcode, body)
	}
}

func (c *fakeCompositor) handle(objectID uint32, opcode uint16, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case objectID == 1 && opcode == 0: // wl_display.sync
		cb := binary.LittleEndian.Uint32(body)
		c.serial++
		c.write(marshal(cb, 0, c.serial))

	case objectID == 1 && opcode == 1: // wl_display.get_registry
		c.registryID = binary.LittleEndian.Uint32(body)
		for name, version := range c.seats {
			c.write(marshal(c.registryID, 0, name, "wl_seat", version))
		}

	case objectID == c.registryID && opcode == 0: // wl_registry.bind
		// name, interface, version, new_id
		name := binary.LittleEndian.Uint32(body[0:4])
		rest := body[4:]
		strLen := int(binary.LittleEndian.Uint32(rest[0:4]))
		rest = rest[4+strLen+pad(strLen):]
		newID := binary.LittleEndian.Uint32(rest[4:8])
		if _, ok := c.seats[name]; ok {
			c.seatObjID = newID
			c.write(marshal(newID, 0, c.caps)) // capabilities
			c.write(marshal(newID, 1, c.seatName))
		}

	case objectID == c.seatObjID && opcode == 0: // wl_seat.get_pointer
		c.pointerID = binary.LittleEndian.Uint32(body)

	case objectID == c.seatObjID && opcode == 1: // wl_seat.get_keyboard
		c.keyboardID = binary.LittleEndian.Uint32(body)
		if c.keymapText != "" {
			c.writeKeymap()
		}
	}
}

func (c *fakeCompositor) writeKeymap() {
	f, err := os.CreateTemp(c.t.TempDir(), "keymap")
	if err != nil {
		c.t.Errorf("keymap temp file: %v", err)
		return
	}
	defer f.Close()
	data := append([]byte(c.keymapText), 0)
	if _, err := f.Write(data); err != nil {
		c.t.Errorf("keymap write: %v", err)
		return
	}

	msg := marshal(c.keyboardID, 0, uint32(wl.KeyboardKeymapFormatXkbV1), uint32(len(data)))
	rights := unix.UnixRights(int(f.Fd()))
	if _, _, err := c.conn.WriteMsgUnix(msg, rights, nil); err != nil {
		c.t.Errorf("keymap send: %v", err)
	}
}

// Event injection helpers. Writes are immediate; the client sees them on
// its next roundtrip.

func (c *fakeCompositor) sendKey(evdevCode uint32, pressed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := uint32(wl.KeyboardKeyStateReleased)
	if pressed {
		state = wl.KeyboardKeyStatePressed
	}
	c.serial++
	c.write(marshal(c.keyboardID, 3, c.serial, uint32(0), evdevCode, state))
}

func (c *fakeCompositor) sendButton(code uint32, pressed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := uint32(wl.PointerButtonStateReleased)
	if pressed {
		state = wl.PointerButtonStatePressed
	}
	c.serial++
	c.write(marshal(c.pointerID, 3, c.serial, uint32(0), code, state))
}

func (c *fakeCompositor) sendAxis(axis uint32, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.write(marshal(c.pointerID, 4, uint32(0), axis, int32(wl.NewFixed(value))))
}

func (c *fakeCompositor) sendPointerEnter(surface uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serial++
	c.write(marshal(c.pointerID, 0, c.serial, surface, int32(0), int32(0)))
}

func (c *fakeCompositor) sendPointerLeave(surface uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serial++
	c.write(marshal(c.pointerID, 1, c.serial, surface))
}

func (c *fakeCompositor) sendMotion(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.write(marshal(c.pointerID, 2, uint32(0), int32(wl.NewFixed(x)), int32(wl.NewFixed(y))))
}

func (c *fakeCompositor) sendCapabilities(caps uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.write(marshal(c.seatObjID, 0, caps))
}

func (c *fakeCompositor) sendKeymapChange() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeKeymap()
}

func (c *fakeCompositor) removeSeat(name uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.seats, name)
	c.write(marshal(c.registryID, 1, name))
}

func (c *fakeCompositor) write(msg []byte) {
	if _, err := c.conn.Write(msg); err != nil {
		// Peer teardown mid-test is fine.
		return
	}
}

func (c *fakeCompositor) readRequest() (uint32, uint16, []byte, error) {
	var header [8]byte
	if _, err := io.ReadFull(c.conn, header[:]); err != nil {
		return 0, 0, nil, err
	}
	objectID := binary.LittleEndian.Uint32(header[0:4])
	sizeOpcode := binary.LittleEndian.Uint32(header[4:8])
	size := int(sizeOpcode >> 16)
	opcode := uint16(sizeOpcode & 0xFFFF)
	body := make([]byte, size-8)
	if _, err := io.ReadFull(c.conn, body); err != nil {
		return 0, 0, nil, err
	}
	return objectID, opcode, body, nil
}

// marshal builds one wire message from uint32, int32 and string args.
func marshal(objectID uint32, opcode uint16, args ...interface{}) []byte {
	body := []byte{}
	for _, arg := range args {
		switch v := arg.(type) {
		case uint32:
			body = binary.LittleEndian.AppendUint32(body, v)
		case int32:
			body = binary.LittleEndian.AppendUint32(body, uint32(v))
		case string:
			n := len(v) + 1
			body = binary.LittleEndian.AppendUint32(body, uint32(n))
			body = append(body, v...)
			body = append(body, 0)
			for i := 0; i < pad(n); i++ {
				body = append(body, 0)
			}
		default:
			panic("unsupported marshal arg")
		}
	}
	size := 8 + len(body)
	msg := make([]byte, size)
	binary.LittleEndian.PutUint32(msg[0:4], objectID)
	binary.LittleEndian.PutUint32(msg[4:8], uint32(size)<<16|uint32(opcode))
	copy(msg[8:], body)
	return msg
}

func pad(n int) int {
	return (4 - (n % 4)) % 4
}

const testKeymap = `xkb_keymap {
	xkb_keycodes "test" {
		minimum = 8;
		maximum = 40;
		<ESC> = 9;
		<AE01> = 10;
		<RTRN> = 36;
		<AC01> = 38;
	};
	xkb_types "test" { };
	xkb_compatibility "test" { };
	xkb_symbols "test" {
		name[group1]="English (US)";
		key <ESC> { [ Escape ] };
		key <AE01> { [ 1, exclam ] };
		key <RTRN> { [ Return ] };
		key <AC01> { type= "ALPHABETIC", symbols[Group1]= [ a, A ] };
	};
};`

// Key controls the test keymap produces: Escape, 1, Return, A.
const testKeymapKeys = 4
