package wl

import "encoding/binary"

// Event is one decoded protocol event. Argument readers consume the
// payload in order, mirroring how the message was marshalled.
type Event struct {
	ProxyID uint32
	Opcode  uint16

	data []byte
	fd   int
	off  int
}

// Uint32 reads the next 32-bit unsigned argument.
func (e *Event) Uint32() uint32 {
	if e.off+4 > len(e.data) {
		return 0
	}
	v := binary.LittleEndian.Uint32(e.data[e.off:])
	e.off += 4
	return v
}

// Int32 reads the next 32-bit signed argument.
func (e *Event) Int32() int32 {
	return int32(e.Uint32())
}

// Fixed reads the next fixed-point argument.
func (e *Event) Fixed() Fixed {
	return Fixed(e.Int32())
}

// String reads the next string argument. The wire encoding is a 32-bit
// length (including the NUL terminator) followed by the padded bytes.
func (e *Event) String() string {
	n := int(e.Uint32())
	if n == 0 || e.off+n > len(e.data) {
		return ""
	}
	s := string(e.data[e.off : e.off+n-1])
	e.off += n + pad4(n)
	return s
}

// Array reads the next array argument.
func (e *Event) Array() []byte {
	n := int(e.Uint32())
	if e.off+n > len(e.data) {
		return nil
	}
	a := make([]byte, n)
	copy(a, e.data[e.off:e.off+n])
	e.off += n + pad4(n)
	return a
}

// FD returns the file descriptor attached to this event, or -1.
func (e *Event) FD() int {
	return e.fd
}

func pad4(n int) int {
	return (4 - (n % 4)) % 4
}
