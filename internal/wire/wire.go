// Package wire implements the typed binary deserialization used for
// server responses: a bounds-checked cursor over a byte buffer that
// reads fixed-width little-endian primitives and length-prefixed
// strings at an advancing offset. It performs no I/O and holds no
// state beyond the cursor position, so it can be tested against
// literal byte slices.
package wire

import (
	"encoding/binary"
	"math"

	"github.com/simviz/sceneclient/internal/protocol"
)

// Cursor decodes values from buf at an advancing offset. Reads past
// len(buf) fail with a protocol violation, never panic. The buffer is
// borrowed, not owned; it must not be mutated while the cursor is live.
type Cursor struct {
	buf []byte
	off int
}

// NewCursor returns a cursor over buf starting at offset 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset returns the current decode position.
func (c *Cursor) Offset() int { return c.off }

// Remaining returns the number of undecoded bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.off }

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || c.off+n > len(c.buf) {
		return nil, protocol.Violationf(c.off, "need %d bytes, %d remain", n, len(c.buf)-c.off)
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

// Int32 reads a little-endian signed 32-bit integer.
func (c *Cursor) Int32() (int32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// Uint64 reads a little-endian unsigned 64-bit integer.
func (c *Cursor) Uint64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Float32 reads a little-endian IEEE 754 single.
func (c *Cursor) Float32() (float32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// Float64 reads a little-endian IEEE 754 double.
func (c *Cursor) Float64() (float64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// Bool reads one byte; any nonzero value is true.
func (c *Cursor) Bool() (bool, error) {
	b, err := c.take(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// String reads a uint64 length prefix followed by that many bytes.
// The length is validated against the remaining buffer before any
// allocation so a corrupt prefix cannot trigger a huge make.
func (c *Cursor) String() (string, error) {
	start := c.off
	n, err := c.Uint64()
	if err != nil {
		return "", err
	}
	if n > uint64(len(c.buf)-c.off) {
		return "", protocol.Violationf(start, "string length %d exceeds %d remaining bytes", n, len(c.buf)-c.off)
	}
	b, err := c.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Float64s reads n consecutive doubles. The count is compared without
// multiplying so a corrupt value cannot overflow the guard and reach
// the allocation.
func (c *Cursor) Float64s(n int) ([]float64, error) {
	if n < 0 || n > c.Remaining()/8 {
		return nil, protocol.Violationf(c.off, "need %d doubles, %d bytes remain", n, c.Remaining())
	}
	out := make([]float64, n)
	for i := range out {
		v, err := c.Float64()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Float32s reads n consecutive singles.
func (c *Cursor) Float32s(n int) ([]float32, error) {
	if n < 0 || n > c.Remaining()/4 {
		return nil, protocol.Violationf(c.off, "need %d floats, %d bytes remain", n, c.Remaining())
	}
	out := make([]float32, n)
	for i := range out {
		v, err := c.Float32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Status reads a server status tag. Unknown values are surfaced to the
// caller unchanged; whether they are fatal is the caller's decision.
func (c *Cursor) Status() (protocol.ServerStatus, error) {
	v, err := c.Int32()
	return protocol.ServerStatus(v), err
}

// MessageType reads a server message-type tag.
func (c *Cursor) MessageType() (protocol.ServerMessageType, error) {
	v, err := c.Int32()
	return protocol.ServerMessageType(v), err
}

// ObjectKind reads an object kind tag.
func (c *Cursor) ObjectKind() (protocol.ObjectKind, error) {
	v, err := c.Int32()
	return protocol.ObjectKind(v), err
}

// ShapeKind reads a shape kind tag.
func (c *Cursor) ShapeKind() (protocol.ShapeKind, error) {
	v, err := c.Int32()
	return protocol.ShapeKind(v), err
}
