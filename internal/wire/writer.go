package wire

import (
	"encoding/binary"
	"math"

	"github.com/simviz/sceneclient/internal/protocol"
)

// Writer builds outbound payloads and test fixtures with the same
// encoding the cursor decodes: little-endian, uint64-prefixed strings.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return len(w.buf) }

// Int32 appends a little-endian signed 32-bit integer.
func (w *Writer) Int32(v int32) *Writer {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
	return w
}

// Uint64 appends a little-endian unsigned 64-bit integer.
func (w *Writer) Uint64(v uint64) *Writer {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	return w
}

// Float32 appends a little-endian single.
func (w *Writer) Float32(v float32) *Writer {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(v))
	return w
}

// Float64 appends a little-endian double.
func (w *Writer) Float64(v float64) *Writer {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
	return w
}

// Bool appends one byte, 1 for true and 0 for false.
func (w *Writer) Bool(v bool) *Writer {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
	return w
}

// String appends a uint64 length prefix followed by the raw bytes.
func (w *Writer) String(s string) *Writer {
	w.Uint64(uint64(len(s)))
	w.buf = append(w.buf, s...)
	return w
}

// Status appends a server status tag.
func (w *Writer) Status(s protocol.ServerStatus) *Writer { return w.Int32(int32(s)) }

// MessageType appends a server message-type tag.
func (w *Writer) MessageType(t protocol.ServerMessageType) *Writer { return w.Int32(int32(t)) }

// ObjectKind appends an object kind tag.
func (w *Writer) ObjectKind(k protocol.ObjectKind) *Writer { return w.Int32(int32(k)) }

// ShapeKind appends a shape kind tag.
func (w *Writer) ShapeKind(k protocol.ShapeKind) *Writer { return w.Int32(int32(k)) }

// Float64s appends each value in order.
func (w *Writer) Float64s(vs ...float64) *Writer {
	for _, v := range vs {
		w.Float64(v)
	}
	return w
}

// Float32s appends each value in order.
func (w *Writer) Float32s(vs ...float32) *Writer {
	for _, v := range vs {
		w.Float32(v)
	}
	return w
}

// EncodeRequest encodes a 4-byte client request tag.
func EncodeRequest(t protocol.ClientMessageType) []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(t))
}
