// Package frame reassembles logical protocol messages from the chunked
// byte stream. The server splits one message across physical chunks of
// up to protocol.ChunkSize bytes; every chunk whose last byte is the
// continuation marker is followed by another chunk, and the marker
// itself is not part of the payload.
package frame

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/simviz/sceneclient/internal/protocol"
)

// DefaultTimeout bounds the wall-clock wait for one complete frame.
const DefaultTimeout = 5 * time.Second

// Conn is the subset of net.Conn the reader needs.
type Conn interface {
	Read(p []byte) (int, error)
	SetReadDeadline(t time.Time) error
}

// Reader reads complete frames into a reusable arena. The arena is a
// single shared buffer: the slice returned by ReadFrame is only valid
// until the next call, and the reader must not be used from two
// protocol exchanges at once.
type Reader struct {
	arena   []byte
	timeout time.Duration
}

// NewReader returns a reader with a full-size arena and the default
// timeout.
func NewReader() *Reader {
	return &Reader{
		arena:   make([]byte, protocol.MaxFrameSize),
		timeout: DefaultTimeout,
	}
}

// SetTimeout overrides the per-frame read deadline. Zero restores the
// default.
func (r *Reader) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultTimeout
	}
	r.timeout = d
}

// ReadFrame reads one logical message from conn and returns the payload
// with all continuation markers stripped. The deadline covers the whole
// frame, not each chunk. A timed-out read leaves the stream in an
// unknown framing state; the caller's only remedy is to close and
// reconnect, never to call ReadFrame again on the same stream.
func (r *Reader) ReadFrame(conn Conn) ([]byte, error) {
	if err := conn.SetReadDeadline(time.Now().Add(r.timeout)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	w := 0
	for {
		if w+protocol.ChunkSize > len(r.arena) {
			return nil, protocol.Violationf(w, "frame exceeds %d byte arena", len(r.arena))
		}
		n, err := conn.Read(r.arena[w : w+protocol.ChunkSize])
		if err != nil {
			if isTimeout(err) {
				return nil, fmt.Errorf("%w after %s", protocol.ErrFrameTimeout, r.timeout)
			}
			if errors.Is(err, io.EOF) {
				return nil, protocol.ErrConnectionClosed
			}
			return nil, fmt.Errorf("read frame: %w", err)
		}
		if n == 0 {
			return nil, protocol.ErrConnectionClosed
		}
		w += n
		if r.arena[w-1] == protocol.ContinuationMarker {
			// More chunks follow. Drop the marker so the chunks
			// concatenate into one contiguous payload.
			w--
			continue
		}
		break
	}
	if w <= 0 {
		return nil, protocol.Violationf(0, "empty frame")
	}
	return r.arena[:w], nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
