package frame

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simviz/sceneclient/internal/protocol"
)

// scriptedConn serves pre-cut reads in order. Each script entry is
// delivered by exactly one Read call.
type scriptedConn struct {
	script    [][]byte
	err       error // returned after the script is exhausted
	deadlines int
}

func (c *scriptedConn) Read(p []byte) (int, error) {
	if len(c.script) == 0 {
		if c.err != nil {
			return 0, c.err
		}
		return 0, io.EOF
	}
	chunk := c.script[0]
	c.script = c.script[1:]
	return copy(p, chunk), nil
}

func (c *scriptedConn) SetReadDeadline(t time.Time) error {
	c.deadlines++
	return nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestReadFrame_SingleChunk(t *testing.T) {
	payload := []byte("hello frame")
	conn := &scriptedConn{script: [][]byte{payload}}

	r := NewReader()
	got, err := r.ReadFrame(conn)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, 1, conn.deadlines)
}

func TestReadFrame_MultiChunk(t *testing.T) {
	// Two full chunks ending in the continuation marker, then a tail.
	first := append(bytes.Repeat([]byte{0xaa}, protocol.ChunkSize-1), protocol.ContinuationMarker)
	second := append(bytes.Repeat([]byte{0xbb}, protocol.ChunkSize-1), protocol.ContinuationMarker)
	tail := []byte{0xcc, 0xdd}

	conn := &scriptedConn{script: [][]byte{first, second, tail}}
	r := NewReader()
	got, err := r.ReadFrame(conn)
	require.NoError(t, err)

	want := append(bytes.Repeat([]byte{0xaa}, protocol.ChunkSize-1), bytes.Repeat([]byte{0xbb}, protocol.ChunkSize-1)...)
	want = append(want, tail...)
	assert.Equal(t, want, got)

	// one deadline covers the whole frame
	assert.Equal(t, 1, conn.deadlines)
}

func TestReadFrame_MarkerStripped(t *testing.T) {
	first := append(bytes.Repeat([]byte{1}, protocol.ChunkSize-1), protocol.ContinuationMarker)
	conn := &scriptedConn{script: [][]byte{first, {2}}}

	r := NewReader()
	got, err := r.ReadFrame(conn)
	require.NoError(t, err)
	assert.Len(t, got, protocol.ChunkSize)
	assert.NotContains(t, got[:len(got)-1], protocol.ContinuationMarker)
}

func TestReadFrame_Timeout(t *testing.T) {
	conn := &scriptedConn{err: timeoutErr{}}
	r := NewReader()
	r.SetTimeout(50 * time.Millisecond)

	_, err := r.ReadFrame(conn)
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrFrameTimeout)
}

func TestReadFrame_EOF(t *testing.T) {
	conn := &scriptedConn{}
	r := NewReader()

	_, err := r.ReadFrame(conn)
	assert.ErrorIs(t, err, protocol.ErrConnectionClosed)
}

func TestReadFrame_ArenaOverflow(t *testing.T) {
	// every chunk claims another follows, forever
	full := append(bytes.Repeat([]byte{0}, protocol.ChunkSize-1), protocol.ContinuationMarker)
	conn := &endlessConn{chunk: full}

	r := NewReader()
	_, err := r.ReadFrame(conn)
	require.Error(t, err)
	assert.True(t, protocol.IsViolation(err), "want protocol violation, got %v", err)
}

type endlessConn struct {
	chunk []byte
}

func (c *endlessConn) Read(p []byte) (int, error)        { return copy(p, c.chunk), nil }
func (c *endlessConn) SetReadDeadline(t time.Time) error { return nil }

func TestReadFrame_ReusesArena(t *testing.T) {
	r := NewReader()

	first, err := r.ReadFrame(&scriptedConn{script: [][]byte{[]byte("first")}})
	require.NoError(t, err)
	require.Equal(t, "first", string(first))

	second, err := r.ReadFrame(&scriptedConn{script: [][]byte{[]byte("again")}})
	require.NoError(t, err)
	assert.Equal(t, "again", string(second))
	// the earlier slice aliases the arena and now shows the new bytes
	assert.Equal(t, "again", string(first))
}

func TestSetTimeout_ZeroRestoresDefault(t *testing.T) {
	r := NewReader()
	r.SetTimeout(time.Minute)
	r.SetTimeout(0)
	assert.Equal(t, DefaultTimeout, r.timeout)
}
