package client

import (
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func listen(t *testing.T) (*net.TCPAddr, <-chan net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()
	return ln.Addr().(*net.TCPAddr), accepted
}

func TestConnection_Lifecycle(t *testing.T) {
	addr, accepted := listen(t)

	c := NewConnection(discardLogger())
	assert.Equal(t, ConnDisconnected, c.State())

	require.NoError(t, c.Connect("127.0.0.1", addr.Port))
	assert.Equal(t, ConnConnected, c.State())

	// Connecting again is a no-op, not a second dial.
	require.NoError(t, c.Connect("127.0.0.1", addr.Port))

	hookRuns := 0
	c.OnClose(func() { hookRuns++ })
	c.Close()
	assert.Equal(t, ConnDisconnected, c.State())
	assert.Equal(t, 1, hookRuns)

	server := <-accepted
	server.Close()
}

func TestConnection_ConnectFailureLeavesDisconnected(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	c := NewConnection(discardLogger())
	require.Error(t, c.Connect("127.0.0.1", port))
	assert.Equal(t, ConnDisconnected, c.State())
}

func TestConnection_WriteWhenDisconnected(t *testing.T) {
	c := NewConnection(discardLogger())
	assert.ErrorIs(t, c.Write([]byte{1}), net.ErrClosed)

	_, err := c.Read(make([]byte, 1))
	assert.ErrorIs(t, err, net.ErrClosed)
	assert.ErrorIs(t, c.SetReadDeadline(time.Now()), net.ErrClosed)
}

func TestConnection_WriteReachesPeer(t *testing.T) {
	addr, accepted := listen(t)

	c := NewConnection(discardLogger())
	require.NoError(t, c.Connect("127.0.0.1", addr.Port))
	t.Cleanup(c.Close)

	require.NoError(t, c.Write([]byte("ping")))

	server := <-accepted
	defer server.Close()
	buf := make([]byte, 4)
	_, err := io.ReadFull(server, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))
}

func TestConnection_IsAlive(t *testing.T) {
	addr, accepted := listen(t)

	c := NewConnection(discardLogger())
	assert.False(t, c.IsAlive())

	require.NoError(t, c.Connect("127.0.0.1", addr.Port))
	t.Cleanup(c.Close)
	assert.True(t, c.IsAlive())

	// An orderly shutdown by the peer reads as dead on the next probe.
	server := <-accepted
	server.Close()
	assert.Eventually(t, func() bool { return !c.IsAlive() },
		time.Second, 10*time.Millisecond)
}

func TestConnection_CloseWithoutConnect(t *testing.T) {
	c := NewConnection(discardLogger())
	hookRuns := 0
	c.OnClose(func() { hookRuns++ })

	c.Close()
	assert.Equal(t, ConnDisconnected, c.State())
	assert.Equal(t, 1, hookRuns)
}
