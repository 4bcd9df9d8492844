//go:build unix

package client

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// peekAlive does a non-destructive, non-blocking one-byte MSG_PEEK on
// the raw socket. Zero bytes with no error means the peer performed an
// orderly shutdown; EAGAIN means no data pending but the socket is
// open.
func peekAlive(conn net.Conn) bool {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return true
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return false
	}

	alive := true
	ctrlErr := raw.Control(func(fd uintptr) {
		var buf [1]byte
		n, _, err := unix.Recvfrom(int(fd), buf[:], unix.MSG_PEEK|unix.MSG_DONTWAIT)
		switch {
		case err == unix.EAGAIN || err == unix.EWOULDBLOCK:
			alive = true
		case err != nil:
			alive = false
		case n == 0:
			// Orderly shutdown by the peer.
			alive = false
		default:
			alive = true
		}
	})
	if ctrlErr != nil {
		return false
	}
	return alive
}
