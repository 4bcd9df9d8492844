package protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the frame reader, the synchronizer and the
// connection manager. Callers classify failures with errors.Is.
var (
	// ErrFrameTimeout is returned when no complete frame arrives
	// within the read deadline.
	ErrFrameTimeout = errors.New("frame read timed out")

	// ErrConnectionClosed is returned when the peer closes the stream
	// mid-frame or during the liveness probe.
	ErrConnectionClosed = errors.New("connection closed by peer")

	// ErrTerminating is returned when the server reports a
	// Terminating status. Always fatal for the connection.
	ErrTerminating = errors.New("server is terminating")

	// ErrResourceNotFound is returned when mesh resolution exhausts
	// every configured root and tier.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrUnknownEntity is returned when a pose update names an entity
	// the client scene does not hold. It signals a desync between the
	// client scene and the server model.
	ErrUnknownEntity = errors.New("unknown entity name")
)

// Violation reports malformed or unexpected bytes in a server response:
// a decode past the valid frame length, an unexpected message type, a
// wrong shape parameter count. Decoding never panics on bad input; it
// returns a *Violation instead.
type Violation struct {
	Offset int
	Reason string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("protocol violation at offset %d: %s", v.Offset, v.Reason)
}

// Violationf builds a *Violation with a formatted reason.
func Violationf(offset int, format string, args ...any) error {
	return &Violation{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// IsViolation reports whether err is or wraps a *Violation.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}
