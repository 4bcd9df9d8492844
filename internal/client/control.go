package client

import (
	"github.com/simviz/sceneclient/internal/protocol"
	"github.com/simviz/sceneclient/internal/wire"
)

// Pause asks the server to pause the simulation.
func (s *Synchronizer) Pause() error {
	return s.control(wire.EncodeRequest(protocol.RequestPause), "pause")
}

// Resume asks the server to resume the simulation.
func (s *Synchronizer) Resume() error {
	return s.control(wire.EncodeRequest(protocol.RequestResume), "resume")
}

// SetRealtimeFactor asks the server to run at the given realtime
// multiple.
func (s *Synchronizer) SetRealtimeFactor(factor float64) error {
	req := wire.NewWriter().
		Int32(int32(protocol.RequestChangeRealtimeFactor)).
		Float64(factor).
		Bytes()
	return s.control(req, "realtime factor")
}

// control sends one control request and validates the status-only
// response.
func (s *Synchronizer) control(req []byte, step string) error {
	cur, mt, err := s.exchange(req, step)
	if err != nil {
		return err
	}
	if mt != protocol.MessageStatus {
		return protocol.Violationf(cur.Offset(), "expected Status, got %s", mt)
	}
	return nil
}
