package client

import (
	"github.com/simviz/sceneclient/internal/protocol"
	"github.com/simviz/sceneclient/pkg/core"
)

// updatePositions applies per-tick object poses. The response leads
// with the configuration number; if it differs from the last-seen
// value the rest of the response describes an object set this client
// no longer has, so the response is abandoned unparsed and the scene
// is rebuilt.
func (s *Synchronizer) updatePositions() error {
	cur, mt, err := s.request(protocol.RequestObjectPosition)
	if err != nil {
		return err
	}
	if mt != protocol.MessageObjectPositionUpdate {
		return protocol.Violationf(cur.Offset(), "expected ObjectPositionUpdate, got %s", mt)
	}

	configNum, err := cur.Uint64()
	if err != nil {
		return err
	}
	last, known := s.scene.ConfigNumber()
	if !known || configNum != last {
		return s.reinitialize(configNum)
	}

	objectCount, err := cur.Uint64()
	if err != nil {
		return err
	}
	for i := uint64(0); i < objectCount; i++ {
		partCount, err := cur.Uint64()
		if err != nil {
			return err
		}
		for j := uint64(0); j < partCount; j++ {
			name, err := cur.String()
			if err != nil {
				return err
			}
			pose, err := readPose(cur)
			if err != nil {
				return err
			}
			if err := s.scene.ApplyPose(name, pose); err != nil {
				return err
			}
			s.record("record pose", func() error {
				return s.backend.RecordPose(&core.PoseSample{
					Tick: s.tick,
					Name: name,
					Position: [3]float64{
						pose.Position.X, pose.Position.Y, pose.Position.Z,
					},
					Quaternion: [4]float64{
						pose.Orientation.W, pose.Orientation.X,
						pose.Orientation.Y, pose.Orientation.Z,
					},
				})
			})
		}
	}
	return nil
}
