package client

import (
	"fmt"

	"github.com/simviz/sceneclient/internal/protocol"
	"github.com/simviz/sceneclient/internal/scene"
	"github.com/simviz/sceneclient/internal/wire"
)

// initializeVisuals requests the free-standing visual markers. Markers
// are identified by server-given unique names, not indices, and are
// only ever rebuilt when the whole scene is.
func (s *Synchronizer) initializeVisuals() error {
	cur, mt, err := s.request(protocol.RequestInitializeVisuals)
	if err != nil {
		return err
	}
	if mt != protocol.MessageVisualInitialization {
		return protocol.Violationf(cur.Offset(), "expected VisualInitialization, got %s", mt)
	}

	count, err := cur.Uint64()
	if err != nil {
		return err
	}
	for i := uint64(0); i < count; i++ {
		if err := s.decodeMarker(cur); err != nil {
			return fmt.Errorf("marker %d of %d: %w", i+1, count, err)
		}
	}
	return nil
}

func (s *Synchronizer) decodeMarker(cur *wire.Cursor) error {
	kind, err := cur.ObjectKind()
	if err != nil {
		return err
	}
	name, err := cur.String()
	if err != nil {
		return err
	}
	rgba, err := cur.Float32s(4)
	if err != nil {
		return err
	}
	material, err := cur.String()
	if err != nil {
		return err
	}
	glow, err := cur.Bool()
	if err != nil {
		return err
	}
	shadow, err := cur.Bool()
	if err != nil {
		return err
	}

	opts := scene.Options{Tag: scene.TagVisual, Shadow: shadow}
	if material == "" {
		// No named material: apply the literal color, and reuse it
		// as the emissive color when the glow flag is set.
		opts.Color = &scene.Color{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
		opts.Emissive = glow
	} else {
		opts.Material = material
	}

	g := s.scene.Graph()
	var h scene.Handle
	switch kind {
	case protocol.ObjectSphere:
		r, err := cur.Float32()
		if err != nil {
			return err
		}
		h, err = g.CreateSphere(name, float64(r), opts)
		if err != nil {
			return fmt.Errorf("create marker sphere: %w", err)
		}
	case protocol.ObjectBox:
		d, err := cur.Float32s(3)
		if err != nil {
			return err
		}
		h, err = g.CreateBox(name, [3]float64{float64(d[0]), float64(d[1]), float64(d[2])}, opts)
		if err != nil {
			return fmt.Errorf("create marker box: %w", err)
		}
	case protocol.ObjectCylinder:
		d, err := cur.Float32s(2)
		if err != nil {
			return err
		}
		h, err = g.CreateCylinder(name, float64(d[0]), float64(d[1]), opts)
		if err != nil {
			return fmt.Errorf("create marker cylinder: %w", err)
		}
	case protocol.ObjectCapsule:
		d, err := cur.Float32s(2)
		if err != nil {
			return err
		}
		h, err = g.CreateCapsule(name, float64(d[0]), float64(d[1]), opts)
		if err != nil {
			return fmt.Errorf("create marker capsule: %w", err)
		}
	default:
		return protocol.Violationf(cur.Offset(), "unsupported marker kind %s", kind)
	}

	s.scene.AttachMarker(name, h)
	return nil
}

// updateVisualPositions applies per-tick marker poses. Unlike the
// config XML step, NoMessage is fatal here: markers were initialized,
// so a position response is mandatory.
func (s *Synchronizer) updateVisualPositions() error {
	cur, mt, err := s.request(protocol.RequestVisualPosition)
	if err != nil {
		return err
	}
	if mt != protocol.MessageVisualPositionUpdate {
		return protocol.Violationf(cur.Offset(), "expected VisualPositionUpdate, got %s", mt)
	}

	count, err := cur.Uint64()
	if err != nil {
		return err
	}
	for i := uint64(0); i < count; i++ {
		name, err := cur.String()
		if err != nil {
			return err
		}
		pose, err := readPose(cur)
		if err != nil {
			return err
		}
		if err := s.scene.ApplyMarkerPose(name, pose); err != nil {
			return err
		}
	}
	return nil
}

// readPose reads a position followed by an orientation quaternion in
// wire order w, x, y, z.
func readPose(cur *wire.Cursor) (scene.Pose, error) {
	v, err := cur.Float64s(7)
	if err != nil {
		return scene.Pose{}, err
	}
	return scene.Pose{
		Position:    scene.Vec3{X: v[0], Y: v[1], Z: v[2]},
		Orientation: scene.Quat{W: v[3], X: v[4], Y: v[5], Z: v[6]},
	}, nil
}
