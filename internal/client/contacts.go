package client

import (
	"github.com/simviz/sceneclient/internal/protocol"
	"github.com/simviz/sceneclient/internal/scene"
	"github.com/simviz/sceneclient/pkg/core"
)

// contact is one decoded contact sample, alive for exactly one tick.
type contact struct {
	pos   scene.Vec3
	force scene.Vec3
	mag   float64
}

// updateContacts rebuilds the contact visualization from scratch. All
// samples are decoded first so force markers can be scaled against the
// maximum force magnitude of this batch, not a running maximum.
func (s *Synchronizer) updateContacts() error {
	cur, mt, err := s.request(protocol.RequestContactInfos)
	if err != nil {
		return err
	}
	if mt != protocol.MessageContactInfoUpdate {
		return protocol.Violationf(cur.Offset(), "expected ContactInfoUpdate, got %s", mt)
	}

	// The contact response carries its own configuration number. It
	// is not cross-checked against the scene; the position update is
	// the step that owns reinitialization.
	configNum, err := cur.Uint64()
	if err != nil {
		return err
	}
	count, err := cur.Uint64()
	if err != nil {
		return err
	}
	// Each sample is six doubles; a count the remaining payload cannot
	// hold must fail here, before it sizes the allocation.
	if count > uint64(cur.Remaining())/48 {
		return protocol.Violationf(cur.Offset(), "contact count %d exceeds %d remaining bytes", count, cur.Remaining())
	}
	s.logger.Debug("contact update", "count", count, "configNumber", configNum)

	contacts := make([]contact, 0, count)
	maxMag := 0.0
	for i := uint64(0); i < count; i++ {
		v, err := cur.Float64s(6)
		if err != nil {
			return err
		}
		c := contact{
			pos:   scene.Vec3{X: v[0], Y: v[1], Z: v[2]},
			force: scene.Vec3{X: v[3], Y: v[4], Z: v[5]},
		}
		c.mag = c.force.Norm()
		if c.mag > maxMag {
			maxMag = c.mag
		}
		contacts = append(contacts, c)
	}

	g := s.scene.Graph()
	g.ClearContacts()
	for _, c := range contacts {
		if s.showContactPoints {
			if err := g.AddContactPoint(c.pos); err != nil {
				return err
			}
		}
		if s.showContactForces && maxMag > 0 {
			if err := g.AddContactForce(c.pos, c.force, c.mag/maxMag); err != nil {
				return err
			}
		}
	}

	if len(contacts) > 0 {
		batch := make([]core.ContactSample, len(contacts))
		for i, c := range contacts {
			batch[i] = core.ContactSample{
				Tick:     s.tick,
				Position: [3]float64{c.pos.X, c.pos.Y, c.pos.Z},
				Force:    [3]float64{c.force.X, c.force.Y, c.force.Z},
			}
		}
		s.record("record contacts", func() error {
			return s.backend.RecordContacts(batch)
		})
	}
	return nil
}
