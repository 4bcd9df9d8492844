package scene

import "sync"

// ShapeRecord is one shape created through the MemoryGraph. Exported so
// tests and headless runs can inspect what scene construction produced.
type ShapeRecord struct {
	Name    string
	Kind    string
	Dims    []float64
	Path    string
	Terrain *Terrain
	Options Options
	Pose    Pose
}

// ContactMark is one contact visualization emitted this tick.
type ContactMark struct {
	Pos   Vec3
	Force Vec3
	Scale float64
	Point bool
}

// MemoryGraph implements Graph without a rendering engine. It records
// every created shape and contact mark in memory. Used by tests and by
// headless recording sessions where no host engine is attached.
type MemoryGraph struct {
	mu       sync.RWMutex
	shapes   []*ShapeRecord
	contacts []ContactMark
}

// NewMemoryGraph returns an empty memory graph.
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{}
}

func (g *MemoryGraph) add(r *ShapeRecord) (Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.shapes = append(g.shapes, r)
	return r, nil
}

func (g *MemoryGraph) CreateSphere(name string, radius float64, o Options) (Handle, error) {
	return g.add(&ShapeRecord{Name: name, Kind: "sphere", Dims: []float64{radius}, Options: o})
}

func (g *MemoryGraph) CreateBox(name string, dims [3]float64, o Options) (Handle, error) {
	return g.add(&ShapeRecord{Name: name, Kind: "box", Dims: dims[:], Options: o})
}

func (g *MemoryGraph) CreateCylinder(name string, radius, height float64, o Options) (Handle, error) {
	return g.add(&ShapeRecord{Name: name, Kind: "cylinder", Dims: []float64{radius, height}, Options: o})
}

func (g *MemoryGraph) CreateCapsule(name string, radius, height float64, o Options) (Handle, error) {
	return g.add(&ShapeRecord{Name: name, Kind: "capsule", Dims: []float64{radius, height}, Options: o})
}

func (g *MemoryGraph) CreateMesh(name, path string, scale [3]float64, o Options) (Handle, error) {
	return g.add(&ShapeRecord{Name: name, Kind: "mesh", Dims: scale[:], Path: path, Options: o})
}

func (g *MemoryGraph) CreateHalfSpace(name string, height float64, o Options) (Handle, error) {
	return g.add(&ShapeRecord{Name: name, Kind: "halfspace", Dims: []float64{height}, Options: o})
}

func (g *MemoryGraph) CreateTerrain(name string, t Terrain, o Options) (Handle, error) {
	return g.add(&ShapeRecord{Name: name, Kind: "terrain", Terrain: &t, Options: o})
}

func (g *MemoryGraph) SetPose(h Handle, p Pose) error {
	r, ok := h.(*ShapeRecord)
	if !ok {
		return errForeignHandle
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	r.Pose = p
	return nil
}

func (g *MemoryGraph) Remove(h Handle) error {
	r, ok := h.(*ShapeRecord)
	if !ok {
		return errForeignHandle
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, s := range g.shapes {
		if s == r {
			g.shapes = append(g.shapes[:i], g.shapes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (g *MemoryGraph) ClearContacts() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.contacts = g.contacts[:0]
}

func (g *MemoryGraph) AddContactPoint(pos Vec3) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.contacts = append(g.contacts, ContactMark{Pos: pos, Point: true})
	return nil
}

func (g *MemoryGraph) AddContactForce(pos Vec3, force Vec3, scale float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.contacts = append(g.contacts, ContactMark{Pos: pos, Force: force, Scale: scale})
	return nil
}

func (g *MemoryGraph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.shapes = nil
	g.contacts = nil
}

// Shapes returns a snapshot of all live shapes.
func (g *MemoryGraph) Shapes() []*ShapeRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*ShapeRecord(nil), g.shapes...)
}

// ShapesNamed returns all live shapes with the given name.
func (g *MemoryGraph) ShapesNamed(name string) []*ShapeRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*ShapeRecord
	for _, s := range g.shapes {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

// Contacts returns a snapshot of this tick's contact marks.
func (g *MemoryGraph) Contacts() []ContactMark {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]ContactMark(nil), g.contacts...)
}

type foreignHandleError struct{}

func (foreignHandleError) Error() string { return "handle was not created by this graph" }

var errForeignHandle = foreignHandleError{}
