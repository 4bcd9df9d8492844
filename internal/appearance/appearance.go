// Package appearance holds per-object visual overrides. An override is
// looked up by object name during scene construction and replaces the
// default collision-shape duplicate with an explicit list of
// sub-appearances, each with its own shape kind, dimensions and
// optional material or mesh file.
package appearance

import (
	"strings"
	"sync"

	"github.com/simviz/sceneclient/internal/protocol"
)

// KindUnknown marks a sub-appearance whose shape name was not
// recognized. Construction treats it as a protocol violation; the
// loader itself does not fail so the rest of the document stays usable.
const KindUnknown = protocol.ShapeKind(-1)

// SubAppearance is one visual shape of an override.
type SubAppearance struct {
	Kind     protocol.ShapeKind
	Dims     []float64
	Material string
	FileName string
}

// Appearance is the full override for one named object.
type Appearance struct {
	Name     string
	Material string
	Subs     []SubAppearance
}

// Lookup finds an override by exact object name.
type Lookup interface {
	FindByName(name string) (*Appearance, bool)
}

// Registry is a thread-safe in-memory Lookup.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Appearance
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Appearance)}
}

// FindByName implements Lookup.
func (r *Registry) FindByName(name string) (*Appearance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[name]
	return a, ok
}

// Put adds or replaces an override.
func (r *Registry) Put(a *Appearance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[a.Name] = a
}

// Reset drops all overrides. Called on scene reinitialization before a
// fresh config document is loaded.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName = make(map[string]*Appearance)
}

// Len returns the number of stored overrides.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// parseShapeKind maps a shape name from the config document to its
// protocol tag. Unrecognized names yield KindUnknown.
func parseShapeKind(s string) protocol.ShapeKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "box":
		return protocol.ShapeBox
	case "cylinder":
		return protocol.ShapeCylinder
	case "sphere":
		return protocol.ShapeSphere
	case "mesh":
		return protocol.ShapeMesh
	case "capsule":
		return protocol.ShapeCapsule
	case "cone":
		return protocol.ShapeCone
	default:
		return KindUnknown
	}
}
