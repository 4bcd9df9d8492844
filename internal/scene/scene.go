package scene

import (
	"fmt"
	"sync"

	"github.com/simviz/sceneclient/internal/protocol"
)

// Object is one server-side scene object. The index is assigned by the
// server and stable for the lifetime of one configuration number.
type Object struct {
	Index uint64
	Kind  protocol.ObjectKind
	Name  string
}

// Scene is the registry of everything reconstructed from the server:
// objects by index, poseable entities by exact name, visual markers by
// their server-given unique name. Latency in pose application is
// critical, so handle lookups stay in memory.
type Scene struct {
	mu       sync.RWMutex
	graph    Graph
	objects  map[uint64]*Object
	entities map[string][]Handle
	markers  map[string]Handle

	configNum uint64
	hasConfig bool
}

// New returns an empty scene over the given graph.
func New(graph Graph) *Scene {
	return &Scene{
		graph:    graph,
		objects:  make(map[uint64]*Object),
		entities: make(map[string][]Handle),
		markers:  make(map[string]Handle),
	}
}

// Graph returns the underlying graph.
func (s *Scene) Graph() Graph { return s.graph }

// ConfigNumber returns the last configuration number seen, and whether
// one has been seen at all.
func (s *Scene) ConfigNumber() (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configNum, s.hasConfig
}

// SetConfigNumber records the configuration number of the current
// object set.
func (s *Scene) SetConfigNumber(n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configNum = n
	s.hasConfig = true
}

// AddObject registers a server object.
func (s *Scene) AddObject(o *Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[o.Index] = o
}

// Object returns the object with the given server index.
func (s *Scene) Object(index uint64) (*Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[index]
	return o, ok
}

// ObjectCount returns the number of registered objects.
func (s *Scene) ObjectCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Attach binds a handle to an entity name. Several handles may share a
// name (a collision shape and its visual duplicate); one pose update
// moves them all.
func (s *Scene) Attach(name string, h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[name] = append(s.entities[name], h)
}

// ApplyPose moves every handle bound to name. An unknown name is a
// scene consistency error: the client scene no longer matches the
// server model.
func (s *Scene) ApplyPose(name string, p Pose) error {
	s.mu.RLock()
	handles, ok := s.entities[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", protocol.ErrUnknownEntity, name)
	}
	for _, h := range handles {
		if err := s.graph.SetPose(h, p); err != nil {
			return fmt.Errorf("set pose of %q: %w", name, err)
		}
	}
	return nil
}

// AttachMarker binds a handle to a visual-marker name.
func (s *Scene) AttachMarker(name string, h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[name] = h
}

// ApplyMarkerPose moves the marker with the given name.
func (s *Scene) ApplyMarkerPose(name string, p Pose) error {
	s.mu.RLock()
	h, ok := s.markers[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: marker %q", protocol.ErrUnknownEntity, name)
	}
	if err := s.graph.SetPose(h, p); err != nil {
		return fmt.Errorf("set pose of marker %q: %w", name, err)
	}
	return nil
}

// MarkerCount returns the number of registered markers.
func (s *Scene) MarkerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.markers)
}

// ClearObjects destroys all objects and their entities but keeps the
// visual markers. Used on reinitialization: the server does not resend
// markers when the object set changes.
func (s *Scene) ClearObjects() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, handles := range s.entities {
		for _, h := range handles {
			// Teardown is best effort; a handle the graph no
			// longer knows is not actionable here.
			_ = s.graph.Remove(h)
		}
	}
	s.graph.ClearContacts()
	s.objects = make(map[uint64]*Object)
	s.entities = make(map[string][]Handle)
	s.hasConfig = false
}

// Clear destroys everything, markers included.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.Clear()
	s.objects = make(map[uint64]*Object)
	s.entities = make(map[string][]Handle)
	s.markers = make(map[string]Handle)
	s.hasConfig = false
	s.configNum = 0
}
