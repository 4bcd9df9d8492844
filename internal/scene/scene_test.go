package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simviz/sceneclient/internal/protocol"
)

func newTestScene(t *testing.T) (*Scene, *MemoryGraph) {
	t.Helper()
	g := NewMemoryGraph()
	return New(g), g
}

func TestScene_ConfigNumber(t *testing.T) {
	s, _ := newTestScene(t)

	_, ok := s.ConfigNumber()
	assert.False(t, ok, "no config number before initialization")

	s.SetConfigNumber(7)
	n, ok := s.ConfigNumber()
	require.True(t, ok)
	assert.Equal(t, uint64(7), n)
}

func TestScene_Objects(t *testing.T) {
	s, _ := newTestScene(t)

	s.AddObject(&Object{Index: 0, Kind: protocol.ObjectBox, Name: "crate"})
	s.AddObject(&Object{Index: 1, Kind: protocol.ObjectSphere, Name: "ball"})

	assert.Equal(t, 2, s.ObjectCount())

	o, ok := s.Object(1)
	require.True(t, ok)
	assert.Equal(t, "ball", o.Name)

	_, ok = s.Object(99)
	assert.False(t, ok)
}

func TestScene_ApplyPose_MovesAllHandles(t *testing.T) {
	s, g := newTestScene(t)

	// collision shape and visual duplicate share the entity name
	col, err := g.CreateBox("crate", [3]float64{1, 1, 1}, Options{Tag: TagCollision})
	require.NoError(t, err)
	vis, err := g.CreateBox("crate", [3]float64{1, 1, 1}, Options{Tag: TagVisual})
	require.NoError(t, err)
	s.Attach("crate", col)
	s.Attach("crate", vis)

	p := Pose{Position: Vec3{X: 1, Y: 2, Z: 3}, Orientation: Quat{W: 1}}
	require.NoError(t, s.ApplyPose("crate", p))

	for _, r := range g.ShapesNamed("crate") {
		assert.Equal(t, p, r.Pose)
	}
}

func TestScene_ApplyPose_UnknownEntity(t *testing.T) {
	s, _ := newTestScene(t)
	err := s.ApplyPose("ghost", Pose{})
	assert.ErrorIs(t, err, protocol.ErrUnknownEntity)
}

func TestScene_Markers(t *testing.T) {
	s, g := newTestScene(t)

	h, err := g.CreateSphere("marker/0", 0.1, Options{Tag: TagVisual})
	require.NoError(t, err)
	s.AttachMarker("marker/0", h)
	assert.Equal(t, 1, s.MarkerCount())

	p := Pose{Position: Vec3{X: 5}, Orientation: Quat{W: 1}}
	require.NoError(t, s.ApplyMarkerPose("marker/0", p))
	assert.Equal(t, p, g.ShapesNamed("marker/0")[0].Pose)

	err = s.ApplyMarkerPose("marker/1", p)
	assert.ErrorIs(t, err, protocol.ErrUnknownEntity)
}

func TestScene_ClearObjects_KeepsMarkers(t *testing.T) {
	s, g := newTestScene(t)

	obj, _ := g.CreateBox("crate", [3]float64{1, 1, 1}, Options{})
	s.AddObject(&Object{Index: 0, Name: "crate"})
	s.Attach("crate", obj)

	mark, _ := g.CreateSphere("marker/0", 0.1, Options{})
	s.AttachMarker("marker/0", mark)

	_ = g.AddContactPoint(Vec3{X: 1})
	s.SetConfigNumber(3)

	s.ClearObjects()

	assert.Equal(t, 0, s.ObjectCount())
	assert.Equal(t, 1, s.MarkerCount(), "markers survive reinitialization")
	assert.Empty(t, g.ShapesNamed("crate"))
	assert.NotEmpty(t, g.ShapesNamed("marker/0"))
	assert.Empty(t, g.Contacts(), "contact marks cleared")

	_, ok := s.ConfigNumber()
	assert.False(t, ok, "config number forgotten")
}

func TestScene_Clear_RemovesEverything(t *testing.T) {
	s, g := newTestScene(t)

	obj, _ := g.CreateBox("crate", [3]float64{1, 1, 1}, Options{})
	s.Attach("crate", obj)
	mark, _ := g.CreateSphere("marker/0", 0.1, Options{})
	s.AttachMarker("marker/0", mark)
	s.SetConfigNumber(3)

	s.Clear()

	assert.Equal(t, 0, s.ObjectCount())
	assert.Equal(t, 0, s.MarkerCount())
	assert.Empty(t, g.Shapes())
	_, ok := s.ConfigNumber()
	assert.False(t, ok)
}

func TestMemoryGraph_ShapeRecords(t *testing.T) {
	g := NewMemoryGraph()

	_, err := g.CreateSphere("s", 0.5, Options{})
	require.NoError(t, err)
	_, err = g.CreateCylinder("c", 0.3, 1.2, Options{})
	require.NoError(t, err)
	_, err = g.CreateMesh("m", "/res/body.obj", [3]float64{1, 1, 1}, Options{})
	require.NoError(t, err)
	_, err = g.CreateTerrain("t", Terrain{CountX: 2, CountY: 2, Heights: []float32{0, 0, 0, 0}}, Options{})
	require.NoError(t, err)

	shapes := g.Shapes()
	require.Len(t, shapes, 4)
	assert.Equal(t, []float64{0.5}, shapes[0].Dims)
	assert.Equal(t, []float64{0.3, 1.2}, shapes[1].Dims)
	assert.Equal(t, "/res/body.obj", shapes[2].Path)
	require.NotNil(t, shapes[3].Terrain)
	assert.Equal(t, uint64(2), shapes[3].Terrain.CountX)
}

func TestMemoryGraph_Remove(t *testing.T) {
	g := NewMemoryGraph()
	h, _ := g.CreateSphere("s", 0.5, Options{})
	require.Len(t, g.Shapes(), 1)

	require.NoError(t, g.Remove(h))
	assert.Empty(t, g.Shapes())

	// removing twice is harmless
	assert.NoError(t, g.Remove(h))
}

func TestMemoryGraph_ForeignHandle(t *testing.T) {
	g := NewMemoryGraph()
	err := g.SetPose("not a record", Pose{})
	assert.Error(t, err)
	err = g.Remove(42)
	assert.Error(t, err)
}

func TestMemoryGraph_Contacts(t *testing.T) {
	g := NewMemoryGraph()

	require.NoError(t, g.AddContactPoint(Vec3{X: 1}))
	require.NoError(t, g.AddContactForce(Vec3{X: 1}, Vec3{Z: -9.8}, 0.75))

	marks := g.Contacts()
	require.Len(t, marks, 2)
	assert.True(t, marks[0].Point)
	assert.False(t, marks[1].Point)
	assert.Equal(t, 0.75, marks[1].Scale)

	g.ClearContacts()
	assert.Empty(t, g.Contacts())
}

func TestVec3_NormScale(t *testing.T) {
	v := Vec3{X: 3, Y: 4, Z: 0}
	assert.Equal(t, 5.0, v.Norm())

	half := v.Scale(0.5)
	assert.Equal(t, Vec3{X: 1.5, Y: 2, Z: 0}, half)
}
