package appearance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simviz/sceneclient/internal/protocol"
)

func TestLoadXML_FullDocument(t *testing.T) {
	doc := []byte(`
		<scene>
		  <object name="anymal">
		    <material>gray</material>
		    <appearance shape="sphere" dims="0.5" material="red"/>
		    <appearance shape="mesh" file="body.obj" dims="1 1 1"/>
		  </object>
		  <object name="crate">
		    <appearance shape="box" dims="0.4 0.4 0.4"/>
		  </object>
		</scene>`)

	r := NewRegistry()
	require.NoError(t, r.LoadXML(doc))
	assert.Equal(t, 2, r.Len())

	a, ok := r.FindByName("anymal")
	require.True(t, ok)
	assert.Equal(t, "gray", a.Material)
	require.Len(t, a.Subs, 2)

	assert.Equal(t, protocol.ShapeSphere, a.Subs[0].Kind)
	assert.Equal(t, []float64{0.5}, a.Subs[0].Dims)
	assert.Equal(t, "red", a.Subs[0].Material)

	assert.Equal(t, protocol.ShapeMesh, a.Subs[1].Kind)
	assert.Equal(t, "body.obj", a.Subs[1].FileName)
	assert.Equal(t, []float64{1, 1, 1}, a.Subs[1].Dims)

	crate, ok := r.FindByName("crate")
	require.True(t, ok)
	assert.Empty(t, crate.Material)
	require.Len(t, crate.Subs, 1)
	assert.Equal(t, protocol.ShapeBox, crate.Subs[0].Kind)
}

func TestLoadXML_ShapeNamesCaseInsensitive(t *testing.T) {
	tests := []struct {
		in   string
		want protocol.ShapeKind
	}{
		{"box", protocol.ShapeBox},
		{"Box", protocol.ShapeBox},
		{"CYLINDER", protocol.ShapeCylinder},
		{"sphere", protocol.ShapeSphere},
		{"Mesh", protocol.ShapeMesh},
		{"capsule", protocol.ShapeCapsule},
		{"cone", protocol.ShapeCone},
		{" box ", protocol.ShapeBox},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseShapeKind(tt.in), tt.in)
	}
}

func TestLoadXML_UnknownShapeKept(t *testing.T) {
	doc := []byte(`
		<scene>
		  <object name="weird">
		    <appearance shape="torus" dims="0.5"/>
		  </object>
		</scene>`)

	r := NewRegistry()
	require.NoError(t, r.LoadXML(doc))

	a, ok := r.FindByName("weird")
	require.True(t, ok)
	require.Len(t, a.Subs, 1)
	assert.Equal(t, KindUnknown, a.Subs[0].Kind)
}

func TestLoadXML_ReplacesPrevious(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.LoadXML([]byte(`<scene><object name="old"/></scene>`)))
	require.NoError(t, r.LoadXML([]byte(`<scene><object name="new"/></scene>`)))

	assert.Equal(t, 1, r.Len())
	_, ok := r.FindByName("old")
	assert.False(t, ok)
	_, ok = r.FindByName("new")
	assert.True(t, ok)
}

func TestLoadXML_BadDims(t *testing.T) {
	doc := []byte(`
		<scene>
		  <object name="bad">
		    <appearance shape="box" dims="0.4 oops 0.4"/>
		  </object>
		</scene>`)

	r := NewRegistry()
	err := r.LoadXML(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Contains(t, err.Error(), "oops")
}

func TestLoadXML_MalformedXML(t *testing.T) {
	r := NewRegistry()
	err := r.LoadXML([]byte(`<scene><object`))
	assert.Error(t, err)
}

func TestParseDims(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []float64
	}{
		{"empty", "", nil},
		{"single", "0.5", []float64{0.5}},
		{"three", "1 2 3", []float64{1, 2, 3}},
		{"extra whitespace", "  1.5\t2.5  ", []float64{1.5, 2.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDims(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_Reset(t *testing.T) {
	r := NewRegistry()
	r.Put(&Appearance{Name: "a"})
	r.Put(&Appearance{Name: "b"})
	require.Equal(t, 2, r.Len())

	r.Reset()
	assert.Equal(t, 0, r.Len())
}
