package resource

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simviz/sceneclient/internal/protocol"
)

// fakeInfo satisfies os.FileInfo for the injected stat.
type fakeInfo struct {
	dir bool
}

func (fakeInfo) Name() string       { return "" }
func (fakeInfo) Size() int64        { return 0 }
func (fakeInfo) Mode() fs.FileMode  { return 0 }
func (fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool      { return f.dir }
func (fakeInfo) Sys() any           { return nil }

// withFiles installs a stat that reports exactly the given paths as
// regular files, and records every probe in order.
func withFiles(r *Resolver, files ...string) *[]string {
	set := map[string]bool{}
	for _, f := range files {
		set[filepath.Clean(f)] = true
	}
	probes := &[]string{}
	r.stat = func(path string) (os.FileInfo, error) {
		*probes = append(*probes, path)
		if set[filepath.Clean(path)] {
			return fakeInfo{}, nil
		}
		return nil, os.ErrNotExist
	}
	return probes
}

func TestResolve_FullTierMatch(t *testing.T) {
	r := NewResolver("/res")
	withFiles(r, "/res/envs/warehouse/meshes/crate.obj")

	got, err := r.Resolve("/home/sim/envs/warehouse/meshes", "crate.obj")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/res", "envs", "warehouse", "meshes", "crate.obj"), got)
}

func TestResolve_FallsBackThroughTiers(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{
			name: "tier two",
			file: "/res/warehouse/meshes/crate.obj",
			want: filepath.Join("/res", "warehouse", "meshes", "crate.obj"),
		},
		{
			name: "tier three",
			file: "/res/meshes/crate.obj",
			want: filepath.Join("/res", "meshes", "crate.obj"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver("/res")
			withFiles(r, tt.file)

			got, err := r.Resolve("/home/sim/envs/warehouse/meshes", "crate.obj")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_TierBeatsRootOrder(t *testing.T) {
	// A deeper match under a later root must beat a shallow match
	// under an earlier root.
	r := NewResolver("/first", "/second")
	withFiles(r,
		"/first/meshes/crate.obj",
		"/second/envs/warehouse/meshes/crate.obj",
	)

	got, err := r.Resolve("envs/warehouse/meshes", "crate.obj")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/second", "envs", "warehouse", "meshes", "crate.obj"), got)
}

func TestResolve_ProbeOrder(t *testing.T) {
	r := NewResolver("/a", "/b")
	probes := withFiles(r) // nothing exists

	_, err := r.Resolve("x/y/z", "m.obj")
	require.Error(t, err)

	want := []string{
		filepath.Join("/a", "x", "y", "z", "m.obj"),
		filepath.Join("/b", "x", "y", "z", "m.obj"),
		filepath.Join("/a", "y", "z", "m.obj"),
		filepath.Join("/b", "y", "z", "m.obj"),
		filepath.Join("/a", "z", "m.obj"),
		filepath.Join("/b", "z", "m.obj"),
	}
	assert.Equal(t, want, *probes)
}

func TestResolve_ShallowServerPath(t *testing.T) {
	// only one segment: tiers needing parent or grandparent are skipped
	r := NewResolver("/res")
	probes := withFiles(r, "/res/meshes/ball.obj")

	got, err := r.Resolve("meshes", "ball.obj")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/res", "meshes", "ball.obj"), got)
	assert.Len(t, *probes, 1)
}

func TestResolve_BareFileName(t *testing.T) {
	r := NewResolver("/res")
	withFiles(r, "/res/ball.obj")

	got, err := r.Resolve("", "ball.obj")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/res", "ball.obj"), got)
}

func TestResolve_BackslashServerPath(t *testing.T) {
	r := NewResolver("/res")
	withFiles(r, "/res/envs/warehouse/meshes/crate.obj")

	got, err := r.Resolve(`C:\sim\envs\warehouse\meshes`, "crate.obj")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/res", "envs", "warehouse", "meshes", "crate.obj"), got)
}

func TestResolve_DotSegmentsIgnored(t *testing.T) {
	r := NewResolver("/res")
	withFiles(r, "/res/meshes/ball.obj")

	got, err := r.Resolve("./meshes", "ball.obj")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/res", "meshes", "ball.obj"), got)
}

func TestResolve_DirectoriesDoNotMatch(t *testing.T) {
	r := NewResolver("/res")
	r.stat = func(path string) (os.FileInfo, error) {
		return fakeInfo{dir: true}, nil
	}

	_, err := r.Resolve("meshes", "ball.obj")
	assert.ErrorIs(t, err, protocol.ErrResourceNotFound)
}

func TestResolve_NoRoots(t *testing.T) {
	r := NewResolver()
	_, err := r.Resolve("meshes", "ball.obj")
	assert.ErrorIs(t, err, protocol.ErrResourceNotFound)
}

func TestResolve_NotFound(t *testing.T) {
	r := NewResolver("/res")
	withFiles(r)

	_, err := r.Resolve("a/b/c", "missing.obj")
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrResourceNotFound)
	assert.Contains(t, err.Error(), "missing.obj")
}

func TestRoots_AddAndRemove(t *testing.T) {
	r := NewResolver("/a")
	r.AddRoot("/b")
	assert.Equal(t, []string{"/a", "/b"}, r.Roots())

	r.RemoveLastRoot()
	assert.Equal(t, []string{"/a"}, r.Roots())

	r.RemoveLastRoot()
	r.RemoveLastRoot() // no-op on empty
	assert.Empty(t, r.Roots())
}
