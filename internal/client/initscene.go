package client

import (
	"fmt"
	"strings"

	"github.com/simviz/sceneclient/internal/appearance"
	"github.com/simviz/sceneclient/internal/protocol"
	"github.com/simviz/sceneclient/internal/scene"
	"github.com/simviz/sceneclient/internal/wire"
	"github.com/simviz/sceneclient/pkg/core"
)

// defaultMaterials are rotated by object index when no appearance
// override supplies one.
var defaultMaterials = [3]string{"default-gray", "default-orange", "default-blue"}

func defaultMaterial(index uint64) string {
	return defaultMaterials[index%3]
}

// initializeScene requests the full object set and rebuilds the scene
// from it, in server-send order.
func (s *Synchronizer) initializeScene() error {
	cur, mt, err := s.request(protocol.RequestInitialization)
	if err != nil {
		return err
	}
	if mt != protocol.MessageInitialization {
		return protocol.Violationf(cur.Offset(), "expected Initialization, got %s", mt)
	}

	configNum, err := cur.Uint64()
	if err != nil {
		return err
	}
	count, err := cur.Uint64()
	if err != nil {
		return err
	}

	for i := uint64(0); i < count; i++ {
		if err := s.decodeObject(cur); err != nil {
			return fmt.Errorf("object %d of %d: %w", i+1, count, err)
		}
	}

	s.scene.SetConfigNumber(configNum)
	return nil
}

// decodeObject reads one object record and constructs its collision
// and visual shapes.
func (s *Synchronizer) decodeObject(cur *wire.Cursor) error {
	index, err := cur.Uint64()
	if err != nil {
		return err
	}
	kind, err := cur.ObjectKind()
	if err != nil {
		return err
	}
	name, err := cur.String()
	if err != nil {
		return err
	}

	switch kind {
	case protocol.ObjectArticulatedSystem:
		err = s.buildArticulated(cur, index)
	case protocol.ObjectHalfSpace:
		err = s.buildHalfSpace(cur, index, name)
	case protocol.ObjectHeightMap:
		err = s.buildHeightMap(cur, index, name)
	case protocol.ObjectSphere, protocol.ObjectBox, protocol.ObjectCylinder,
		protocol.ObjectCapsule, protocol.ObjectMesh:
		err = s.buildSingleBody(cur, index, kind, name)
	default:
		err = protocol.Violationf(cur.Offset(), "unsupported object kind %s", kind)
	}
	if err != nil {
		return fmt.Errorf("%s %q: %w", kind, name, err)
	}

	s.scene.AddObject(&scene.Object{Index: index, Kind: kind, Name: name})
	s.record("add object", func() error {
		return s.backend.AddObject(&core.ObjectInfo{Index: index, Kind: kind.String(), Name: name})
	})
	return nil
}

// buildArticulated reads an articulated system: a server-side resource
// directory followed by two shape passes, visuals then collisions.
// Each shape gets a synthetic part name derived from (object index,
// pass, shape index); pose updates reference parts by these names.
func (s *Synchronizer) buildArticulated(cur *wire.Cursor, index uint64) error {
	resourceDir, err := cur.String()
	if err != nil {
		return err
	}

	for pass := 0; pass < 2; pass++ {
		tag := scene.TagVisual
		if pass == 1 {
			tag = scene.TagCollision
		}
		count, err := cur.Uint64()
		if err != nil {
			return err
		}
		for si := uint64(0); si < count; si++ {
			if err := s.buildArticulatedShape(cur, index, resourceDir, pass, si, tag); err != nil {
				return fmt.Errorf("%s shape %d: %w", tag, si, err)
			}
		}
	}
	return nil
}

func (s *Synchronizer) buildArticulatedShape(cur *wire.Cursor, index uint64, resourceDir string, pass int, si uint64, tag scene.Tag) error {
	kind, err := cur.ShapeKind()
	if err != nil {
		return err
	}
	// Group id, reserved for selective display of shape groups.
	if _, err := cur.Uint64(); err != nil {
		return err
	}

	partName := fmt.Sprintf("%d/%d/%d", index, pass, si)
	opts := scene.Options{Tag: tag, Material: defaultMaterial(index)}

	if kind == protocol.ShapeMesh {
		file, err := cur.String()
		if err != nil {
			return err
		}
		sc, err := cur.Float64s(3)
		if err != nil {
			return err
		}
		localPath, err := s.resolver.Resolve(resourceDir, file)
		if err != nil {
			return err
		}
		h, err := s.scene.Graph().CreateMesh(partName, localPath, [3]float64{sc[0], sc[1], sc[2]}, opts)
		if err != nil {
			return fmt.Errorf("create mesh %q: %w", file, err)
		}
		s.scene.Attach(partName, h)
		return nil
	}

	paramCount, err := cur.Uint64()
	if err != nil {
		return err
	}
	want := kind.ParamCount()
	if want < 0 {
		return protocol.Violationf(cur.Offset(), "shape kind %s has no defined parameter layout", kind)
	}
	if paramCount != uint64(want) {
		return protocol.Violationf(cur.Offset(), "%s expects %d parameters, got %d", kind, want, paramCount)
	}
	params, err := cur.Float64s(want)
	if err != nil {
		return err
	}

	h, err := s.createPrimitive(partName, kind, params, opts)
	if err != nil {
		return err
	}
	s.scene.Attach(partName, h)
	return nil
}

// createPrimitive builds one primitive shape. The parameter slice must
// already have the exact count for the kind.
func (s *Synchronizer) createPrimitive(name string, kind protocol.ShapeKind, params []float64, opts scene.Options) (scene.Handle, error) {
	g := s.scene.Graph()
	switch kind {
	case protocol.ShapeBox:
		return g.CreateBox(name, [3]float64{params[0], params[1], params[2]}, opts)
	case protocol.ShapeCylinder:
		return g.CreateCylinder(name, params[0], params[1], opts)
	case protocol.ShapeCapsule:
		return g.CreateCapsule(name, params[0], params[1], opts)
	case protocol.ShapeSphere:
		return g.CreateSphere(name, params[0], opts)
	default:
		return nil, protocol.Violationf(0, "no builder for shape kind %s", kind)
	}
}

// buildHalfSpace reads a half-space: a single height value. The default
// visual twin uses a fixed 5x5 texture tiling unless an appearance
// override supplies explicit sub-appearances.
func (s *Synchronizer) buildHalfSpace(cur *wire.Cursor, index uint64, name string) error {
	height, err := cur.Float32()
	if err != nil {
		return err
	}

	g := s.scene.Graph()
	h, err := g.CreateHalfSpace(name, float64(height), scene.Options{Tag: scene.TagCollision})
	if err != nil {
		return fmt.Errorf("create half-space: %w", err)
	}
	s.scene.Attach(name, h)

	if ap, ok := s.appearances.FindByName(name); ok && len(ap.Subs) > 0 {
		return s.buildAppearanceVisuals(name, index, ap)
	}
	hv, err := g.CreateHalfSpace(name, float64(height), scene.Options{
		Tag:      scene.TagVisual,
		Material: defaultMaterial(index),
		Tiling:   [2]float64{5, 5},
	})
	if err != nil {
		return fmt.Errorf("create visual half-space: %w", err)
	}
	s.scene.Attach(name, hv)
	return nil
}

// buildHeightMap reads a terrain: center, size, sample counts and the
// row-major height grid. The default visual twin uses the terrain size
// as its texture tiling.
func (s *Synchronizer) buildHeightMap(cur *wire.Cursor, index uint64, name string) error {
	dims, err := cur.Float32s(4)
	if err != nil {
		return err
	}
	countX, err := cur.Uint64()
	if err != nil {
		return err
	}
	countY, err := cur.Uint64()
	if err != nil {
		return err
	}
	total, err := cur.Uint64()
	if err != nil {
		return err
	}
	if total != countX*countY {
		return protocol.Violationf(cur.Offset(), "height sample total %d does not match %dx%d grid", total, countX, countY)
	}
	heights, err := cur.Float32s(int(total))
	if err != nil {
		return err
	}

	terrain := scene.Terrain{
		CenterX: dims[0], CenterY: dims[1],
		SizeX: dims[2], SizeY: dims[3],
		CountX: countX, CountY: countY,
		Heights: heights,
	}

	g := s.scene.Graph()
	h, err := g.CreateTerrain(name, terrain, scene.Options{Tag: scene.TagCollision})
	if err != nil {
		return fmt.Errorf("create terrain: %w", err)
	}
	s.scene.Attach(name, h)

	if ap, ok := s.appearances.FindByName(name); ok && len(ap.Subs) > 0 {
		return s.buildAppearanceVisuals(name, index, ap)
	}
	hv, err := g.CreateTerrain(name, terrain, scene.Options{
		Tag:      scene.TagVisual,
		Material: defaultMaterial(index),
		Tiling:   [2]float64{float64(dims[2]), float64(dims[3])},
	})
	if err != nil {
		return fmt.Errorf("create visual terrain: %w", err)
	}
	s.scene.Attach(name, hv)
	return nil
}

// buildSingleBody reads one rigid body and builds its collision shape
// plus either the override visuals or a geometric duplicate.
func (s *Synchronizer) buildSingleBody(cur *wire.Cursor, index uint64, kind protocol.ObjectKind, name string) error {
	g := s.scene.Graph()
	collisionOpts := scene.Options{Tag: scene.TagCollision}

	var (
		build func(opts scene.Options) (scene.Handle, error)
		err   error
	)

	switch kind {
	case protocol.ObjectSphere:
		var r float32
		if r, err = cur.Float32(); err != nil {
			return err
		}
		build = func(o scene.Options) (scene.Handle, error) {
			return g.CreateSphere(name, float64(r), o)
		}
	case protocol.ObjectBox:
		var d []float32
		if d, err = cur.Float32s(3); err != nil {
			return err
		}
		build = func(o scene.Options) (scene.Handle, error) {
			return g.CreateBox(name, [3]float64{float64(d[0]), float64(d[1]), float64(d[2])}, o)
		}
	case protocol.ObjectCylinder:
		var d []float32
		if d, err = cur.Float32s(2); err != nil {
			return err
		}
		build = func(o scene.Options) (scene.Handle, error) {
			return g.CreateCylinder(name, float64(d[0]), float64(d[1]), o)
		}
	case protocol.ObjectCapsule:
		var d []float32
		if d, err = cur.Float32s(2); err != nil {
			return err
		}
		build = func(o scene.Options) (scene.Handle, error) {
			return g.CreateCapsule(name, float64(d[0]), float64(d[1]), o)
		}
	case protocol.ObjectMesh:
		var file string
		if file, err = cur.String(); err != nil {
			return err
		}
		var sc []float32
		if sc, err = cur.Float32s(3); err != nil {
			return err
		}
		dir, base := splitServerPath(file)
		var localPath string
		if localPath, err = s.resolver.Resolve(dir, base); err != nil {
			return err
		}
		build = func(o scene.Options) (scene.Handle, error) {
			return g.CreateMesh(name, localPath, [3]float64{float64(sc[0]), float64(sc[1]), float64(sc[2])}, o)
		}
	default:
		return protocol.Violationf(cur.Offset(), "no single-body decode for kind %s", kind)
	}

	h, err := build(collisionOpts)
	if err != nil {
		return fmt.Errorf("create collision shape: %w", err)
	}
	s.scene.Attach(name, h)

	if ap, ok := s.appearances.FindByName(name); ok && len(ap.Subs) > 0 {
		return s.buildAppearanceVisuals(name, index, ap)
	}

	// No override: the visual is a geometric duplicate of the
	// collision shape with a rotating default material.
	hv, err := build(scene.Options{Tag: scene.TagVisual, Material: defaultMaterial(index)})
	if err != nil {
		return fmt.Errorf("create visual shape: %w", err)
	}
	s.scene.Attach(name, hv)
	return nil
}

// buildAppearanceVisuals builds one visual shape per sub-appearance
// entry, all attached under the object's name so one pose update moves
// them with the collision shapes.
func (s *Synchronizer) buildAppearanceVisuals(name string, index uint64, ap *appearance.Appearance) error {
	g := s.scene.Graph()
	for i, sub := range ap.Subs {
		material := sub.Material
		if material == "" {
			material = ap.Material
		}
		if material == "" {
			material = defaultMaterial(index)
		}
		opts := scene.Options{Tag: scene.TagVisual, Material: material}

		if sub.Kind == protocol.ShapeMesh {
			dir, base := splitServerPath(sub.FileName)
			localPath, err := s.resolver.Resolve(dir, base)
			if err != nil {
				return fmt.Errorf("appearance %d of %q: %w", i, name, err)
			}
			sc := [3]float64{1, 1, 1}
			if len(sub.Dims) == 3 {
				sc = [3]float64{sub.Dims[0], sub.Dims[1], sub.Dims[2]}
			}
			h, err := g.CreateMesh(name, localPath, sc, opts)
			if err != nil {
				return fmt.Errorf("appearance %d of %q: %w", i, name, err)
			}
			s.scene.Attach(name, h)
			continue
		}

		want := sub.Kind.ParamCount()
		if want < 0 {
			return protocol.Violationf(0, "appearance %d of %q has unsupported shape kind", i, name)
		}
		if len(sub.Dims) != want {
			return protocol.Violationf(0, "appearance %d of %q: %s expects %d dimensions, got %d",
				i, name, sub.Kind, want, len(sub.Dims))
		}
		h, err := s.createPrimitive(name, sub.Kind, sub.Dims, opts)
		if err != nil {
			return fmt.Errorf("appearance %d of %q: %w", i, name, err)
		}
		s.scene.Attach(name, h)
	}
	return nil
}

// splitServerPath splits a server-side file path into its directory and
// base name. Server paths may use either separator.
func splitServerPath(p string) (dir, base string) {
	norm := strings.ReplaceAll(p, "\\", "/")
	if i := strings.LastIndexByte(norm, '/'); i >= 0 {
		return norm[:i], norm[i+1:]
	}
	return "", norm
}
