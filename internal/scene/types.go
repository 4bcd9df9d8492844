// Package scene holds the client-side scene representation: the
// registry of objects, entities and visual markers reconstructed from
// server messages, and the Graph interface through which a host engine
// materializes them.
package scene

import "math"

// Vec3 is a position or direction in the server's coordinate frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the Euclidean length.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Quat is an orientation quaternion. The wire order is w, x, y, z.
type Quat struct {
	W, X, Y, Z float64
}

// Pose is a position plus orientation, applied to an entity per tick.
type Pose struct {
	Position    Vec3
	Orientation Quat
}

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Tag distinguishes the two display sets a shape can belong to.
type Tag int

const (
	TagCollision Tag = iota
	TagVisual
)

func (t Tag) String() string {
	if t == TagVisual {
		return "visual"
	}
	return "collision"
}

// Options carries the appearance attributes shared by all shape
// constructors.
type Options struct {
	Tag      Tag
	Material string

	// Color applies when Material is empty (visual markers).
	Color *Color
	// Emissive sets an emissive color equal to Color.
	Emissive bool
	// Shadow enables shadow casting.
	Shadow bool

	// Tiling is the texture tiling of half-spaces and terrains.
	Tiling [2]float64
}

// Terrain describes a height-map surface.
type Terrain struct {
	CenterX, CenterY float32
	SizeX, SizeY     float32
	CountX, CountY   uint64
	Heights          []float32 // row-major, CountY rows of CountX samples
}
