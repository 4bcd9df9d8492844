package scene

// Handle is an opaque reference to a renderable created by a Graph
// implementation.
type Handle any

// Graph is the host-engine collaborator that materializes shapes and
// applies poses. Implementations own all rendering concerns; the
// synchronizer only creates shapes, moves them and clears them. All
// dimensions are in server units.
type Graph interface {
	CreateSphere(name string, radius float64, o Options) (Handle, error)
	CreateBox(name string, dims [3]float64, o Options) (Handle, error)
	CreateCylinder(name string, radius, height float64, o Options) (Handle, error)
	CreateCapsule(name string, radius, height float64, o Options) (Handle, error)
	CreateMesh(name, path string, scale [3]float64, o Options) (Handle, error)
	CreateHalfSpace(name string, height float64, o Options) (Handle, error)
	CreateTerrain(name string, t Terrain, o Options) (Handle, error)

	SetPose(h Handle, p Pose) error
	Remove(h Handle) error

	// Contact visualization. The set is rebuilt from scratch every
	// tick: ClearContacts, then one Add per sample.
	ClearContacts()
	AddContactPoint(pos Vec3) error
	AddContactForce(pos Vec3, force Vec3, scale float64) error

	// Clear removes everything, contacts included.
	Clear()
}
