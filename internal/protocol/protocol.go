// Package protocol defines the wire-level constants of the simulation
// server's TCP protocol: request and response tags, server status codes,
// object and shape kinds, and the framing parameters shared by the frame
// reader and the synchronizer.
package protocol

// Framing parameters. One logical message may span several physical
// chunks of ChunkSize bytes; the last byte of every chunk is a marker,
// ContinuationMarker meaning more chunks follow.
const (
	ChunkSize          = 4096
	ContinuationMarker = byte('c')

	// MaxFrameSize is the capacity of the reusable frame arena.
	MaxFrameSize = 32 << 20
)

// ClientMessageType is the 4-byte request tag written by the client.
type ClientMessageType int32

const (
	RequestObjectPosition ClientMessageType = iota
	RequestInitialization
	RequestResource
	RequestChangeRealtimeFactor
	RequestContactSolverDetails
	RequestPause
	RequestResume
	RequestContactInfos
	RequestConfigXML
	RequestInitializeVisuals
	RequestVisualPosition
)

// String returns the request name for logging.
func (t ClientMessageType) String() string {
	switch t {
	case RequestObjectPosition:
		return "RequestObjectPosition"
	case RequestInitialization:
		return "RequestInitialization"
	case RequestResource:
		return "RequestResource"
	case RequestChangeRealtimeFactor:
		return "RequestChangeRealtimeFactor"
	case RequestContactSolverDetails:
		return "RequestContactSolverDetails"
	case RequestPause:
		return "RequestPause"
	case RequestResume:
		return "RequestResume"
	case RequestContactInfos:
		return "RequestContactInfos"
	case RequestConfigXML:
		return "RequestConfigXML"
	case RequestInitializeVisuals:
		return "RequestInitializeVisuals"
	case RequestVisualPosition:
		return "RequestVisualPosition"
	default:
		return "UnknownRequest"
	}
}

// ServerStatus is the first tag of every server response.
type ServerStatus int32

const (
	StatusRendering ServerStatus = iota
	StatusHibernating
	StatusTerminating
)

func (s ServerStatus) String() string {
	switch s {
	case StatusRendering:
		return "Rendering"
	case StatusHibernating:
		return "Hibernating"
	case StatusTerminating:
		return "Terminating"
	default:
		return "UnknownStatus"
	}
}

// ServerMessageType is the second tag of every server response and
// selects the payload layout that follows.
type ServerMessageType int32

const (
	MessageInitialization ServerMessageType = iota
	MessageObjectPositionUpdate
	MessageStatus
	MessageNoMessage
	MessageContactInfoUpdate
	MessageConfigXML
	MessageVisualInitialization
	MessageVisualPositionUpdate
)

func (t ServerMessageType) String() string {
	switch t {
	case MessageInitialization:
		return "Initialization"
	case MessageObjectPositionUpdate:
		return "ObjectPositionUpdate"
	case MessageStatus:
		return "Status"
	case MessageNoMessage:
		return "NoMessage"
	case MessageContactInfoUpdate:
		return "ContactInfoUpdate"
	case MessageConfigXML:
		return "ConfigXml"
	case MessageVisualInitialization:
		return "VisualInitialization"
	case MessageVisualPositionUpdate:
		return "VisualPositionUpdate"
	default:
		return "UnknownMessage"
	}
}

// ObjectKind tags a top-level scene object in the initialization payload.
type ObjectKind int32

const (
	ObjectSphere ObjectKind = iota
	ObjectBox
	ObjectCylinder
	ObjectCone
	ObjectCapsule
	ObjectMesh
	ObjectHalfSpace
	ObjectCompound
	ObjectHeightMap
	ObjectArticulatedSystem
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectSphere:
		return "Sphere"
	case ObjectBox:
		return "Box"
	case ObjectCylinder:
		return "Cylinder"
	case ObjectCone:
		return "Cone"
	case ObjectCapsule:
		return "Capsule"
	case ObjectMesh:
		return "Mesh"
	case ObjectHalfSpace:
		return "HalfSpace"
	case ObjectCompound:
		return "Compound"
	case ObjectHeightMap:
		return "HeightMap"
	case ObjectArticulatedSystem:
		return "ArticulatedSystem"
	default:
		return "UnknownObject"
	}
}

// ShapeKind tags one shape inside an articulated system.
type ShapeKind int32

const (
	ShapeBox ShapeKind = iota
	ShapeCylinder
	ShapeSphere
	ShapeMesh
	ShapeCapsule
	ShapeCone
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "Box"
	case ShapeCylinder:
		return "Cylinder"
	case ShapeSphere:
		return "Sphere"
	case ShapeMesh:
		return "Mesh"
	case ShapeCapsule:
		return "Capsule"
	case ShapeCone:
		return "Cone"
	default:
		return "UnknownShape"
	}
}

// ParamCount returns the number of float64 parameters an articulated
// shape of this kind carries, or -1 when the protocol defines none
// (Mesh carries a file name instead, Cone has no defined layout).
func (k ShapeKind) ParamCount() int {
	switch k {
	case ShapeBox:
		return 3
	case ShapeCylinder, ShapeCapsule:
		return 2
	case ShapeSphere:
		return 1
	default:
		return -1
	}
}
