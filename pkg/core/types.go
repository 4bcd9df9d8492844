// Package core holds the plain data records shared between the
// synchronizer, the storage backends and the streaming protocol.
package core

import "time"

// Session identifies one recording session against a server.
type Session struct {
	ID           uint      `json:"id"`
	Address      string    `json:"address"`
	Port         int       `json:"port"`
	StartedAt    time.Time `json:"startedAt"`
	EndedAt      time.Time `json:"endedAt,omitempty"`
	ConfigNumber uint64    `json:"configNumber"`
	ObjectCount  int       `json:"objectCount"`
	MarkerCount  int       `json:"markerCount"`
}

// ObjectInfo describes one scene object at initialization time.
type ObjectInfo struct {
	Index uint64 `json:"index"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
}

// PoseSample is one applied pose update. The quaternion keeps the wire
// field order: w, x, y, z.
type PoseSample struct {
	Tick       uint64     `json:"tick"`
	Name       string     `json:"name"`
	Position   [3]float64 `json:"position"`
	Quaternion [4]float64 `json:"quaternion"`
}

// ContactSample is one contact point with its force vector. Lifecycle
// is exactly one tick.
type ContactSample struct {
	Tick     uint64     `json:"tick"`
	Position [3]float64 `json:"position"`
	Force    [3]float64 `json:"force"`
}

// UploadMetadata accompanies a session export upload.
type UploadMetadata struct {
	ServerAddress string  `json:"serverAddress"`
	ConfigNumber  uint64  `json:"configNumber"`
	Duration      float64 `json:"duration"`
	ObjectCount   int     `json:"objectCount"`
}
