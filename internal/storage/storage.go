// Package storage records decoded scene data for later playback or
// analysis. Backends are selected by configuration; the synchronizer
// only sees the Backend interface.
package storage

import "github.com/simviz/sceneclient/pkg/core"

// Backend is the interface all storage implementations must satisfy.
// Recording failures are reported but never abort a protocol tick.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(s *core.Session) error
	EndSession() error

	// Scene recording
	AddObject(o *core.ObjectInfo) error
	RecordPose(p *core.PoseSample) error
	RecordContacts(batch []core.ContactSample) error
	RecordReinit(tick, configNumber uint64) error
}

// Nop is a Backend that discards everything. Used when recording is
// disabled.
type Nop struct{}

func (Nop) Init() error                                 { return nil }
func (Nop) Close() error                                { return nil }
func (Nop) StartSession(*core.Session) error            { return nil }
func (Nop) EndSession() error                           { return nil }
func (Nop) AddObject(*core.ObjectInfo) error            { return nil }
func (Nop) RecordPose(*core.PoseSample) error           { return nil }
func (Nop) RecordContacts([]core.ContactSample) error   { return nil }
func (Nop) RecordReinit(tick, configNumber uint64) error { return nil }
