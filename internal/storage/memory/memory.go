// Package memory implements storage.Backend in RAM with an optional
// JSON export on session end. Useful for short sessions and for tests.
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/simviz/sceneclient/pkg/core"
)

// Config holds in-memory/JSON storage backend settings.
type Config struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// Export is the JSON document written on session end.
type Export struct {
	Session  *core.Session        `json:"session"`
	Objects  []core.ObjectInfo    `json:"objects"`
	Poses    []core.PoseSample    `json:"poses"`
	Contacts []core.ContactSample `json:"contacts"`
	Reinits  []ReinitEvent        `json:"reinits,omitempty"`
}

// ReinitEvent marks one scene reinitialization.
type ReinitEvent struct {
	Tick         uint64 `json:"tick"`
	ConfigNumber uint64 `json:"configNumber"`
}

// Backend stores session data in memory.
type Backend struct {
	mu  sync.RWMutex
	cfg Config

	session  *core.Session
	objects  []core.ObjectInfo
	poses    []core.PoseSample
	contacts []core.ContactSample
	reinits  []ReinitEvent

	lastExport string
}

// New creates a memory backend.
func New(cfg Config) *Backend {
	return &Backend{cfg: cfg}
}

func (b *Backend) Init() error  { return nil }
func (b *Backend) Close() error { return nil }

func (b *Backend) StartSession(s *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session = s
	b.objects = nil
	b.poses = nil
	b.contacts = nil
	b.reinits = nil
	return nil
}

// EndSession writes the JSON export if an output directory is set.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return nil
	}
	b.session.EndedAt = time.Now()
	if b.cfg.OutputDir == "" {
		return nil
	}
	return b.export()
}

func (b *Backend) AddObject(o *core.ObjectInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects = append(b.objects, *o)
	return nil
}

func (b *Backend) RecordPose(p *core.PoseSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.poses = append(b.poses, *p)
	return nil
}

func (b *Backend) RecordContacts(batch []core.ContactSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contacts = append(b.contacts, batch...)
	return nil
}

func (b *Backend) RecordReinit(tick, configNumber uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reinits = append(b.reinits, ReinitEvent{Tick: tick, ConfigNumber: configNumber})
	return nil
}

// LastExportPath returns the path of the most recent export, or ""
// when nothing has been written.
func (b *Backend) LastExportPath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExport
}

// Snapshot returns a copy of the recorded data. Used by tests.
func (b *Backend) Snapshot() Export {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Export{
		Session:  b.session,
		Objects:  append([]core.ObjectInfo(nil), b.objects...),
		Poses:    append([]core.PoseSample(nil), b.poses...),
		Contacts: append([]core.ContactSample(nil), b.contacts...),
		Reinits:  append([]ReinitEvent(nil), b.reinits...),
	}
}

// export writes the session to OutputDir, gzipped when configured.
// Caller holds the lock.
func (b *Backend) export() error {
	if err := os.MkdirAll(b.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	name := fmt.Sprintf("session_%s.json", b.session.StartedAt.Format("20060102_150405"))
	if b.cfg.CompressOutput {
		name += ".gz"
	}
	path := filepath.Join(b.cfg.OutputDir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()
	b.lastExport = path

	doc := Export{
		Session:  b.session,
		Objects:  b.objects,
		Poses:    b.poses,
		Contacts: b.contacts,
		Reinits:  b.reinits,
	}

	if b.cfg.CompressOutput {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		if err := json.NewEncoder(gz).Encode(&doc); err != nil {
			return fmt.Errorf("encode export: %w", err)
		}
		return nil
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}
