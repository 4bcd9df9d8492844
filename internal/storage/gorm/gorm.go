// Package gormstorage implements storage.Backend over any GORM dialect.
// The SQLite and Postgres backends compose it and only differ in how
// the *gorm.DB is opened.
package gormstorage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/simviz/sceneclient/pkg/core"
)

// SessionRecord is one recording session.
type SessionRecord struct {
	ID           uint `gorm:"primarykey"`
	Address      string
	Port         int
	StartedAt    time.Time
	EndedAt      *time.Time
	ConfigNumber uint64
	ObjectCount  int
	MarkerCount  int
}

// ObjectRecord is one scene object registered at initialization.
type ObjectRecord struct {
	ID          uint `gorm:"primarykey"`
	SessionID   uint `gorm:"index"`
	ServerIndex uint64
	Kind        string
	Name        string
}

// PoseRecord is one applied pose update.
type PoseRecord struct {
	ID        uint   `gorm:"primarykey"`
	SessionID uint   `gorm:"index"`
	Tick      uint64 `gorm:"index"`
	Name      string `gorm:"index"`
	Pose      datatypes.JSON
}

// ContactBatchRecord is one tick's full contact set.
type ContactBatchRecord struct {
	ID        uint   `gorm:"primarykey"`
	SessionID uint   `gorm:"index"`
	Tick      uint64 `gorm:"index"`
	Count     int
	Contacts  datatypes.JSON
}

// ReinitRecord marks a scene reinitialization.
type ReinitRecord struct {
	ID           uint `gorm:"primarykey"`
	SessionID    uint `gorm:"index"`
	Tick         uint64
	ConfigNumber uint64
	At           time.Time
}

// Dependencies holds what the backend needs.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// Backend records scene data through GORM.
type Backend struct {
	db      *gorm.DB
	logger  *slog.Logger
	session *SessionRecord
}

// New creates a GORM backend over an already-open DB.
func New(deps Dependencies) *Backend {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{db: deps.DB, logger: logger}
}

// Init migrates the schema.
func (b *Backend) Init() error {
	err := b.db.AutoMigrate(
		&SessionRecord{},
		&ObjectRecord{},
		&PoseRecord{},
		&ContactBatchRecord{},
		&ReinitRecord{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// StartSession creates the session row and assigns its ID back.
func (b *Backend) StartSession(s *core.Session) error {
	rec := &SessionRecord{
		Address:      s.Address,
		Port:         s.Port,
		StartedAt:    s.StartedAt,
		ConfigNumber: s.ConfigNumber,
		ObjectCount:  s.ObjectCount,
		MarkerCount:  s.MarkerCount,
	}
	if err := b.db.Create(rec).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	b.session = rec
	s.ID = rec.ID
	b.logger.Info("recording session started", "sessionID", rec.ID, "address", s.Address)
	return nil
}

// EndSession stamps the end time on the current session.
func (b *Backend) EndSession() error {
	if b.session == nil {
		return nil
	}
	now := time.Now()
	err := b.db.Model(b.session).Update("ended_at", &now).Error
	b.session = nil
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (b *Backend) sessionID() uint {
	if b.session == nil {
		return 0
	}
	return b.session.ID
}

// AddObject records one scene object.
func (b *Backend) AddObject(o *core.ObjectInfo) error {
	rec := &ObjectRecord{
		SessionID:   b.sessionID(),
		ServerIndex: o.Index,
		Kind:        o.Kind,
		Name:        o.Name,
	}
	if err := b.db.Create(rec).Error; err != nil {
		return fmt.Errorf("record object %q: %w", o.Name, err)
	}
	return nil
}

// RecordPose records one applied pose update.
func (b *Backend) RecordPose(p *core.PoseSample) error {
	pose, err := json.Marshal(map[string]any{
		"position":   p.Position,
		"quaternion": p.Quaternion,
	})
	if err != nil {
		return fmt.Errorf("marshal pose of %q: %w", p.Name, err)
	}
	rec := &PoseRecord{
		SessionID: b.sessionID(),
		Tick:      p.Tick,
		Name:      p.Name,
		Pose:      datatypes.JSON(pose),
	}
	if err := b.db.Create(rec).Error; err != nil {
		return fmt.Errorf("record pose of %q: %w", p.Name, err)
	}
	return nil
}

// RecordContacts records one tick's contact set as a single row.
func (b *Backend) RecordContacts(batch []core.ContactSample) error {
	if len(batch) == 0 {
		return nil
	}
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal contacts: %w", err)
	}
	rec := &ContactBatchRecord{
		SessionID: b.sessionID(),
		Tick:      batch[0].Tick,
		Count:     len(batch),
		Contacts:  datatypes.JSON(data),
	}
	if err := b.db.Create(rec).Error; err != nil {
		return fmt.Errorf("record contacts: %w", err)
	}
	return nil
}

// RecordReinit marks a configuration-number change.
func (b *Backend) RecordReinit(tick, configNumber uint64) error {
	rec := &ReinitRecord{
		SessionID:    b.sessionID(),
		Tick:         tick,
		ConfigNumber: configNumber,
		At:           time.Now(),
	}
	if err := b.db.Create(rec).Error; err != nil {
		return fmt.Errorf("record reinit: %w", err)
	}
	return nil
}
