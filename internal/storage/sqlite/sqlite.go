// Package sqlitestorage implements storage.Backend on a local SQLite
// file. It wraps the GORM backend via composition; the only
// SQLite-specific concern is opening the database.
package sqlitestorage

import (
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormstorage "github.com/simviz/sceneclient/internal/storage/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	// Path is the database file. ":memory:" keeps everything in RAM.
	Path string `json:"path" mapstructure:"path"`
}

// Backend wraps the GORM backend for SQLite.
type Backend struct {
	*gormstorage.Backend
}

// New opens the SQLite database and builds the backend.
func New(cfg Config, log *slog.Logger) (*Backend, error) {
	path := cfg.Path
	if path == "" {
		path = "sceneclient.db"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite db %q: %w", path, err)
	}
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{DB: db, Logger: log}),
	}, nil
}
