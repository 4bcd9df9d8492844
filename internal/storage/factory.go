package storage

import (
	"fmt"
	"log/slog"

	"github.com/simviz/sceneclient/internal/storage/memory"
	pgstorage "github.com/simviz/sceneclient/internal/storage/postgres"
	sqlitestorage "github.com/simviz/sceneclient/internal/storage/sqlite"
	"github.com/simviz/sceneclient/internal/storage/websocket"
)

// Config selects and configures a storage backend.
type Config struct {
	// Type is one of: none, memory, sqlite, postgres, websocket.
	Type      string               `json:"type" mapstructure:"type"`
	Memory    memory.Config        `json:"memory" mapstructure:"memory"`
	SQLite    sqlitestorage.Config `json:"sqlite" mapstructure:"sqlite"`
	Postgres  pgstorage.Config     `json:"postgres" mapstructure:"postgres"`
	WebSocket websocket.Config     `json:"websocket" mapstructure:"websocket"`
}

// NewBackend creates a storage backend based on configuration.
func NewBackend(cfg Config, logger *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case "", "none":
		return Nop{}, nil
	case "memory":
		return memory.New(cfg.Memory), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite, logger)
	case "postgres":
		return pgstorage.New(cfg.Postgres, logger)
	case "websocket":
		return websocket.New(cfg.WebSocket, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
