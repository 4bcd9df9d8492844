// Package websocket implements storage.Backend by streaming scene data
// as JSON envelopes to a live web viewer.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/simviz/sceneclient/pkg/core"
	"github.com/simviz/sceneclient/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// Backend streams session data over WebSocket.
type Backend struct {
	conn *connection
	cfg  Config
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// StartSession sends the session metadata and waits for the viewer ack.
// The message is cached so a reconnect can replay it.
func (b *Backend) StartSession(s *core.Session) error {
	data, err := marshalEnvelope(streaming.TypeStartSession, streaming.StartSessionPayload{Session: s})
	if err != nil {
		return err
	}
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = data
	b.conn.mu.Unlock()
	return b.conn.sendAndWait(data, streaming.TypeStartSession, ackTimeout)
}

// EndSession notifies the viewer that the session is over.
func (b *Backend) EndSession() error {
	return b.sendEnvelope(streaming.TypeEndSession, struct{}{})
}

// AddObject streams one scene object registration.
func (b *Backend) AddObject(o *core.ObjectInfo) error {
	return b.sendEnvelope(streaming.TypeAddObject, o)
}

// RecordPose streams one pose update.
func (b *Backend) RecordPose(p *core.PoseSample) error {
	return b.sendEnvelope(streaming.TypePose, p)
}

// RecordContacts streams one tick's contact set.
func (b *Backend) RecordContacts(batch []core.ContactSample) error {
	if len(batch) == 0 {
		return nil
	}
	return b.sendEnvelope(streaming.TypeContacts, streaming.ContactsPayload{
		Tick:     batch[0].Tick,
		Contacts: batch,
	})
}

// RecordReinit streams a reinitialization marker.
func (b *Backend) RecordReinit(tick, configNumber uint64) error {
	return b.sendEnvelope(streaming.TypeReinit, map[string]uint64{
		"tick":         tick,
		"configNumber": configNumber,
	})
}
