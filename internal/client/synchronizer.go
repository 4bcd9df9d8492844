package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/simviz/sceneclient/internal/appearance"
	"github.com/simviz/sceneclient/internal/frame"
	"github.com/simviz/sceneclient/internal/protocol"
	"github.com/simviz/sceneclient/internal/resource"
	"github.com/simviz/sceneclient/internal/scene"
	"github.com/simviz/sceneclient/internal/storage"
	"github.com/simviz/sceneclient/internal/wire"
	"github.com/simviz/sceneclient/pkg/core"
)

// State is the synchronizer lifecycle state.
type State int

const (
	StateDisconnected State = iota
	// StateAwaitingAck waits for the owner (UI or CLI) to confirm the
	// connection before any scene data is requested.
	StateAwaitingAck
	StateLoading
	StateSteady
)

func (s State) String() string {
	switch s {
	case StateAwaitingAck:
		return "awaiting-ack"
	case StateLoading:
		return "loading"
	case StateSteady:
		return "steady"
	default:
		return "disconnected"
	}
}

// Dependencies holds all collaborators of the synchronizer.
type Dependencies struct {
	Connection  *Connection
	Scene       *scene.Scene
	Resolver    *resource.Resolver
	Appearances *appearance.Registry
	Backend     storage.Backend
	Logger      *slog.Logger
}

// Synchronizer drives the request/response protocol and keeps the
// client scene in sync with the server. One synchronizer drives one
// connection; the type is not safe for concurrent ticks. The driving
// loop must guarantee at most one protocol exchange at a time.
type Synchronizer struct {
	conn        *Connection
	reader      *frame.Reader
	scene       *scene.Scene
	resolver    *resource.Resolver
	appearances *appearance.Registry
	backend     storage.Backend
	logger      *slog.Logger
	metrics     *metrics

	state State
	tick  uint64

	address string
	port    int

	lastFrameBytes   int
	lastStepDuration time.Duration

	showContactPoints bool
	showContactForces bool
}

// NewSynchronizer builds a synchronizer over the given collaborators.
func NewSynchronizer(deps Dependencies) (*Synchronizer, error) {
	if deps.Connection == nil || deps.Scene == nil || deps.Resolver == nil {
		return nil, fmt.Errorf("connection, scene and resolver are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	backend := deps.Backend
	if backend == nil {
		backend = storage.Nop{}
	}
	appearances := deps.Appearances
	if appearances == nil {
		appearances = appearance.NewRegistry()
	}

	m, err := newMetrics()
	if err != nil {
		return nil, err
	}

	s := &Synchronizer{
		conn:              deps.Connection,
		reader:            frame.NewReader(),
		scene:             deps.Scene,
		resolver:          deps.Resolver,
		appearances:       appearances,
		backend:           backend,
		logger:            logger,
		metrics:           m,
		showContactPoints: true,
		showContactForces: true,
	}
	s.conn.OnClose(s.onConnectionClosed)
	return s, nil
}

// SetContactDisplay toggles contact point and force visualization.
func (s *Synchronizer) SetContactDisplay(points, forces bool) {
	s.showContactPoints = points
	s.showContactForces = forces
}

// SetReadTimeout overrides the frame read deadline.
func (s *Synchronizer) SetReadTimeout(d time.Duration) {
	s.reader.SetTimeout(d)
}

// State returns the current state.
func (s *Synchronizer) State() State { return s.state }

// Alive reports whether the connection still looks live. The driving
// loop uses it to tell a peer shutdown from a decode failure when a
// tick errors.
func (s *Synchronizer) Alive() bool { return s.conn.IsAlive() }

// Status is a point-in-time snapshot for status reporting.
type Status struct {
	Session          string
	State            State
	Tick             uint64
	ConfigNumber     uint64
	Objects          int
	Markers          int
	LastFrameBytes   int
	LastStepDuration time.Duration
}

// Status snapshots the synchronizer for the monitor. Values may be
// one tick stale when read concurrently with the driving loop.
func (s *Synchronizer) Status() Status {
	cfg, _ := s.scene.ConfigNumber()
	session := ""
	if s.address != "" {
		session = fmt.Sprintf("%s:%d", s.address, s.port)
	}
	return Status{
		Session:          session,
		State:            s.state,
		Tick:             s.tick,
		ConfigNumber:     cfg,
		Objects:          s.scene.ObjectCount(),
		Markers:          s.scene.MarkerCount(),
		LastFrameBytes:   s.lastFrameBytes,
		LastStepDuration: s.lastStepDuration,
	}
}

// Connect opens the connection and waits for acknowledgement.
func (s *Synchronizer) Connect(address string, port int) error {
	if err := s.conn.Connect(address, port); err != nil {
		return err
	}
	s.address = address
	s.port = port
	s.state = StateAwaitingAck
	return nil
}

// Acknowledge confirms the connection and arms the loading pass. The
// owning UI calls this once its confirmation dialog is dismissed;
// headless callers call it immediately after Connect.
func (s *Synchronizer) Acknowledge() {
	if s.state == StateAwaitingAck {
		s.state = StateLoading
	}
}

// Close tears down the connection. Scene state is cleared by the
// connection's close hook.
func (s *Synchronizer) Close() {
	s.conn.Close()
}

// onConnectionClosed clears all scene state. Runs on every Close,
// regardless of why the connection went away.
func (s *Synchronizer) onConnectionClosed() {
	s.scene.Clear()
	s.appearances.Reset()
	s.state = StateDisconnected
	s.record("end session", s.backend.EndSession)
}

// Tick runs one cycle of the state machine. In the loading state it
// builds the full scene; in steady state it applies the three
// per-tick updates. Every returned error is fatal for the connection:
// the owner is expected to observe it, surface the cause, and Close.
func (s *Synchronizer) Tick() error {
	switch s.state {
	case StateDisconnected, StateAwaitingAck:
		return nil

	case StateLoading:
		if err := s.initialize(); err != nil {
			s.metrics.decodeFailures.Add(context.Background(), 1)
			return err
		}
		s.state = StateSteady
		return nil

	case StateSteady:
		s.tick++
		s.metrics.ticks.Add(context.Background(), 1)
		for _, step := range []struct {
			name string
			run  func() error
		}{
			{"object positions", s.updatePositions},
			{"visual positions", s.updateVisualPositions},
			{"contacts", s.updateContacts},
		} {
			if s.state != StateSteady {
				// A reinitialization consumed the rest of
				// this tick.
				return nil
			}
			if err := step.run(); err != nil {
				s.metrics.decodeFailures.Add(context.Background(), 1)
				return fmt.Errorf("%s: %w", step.name, err)
			}
		}
		return nil
	}
	return nil
}

// initialize performs the loading pass: config XML, then full object
// initialization, then visual markers, strictly in that order.
func (s *Synchronizer) initialize() error {
	if err := s.loadConfigXML(); err != nil {
		return fmt.Errorf("config xml: %w", err)
	}
	if err := s.initializeScene(); err != nil {
		return fmt.Errorf("scene initialization: %w", err)
	}
	if err := s.initializeVisuals(); err != nil {
		return fmt.Errorf("visual initialization: %w", err)
	}

	cfg, _ := s.scene.ConfigNumber()
	s.record("start session", func() error {
		return s.backend.StartSession(&core.Session{
			Address:      s.address,
			Port:         s.port,
			StartedAt:    time.Now(),
			ConfigNumber: cfg,
			ObjectCount:  s.scene.ObjectCount(),
			MarkerCount:  s.scene.MarkerCount(),
		})
	})
	s.logger.Info("scene loaded",
		"objects", s.scene.ObjectCount(),
		"markers", s.scene.MarkerCount(),
		"configNumber", cfg,
	)
	return nil
}

// reinitialize rebuilds the object scene after a configuration-number
// change. Visual markers are kept: the server does not resend them.
func (s *Synchronizer) reinitialize(newConfig uint64) error {
	old, _ := s.scene.ConfigNumber()
	s.logger.Info("configuration number changed, rebuilding scene",
		"old", old, "new", newConfig)
	s.metrics.reinits.Add(context.Background(), 1)

	s.state = StateLoading
	s.scene.ClearObjects()

	if err := s.loadConfigXML(); err != nil {
		return fmt.Errorf("config xml: %w", err)
	}
	if err := s.initializeScene(); err != nil {
		return fmt.Errorf("scene reinitialization: %w", err)
	}
	s.state = StateSteady

	cfg, _ := s.scene.ConfigNumber()
	s.record("record reinit", func() error {
		return s.backend.RecordReinit(s.tick, cfg)
	})
	return nil
}

// exchange writes one request and reads and validates the response
// header. The returned cursor is positioned after the status and
// message-type tags; the message type is handed back for the caller to
// check against its expected type.
func (s *Synchronizer) exchange(req []byte, step string) (*wire.Cursor, protocol.ServerMessageType, error) {
	start := time.Now()
	defer func() {
		s.lastStepDuration = time.Since(start)
		s.metrics.stepDuration.Record(context.Background(), s.lastStepDuration.Seconds(),
			metric.WithAttributes(attribute.String("step", step)))
	}()

	if err := s.conn.Write(req); err != nil {
		return nil, 0, err
	}
	payload, err := s.reader.ReadFrame(s.conn)
	if err != nil {
		return nil, 0, err
	}
	s.lastFrameBytes = len(payload)
	s.metrics.frameBytes.Add(context.Background(), int64(len(payload)))

	cur := wire.NewCursor(payload)
	status, err := cur.Status()
	if err != nil {
		return nil, 0, err
	}
	switch status {
	case protocol.StatusTerminating:
		return nil, 0, protocol.ErrTerminating
	case protocol.StatusHibernating:
		s.logger.Debug("server is hibernating", "step", step)
	}

	mt, err := cur.MessageType()
	if err != nil {
		return nil, 0, err
	}
	return cur, mt, nil
}

// request issues a plain tag-only request.
func (s *Synchronizer) request(t protocol.ClientMessageType) (*wire.Cursor, protocol.ServerMessageType, error) {
	return s.exchange(wire.EncodeRequest(t), t.String())
}

// record runs a storage call and logs failures without aborting the
// protocol step. Recording is observability, not scene state.
func (s *Synchronizer) record(what string, fn func() error) {
	if err := fn(); err != nil {
		s.logger.Warn("storage backend error", "op", what, "error", err)
	}
}
