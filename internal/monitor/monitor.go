package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/simviz/sceneclient/internal/influx"
	"github.com/simviz/sceneclient/internal/logging"
)

// Status is one snapshot of the client state.
type Status struct {
	Time         time.Time     `json:"time"`
	Session      string        `json:"session"`
	State        string        `json:"state"`
	Tick         uint64        `json:"tick"`
	ConfigNumber uint64        `json:"configNumber"`
	ObjectCount  int           `json:"objectCount"`
	MarkerCount  int           `json:"markerCount"`
	FrameBytes   int           `json:"frameBytes"`
	StepDuration time.Duration `json:"stepDuration"`
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	LogManager *logging.SlogManager
	Influx     *influx.Manager
	StatusDir  string
	// Snapshot returns the current client status. Called once per interval.
	Snapshot func() Status
	Interval time.Duration
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// FormatStatus renders a snapshot as indented JSON for the status file.
func FormatStatus(st Status) string {
	out, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "%s"}`, err)
	}
	return string(out)
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "function", "startStatusMonitor")

		statusFile, err := os.Create(s.deps.StatusDir + "/status.txt")
		if err != nil {
			logger.Error("Error creating status file", "error", err)
		}
		defer statusFile.Close()

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				st := s.deps.Snapshot()
				if st.Session == "" {
					continue
				}

				if statusFile != nil {
					statusFile.Truncate(0)
					statusFile.Seek(0, 0)
					statusFile.WriteString(FormatStatus(st) + "\n")
				}

				if s.deps.Influx != nil {
					err = s.deps.Influx.WriteTick(context.Background(), influx.TickSample{
						Session:      st.Session,
						Tick:         st.Tick,
						StepDuration: st.StepDuration,
						FrameBytes:   st.FrameBytes,
						ObjectCount:  st.ObjectCount,
					})
					if err != nil {
						logger.Error("Error writing tick point to InfluxDB", "error", err)
					}
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
