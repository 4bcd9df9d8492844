package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Config holds the logging targets. Any nil/empty target is skipped.
type Config struct {
	Level string

	// File receives JSON lines. Usually the session log file.
	File io.Writer

	// Console enables pretty console output on stderr.
	Console bool

	// GelfAddress enables a Graylog GELF UDP target when non-empty.
	GelfAddress string

	// Provider enables the OTel log bridge when non-nil.
	Provider *sdklog.LoggerProvider

	// Context supplies dynamic attributes added to every record, such
	// as the current connection state.
	Context ContextProvider
}

// SlogManager manages slog-based logging with optional OTel integration.
type SlogManager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initializes the logging system with the configured targets.
func (m *SlogManager) Setup(cfg Config) error {
	lvl := parseLevel(cfg.Level)
	m.logProvider = cfg.Provider

	// Common handler options: RFC3339 time, lowercase level names so
	// the zerolog console writer recognizes them.
	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				if l, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(strings.ToLower(l.String()))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler

	if cfg.Console {
		// slog's JSON output field names, so the console writer can
		// parse the lines it pretty-prints.
		zerolog.MessageFieldName = "msg"
		console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		handlers = append(handlers, slog.NewJSONHandler(console, handlerOpts))
	}

	if cfg.File != nil {
		handlers = append(handlers, slog.NewJSONHandler(cfg.File, handlerOpts))
	}

	if cfg.GelfAddress != "" {
		gw, err := gelf.NewWriter(cfg.GelfAddress)
		if err != nil {
			return fmt.Errorf("gelf writer: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(gw, handlerOpts))
	}

	if cfg.Provider != nil {
		handlers = append(handlers, otelslog.NewHandler("sceneclient", otelslog.WithLoggerProvider(cfg.Provider)))
	}

	var handler slog.Handler = NewMultiHandler(handlers...)
	if cfg.Context != nil {
		handler = NewContextHandler(handler, cfg.Context)
	}

	m.logger = slog.New(handler)
	m.logger.Info("logging initialized", "level", cfg.Level)
	return nil
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
