package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/simviz/sceneclient/internal/api"
	"github.com/simviz/sceneclient/internal/client"
	"github.com/simviz/sceneclient/internal/config"
	"github.com/simviz/sceneclient/internal/influx"
	"github.com/simviz/sceneclient/internal/logging"
	"github.com/simviz/sceneclient/internal/monitor"
	intotel "github.com/simviz/sceneclient/internal/otel"
	"github.com/simviz/sceneclient/internal/protocol"
	"github.com/simviz/sceneclient/internal/resource"
	"github.com/simviz/sceneclient/internal/scene"
	"github.com/simviz/sceneclient/internal/storage"
	"github.com/simviz/sceneclient/internal/storage/memory"
	"github.com/simviz/sceneclient/pkg/core"
)

func runCmd() *cobra.Command {
	var (
		configDir    string
		host         string
		port         int
		resourceDirs []string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to a simulation server and synchronize the scene",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			cfg.ResourceDirs = append(cfg.ResourceDirs, resourceDirs...)
			return run(cfg)
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", ".", "Directory containing sceneclient.cfg.json")
	cmd.Flags().StringVar(&host, "host", "", "Server address (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port (overrides config)")
	cmd.Flags().StringArrayVar(&resourceDirs, "resource-dir", nil, "Additional mesh resource root (repeatable)")

	return cmd
}

func run(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.LogsDir, 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}

	start := time.Now()
	logFile, err := os.Create(logging.LogFilePath(cfg.LogsDir, "sceneclient", start))
	if err != nil {
		return fmt.Errorf("create log file: %w", err)
	}
	defer logFile.Close()

	// OTel provider feeds the otelslog bridge and the meter used by
	// the synchronizer's counters.
	otelCfg := cfg.Otel
	if otelCfg.Enabled {
		otelLogFile, err := os.Create(logging.LogFilePath(cfg.LogsDir, "sceneclient.otel", start))
		if err != nil {
			return fmt.Errorf("create otel log file: %w", err)
		}
		defer otelLogFile.Close()
		otelCfg.LogWriter = otelLogFile

		metricFile, err := os.Create(logging.LogFilePath(cfg.LogsDir, "sceneclient.metrics", start))
		if err != nil {
			return fmt.Errorf("create metric file: %w", err)
		}
		defer metricFile.Close()
		otelCfg.MetricWriter = metricFile
	}
	provider, err := intotel.New(otelCfg)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer provider.Shutdown(context.Background())

	logCfg := logging.Config{
		Level:    cfg.LogLevel,
		File:     logFile,
		Console:  true,
		Provider: provider.LoggerProvider(),
	}
	if cfg.Graylog.Enabled {
		logCfg.GelfAddress = cfg.Graylog.Address
	}

	logMgr := logging.NewSlogManager()
	var sync *client.Synchronizer
	logCfg.Context = func() []slog.Attr {
		if sync == nil {
			return nil
		}
		return []slog.Attr{slog.String("state", sync.State().String())}
	}
	if err := logMgr.Setup(logCfg); err != nil {
		return fmt.Errorf("logging setup: %w", err)
	}
	logger := logMgr.Logger()

	backend, err := storage.NewBackend(cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("storage setup: %w", err)
	}
	buffered := storage.NewBuffered(backend, 0, logger)
	if err := buffered.Init(); err != nil {
		return fmt.Errorf("storage init: %w", err)
	}
	defer buffered.Close()

	resolver := resource.NewResolver(cfg.ResourceDirs...)
	sc := scene.New(scene.NewMemoryGraph())
	conn := client.NewConnection(logger)

	sync, err = client.NewSynchronizer(client.Dependencies{
		Connection: conn,
		Scene:      sc,
		Resolver:   resolver,
		Backend:    buffered,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	sync.SetContactDisplay(cfg.Contacts.ShowPoints, cfg.Contacts.ShowForces)
	sync.SetReadTimeout(time.Duration(cfg.Server.ReadTimeoutSec) * time.Second)

	var influxMgr *influx.Manager
	if cfg.Influx.Enabled {
		zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		influxMgr = influx.NewManager(zl, logging.LogFilePath(cfg.LogsDir, "influx_backup", start))
		if err := influxMgr.Connect(); err != nil {
			logger.Warn("influx unavailable, continuing without it", "error", err)
			influxMgr = nil
		} else {
			influxMgr.CreateWriters()
		}
	}

	mon := monitor.NewService(monitor.Dependencies{
		LogManager: logMgr,
		Influx:     influxMgr,
		StatusDir:  cfg.LogsDir,
		Snapshot: func() monitor.Status {
			st := sync.Status()
			return monitor.Status{
				Time:         time.Now(),
				Session:      st.Session,
				State:        st.State.String(),
				Tick:         st.Tick,
				ConfigNumber: st.ConfigNumber,
				ObjectCount:  st.Objects,
				MarkerCount:  st.Markers,
				FrameBytes:   st.LastFrameBytes,
				StepDuration: st.LastStepDuration,
			}
		},
	})
	if err := mon.Start(); err != nil {
		return err
	}
	defer mon.Stop()

	logger.Info("connecting", "host", cfg.Server.Host, "port", cfg.Server.Port)
	if err := sync.Connect(cfg.Server.Host, cfg.Server.Port); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	sync.Acknowledge()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	interval := time.Second / time.Duration(max(cfg.Server.TickRateHz, 1))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case sig := <-sigCh:
			logger.Info("shutting down", "signal", sig.String())
			break loop
		case <-ticker.C:
			if err := sync.Tick(); err != nil {
				switch {
				case errors.Is(err, protocol.ErrTerminating):
					logger.Info("server is terminating")
				case !sync.Alive():
					logger.Error("connection lost", "error", err)
				default:
					logger.Error("tick failed", "error", err)
				}
				break loop
			}
		}
	}

	status := sync.Status()
	sync.Close()

	if cfg.API.Enabled {
		uploadExport(cfg, backend, status, start, logger)
	}

	logMgr.Flush(context.Background())
	return nil
}

// uploadExport pushes the memory backend's session export to the
// viewer service. Other backends have their own delivery paths.
func uploadExport(cfg *config.Config, backend storage.Backend, st client.Status, start time.Time, logger *slog.Logger) {
	mem, ok := backend.(*memory.Backend)
	if !ok {
		return
	}
	path := mem.LastExportPath()
	if path == "" {
		return
	}

	c := api.New(cfg.API.ServerURL, cfg.API.APIKey)
	if err := c.Healthcheck(); err != nil {
		logger.Warn("viewer service unreachable, skipping upload", "error", err)
		return
	}
	err := c.Upload(path, core.UploadMetadata{
		ServerAddress: st.Session,
		ConfigNumber:  st.ConfigNumber,
		Duration:      time.Since(start).Seconds(),
		ObjectCount:   st.Objects,
	})
	if err != nil {
		logger.Error("session upload failed", "error", err)
		return
	}
	logger.Info("session uploaded", "file", path)
}
