package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	auditfile "github.com/tvet-mis/console/internal/adapter/outbound/audit"
	"github.com/tvet-mis/console/internal/adapter/outbound/api"
	"github.com/tvet-mis/console/internal/adapter/outbound/state"
	"github.com/tvet-mis/console/internal/config"
	"github.com/tvet-mis/console/internal/domain/audit"
	"github.com/tvet-mis/console/internal/domain/gate"
	"github.com/tvet-mis/console/internal/domain/menu"
	"github.com/tvet-mis/console/internal/domain/privilege"
	"github.com/tvet-mis/console/internal/domain/profile"
	"github.com/tvet-mis/console/internal/domain/session"
	"github.com/tvet-mis/console/internal/domain/theme"
	"github.com/tvet-mis/console/internal/obs"
	"github.com/tvet-mis/console/internal/service"
)

// app wires the stores, the gate, and the services for one invocation.
// The CLI is short-lived: every command rehydrates from the storage
// file, acts, and exits with the file flushed.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	sessions   *session.Store
	privileges *privilege.Store
	profiles   *profile.Store
	themes     *theme.Store
	gate       *gate.Gate
	renderer   *menu.Renderer
	svc        *service.AuthService
	privSvc    *service.PrivilegeService
	trail      audit.Store
	metrics    *obs.Metrics
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.LogLevel)

	if err := os.MkdirAll(cfg.Storage.Dir, 0700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	kv, err := state.NewFileStore(cfg.StoragePath(), logger)
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(kv, cfg.Storage.Secure, logger)
	privileges := privilege.NewStore(kv, cfg.Storage.Secure, logger)
	profiles := profile.NewStore(kv, logger)
	themes := theme.NewStore(kv)

	sessions.Rehydrate()
	privileges.Rehydrate()
	profiles.Rehydrate()

	metrics := obs.NewMetrics(prometheus.NewRegistry())

	trail, err := newTrail(cfg, logger)
	if err != nil {
		return nil, err
	}

	g := gate.New(sessions, logger,
		[]gate.Resetter{privileges, profiles, sessions},
		gate.WithObserver(func(d gate.Decision) {
			outcome := "served"
			if d.Redirected {
				outcome = "redirected"
			}
			metrics.GateDecisions.WithLabelValues(d.State.String(), outcome).Inc()
			if d.Redirected {
				rec := audit.Record{
					ID:        uuid.NewString(),
					Timestamp: time.Now().UTC(),
					EventType: audit.EventGateRedirect,
					UserID:    sessions.Current().UserID,
					Route:     d.Route,
					Detail:    d.State.String(),
				}
				if err := trail.Append(rec); err != nil {
					logger.Warn("audit append failed", "event_type", rec.EventType, "error", err)
				}
			}
		}))

	timeout, err := time.ParseDuration(cfg.Server.Timeout)
	if err != nil {
		timeout = 30 * time.Second
	}
	backend := api.NewClient(cfg.Server.BaseURL,
		func() string { return sessions.Current().AccessToken },
		logger,
		api.WithTimeout(timeout),
		api.WithMetrics(metrics),
	)

	svc := service.NewAuthService(backend, sessions, privileges, profiles, g, trail, metrics, logger)

	return &app{
		cfg:        cfg,
		logger:     logger,
		sessions:   sessions,
		privileges: privileges,
		profiles:   profiles,
		themes:     themes,
		gate:       g,
		renderer:   menu.NewRenderer(),
		svc:        svc,
		privSvc:    service.NewPrivilegeService(backend, sessions),
		trail:      trail,
		metrics:    metrics,
	}, nil
}

func (a *app) close() {
	if err := a.trail.Close(); err != nil {
		a.logger.Warn("audit trail close failed", "error", err)
	}
}

func newTrail(cfg *config.Config, logger *slog.Logger) (audit.Store, error) {
	if cfg.Audit.Output == "stdout" {
		return auditfile.NewWriterStore(os.Stdout), nil
	}
	dir := strings.TrimPrefix(cfg.Audit.Output, "file://")
	return auditfile.NewFileStore(auditfile.FileStoreConfig{
		Dir:           dir,
		RetentionDays: cfg.Audit.RetentionDays,
	}, logger)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
