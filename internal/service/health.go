package service

import (
	"context"
	"time"

	"github.com/cigno/platform/internal/model"
)

// Health statuses
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

const healthPingTimeout = 2 * time.Second

// Pinger is a dependency that can be probed
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServiceConfig holds the probes and build facts reported by health
type HealthServiceConfig struct {
	Database              Pinger
	Cache                 Pinger // optional
	Environment           string
	Version               string
	AgentConfigured       bool
	RemoteAnalysisEnabled bool
}

// HealthService reports whether the API can serve requests
type HealthService struct {
	cfg     HealthServiceConfig
	started time.Time
	now     func() time.Time
}

// NewHealthService creates a new health service
func NewHealthService(cfg HealthServiceConfig) *HealthService {
	return &HealthService{cfg: cfg, started: time.Now(), now: time.Now}
}

// Check probes every dependency. Only the database decides the overall
// status; the cache is reported for information.
func (s *HealthService) Check(ctx context.Context) *model.HealthStatus {
	status := &model.HealthStatus{
		Status:                HealthOK,
		Environment:           s.cfg.Environment,
		Version:               s.cfg.Version,
		Uptime:                s.now().Sub(s.started).Round(time.Second).String(),
		Timestamp:             s.now().UTC(),
		AgentConfigured:       s.cfg.AgentConfigured,
		RemoteAnalysisEnabled: s.cfg.RemoteAnalysisEnabled,
		Checks:                make(map[string]model.HealthCheck),
	}

	db := probe(ctx, s.cfg.Database)
	status.Checks["database"] = db
	if db.Status != HealthOK {
		status.Status = HealthDegraded
	}

	if s.cfg.Cache != nil {
		status.Checks["cache"] = probe(ctx, s.cfg.Cache)
	}
	return status
}

func probe(ctx context.Context, p Pinger) model.HealthCheck {
	if p == nil {
		return model.HealthCheck{Status: HealthDegraded, Error: "not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	check := model.HealthCheck{Status: HealthOK, LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		check.Status = HealthDegraded
		check.Error = err.Error()
	}
	return check
}
