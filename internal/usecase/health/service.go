package health

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	"github.com/kailas-cloud/chroma-explorer/internal/logger"
	"github.com/kailas-cloud/chroma-explorer/internal/repository/system"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Probe is the outcome of a connectivity probe.
type Probe struct {
	Connected  bool
	APIVersion system.APIVersion // empty when not connected
}

// ProbeOrder is the heartbeat versions tried, in order.
var ProbeOrder = []system.APIVersion{system.V2, system.V1}

// Service answers connectivity probes and process health checks.
type Service struct {
	repo      HeartbeatRepository
	embedding EmbeddingChecker
	cache     CachePinger
	defaults  domain.Connection
}

// New creates a Service. embedding can be nil. defaults is the connection probed by Check.
func New(repo HeartbeatRepository, embedding EmbeddingChecker, defaults domain.Connection) *Service {
	return &Service{repo: repo, embedding: embedding, defaults: defaults}
}

// WithCache adds the embedding cache store to Check.
func (s *Service) WithCache(cache CachePinger) *Service {
	s.cache = cache
	return s
}

// Probe reports whether the upstream answers a heartbeat and on which API version.
// Failures are folded into Connected=false.
func (s *Service) Probe(ctx context.Context, conn domain.Connection) Probe {
	log := logger.FromContext(ctx)
	for _, v := range ProbeOrder {
		if ctx.Err() != nil {
			break
		}
		err := s.repo.Heartbeat(ctx, conn, v)
		if err == nil {
			return Probe{Connected: true, APIVersion: v}
		}
		log.Debug("heartbeat failed", zap.String("api_version", string(v)), zap.Error(err))
	}
	return Probe{}
}

// Connected reports whether conn answers any heartbeat.
func (s *Service) Connected(ctx context.Context, conn domain.Connection) bool {
	return s.Probe(ctx, conn).Connected
}

// Check runs health checks against the default upstream and the embedding provider.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.Probe(ctx, s.defaults).Connected {
		checks["upstream"] = CheckOK
	} else {
		checks["upstream"] = CheckError
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
