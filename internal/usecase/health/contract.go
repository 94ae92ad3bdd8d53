package health

import (
	"context"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	"github.com/kailas-cloud/chroma-explorer/internal/repository/system"
)

// HeartbeatRepository pings the upstream heartbeat endpoints.
type HeartbeatRepository interface {
	Heartbeat(ctx context.Context, conn domain.Connection, version system.APIVersion) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks the embedding cache store.
type CachePinger interface {
	Ping(ctx context.Context) error
}
