// Package metrics holds the Prometheus collectors of chroma-explorer.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chroma_explorer"

var registerOnce sync.Once

// Register registers every collector on reg. Must be called once from main;
// repeated calls are no-ops.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			UpstreamRequestsTotal,
			UpstreamRequestDuration,
			RelayRejectedTotal,
			FallbackAttemptsTotal,
			FallbackExhaustedTotal,
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingCacheTotal,
		)
	})
}
