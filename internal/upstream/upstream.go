// Package upstream sends JSON requests to a Chroma-compatible server, either
// directly or through a chroma-explorer relay, and classifies their failures.
package upstream

import (
	"context"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
)

// Doer issues one JSON request against an upstream path and decodes the response into out.
// A nil body sends no payload, a nil out discards the response.
type Doer interface {
	Do(ctx context.Context, conn domain.Connection, method, path string, body, out any) error
}
