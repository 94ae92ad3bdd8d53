// Package system probes server-level endpoints of the upstream.
package system

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	"github.com/kailas-cloud/chroma-explorer/internal/upstream"
)

// APIVersion is an upstream REST API generation.
type APIVersion string

// Known API versions.
const (
	V2 APIVersion = "v2"
	V1 APIVersion = "v1"
)

// Repo calls the heartbeat endpoints.
type Repo struct {
	doer upstream.Doer
}

// New creates a system repository.
func New(doer upstream.Doer) *Repo {
	return &Repo{doer: doer}
}

// Heartbeat calls api/{version}/heartbeat and discards the body.
func (r *Repo) Heartbeat(ctx context.Context, conn domain.Connection, version APIVersion) error {
	path := "api/" + string(version) + "/heartbeat"
	if err := r.doer.Do(ctx, conn, http.MethodGet, path, nil, nil); err != nil {
		return fmt.Errorf("heartbeat %s: %w", version, err)
	}
	return nil
}
