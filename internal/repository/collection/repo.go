package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	"github.com/kailas-cloud/chroma-explorer/internal/upstream"
)

// Shape is one REST path convention for the collections resource.
type Shape string

// Known collection path shapes.
const (
	ShapeScopedV2 Shape = "v2_scoped" // api/v2/tenants/{t}/databases/{d}/collections
	ShapeFlatV1   Shape = "v1"        // api/v1/collections
	ShapeFlatV2   Shape = "v2"        // api/v2/collections
	ShapeBare     Shape = "bare"      // collections
)

// Path returns the collections path of the shape for conn.
func (s Shape) Path(conn domain.Connection) string {
	switch s {
	case ShapeScopedV2:
		return conn.Scope() + "/collections"
	case ShapeFlatV1:
		return "api/v1/collections"
	case ShapeFlatV2:
		return "api/v2/collections"
	default:
		return "collections"
	}
}

// Repo reads and deletes collections on the upstream.
type Repo struct {
	doer upstream.Doer
}

// New creates a collection repository.
func New(doer upstream.Doer) *Repo {
	return &Repo{doer: doer}
}

// List fetches the collection listing of one shape. A successful non-array payload
// yields an empty list.
func (r *Repo) List(ctx context.Context, conn domain.Connection, shape Shape) ([]domain.Collection, error) {
	var raw json.RawMessage
	if err := r.doer.Do(ctx, conn, http.MethodGet, shape.Path(conn), nil, &raw); err != nil {
		return nil, fmt.Errorf("list collections (%s): %w", shape, err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []domain.Collection{}, nil
	}

	var recs []collectionRecord
	if err := json.Unmarshal(trimmed, &recs); err != nil {
		return nil, fmt.Errorf("list collections (%s): %w: %w", shape, domain.ErrMalformedResponse, err)
	}

	cols := make([]domain.Collection, len(recs))
	for i := range recs {
		cols[i] = recs[i].toDomain()
	}
	return cols, nil
}

// Delete deletes the collection identified by ident (a name or an id) on one shape.
func (r *Repo) Delete(ctx context.Context, conn domain.Connection, shape Shape, ident string) error {
	path := shape.Path(conn) + "/" + ident
	if err := r.doer.Do(ctx, conn, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete collection (%s): %w", shape, err)
	}
	return nil
}
