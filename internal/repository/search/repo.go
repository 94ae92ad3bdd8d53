package search

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	"github.com/kailas-cloud/chroma-explorer/internal/repository/records"
	"github.com/kailas-cloud/chroma-explorer/internal/upstream"
)

// Prefixes of ids synthesized for hits without one.
const (
	QueryIDPrefix    = "search_"
	ContainsIDPrefix = "doc_"
)

// Repo runs the collection "query" action in its payload variants.
type Repo struct {
	doer upstream.Doer
}

// New creates a search repository.
func New(doer upstream.Doer) *Repo {
	return &Repo{doer: doer}
}

type queryRequest struct {
	QueryTexts      []string       `json:"query_texts,omitempty"`
	QueryEmbeddings [][]float32    `json:"query_embeddings,omitempty"`
	WhereDocument   map[string]any `json:"where_document,omitempty"`
	NResults        int            `json:"n_results"`
	Include         []string       `json:"include"`
}

var withDistances = []string{records.IncludeMetadatas, records.IncludeDocuments, records.IncludeDistances}

// QueryTexts runs a semantic query with server-side embedding of text.
func (r *Repo) QueryTexts(
	ctx context.Context, conn domain.Connection, collectionID, text string, limit int,
) ([]domain.Document, error) {
	return r.query(ctx, conn, collectionID, queryRequest{
		QueryTexts: []string{text},
		NResults:   limit,
		Include:    withDistances,
	}, QueryIDPrefix, true)
}

// QueryEmbedding runs a semantic query with a client-side embedded vector.
func (r *Repo) QueryEmbedding(
	ctx context.Context, conn domain.Connection, collectionID string, vector []float32, limit int,
) ([]domain.Document, error) {
	return r.query(ctx, conn, collectionID, queryRequest{
		QueryEmbeddings: [][]float32{vector},
		NResults:        limit,
		Include:         withDistances,
	}, QueryIDPrefix, true)
}

// QueryContains filters records whose text contains substr. Results carry no distance.
func (r *Repo) QueryContains(
	ctx context.Context, conn domain.Connection, collectionID, substr string, limit int,
) ([]domain.Document, error) {
	return r.query(ctx, conn, collectionID, queryRequest{
		WhereDocument: map[string]any{"$contains": substr},
		NResults:      limit,
		Include:       []string{records.IncludeMetadatas, records.IncludeDocuments},
	}, ContainsIDPrefix, false)
}

func (r *Repo) query(
	ctx context.Context, conn domain.Connection, collectionID string,
	req queryRequest, idPrefix string, withDistance bool,
) ([]domain.Document, error) {
	path := conn.Scope() + "/collections/" + collectionID + "/query"
	var resp records.QueryResponse
	if err := r.doer.Do(ctx, conn, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	return records.Zip(resp.FirstGroup(), idPrefix, withDistance), nil
}
