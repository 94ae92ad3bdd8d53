package document

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	"github.com/kailas-cloud/chroma-explorer/internal/repository/records"
	"github.com/kailas-cloud/chroma-explorer/internal/upstream"
)

// ListIDPrefix prefixes ids synthesized for records listed without one.
const ListIDPrefix = "doc_"

// Repo reads and mutates records of one collection through the scoped v2 API.
type Repo struct {
	doer upstream.Doer
}

// New creates a document repository.
func New(doer upstream.Doer) *Repo {
	return &Repo{doer: doer}
}

type getRequest struct {
	Include []string `json:"include"`
}

type updateRequest struct {
	IDs       []string         `json:"ids"`
	Documents []string         `json:"documents"`
	Metadatas []map[string]any `json:"metadatas"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

func actionPath(conn domain.Connection, collectionID, action string) string {
	return conn.Scope() + "/collections/" + collectionID + "/" + action
}

// Get returns the raw columns of every record in the collection (metadatas and documents, no embeddings).
func (r *Repo) Get(ctx context.Context, conn domain.Connection, collectionID string) (records.Columns, error) {
	req := getRequest{Include: []string{records.IncludeMetadatas, records.IncludeDocuments}}
	var resp records.GetResponse
	if err := r.doer.Do(ctx, conn, http.MethodPost, actionPath(conn, collectionID, "get"), req, &resp); err != nil {
		return records.Columns{}, fmt.Errorf("get documents: %w", err)
	}
	return resp.Columns(), nil
}

// List returns every record in the collection as documents.
func (r *Repo) List(ctx context.Context, conn domain.Connection, collectionID string) ([]domain.Document, error) {
	cols, err := r.Get(ctx, conn, collectionID)
	if err != nil {
		return nil, err
	}
	return records.Zip(cols, ListIDPrefix, false), nil
}

// Update replaces the text and metadata of one record.
func (r *Repo) Update(
	ctx context.Context, conn domain.Connection, collectionID, docID, content string, metadata map[string]any,
) error {
	if metadata == nil {
		metadata = map[string]any{}
	}
	req := updateRequest{
		IDs:       []string{docID},
		Documents: []string{content},
		Metadatas: []map[string]any{metadata},
	}
	if err := r.doer.Do(ctx, conn, http.MethodPost, actionPath(conn, collectionID, "update"), req, nil); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// Delete removes the given records in a single call.
func (r *Repo) Delete(ctx context.Context, conn domain.Connection, collectionID string, ids []string) error {
	req := deleteRequest{IDs: ids}
	if err := r.doer.Do(ctx, conn, http.MethodPost, actionPath(conn, collectionID, "delete"), req, nil); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}
