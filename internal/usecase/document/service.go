package document

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	"github.com/kailas-cloud/chroma-explorer/internal/logger"
)

// Operation names, used in errors and logs.
const (
	OpList   = "list_documents"
	OpUpdate = "update_document"
	OpDelete = "delete_documents"
)

// Service lists and mutates documents. Mutations use the scoped v2 shape only.
type Service struct {
	repo Repository
}

// New creates a document service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every document in the collection.
func (s *Service) List(ctx context.Context, conn domain.Connection, collectionID string) ([]domain.Document, error) {
	if collectionID == "" {
		return nil, domain.NewValidationError("collection_id", "must not be empty")
	}
	docs, err := s.repo.List(ctx, conn, collectionID)
	if err != nil {
		logger.FromContext(ctx).Warn("list documents failed",
			zap.String("collection_id", collectionID), zap.Error(err))
		return nil, domain.NewOperationError(OpList, "failed to fetch documents from collection", err)
	}
	return docs, nil
}

// Update replaces the text and metadata of one document.
func (s *Service) Update(
	ctx context.Context, conn domain.Connection, collectionID, docID, content string, metadata map[string]any,
) error {
	if collectionID == "" {
		return domain.NewValidationError("collection_id", "must not be empty")
	}
	if docID == "" {
		return domain.NewValidationError("id", "must not be empty")
	}
	if err := s.repo.Update(ctx, conn, collectionID, docID, content, metadata); err != nil {
		logger.FromContext(ctx).Warn("update document failed",
			zap.String("collection_id", collectionID), zap.String("doc_id", docID), zap.Error(err))
		return domain.NewOperationError(OpUpdate, "failed to update document", err)
	}
	return nil
}

// UpdateJSON is Update with metadata given as JSON text, as typed into an edit field.
// Blank text means empty metadata. Text that is not a JSON object fails validation
// and nothing is sent.
func (s *Service) UpdateJSON(
	ctx context.Context, conn domain.Connection, collectionID, docID, content, metadataJSON string,
) error {
	metadata, err := ParseMetadata(metadataJSON)
	if err != nil {
		return err
	}
	return s.Update(ctx, conn, collectionID, docID, content, metadata)
}

// Delete removes one document.
func (s *Service) Delete(ctx context.Context, conn domain.Connection, collectionID, docID string) error {
	if docID == "" {
		return domain.NewValidationError("id", "must not be empty")
	}
	return s.DeleteMany(ctx, conn, collectionID, []string{docID})
}

// DeleteMany removes the given documents in a single upstream call.
func (s *Service) DeleteMany(ctx context.Context, conn domain.Connection, collectionID string, ids []string) error {
	if collectionID == "" {
		return domain.NewValidationError("collection_id", "must not be empty")
	}
	if len(ids) == 0 {
		return domain.NewValidationError("ids", "must not be empty")
	}
	if err := s.repo.Delete(ctx, conn, collectionID, ids); err != nil {
		logger.FromContext(ctx).Warn("delete documents failed",
			zap.String("collection_id", collectionID), zap.Int("count", len(ids)), zap.Error(err))
		msg := "failed to delete documents"
		if len(ids) == 1 {
			msg = "failed to delete document"
		}
		return domain.NewOperationError(OpDelete, msg, err)
	}
	return nil
}

// ParseMetadata decodes metadata JSON text into an object.
func ParseMetadata(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, domain.NewValidationError("metadata", "invalid JSON object")
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}
