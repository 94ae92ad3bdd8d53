package document

import (
	"context"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
)

// Repository defines the upstream contract for records of one collection.
type Repository interface {
	List(ctx context.Context, conn domain.Connection, collectionID string) ([]domain.Document, error)
	Update(ctx context.Context, conn domain.Connection, collectionID, docID, content string, metadata map[string]any) error
	Delete(ctx context.Context, conn domain.Connection, collectionID string, ids []string) error
}
