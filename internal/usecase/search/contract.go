package search

import (
	"context"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	"github.com/kailas-cloud/chroma-explorer/internal/repository/records"
)

// Repository runs the query action in its payload variants.
type Repository interface {
	QueryTexts(ctx context.Context, conn domain.Connection, collectionID, text string, limit int) ([]domain.Document, error)
	QueryEmbedding(
		ctx context.Context, conn domain.Connection, collectionID string, vector []float32, limit int,
	) ([]domain.Document, error)
	QueryContains(ctx context.Context, conn domain.Connection, collectionID, substr string, limit int) ([]domain.Document, error)
}

// RecordReader fetches the raw record columns of a collection.
type RecordReader interface {
	Get(ctx context.Context, conn domain.Connection, collectionID string) (records.Columns, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
