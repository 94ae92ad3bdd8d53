package collection

import (
	"context"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	repcol "github.com/kailas-cloud/chroma-explorer/internal/repository/collection"
)

// Repository defines the upstream contract for collections, one path shape per call.
type Repository interface {
	List(ctx context.Context, conn domain.Connection, shape repcol.Shape) ([]domain.Collection, error)
	Delete(ctx context.Context, conn domain.Connection, shape repcol.Shape, ident string) error
}
