package collection

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	"github.com/kailas-cloud/chroma-explorer/internal/logger"
	repcol "github.com/kailas-cloud/chroma-explorer/internal/repository/collection"
	"github.com/kailas-cloud/chroma-explorer/internal/usecase/fallback"
)

// Operation names, used in errors, logs and metrics.
const (
	OpList   = "list_collections"
	OpDelete = "delete_collection"
)

// ListOrder is the path shapes tried when listing, in order.
var ListOrder = []repcol.Shape{
	repcol.ShapeScopedV2,
	repcol.ShapeFlatV1,
	repcol.ShapeFlatV2,
	repcol.ShapeBare,
}

// versioned is the shapes tried per identifier when deleting, before the bare fallbacks.
var versioned = []repcol.Shape{repcol.ShapeScopedV2, repcol.ShapeFlatV1, repcol.ShapeFlatV2}

// DeleteTarget is one delete candidate: a path shape and the identifier placed in it.
type DeleteTarget struct {
	Shape repcol.Shape
	Ident string
}

// DeleteOrder returns the delete candidates for a collection: name on every versioned shape,
// then id on every versioned shape, then the bare name and bare id. Duplicates (name == id)
// are dropped.
func DeleteOrder(name, id string) []DeleteTarget {
	out := make([]DeleteTarget, 0, 2*len(versioned)+2)
	seen := make(map[DeleteTarget]struct{}, cap(out))
	add := func(t DeleteTarget) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, ident := range []string{name, id} {
		for _, s := range versioned {
			add(DeleteTarget{Shape: s, Ident: ident})
		}
	}
	add(DeleteTarget{Shape: repcol.ShapeBare, Ident: name})
	add(DeleteTarget{Shape: repcol.ShapeBare, Ident: id})
	return out
}

// Service lists, resolves and deletes collections across server versions.
type Service struct {
	repo Repository
}

// New creates a collection service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the collections from the first path shape that answers.
func (s *Service) List(ctx context.Context, conn domain.Connection) ([]domain.Collection, error) {
	strategies := make([]fallback.Strategy[[]domain.Collection], len(ListOrder))
	for i, shape := range ListOrder {
		strategies[i] = fallback.Strategy[[]domain.Collection]{
			Name: string(shape),
			Run: func(ctx context.Context) ([]domain.Collection, error) {
				return s.repo.List(ctx, conn, shape)
			},
		}
	}
	return fallback.Run(ctx, OpList, "failed to fetch collections", strategies)
}

// Get resolves one collection by id, then by name.
func (s *Service) Get(ctx context.Context, conn domain.Connection, ident string) (domain.Collection, error) {
	cols, err := s.List(ctx, conn)
	if err != nil {
		return domain.Collection{}, err
	}
	if c, ok := find(cols, ident); ok {
		return c, nil
	}
	return domain.Collection{}, fmt.Errorf("collection %q: %w", ident, domain.ErrNotFound)
}

// Delete removes the collection with the given id. The name is resolved through List;
// when that fails the id stands in for the name.
func (s *Service) Delete(ctx context.Context, conn domain.Connection, id string) error {
	if id == "" {
		return domain.NewValidationError("id", "must not be empty")
	}

	name := s.resolveName(ctx, conn, id)

	targets := DeleteOrder(name, id)
	strategies := make([]fallback.Strategy[struct{}], len(targets))
	for i, t := range targets {
		label := "name"
		if t.Ident != name {
			label = "id"
		}
		strategies[i] = fallback.Strategy[struct{}]{
			Name: fallback.Candidate(string(t.Shape), label),
			Run: func(ctx context.Context) (struct{}, error) {
				return struct{}{}, s.repo.Delete(ctx, conn, t.Shape, t.Ident)
			},
		}
	}

	_, err := fallback.Run(ctx, OpDelete, "failed to delete collection", strategies)
	return err
}

func (s *Service) resolveName(ctx context.Context, conn domain.Connection, id string) string {
	log := logger.FromContext(ctx)
	cols, err := s.List(ctx, conn)
	if err != nil {
		log.Info("collection name lookup failed, using id", zap.String("collection_id", id), zap.Error(err))
		return id
	}
	for _, c := range cols {
		if c.ID == id && c.Name != "" {
			return c.Name
		}
	}
	log.Info("collection not in listing, using id as name", zap.String("collection_id", id))
	return id
}

func find(cols []domain.Collection, ident string) (domain.Collection, bool) {
	for _, c := range cols {
		if c.ID == ident {
			return c, true
		}
	}
	for _, c := range cols {
		if c.Name == ident {
			return c, true
		}
	}
	return domain.Collection{}, false
}
