package chromex

import (
	"context"
	"time"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
)

// CollectionService lists, resolves and deletes collections on one connection.
type CollectionService struct {
	conn domain.Connection
	svc  collectionUseCase
	obs  *observer
}

// List returns every collection of the tenant and database.
func (s *CollectionService) List(ctx context.Context) (_ []CollectionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.list", start, err) }()

	cols, err := s.svc.List(ctx, s.conn)
	if err != nil {
		return nil, err
	}
	out := make([]CollectionInfo, len(cols))
	for i := range cols {
		out[i] = collectionFromDomain(&cols[i])
	}
	return out, nil
}

// Get returns the collection whose id or name equals ident.
func (s *CollectionService) Get(ctx context.Context, ident string) (_ CollectionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.get", start, err) }()

	col, err := s.svc.Get(ctx, s.conn, ident)
	if err != nil {
		return CollectionInfo{}, err
	}
	return collectionFromDomain(&col), nil
}

// Delete removes the collection with the given id.
func (s *CollectionService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.delete", start, err) }()

	return s.svc.Delete(ctx, s.conn, id)
}
