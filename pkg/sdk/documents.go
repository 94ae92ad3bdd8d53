package chromex

import (
	"context"
	"time"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
)

// DocumentService reads, edits, deletes and searches the documents of one collection.
type DocumentService struct {
	conn         domain.Connection
	collectionID string
	docSvc       documentUseCase
	searchSvc    searchUseCase
	obs          *observer
}

// List returns the first page of the collection with documents and metadata.
func (s *DocumentService) List(ctx context.Context) (_ []Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.list", start, err) }()

	docs, err := s.docSvc.List(ctx, s.conn, s.collectionID)
	if err != nil {
		return nil, err
	}
	return documentsFromDomain(docs), nil
}

// Update replaces the text and metadata of one document. A nil metadata map is sent as {}.
func (s *DocumentService) Update(ctx context.Context, id, text string, metadata map[string]any) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.update", start, err) }()

	if metadata == nil {
		metadata = map[string]any{}
	}
	return s.docSvc.Update(ctx, s.conn, s.collectionID, id, text, metadata)
}

// UpdateJSON is Update with metadata given as JSON object text.
// Invalid text fails with ErrValidation before anything is sent.
func (s *DocumentService) UpdateJSON(ctx context.Context, id, text, metadataJSON string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.update", start, err) }()

	return s.docSvc.UpdateJSON(ctx, s.conn, s.collectionID, id, text, metadataJSON)
}

// Delete removes one document.
func (s *DocumentService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.delete", start, err) }()

	return s.docSvc.Delete(ctx, s.conn, s.collectionID, id)
}

// DeleteMany removes the given documents in one call.
func (s *DocumentService) DeleteMany(ctx context.Context, ids []string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.delete_many", start, err) }()

	return s.docSvc.DeleteMany(ctx, s.conn, s.collectionID, ids)
}

// Search returns up to limit documents matching query. limit <= 0 means 5.
// Results of a similarity strategy carry a Distance; text-match results do not.
func (s *DocumentService) Search(ctx context.Context, query string, limit int) (_ []Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search", start, err) }()

	docs, err := s.searchSvc.Search(ctx, s.conn, s.collectionID, query, limit)
	if err != nil {
		return nil, err
	}
	return documentsFromDomain(docs), nil
}
