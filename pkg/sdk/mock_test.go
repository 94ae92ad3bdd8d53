package chromex

import (
	"context"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	healthuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/health"
)

type mockCollectionUC struct {
	listFn   func(ctx context.Context, conn domain.Connection) ([]domain.Collection, error)
	getFn    func(ctx context.Context, conn domain.Connection, ident string) (domain.Collection, error)
	deleteFn func(ctx context.Context, conn domain.Connection, id string) error
}

func (m *mockCollectionUC) List(ctx context.Context, conn domain.Connection) ([]domain.Collection, error) {
	return m.listFn(ctx, conn)
}

func (m *mockCollectionUC) Get(ctx context.Context, conn domain.Connection, ident string) (domain.Collection, error) {
	return m.getFn(ctx, conn, ident)
}

func (m *mockCollectionUC) Delete(ctx context.Context, conn domain.Connection, id string) error {
	return m.deleteFn(ctx, conn, id)
}

type mockDocumentUC struct {
	listFn       func(ctx context.Context, conn domain.Connection, collectionID string) ([]domain.Document, error)
	updateFn     func(ctx context.Context, conn domain.Connection, collectionID, docID, content string, metadata map[string]any) error
	updateJSONFn func(ctx context.Context, conn domain.Connection, collectionID, docID, content, metadataJSON string) error
	deleteFn     func(ctx context.Context, conn domain.Connection, collectionID, docID string) error
	deleteManyFn func(ctx context.Context, conn domain.Connection, collectionID string, ids []string) error
}

func (m *mockDocumentUC) List(ctx context.Context, conn domain.Connection, collectionID string) ([]domain.Document, error) {
	return m.listFn(ctx, conn, collectionID)
}

func (m *mockDocumentUC) Update(
	ctx context.Context, conn domain.Connection, collectionID, docID, content string, metadata map[string]any,
) error {
	return m.updateFn(ctx, conn, collectionID, docID, content, metadata)
}

func (m *mockDocumentUC) UpdateJSON(
	ctx context.Context, conn domain.Connection, collectionID, docID, content, metadataJSON string,
) error {
	return m.updateJSONFn(ctx, conn, collectionID, docID, content, metadataJSON)
}

func (m *mockDocumentUC) Delete(ctx context.Context, conn domain.Connection, collectionID, docID string) error {
	return m.deleteFn(ctx, conn, collectionID, docID)
}

func (m *mockDocumentUC) DeleteMany(ctx context.Context, conn domain.Connection, collectionID string, ids []string) error {
	return m.deleteManyFn(ctx, conn, collectionID, ids)
}

type mockSearchUC struct {
	searchFn func(ctx context.Context, conn domain.Connection, collectionID, query string, limit int) ([]domain.Document, error)
}

func (m *mockSearchUC) Search(
	ctx context.Context, conn domain.Connection, collectionID, query string, limit int,
) ([]domain.Document, error) {
	return m.searchFn(ctx, conn, collectionID, query, limit)
}

type mockHealthUC struct {
	probeFn func(ctx context.Context, conn domain.Connection) healthuc.Probe
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealthUC) Probe(ctx context.Context, conn domain.Connection) healthuc.Probe {
	return m.probeFn(ctx, conn)
}

func (m *mockHealthUC) Check(ctx context.Context) healthuc.Report {
	return m.checkFn(ctx)
}

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

func testDefaults() domain.Connection {
	return domain.Connection{}.WithDefaults(defaultHost, defaultPort)
}
