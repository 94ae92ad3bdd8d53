package search

import (
	"context"
	"strings"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	"github.com/kailas-cloud/chroma-explorer/internal/repository/records"
	"github.com/kailas-cloud/chroma-explorer/internal/usecase/fallback"
)

// Op is the operation name used in errors, logs and metrics.
const Op = "search_documents"

// DefaultLimit applies when the requested limit is not positive.
const DefaultLimit = 5

// FilterIDPrefix prefixes ids synthesized for locally filtered records.
const FilterIDPrefix = "filtered_"

// Strategy names, in the order they are tried.
const (
	StrategyQueryTexts      = "query_texts"
	StrategyQueryEmbeddings = "query_embeddings"
	StrategyWhereDocument   = "where_document"
	StrategyLocalFilter     = "local_filter"
)

// Service searches documents, degrading from semantic queries to substring matching.
type Service struct {
	repo    Repository
	records RecordReader
	embed   Embedder
}

// New creates a search service. embed can be nil, which disables the query_embeddings strategy.
func New(repo Repository, recs RecordReader, embed Embedder) *Service {
	return &Service{repo: repo, records: recs, embed: embed}
}

// Order returns the strategy names tried by Search.
func (s *Service) Order() []string {
	names := []string{StrategyQueryTexts}
	if s.embed != nil {
		names = append(names, StrategyQueryEmbeddings)
	}
	return append(names, StrategyWhereDocument, StrategyLocalFilter)
}

// Search returns up to limit documents matching query.
func (s *Service) Search(
	ctx context.Context, conn domain.Connection, collectionID, query string, limit int,
) ([]domain.Document, error) {
	if collectionID == "" {
		return nil, domain.NewValidationError("collection_id", "must not be empty")
	}
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewValidationError("query", "must not be empty")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	type strategy = fallback.Strategy[[]domain.Document]
	run := map[string]strategy{
		StrategyQueryTexts: {Name: StrategyQueryTexts, Run: func(ctx context.Context) ([]domain.Document, error) {
			return s.repo.QueryTexts(ctx, conn, collectionID, query, limit)
		}},
		StrategyQueryEmbeddings: {Name: StrategyQueryEmbeddings, Run: func(ctx context.Context) ([]domain.Document, error) {
			vec, err := s.embed.Embed(ctx, query)
			if err != nil {
				return nil, err
			}
			return s.repo.QueryEmbedding(ctx, conn, collectionID, vec, limit)
		}},
		StrategyWhereDocument: {Name: StrategyWhereDocument, Run: func(ctx context.Context) ([]domain.Document, error) {
			return s.repo.QueryContains(ctx, conn, collectionID, query, limit)
		}},
		StrategyLocalFilter: {Name: StrategyLocalFilter, Run: func(ctx context.Context) ([]domain.Document, error) {
			cols, err := s.records.Get(ctx, conn, collectionID)
			if err != nil {
				return nil, err
			}
			return Filter(cols, query, limit), nil
		}},
	}

	order := s.Order()
	strategies := make([]strategy, len(order))
	for i, name := range order {
		strategies[i] = run[name]
	}
	return fallback.Run(ctx, Op, "search failed", strategies)
}

// Filter keeps, in original order, at most limit records whose string text contains
// query case-insensitively. Non-string texts never match.
func Filter(cols records.Columns, query string, limit int) []domain.Document {
	needle := strings.ToLower(query)
	out := make([]domain.Document, 0, min(limit, len(cols.IDs)))
	for i := 0; i < len(cols.IDs) && len(out) < limit; i++ {
		text, ok := records.At(cols.Documents, i).(string)
		if !ok || text == "" || !strings.Contains(strings.ToLower(text), needle) {
			continue
		}
		out = append(out, records.Record(cols, i, FilterIDPrefix))
	}
	return out
}
