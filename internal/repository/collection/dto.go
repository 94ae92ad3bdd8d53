package collection

import "github.com/kailas-cloud/chroma-explorer/internal/domain"

// collectionRecord is one element of an upstream collection listing.
type collectionRecord struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Count             *int                 `json:"count"`
	Metadata          map[string]any       `json:"metadata"`
	Dimension         *int                 `json:"dimension"`
	Tenant            string               `json:"tenant"`
	Database          string               `json:"database"`
	ConfigurationJSON *configurationRecord `json:"configuration_json"`
}

type configurationRecord struct {
	HNSW *struct {
		Space          string   `json:"space"`
		EFConstruction *int     `json:"ef_construction"`
		EFSearch       *int     `json:"ef_search"`
		MaxNeighbors   *int     `json:"max_neighbors"`
		ResizeFactor   *float64 `json:"resize_factor"`
		SyncThreshold  *int     `json:"sync_threshold"`
	} `json:"hnsw"`
	SPANN *struct {
		Space string `json:"space"`
	} `json:"spann"`
	EmbeddingFunction *struct {
		Type   string         `json:"type"`
		Name   string         `json:"name"`
		Config map[string]any `json:"config"`
	} `json:"embedding_function"`
}

// toDomain maps the record field by field; count defaults to 0 and metadata to {}.
func (r *collectionRecord) toDomain() domain.Collection {
	col := domain.Collection{
		ID:        r.ID,
		Name:      r.Name,
		Metadata:  r.Metadata,
		Dimension: r.Dimension,
		Tenant:    r.Tenant,
		Database:  r.Database,
	}
	if r.Count != nil {
		col.Count = *r.Count
	}
	if col.Metadata == nil {
		col.Metadata = map[string]any{}
	}
	if r.ConfigurationJSON != nil {
		col.Configuration = r.ConfigurationJSON.toDomain()
	}
	return col
}

func (c *configurationRecord) toDomain() *domain.Configuration {
	cfg := &domain.Configuration{}
	if h := c.HNSW; h != nil {
		cfg.HNSW = &domain.HNSW{
			Space:          domain.VectorSpace(h.Space),
			EFConstruction: h.EFConstruction,
			EFSearch:       h.EFSearch,
			MaxNeighbors:   h.MaxNeighbors,
			ResizeFactor:   h.ResizeFactor,
			SyncThreshold:  h.SyncThreshold,
		}
	}
	if s := c.SPANN; s != nil {
		cfg.SPANN = &domain.SPANN{Space: domain.VectorSpace(s.Space)}
	}
	if ef := c.EmbeddingFunction; ef != nil {
		cfg.EmbeddingFunction = &domain.EmbeddingFunction{
			Type:   ef.Type,
			Name:   ef.Name,
			Config: ef.Config,
		}
	}
	return cfg
}
