package chromex

import "github.com/kailas-cloud/chroma-explorer/internal/domain"

// Connection selects the server, tenant and database of a call.
// Empty fields fall back to the client defaults.
type Connection struct {
	Host     string
	Port     string
	Tenant   string
	Database string
}

func (c Connection) toDomain() domain.Connection {
	return domain.Connection{Host: c.Host, Port: c.Port, Tenant: c.Tenant, Database: c.Database}
}

// VectorSpace is the distance metric of a collection.
type VectorSpace string

// Vector space constants.
const (
	SpaceCosine VectorSpace = "cosine"
	SpaceL2     VectorSpace = "l2"
	SpaceIP     VectorSpace = "ip"
)

// Color returns the display color of the space; unknown spaces are grey.
func (s VectorSpace) Color() string { return domain.VectorSpace(s).Color() }

// ProbeResult is the outcome of a connectivity probe.
type ProbeResult struct {
	Connected  bool
	APIVersion string // "v2", "v1" or empty
}

// CollectionInfo represents collection metadata.
type CollectionInfo struct {
	ID                string
	Name              string
	Count             int
	Metadata          map[string]any
	Dimension         *int
	Tenant            string
	Database          string
	Space             VectorSpace
	HNSW              *HNSWInfo
	EmbeddingFunction *EmbeddingFunctionInfo
}

// HNSWInfo holds HNSW index parameters as reported by the server.
type HNSWInfo struct {
	Space          VectorSpace
	EFConstruction *int
	EFSearch       *int
	MaxNeighbors   *int
	ResizeFactor   *float64
	SyncThreshold  *int
}

// EmbeddingFunctionInfo describes the server-side embedding function.
type EmbeddingFunctionInfo struct {
	Type   string
	Name   string
	Config map[string]any
}

// Document is one record of a collection.
// Distance is set only on results of a similarity query.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]any
	Distance *float64
}

// HealthStatus represents the aggregated client health.
type HealthStatus struct {
	Status string            // "ok", "degraded"
	Checks map[string]string // component → "ok"/"error"
}

func collectionFromDomain(c *domain.Collection) CollectionInfo {
	info := CollectionInfo{
		ID:        c.ID,
		Name:      c.Name,
		Count:     c.Count,
		Metadata:  c.Metadata,
		Dimension: c.Dimension,
		Tenant:    c.Tenant,
		Database:  c.Database,
		Space:     VectorSpace(c.Space()),
	}
	if cfg := c.Configuration; cfg != nil {
		if h := cfg.HNSW; h != nil {
			info.HNSW = &HNSWInfo{
				Space:          VectorSpace(h.Space),
				EFConstruction: h.EFConstruction,
				EFSearch:       h.EFSearch,
				MaxNeighbors:   h.MaxNeighbors,
				ResizeFactor:   h.ResizeFactor,
				SyncThreshold:  h.SyncThreshold,
			}
		}
		if ef := cfg.EmbeddingFunction; ef != nil {
			info.EmbeddingFunction = &EmbeddingFunctionInfo{Type: ef.Type, Name: ef.Name, Config: ef.Config}
		}
	}
	return info
}

func documentsFromDomain(docs []domain.Document) []Document {
	out := make([]Document, len(docs))
	for i := range docs {
		out[i] = Document{
			ID:       docs[i].ID,
			Text:     docs[i].Document,
			Metadata: docs[i].Metadata,
			Distance: docs[i].Distance,
		}
	}
	return out
}
