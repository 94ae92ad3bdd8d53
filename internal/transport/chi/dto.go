package chi

import "github.com/kailas-cloud/chroma-explorer/internal/domain"

// ErrorCode is the machine-readable code of an ErrorResponse.
type ErrorCode string

// Error codes returned by the console API.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeCollectionNotFound ErrorCode = "collection_not_found"
	ErrorCodeUpstreamError      ErrorCode = "upstream_error"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the error body of the console API.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// relayError is the error body of the relay, kept in its historical shape.
type relayError struct {
	Error string `json:"error"`
}

// HeartbeatResponse reports connectivity to the selected upstream.
type HeartbeatResponse struct {
	Connected  bool   `json:"connected"`
	APIVersion string `json:"api_version,omitempty"`
}

// CollectionResponse is one collection as shown in the console.
type CollectionResponse struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	Count            int                    `json:"count"`
	Metadata         map[string]any         `json:"metadata"`
	Dimension        *int                   `json:"dimension,omitempty"`
	Tenant           string                 `json:"tenant,omitempty"`
	Database         string                 `json:"database,omitempty"`
	Configuration    *ConfigurationResponse `json:"configuration,omitempty"`
	VectorSpace      string                 `json:"vector_space,omitempty"`
	VectorSpaceColor string                 `json:"vector_space_color"`
}

// ConfigurationResponse is the index and embedding configuration of a collection.
type ConfigurationResponse struct {
	HNSW              *HNSWResponse              `json:"hnsw,omitempty"`
	SPANN             *SPANNResponse             `json:"spann,omitempty"`
	EmbeddingFunction *EmbeddingFunctionResponse `json:"embedding_function,omitempty"`
}

// HNSWResponse mirrors the upstream HNSW parameters.
type HNSWResponse struct {
	Space          string   `json:"space,omitempty"`
	EFConstruction *int     `json:"ef_construction,omitempty"`
	EFSearch       *int     `json:"ef_search,omitempty"`
	MaxNeighbors   *int     `json:"max_neighbors,omitempty"`
	ResizeFactor   *float64 `json:"resize_factor,omitempty"`
	SyncThreshold  *int     `json:"sync_threshold,omitempty"`
}

// SPANNResponse mirrors the upstream SPANN parameters.
type SPANNResponse struct {
	Space string `json:"space,omitempty"`
}

// EmbeddingFunctionResponse describes the server-side embedding function.
type EmbeddingFunctionResponse struct {
	Type   string         `json:"type,omitempty"`
	Name   string         `json:"name,omitempty"`
	Config map[string]any `json:"config,omitempty"`
}

// DocumentResponse is one record as shown in the console.
type DocumentResponse struct {
	ID        string         `json:"id"`
	Document  string         `json:"document"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float32      `json:"embedding"`
	Distance  *float64       `json:"distance,omitempty"`
}

// SearchRequest is the body of a document search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// UpdateDocumentRequest replaces a document. Metadata is JSON text as typed into the editor.
type UpdateDocumentRequest struct {
	Document string `json:"document"`
	Metadata string `json:"metadata"`
}

// DeleteDocumentsRequest removes several documents at once.
type DeleteDocumentsRequest struct {
	IDs []string `json:"ids"`
}

// DeletedResponse acknowledges a delete.
type DeletedResponse struct {
	Deleted bool `json:"deleted"`
	Count   int  `json:"count,omitempty"`
}

// UpdatedResponse acknowledges an update.
type UpdatedResponse struct {
	Updated bool `json:"updated"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func collectionToResponse(c *domain.Collection) CollectionResponse {
	space := c.Space()
	resp := CollectionResponse{
		ID:               c.ID,
		Name:             c.Name,
		Count:            c.Count,
		Metadata:         c.Metadata,
		Dimension:        c.Dimension,
		Tenant:           c.Tenant,
		Database:         c.Database,
		VectorSpace:      string(space),
		VectorSpaceColor: space.Color(),
	}
	if resp.Metadata == nil {
		resp.Metadata = map[string]any{}
	}
	if cfg := c.Configuration; cfg != nil {
		out := &ConfigurationResponse{}
		if h := cfg.HNSW; h != nil {
			out.HNSW = &HNSWResponse{
				Space:          string(h.Space),
				EFConstruction: h.EFConstruction,
				EFSearch:       h.EFSearch,
				MaxNeighbors:   h.MaxNeighbors,
				ResizeFactor:   h.ResizeFactor,
				SyncThreshold:  h.SyncThreshold,
			}
		}
		if sp := cfg.SPANN; sp != nil {
			out.SPANN = &SPANNResponse{Space: string(sp.Space)}
		}
		if ef := cfg.EmbeddingFunction; ef != nil {
			out.EmbeddingFunction = &EmbeddingFunctionResponse{Type: ef.Type, Name: ef.Name, Config: ef.Config}
		}
		resp.Configuration = out
	}
	return resp
}

func documentsToResponse(docs []domain.Document) []DocumentResponse {
	out := make([]DocumentResponse, len(docs))
	for i := range docs {
		d := &docs[i]
		out[i] = DocumentResponse{
			ID:        d.ID,
			Document:  d.Document,
			Metadata:  d.Metadata,
			Embedding: d.Embedding,
			Distance:  d.Distance,
		}
		if out[i].Metadata == nil {
			out[i].Metadata = map[string]any{}
		}
		if out[i].Embedding == nil {
			out[i].Embedding = []float32{}
		}
	}
	return out
}
