package domain

// VectorSpace is the distance metric of a collection's index.
type VectorSpace string

// Known vector spaces.
const (
	SpaceCosine VectorSpace = "cosine"
	SpaceL2     VectorSpace = "l2"
	SpaceIP     VectorSpace = "ip"
)

const unknownSpaceColor = "#6b7280"

var spaceColors = map[VectorSpace]string{
	SpaceCosine: "#10b981",
	SpaceL2:     "#3b82f6",
	SpaceIP:     "#f59e0b",
}

// Color returns the display color of the space; unknown spaces are grey.
func (s VectorSpace) Color() string {
	if c, ok := spaceColors[s]; ok {
		return c
	}
	return unknownSpaceColor
}

// Known reports whether s is one of cosine, l2 or ip.
func (s VectorSpace) Known() bool {
	_, ok := spaceColors[s]
	return ok
}

// Collection is the normalized projection of an upstream collection record.
type Collection struct {
	ID            string
	Name          string
	Count         int
	Metadata      map[string]any
	Dimension     *int
	Tenant        string
	Database      string
	Configuration *Configuration
}

// Space returns the configured vector space, empty when none is reported.
func (c *Collection) Space() VectorSpace {
	if c.Configuration == nil {
		return ""
	}
	return c.Configuration.Space()
}

// Configuration is the collection's index and embedding descriptor.
type Configuration struct {
	HNSW              *HNSW
	SPANN             *SPANN
	EmbeddingFunction *EmbeddingFunction
}

// Space prefers the HNSW space and falls back to SPANN.
func (c *Configuration) Space() VectorSpace {
	if c.HNSW != nil && c.HNSW.Space != "" {
		return c.HNSW.Space
	}
	if c.SPANN != nil {
		return c.SPANN.Space
	}
	return ""
}

// HNSW holds HNSW index parameters.
type HNSW struct {
	Space          VectorSpace
	EFConstruction *int
	EFSearch       *int
	MaxNeighbors   *int
	ResizeFactor   *float64
	SyncThreshold  *int
}

// SPANN holds the subset of SPANN parameters the console displays.
type SPANN struct {
	Space VectorSpace
}

// EmbeddingFunction describes the server-side embedding function.
type EmbeddingFunction struct {
	Type   string
	Name   string
	Config map[string]any
}
