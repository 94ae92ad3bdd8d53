// Package records converts Chroma's parallel-array payloads into domain documents.
package records

import (
	"encoding/json"
	"strconv"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
)

// Include values accepted by the get and query endpoints.
const (
	IncludeMetadatas = "metadatas"
	IncludeDocuments = "documents"
	IncludeDistances = "distances"
)

// Columns holds one group of parallel arrays. Distances is nil when not requested.
type Columns struct {
	IDs       []any
	Metadatas []any
	Documents []any
	Distances []any
}

// GetResponse is the body of the collection "get" action.
type GetResponse struct {
	IDs       []any `json:"ids"`
	Metadatas []any `json:"metadatas"`
	Documents []any `json:"documents"`
}

// Columns returns the flat arrays of r.
func (r *GetResponse) Columns() Columns {
	return Columns{IDs: r.IDs, Metadatas: r.Metadatas, Documents: r.Documents}
}

// QueryResponse is the body of the collection "query" action: one group per query.
type QueryResponse struct {
	IDs       []any `json:"ids"`
	Metadatas []any `json:"metadatas"`
	Documents []any `json:"documents"`
	Distances []any `json:"distances"`
}

// FirstGroup returns group [0] of every array. Missing or non-array groups are nil.
func (r *QueryResponse) FirstGroup() Columns {
	return Columns{
		IDs:       first(r.IDs),
		Metadatas: first(r.Metadatas),
		Documents: first(r.Documents),
		Distances: first(r.Distances),
	}
}

func first(groups []any) []any {
	if len(groups) == 0 {
		return nil
	}
	g, _ := groups[0].([]any)
	return g
}

// Zip joins the columns by index into documents. Missing ids become prefix+index;
// distances are attached only when withDistance is set and the value is numeric.
// No ids yields an empty, non-nil result.
func Zip(c Columns, idPrefix string, withDistance bool) []domain.Document {
	docs := make([]domain.Document, 0, len(c.IDs))
	for i := range c.IDs {
		d := Record(c, i, idPrefix)
		if withDistance {
			d.Distance = Distance(at(c.Distances, i))
		}
		docs = append(docs, d)
	}
	return docs
}

// Record builds the document at index i without a distance.
func Record(c Columns, i int, idPrefix string) domain.Document {
	return domain.Document{
		ID:        ID(at(c.IDs, i), idPrefix, i),
		Document:  Text(at(c.Documents, i)),
		Metadata:  Metadata(at(c.Metadatas, i)),
		Embedding: []float32{},
	}
}

// At returns the value at index i of a column, nil when out of range.
func At(col []any, i int) any { return at(col, i) }

func at(col []any, i int) any {
	if i < 0 || i >= len(col) {
		return nil
	}
	return col[i]
}

// ID returns v as an identifier, or prefix+i when v is falsy.
func ID(v any, prefix string, i int) string {
	if Falsy(v) {
		return prefix + strconv.Itoa(i)
	}
	return Stringify(v)
}

// Text returns v as document text: strings unchanged, falsy values empty,
// anything else in its string form.
func Text(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if Falsy(v) {
		return ""
	}
	return Stringify(v)
}

// Metadata returns v when it is a JSON object, an empty map otherwise.
func Metadata(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// Distance returns a pointer to v when it is numeric.
func Distance(v any) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

// Falsy reports whether v is null, false, zero or the empty string.
func Falsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		return x == ""
	}
	return false
}

// Stringify renders a decoded JSON value as text.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
