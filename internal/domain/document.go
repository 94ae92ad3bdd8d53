package domain

// Document is the normalized projection of one upstream record.
// Distance is set only for documents returned by a similarity query.
type Document struct {
	ID       string
	Document string
	Metadata map[string]any
	// Embedding is never requested by the console and stays empty.
	Embedding []float32
	Distance  *float64
}

// HasDistance reports whether d came from a similarity query.
func (d *Document) HasDistance() bool { return d.Distance != nil }
