package chromex

import "github.com/kailas-cloud/chroma-explorer/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrTransport         = domain.ErrTransport
	ErrIncompatible      = domain.ErrIncompatible
	ErrValidation        = domain.ErrValidation
	ErrMalformedResponse = domain.ErrMalformedResponse
	ErrNotFound          = domain.ErrNotFound
	ErrEmbeddingProvider = domain.ErrEmbeddingProvider
)

// OperationError is returned when every strategy of an operation failed.
// Error() is the short message; Attempts holds each strategy's cause.
type OperationError = domain.OperationError

// Attempt is one failed strategy of an OperationError.
type Attempt = domain.Attempt
