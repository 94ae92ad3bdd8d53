package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/chroma-explorer/internal/logger"
)

// Heartbeat handles GET /api/console/heartbeat.
func (s *Server) Heartbeat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.connection(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	p := s.health.Probe(requestContext(r, conn), conn)
	writeJSON(w, http.StatusOK, HeartbeatResponse{Connected: p.Connected, APIVersion: string(p.APIVersion)})
}

// ListCollections handles GET /api/console/collections.
func (s *Server) ListCollections(w http.ResponseWriter, r *http.Request) {
	conn, err := s.connection(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	cols, err := s.collections.List(requestContext(r, conn), conn)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]CollectionResponse, len(cols))
	for i := range cols {
		items[i] = collectionToResponse(&cols[i])
	}
	writeJSON(w, http.StatusOK, items)
}

// GetCollection handles GET /api/console/collections/{collection}.
func (s *Server) GetCollection(w http.ResponseWriter, r *http.Request) {
	conn, err := s.connection(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	col, err := s.collections.Get(requestContext(r, conn), conn, chi.URLParam(r, "collection"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, collectionToResponse(&col))
}

// DeleteCollection handles DELETE /api/console/collections/{collection}.
func (s *Server) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	conn, err := s.connection(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	id := chi.URLParam(r, "collection")
	ctx := logger.With(requestContext(r, conn), zap.String("collection_id", id))
	if err := s.collections.Delete(ctx, conn, id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeletedResponse{Deleted: true})
}

// ListDocuments handles GET /api/console/collections/{collection}/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	conn, err := s.connection(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	docs, err := s.documents.List(requestContext(r, conn), conn, chi.URLParam(r, "collection"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentsToResponse(docs))
}

// SearchDocuments handles POST /api/console/collections/{collection}/search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	conn, err := s.connection(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var req SearchRequest
	if err := decodeBody(r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if req.Limit <= 0 {
		req.Limit = s.searchLimit
	}

	docs, err := s.search.Search(requestContext(r, conn), conn, chi.URLParam(r, "collection"), req.Query, req.Limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentsToResponse(docs))
}

// UpdateDocument handles PUT /api/console/collections/{collection}/documents/{document}.
func (s *Server) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	conn, err := s.connection(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var req UpdateDocumentRequest
	if err := decodeBody(r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	err = s.documents.UpdateJSON(requestContext(r, conn), conn,
		chi.URLParam(r, "collection"), chi.URLParam(r, "document"), req.Document, req.Metadata)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UpdatedResponse{Updated: true})
}

// DeleteDocument handles DELETE /api/console/collections/{collection}/documents/{document}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	conn, err := s.connection(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	err = s.documents.Delete(requestContext(r, conn), conn, chi.URLParam(r, "collection"), chi.URLParam(r, "document"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeletedResponse{Deleted: true, Count: 1})
}

// DeleteDocuments handles POST /api/console/collections/{collection}/documents/delete.
func (s *Server) DeleteDocuments(w http.ResponseWriter, r *http.Request) {
	conn, err := s.connection(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var req DeleteDocumentsRequest
	if err := decodeBody(r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if err := s.documents.DeleteMany(requestContext(r, conn), conn, chi.URLParam(r, "collection"), req.IDs); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeletedResponse{Deleted: true, Count: len(req.IDs)})
}
