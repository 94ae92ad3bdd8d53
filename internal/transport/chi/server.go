package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	"github.com/kailas-cloud/chroma-explorer/internal/logger"
	collectionuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/document"
	healthuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/health"
	relayuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/relay"
	searchuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the relay, the console API, health and metrics.
type Server struct {
	relay         *relayuc.Service
	collections   *collectionuc.Service
	documents     *documentuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	defaults      domain.Connection
	searchLimit   int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// Options configures a Server.
type Options struct {
	// Defaults fills in the host, port, tenant and database a request leaves out.
	Defaults domain.Connection
	// SearchLimit applies when a search request carries no positive limit.
	SearchLimit int
}

// NewServer creates the HTTP server.
func NewServer(
	relay *relayuc.Service,
	collections *collectionuc.Service,
	documents *documentuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	opts Options,
	logger *zap.Logger,
) *Server {
	s := &Server{
		relay:       relay,
		collections: collections,
		documents:   documents,
		search:      search,
		health:      health,
		defaults:    opts.Defaults,
		searchLimit: opts.SearchLimit,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeCollectionNotFound),
		operationHandler,
	}
	return s
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/chroma", func(r chi.Router) {
		r.Get("/*", s.Relay)
		r.Post("/*", s.Relay)
		r.Put("/*", s.Relay)
		r.Delete("/*", s.Relay)
	})

	r.Route("/api/console", func(r chi.Router) {
		r.Get("/heartbeat", s.Heartbeat)
		r.Get("/collections", s.ListCollections)
		r.Route("/collections/{collection}", func(r chi.Router) {
			r.Get("/", s.GetCollection)
			r.Delete("/", s.DeleteCollection)
			r.Get("/documents", s.ListDocuments)
			r.Post("/documents/delete", s.DeleteDocuments)
			r.Put("/documents/{document}", s.UpdateDocument)
			r.Delete("/documents/{document}", s.DeleteDocument)
			r.Post("/search", s.SearchDocuments)
		})
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// connection reads the host, port, tenant and database query parameters.
func (s *Server) connection(r *http.Request) (domain.Connection, error) {
	var conn domain.Connection
	q := firstValues(r.URL.Query(), "host", "port", "tenant", "database")
	params := []struct {
		name string
		dest *string
	}{
		{"host", &conn.Host},
		{"port", &conn.Port},
		{"tenant", &conn.Tenant},
		{"database", &conn.Database},
	}
	for _, p := range params {
		if err := runtime.BindQueryParameter("form", true, false, p.name, q, p.dest); err != nil {
			return domain.Connection{}, domain.NewValidationError(p.name, err.Error())
		}
	}
	return conn.WithDefaults(s.defaults.Host, s.defaults.Port), nil
}

// requestContext tags the request logger with the target upstream.
func requestContext(r *http.Request, conn domain.Connection) context.Context {
	return logger.With(r.Context(),
		zap.String("upstream_host", conn.Host),
		zap.String("upstream_port", conn.Port),
	)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("body", "invalid JSON")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// validationHandler reports local input errors with their field and reason.
func validationHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, ve.Field+": "+ve.Reason)
		return true
	}
	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, domain.ErrValidation.Error())
	return true
}

// operationHandler reports upstream failures with the coarse operation message only.
func operationHandler(w http.ResponseWriter, err error) bool {
	var oe *domain.OperationError
	if !errors.As(err, &oe) {
		return false
	}
	writeError(w, http.StatusBadGateway, ErrorCodeUpstreamError, oe.Message)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	var oe *domain.OperationError
	if errors.As(err, &oe) {
		log.Warn("operation failed", zap.String("operation", oe.Op), zap.String("detail", oe.Detail()))
	} else {
		log.Warn("domain error", zap.Error(err))
	}
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
