package chi

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/chroma-explorer/internal/logger"
	relayuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/relay"
)

// maxRelayBody bounds inbound relay bodies.
const maxRelayBody = 32 << 20

const proxyFailedMessage = "Failed to proxy request"

// Relay handles GET, POST, PUT and DELETE /api/chroma/*.
func (s *Server) Relay(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var host, port string
	q := firstValues(r.URL.Query(), "host", "port")
	if err := runtime.BindQueryParameter("form", true, false, "host", q, &host); err != nil {
		writeRelayError(w, http.StatusInternalServerError, proxyFailedMessage)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "port", q, &port); err != nil {
		writeRelayError(w, http.StatusInternalServerError, proxyFailedMessage)
		return
	}

	req := relayuc.Request{
		Method: r.Method,
		Path:   relayPath(r),
		Host:   host,
		Port:   port,
	}
	if r.Method == http.MethodPost || r.Method == http.MethodPut {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRelayBody))
		if err != nil {
			log.Warn("relay body read failed", zap.Error(err))
			writeRelayError(w, http.StatusInternalServerError, proxyFailedMessage)
			return
		}
		req.Body = body
	}

	resp, err := s.relay.Forward(r.Context(), req)
	if err != nil {
		if errors.Is(err, relayuc.ErrTargetNotAllowed) {
			writeRelayError(w, http.StatusForbidden, relayuc.ErrTargetNotAllowed.Error())
			return
		}
		log.Error("proxy error", zap.Error(err))
		writeRelayError(w, http.StatusInternalServerError, proxyFailedMessage)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

// relayPath returns the decoded trailing path. chi matches on RawPath when the request
// carries one, and the wildcard is then still escaped.
func relayPath(r *http.Request) string {
	p := chi.URLParam(r, "*")
	if r.URL.RawPath == "" {
		return p
	}
	if decoded, err := url.PathUnescape(p); err == nil {
		return decoded
	}
	return p
}

// firstValues keeps only the first value of each named parameter, so a repeated
// host or port resolves like a single one.
func firstValues(q url.Values, names ...string) url.Values {
	out := make(url.Values, len(names))
	for _, n := range names {
		if v, ok := q[n]; ok && len(v) > 0 {
			out[n] = v[:1]
		}
	}
	return out
}

func writeRelayError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, relayError{Error: message})
}
