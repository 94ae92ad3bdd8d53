// Package relay forwards console calls to an upstream database chosen per request.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chroma-explorer/internal/logger"
	"github.com/kailas-cloud/chroma-explorer/internal/metrics"
	"github.com/kailas-cloud/chroma-explorer/internal/tracing"
	"github.com/kailas-cloud/chroma-explorer/internal/upstream"
)

// Relay errors. ErrTargetNotAllowed is the only one reported with its own status;
// every other failure surfaces as the generic proxy failure.
var (
	ErrTargetNotAllowed  = errors.New("target not allowed")
	ErrMethodNotAllowed  = errors.New("method not allowed")
	ErrInvalidBody       = errors.New("invalid request body")
	ErrUpstreamTransport = errors.New("upstream unreachable")
	ErrUpstreamResponse  = errors.New("upstream response is not JSON")
)

// deleteFallbackBody replaces an undecodable DELETE response.
var deleteFallbackBody = []byte(`{"success":true}`)

// Request is one inbound relay call.
type Request struct {
	Method string
	Path   string // trailing path, segments separated by '/'
	Host   string // empty means the configured default
	Port   string // empty means the configured default
	Body   []byte
}

// Response is the upstream answer re-encoded as JSON.
type Response struct {
	Status int
	Body   []byte
}

// Config configures a Service.
type Config struct {
	DefaultHost    string
	DefaultPort    string
	AllowedTargets []string // "host" or "host:port"; empty allows every target
	Timeout        time.Duration
}

// Service forwards requests. It keeps no state between calls.
type Service struct {
	http        HTTPDoer
	defaultHost string
	defaultPort string
	allowed     []target
	timeout     time.Duration
}

type target struct {
	host string
	port string // empty matches any port
}

// New creates a relay service. A nil client uses http.DefaultClient.
func New(client HTTPDoer, cfg Config) *Service {
	if client == nil {
		client = http.DefaultClient
	}
	allowed := make([]target, 0, len(cfg.AllowedTargets))
	for _, entry := range cfg.AllowedTargets {
		allowed = append(allowed, parseTarget(entry))
	}
	return &Service{
		http:        client,
		defaultHost: cfg.DefaultHost,
		defaultPort: cfg.DefaultPort,
		allowed:     allowed,
		timeout:     cfg.Timeout,
	}
}

func parseTarget(entry string) target {
	entry = strings.ToLower(strings.TrimSpace(entry))
	if i := strings.LastIndexByte(entry, ':'); i > 0 && !strings.Contains(entry[i+1:], "]") {
		return target{host: strings.Trim(entry[:i], "[]"), port: entry[i+1:]}
	}
	return target{host: strings.Trim(entry, "[]")}
}

// Open reports whether every target is allowed.
func (s *Service) Open() bool { return len(s.allowed) == 0 }

// Allowed reports whether host:port may be forwarded to.
func (s *Service) Allowed(host, port string) bool {
	if len(s.allowed) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, t := range s.allowed {
		if t.host == host && (t.port == "" || t.port == port) {
			return true
		}
	}
	return false
}

// URL returns the upstream URL for a decoded trailing path, http://{host}:{port}/{path}.
// Segments are escaped again, so a decoded '#' or '?' stays inside its segment.
func (s *Service) URL(host, port, path string) string {
	host, port = s.resolve(host, port)
	return fmt.Sprintf("http://%s:%s/%s", host, port, upstream.EscapePath(path))
}

func (s *Service) resolve(host, port string) (string, string) {
	if host == "" {
		host = s.defaultHost
	}
	if port == "" {
		port = s.defaultPort
	}
	return host, port
}

// Forward sends req upstream once and returns the re-encoded response with the upstream status.
func (s *Service) Forward(ctx context.Context, req Request) (_ Response, err error) {
	host, port := s.resolve(req.Host, req.Port)
	u := s.URL(host, port, req.Path)
	log := logger.FromContext(ctx).With(zap.String("method", req.Method), zap.String("upstream_url", u))

	if !s.Allowed(host, port) {
		metrics.RelayRejectedTotal.WithLabelValues("target_not_allowed").Inc()
		log.Warn("relay target rejected")
		return Response{}, fmt.Errorf("%s:%s: %w", host, port, ErrTargetNotAllowed)
	}

	var body io.Reader = http.NoBody
	switch req.Method {
	case http.MethodGet, http.MethodDelete:
	case http.MethodPost, http.MethodPut:
		var buf bytes.Buffer
		if err := json.Compact(&buf, req.Body); err != nil {
			metrics.RelayRejectedTotal.WithLabelValues("bad_body").Inc()
			log.Warn("relay body rejected", zap.Error(err))
			return Response{}, fmt.Errorf("%w: %w", ErrInvalidBody, err)
		}
		body = &buf
	default:
		return Response{}, fmt.Errorf("%s: %w", req.Method, ErrMethodNotAllowed)
	}

	ctx, span := tracing.StartUpstreamSpan(ctx, "relay", req.Method, u)
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		metrics.RelayRejectedTotal.WithLabelValues("transport").Inc()
		log.Error("relay request build failed", zap.Error(err))
		return Response{}, fmt.Errorf("%w: %w", ErrUpstreamTransport, err)
	}
	out.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.http.Do(out)
	duration := time.Since(start)
	metrics.UpstreamRequestDuration.WithLabelValues("relay", req.Method).Observe(duration.Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("relay", req.Method, "transport_error").Inc()
		metrics.RelayRejectedTotal.WithLabelValues("transport").Inc()
		log.Error("relay forward failed", zap.Duration("duration", duration), zap.Error(err))
		return Response{}, fmt.Errorf("%w: %w", ErrUpstreamTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.UpstreamRequestsTotal.WithLabelValues("relay", req.Method, strconv.Itoa(resp.StatusCode)).Inc()
	tracing.SetStatus(span, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RelayRejectedTotal.WithLabelValues("transport").Inc()
		log.Error("relay read failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return Response{}, fmt.Errorf("%w: %w", ErrUpstreamTransport, err)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		if req.Method != http.MethodDelete {
			metrics.RelayRejectedTotal.WithLabelValues("bad_response").Inc()
			log.Error("relay response not JSON", zap.Int("status", resp.StatusCode), zap.Error(err))
			return Response{}, fmt.Errorf("%w: %w", ErrUpstreamResponse, err)
		}
		buf.Reset()
		buf.Write(deleteFallbackBody)
	}

	log.Info("relay forward",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
		zap.Int("response_bytes", buf.Len()),
	)
	return Response{Status: resp.StatusCode, Body: buf.Bytes()}, nil
}
