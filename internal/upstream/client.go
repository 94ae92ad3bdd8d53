package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	logpkg "github.com/kailas-cloud/chroma-explorer/internal/logger"
	"github.com/kailas-cloud/chroma-explorer/internal/metrics"
	"github.com/kailas-cloud/chroma-explorer/internal/tracing"
)

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 512

// Client is the HTTP implementation of Doer.
type Client struct {
	http   *http.Client
	target Target
	apiKey string
}

var _ Doer = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRelayAPIKey authenticates relayed calls with a bearer key. The key is only sent when
// the target is a relay; direct upstream calls never carry it.
func WithRelayAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// NewClient creates a Client. A nil httpClient uses http.DefaultClient.
func NewClient(httpClient *http.Client, target Target, opts ...ClientOption) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{http: httpClient, target: target}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Target returns the URL builder of the client.
func (c *Client) Target() Target { return c.target }

// Do implements Doer. Non-2xx statuses become ErrIncompatible, network failures ErrTransport
// and undecodable bodies ErrMalformedResponse, all wrapped in *domain.UpstreamError.
func (c *Client) Do(ctx context.Context, conn domain.Connection, method, path string, body, out any) (err error) {
	u := c.target.URL(conn.Host, conn.Port, path)
	log := logpkg.FromContext(ctx)

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &domain.UpstreamError{Kind: domain.ErrValidation, Method: method, URL: u, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	ctx, span := tracing.StartUpstreamSpan(ctx, "client", method, u)
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &domain.UpstreamError{Kind: domain.ErrTransport, Method: method, URL: u, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" && c.target.Relayed() {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues("client", method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("client", method, "transport_error").Inc()
		return &domain.UpstreamError{Kind: domain.ErrTransport, Method: method, URL: u, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.UpstreamRequestsTotal.WithLabelValues("client", method, strconv.Itoa(resp.StatusCode)).Inc()
	tracing.SetStatus(span, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.UpstreamError{
			Kind: domain.ErrTransport, Method: method, URL: u, Status: resp.StatusCode, Err: err,
		}
	}

	log.Debug("upstream call",
		zap.String("method", method),
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Int("response_bytes", len(data)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.UpstreamError{
			Kind:   domain.ErrIncompatible,
			Method: method,
			URL:    u,
			Status: resp.StatusCode,
			Err:    errors.New(truncate(data)),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.UpstreamError{
			Kind:   domain.ErrMalformedResponse,
			Method: method,
			URL:    u,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

func truncate(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	if len(b) == 0 {
		return "empty response body"
	}
	return string(b)
}
