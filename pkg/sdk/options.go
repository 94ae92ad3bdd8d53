package chromex

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	relayURL    string
	apiKey      string
	httpClient  *http.Client
	defaultHost string
	defaultPort string
	tenant      string
	database    string

	embedder Embedder

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRelay sends every call through a chroma-explorer relay at url
// instead of talking to the server directly.
func WithRelay(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.relayURL = url
	})
}

// WithAPIKey sets the bearer key sent to an auth-enabled relay.
// It has no effect without WithRelay: direct calls to the server never carry it.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithHTTPClient sets the HTTP client used for outbound calls.
// Defaults to http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithDefaultTarget sets the host and port used when a Connection leaves them empty.
// Defaults: localhost, 8000.
func WithDefaultTarget(host, port string) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultHost = host
		c.defaultPort = port
	})
}

// WithTenant sets the tenant and database used when a Connection leaves them empty.
func WithTenant(tenant, database string) Option {
	return optionFunc(func(c *clientConfig) {
		c.tenant = tenant
		c.database = database
	})
}

// WithEmbedder enables client-side query embedding as an extra search strategy.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
