package chromex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	collectionrepo "github.com/kailas-cloud/chroma-explorer/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/chroma-explorer/internal/repository/document"
	searchrepo "github.com/kailas-cloud/chroma-explorer/internal/repository/search"
	systemrepo "github.com/kailas-cloud/chroma-explorer/internal/repository/system"
	"github.com/kailas-cloud/chroma-explorer/internal/upstream"
	collectionuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/document"
	healthuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/health"
	searchuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/search"
)

const (
	defaultHost = "localhost"
	defaultPort = "8000"
)

// Internal interfaces for substitution in tests.
type collectionUseCase interface {
	List(ctx context.Context, conn domain.Connection) ([]domain.Collection, error)
	Get(ctx context.Context, conn domain.Connection, ident string) (domain.Collection, error)
	Delete(ctx context.Context, conn domain.Connection, id string) error
}

type documentUseCase interface {
	List(ctx context.Context, conn domain.Connection, collectionID string) ([]domain.Document, error)
	Update(
		ctx context.Context, conn domain.Connection, collectionID, docID, content string, metadata map[string]any,
	) error
	UpdateJSON(ctx context.Context, conn domain.Connection, collectionID, docID, content, metadataJSON string) error
	Delete(ctx context.Context, conn domain.Connection, collectionID, docID string) error
	DeleteMany(ctx context.Context, conn domain.Connection, collectionID string, ids []string) error
}

type searchUseCase interface {
	Search(ctx context.Context, conn domain.Connection, collectionID, query string, limit int) ([]domain.Document, error)
}

type healthUseCase interface {
	Probe(ctx context.Context, conn domain.Connection) healthuc.Probe
	Check(ctx context.Context) healthuc.Report
}

// Client is the chromex SDK entry point. It is safe for concurrent use.
type Client struct {
	defaults  domain.Connection
	collSvc   collectionUseCase
	docSvc    documentUseCase
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. No request is made until the first call.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		httpClient:  http.DefaultClient,
		defaultHost: defaultHost,
		defaultPort: defaultPort,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.relayURL != "" {
		if _, err := url.ParseRequestURI(cfg.relayURL); err != nil {
			return nil, fmt.Errorf("chromex: invalid relay url %q: %w", cfg.relayURL, err)
		}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return wireClient(cfg, obs), nil
}

func wireClient(cfg *clientConfig, obs *observer) *Client {
	target := upstream.DirectTarget(cfg.defaultHost, cfg.defaultPort)
	if cfg.relayURL != "" {
		target = upstream.RelayTarget(cfg.relayURL, cfg.defaultHost, cfg.defaultPort)
	}
	doer := upstream.NewClient(cfg.httpClient, target, upstream.WithRelayAPIKey(cfg.apiKey))

	collRepo := collectionrepo.New(doer)
	docRepo := documentrepo.New(doer)
	searchRepo := searchrepo.New(doer)
	sysRepo := systemrepo.New(doer)

	defaults := domain.Connection{Tenant: cfg.tenant, Database: cfg.database}.
		WithDefaults(cfg.defaultHost, cfg.defaultPort)

	// nil interfaces, not typed nil pointers: both services branch on them.
	var (
		embed   searchuc.Embedder
		checker healthuc.EmbeddingChecker
	)
	if cfg.embedder != nil {
		embed = &embedderAdapter{inner: cfg.embedder}
		if hc, ok := cfg.embedder.(healthuc.EmbeddingChecker); ok {
			checker = hc
		}
	}

	return &Client{
		defaults:  defaults,
		collSvc:   collectionuc.New(collRepo),
		docSvc:    documentuc.New(docRepo),
		searchSvc: searchuc.New(searchRepo, docRepo, embed),
		healthSvc: healthuc.New(sysRepo, checker, defaults),
		obs:       obs,
	}
}

func (c *Client) resolve(conn Connection) domain.Connection {
	d := conn.toDomain()
	if d.Tenant == "" {
		d.Tenant = c.defaults.Tenant
	}
	if d.Database == "" {
		d.Database = c.defaults.Database
	}
	return d.WithDefaults(c.defaults.Host, c.defaults.Port)
}

// Probe reports whether the server answers a heartbeat and on which API generation.
func (c *Client) Probe(ctx context.Context, conn Connection) ProbeResult {
	start := time.Now()
	p := c.healthSvc.Probe(ctx, c.resolve(conn))
	var err error
	if !p.Connected {
		err = domain.ErrTransport
	}
	c.obs.observe("probe", start, err)
	return ProbeResult{Connected: p.Connected, APIVersion: string(p.APIVersion)}
}

// Connected reports whether the server answers a heartbeat on any API generation.
func (c *Client) Connected(ctx context.Context, conn Connection) bool {
	return c.Probe(ctx, conn).Connected
}

// Collections returns the collection service bound to conn.
func (c *Client) Collections(conn Connection) *CollectionService {
	return &CollectionService{conn: c.resolve(conn), svc: c.collSvc, obs: c.obs}
}

// Documents returns the document service for one collection, addressed by id.
func (c *Client) Documents(conn Connection, collectionID string) *DocumentService {
	return &DocumentService{
		conn:         c.resolve(conn),
		collectionID: collectionID,
		docSvc:       c.docSvc,
		searchSvc:    c.searchSvc,
		obs:          c.obs,
	}
}
