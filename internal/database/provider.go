package database

import (
	"context"
	"log/slog"
	"sync"
)

// Connector opens a live client for the given configuration
type Connector func(ctx context.Context, cfg Config) (Database, error)

// ConnectSurreal is the default Connector
func ConnectSurreal(ctx context.Context, cfg Config) (Database, error) {
	db := NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// Provider owns the single live database client of the process.
//
// The client is opened on first use. Concurrent first callers block on the
// same mutex, so at most one connection is ever opened. Every access checks
// the configuration again and fails with ErrNotConfigured before dialing.
type Provider struct {
	mu      sync.Mutex
	cfg     Config
	connect Connector
	client  Database
	logger  *slog.Logger
}

// ProviderOption configures a Provider
type ProviderOption func(*Provider)

// WithConnector replaces the function used to open the client
func WithConnector(c Connector) ProviderOption {
	return func(p *Provider) {
		p.connect = c
	}
}

// WithLogger sets the logger used for connection lifecycle events
func WithLogger(l *slog.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = l
	}
}

// NewProvider creates a provider. No connection is opened here.
func NewProvider(cfg Config, opts ...ProviderOption) *Provider {
	p := &Provider{
		cfg:     cfg,
		connect: ConnectSurreal,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Client returns the live client, opening it if needed
func (p *Provider) Client(ctx context.Context) (Database, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	if p.client != nil {
		return p.client, nil
	}

	client, err := p.connect(ctx, p.cfg)
	if err != nil {
		return nil, err
	}
	p.client = client
	p.logger.Info("database connected",
		slog.String("namespace", p.cfg.Namespace),
		slog.String("database", p.cfg.Database),
	)
	return client, nil
}

// Connected reports whether a live client is currently held
func (p *Provider) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.client != nil
}

// Ping opens the client if needed and checks it
func (p *Provider) Ping(ctx context.Context) error {
	client, err := p.Client(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx)
}

// Query implements Database
func (p *Provider) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	client, err := p.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Query(ctx, query, vars)
}

// QueryOne implements Database
func (p *Provider) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	client, err := p.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.QueryOne(ctx, query, vars)
}

// Execute implements Database
func (p *Provider) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	client, err := p.Client(ctx)
	if err != nil {
		return err
	}
	return client.Execute(ctx, query, vars)
}

// Close releases the client. The next access reconnects.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	p.logger.Info("database connection closed")
	return err
}
