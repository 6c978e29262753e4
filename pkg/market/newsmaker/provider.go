package newsmaker

import (
	"context"
	"net/http"
	"time"

	"nmai-api/pkg/market"
)

const defaultProviderTimeout = 8 * time.Second

// Provider wraps Client calls behind market.Provider with a per-call timeout.
type Provider struct {
	client  *Client
	timeout time.Duration
}

type providerConfig struct {
	timeout      time.Duration
	clientConfig []Option
}

// ProviderOption customises the provider.
type ProviderOption func(*providerConfig)

// WithTimeout overrides the default per-call timeout.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithClientOptions passes options to the underlying client.
func WithClientOptions(options ...Option) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.clientConfig = append(cfg.clientConfig, options...)
	}
}

// NewProvider constructs a Newsmaker market provider.
func NewProvider(opts ...ProviderOption) *Provider {
	cfg := &providerConfig{timeout: defaultProviderTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Provider{
		client:  NewClient(cfg.clientConfig...),
		timeout: cfg.timeout,
	}
}

func init() {
	market.RegisterProvider("newsmaker", func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		opts := []ProviderOption{}
		clientOptions := []Option{
			WithEndpoints(Endpoints{
				Quotes:     cfg.QuotesURL,
				Calendar:   cfg.CalendarURL,
				Historical: cfg.HistoricalURL,
				News:       cfg.NewsURL,
			}),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.HTTPTimeout > 0 {
			clientOptions = append(clientOptions, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		if cfg.MaxRetries > 0 {
			clientOptions = append(clientOptions, WithMaxRetries(cfg.MaxRetries))
		}
		opts = append(opts, WithClientOptions(clientOptions...))
		return NewProvider(opts...), nil
	})
}

// Quotes implements market.Provider.
func (p *Provider) Quotes(ctx context.Context) (*market.QuoteBoard, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.Quotes(ctx)
}

// Calendar implements market.Provider.
func (p *Provider) Calendar(ctx context.Context, date string) (*market.CalendarFeed, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.Calendar(ctx, date)
}

// Historical implements market.Provider.
func (p *Provider) Historical(ctx context.Context) (*market.HistoryFeed, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.Historical(ctx)
}

// News implements market.Provider.
func (p *Provider) News(ctx context.Context) (*market.NewsFeed, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.client.News(ctx)
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, p.timeout)
}
