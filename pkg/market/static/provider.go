// Package static serves market feeds from local JSON fixtures. It backs
// development setups and tests that must not reach the network.
package static

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nmai-api/pkg/market"
)

const (
	quotesFile     = "quotes.json"
	calendarFile   = "calendar.json"
	historicalFile = "historical.json"
	newsFile       = "news.json"
)

// Provider reads {quotes,calendar,historical,news}.json from a directory.
// A missing file yields an empty feed. Files are read on every call so
// fixtures can be edited while the server runs.
type Provider struct {
	dir string
}

// NewProvider constructs a fixture provider rooted at dir.
func NewProvider(dir string) *Provider {
	return &Provider{dir: dir}
}

func init() {
	market.RegisterProvider("static", func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		if strings.TrimSpace(cfg.FixtureDir) == "" {
			return nil, fmt.Errorf("static provider %s requires fixture_dir", name)
		}
		return NewProvider(cfg.FixtureDir), nil
	})
}

// Quotes implements market.Provider.
func (p *Provider) Quotes(ctx context.Context) (*market.QuoteBoard, error) {
	env, err := p.load(quotesFile)
	if err != nil {
		return nil, err
	}
	return market.NewQuoteBoard(env), nil
}

// Calendar implements market.Provider. Every fixture event is returned;
// date filtering happens downstream.
func (p *Provider) Calendar(ctx context.Context, date string) (*market.CalendarFeed, error) {
	env, err := p.load(calendarFile)
	if err != nil {
		return nil, err
	}
	return &market.CalendarFeed{Date: date, Rows: env.Data}, nil
}

// Historical implements market.Provider.
func (p *Provider) Historical(ctx context.Context) (*market.HistoryFeed, error) {
	env, err := p.load(historicalFile)
	if err != nil {
		return nil, err
	}
	return market.NewHistoryFeed(env, ""), nil
}

// News implements market.Provider.
func (p *Provider) News(ctx context.Context) (*market.NewsFeed, error) {
	env, err := p.load(newsFile)
	if err != nil {
		return nil, err
	}
	return &market.NewsFeed{Rows: env.Data}, nil
}

func (p *Provider) load(name string) (market.Envelope, error) {
	path := filepath.Join(p.dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return market.Envelope{}, nil
	}
	if err != nil {
		return market.Envelope{}, fmt.Errorf("static: read %s: %w", path, err)
	}
	env, err := market.DecodeEnvelope(data)
	if err != nil {
		return market.Envelope{}, fmt.Errorf("static: decode %s: %w", path, err)
	}
	return env, nil
}
