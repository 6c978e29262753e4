package svc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"nmai-api/internal/cache"
	"nmai-api/internal/config"
	"nmai-api/pkg/briefing"
	"nmai-api/pkg/chatstore"
	"nmai-api/pkg/confkit"
	"nmai-api/pkg/dispatch"
	"nmai-api/pkg/instrument"
	llmpkg "nmai-api/pkg/llm"
	marketpkg "nmai-api/pkg/market"
	_ "nmai-api/pkg/market/newsmaker"
	"nmai-api/pkg/market/static"
	"nmai-api/pkg/prompt"
)

// testFixtureDir backs the market feeds in the test env when no Market
// section is configured.
const testFixtureDir = "etc/fixtures"

// ChatModel is the hosted model behind the chatgpt and stream routes.
type ChatModel interface {
	llmpkg.Chatter
	llmpkg.Streamer
}

type ServiceContext struct {
	Config config.Config

	Instruments *instrument.Table
	Builder     *briefing.Builder
	Dispatcher  *dispatch.Dispatcher

	// Market is the default provider behind the feed cache. Nil when no
	// provider could be built; routes then run without live data.
	Market          marketpkg.Provider
	MarketProviders map[string]marketpkg.Provider
	Feeds           *cache.FeedCache

	LLM    ChatModel
	Ollama llmpkg.Chatter

	History chatstore.Store

	Now func() time.Time
}

// MustNewServiceContext is NewServiceContext that exits on failure.
func MustNewServiceContext(c config.Config) *ServiceContext {
	svcCtx, err := NewServiceContext(context.Background(), c)
	if err != nil {
		logx.Must(err)
	}
	return svcCtx
}

// NewServiceContext wires the dependencies every route shares.
func NewServiceContext(ctx context.Context, c config.Config) (*ServiceContext, error) {
	persona := prompt.DefaultPersona()
	if path := c.PersonaPath(); path != "" {
		loaded, err := prompt.LoadPersona(path)
		if err != nil {
			return nil, fmt.Errorf("svc: load persona: %w", err)
		}
		persona = loaded
	}

	table := instrument.Default()
	svcCtx := &ServiceContext{
		Config:      c,
		Instruments: table,
		Builder:     briefing.NewBuilder(persona, table, c.Calc.FXRate),
		Dispatcher: dispatch.New(dispatch.Config{
			ContractSize: c.Calc.ContractSize,
			FXRate:       c.Calc.FXRate,
			Location:     c.Location(),
			Instruments:  table,
		}),
		Now: time.Now,
	}

	if err := svcCtx.initMarket(); err != nil {
		return nil, err
	}
	if err := svcCtx.initModels(); err != nil {
		return nil, err
	}

	store, err := chatstore.Open(ctx, c.ChatStore())
	if err != nil {
		return nil, fmt.Errorf("svc: open chat history: %w", err)
	}
	svcCtx.History = store
	return svcCtx, nil
}

func (s *ServiceContext) initMarket() error {
	c := s.Config
	var provider marketpkg.Provider

	switch {
	case c.Market.Loaded():
		p, providers, err := c.Market.Value.BuildDefault()
		if err != nil && !errors.Is(err, marketpkg.ErrProviderUnavailable) {
			return fmt.Errorf("svc: build market providers: %w", err)
		}
		if err != nil {
			logx.Errorf("market: %v; configure a default provider", err)
		}
		provider, s.MarketProviders = p, providers
	case c.IsTestEnv():
		provider = static.NewProvider(confkit.MustProjectPath(testFixtureDir))
	default:
		logx.Error("market: no Market section configured, feeds disabled")
		return nil
	}
	if provider == nil {
		return nil
	}

	store, err := s.feedStore()
	if err != nil {
		return err
	}
	s.Feeds = cache.NewFeedCache(provider, store, cache.NewTTLSet(c.TTL))
	s.Market = s.Feeds
	return nil
}

func (s *ServiceContext) feedStore() (cache.Store, error) {
	c := s.Config
	if c.Redis.Host != "" {
		store, err := cache.NewRedisStore(c.Redis)
		if err != nil {
			return nil, fmt.Errorf("svc: feed cache: %w", err)
		}
		return store, nil
	}
	store, err := cache.NewMemoryStore(time.Duration(c.TTL.Long) * time.Second)
	if err != nil {
		return nil, fmt.Errorf("svc: feed cache: %w", err)
	}
	return store, nil
}

func (s *ServiceContext) initModels() error {
	c := s.Config
	if c.LLM.Loaded() {
		client, err := llmpkg.NewClient(c.LLM.Value)
		if err != nil {
			return fmt.Errorf("svc: llm client: %w", err)
		}
		s.LLM = client
	}
	if c.Ollama.Loaded() {
		client, err := llmpkg.NewOllamaClient(c.Ollama.Value)
		if err != nil {
			return fmt.Errorf("svc: ollama client: %w", err)
		}
		s.Ollama = client
	}
	return nil
}

// Close releases the chat history backend.
func (s *ServiceContext) Close() error {
	if s.History == nil {
		return nil
	}
	return s.History.Close()
}
