package svc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nmai-api/internal/config"
	"nmai-api/pkg/chatstore"
	"nmai-api/pkg/confkit"
	llmpkg "nmai-api/pkg/llm"
	marketpkg "nmai-api/pkg/market"
)

func baseConfig(env string) config.Config {
	return config.Config{
		Env:     env,
		Calc:    config.CalcConf{ContractSize: 100, FXRate: 16000},
		History: config.HistoryConf{Driver: chatstore.DriverMemory, Limit: 20},
		TTL:     config.CacheTTL{Short: 10, Medium: 60, Long: 300},
	}
}

func TestNewServiceContextTestEnvUsesFixtures(t *testing.T) {
	svcCtx, err := NewServiceContext(context.Background(), baseConfig("test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svcCtx.Close() })

	require.NotNil(t, svcCtx.Feeds)
	require.NotNil(t, svcCtx.Market)
	assert.IsType(t, &chatstore.MemoryStore{}, svcCtx.History)
	assert.NotNil(t, svcCtx.Builder)
	assert.NotNil(t, svcCtx.Dispatcher)
	assert.Nil(t, svcCtx.LLM)
	assert.Nil(t, svcCtx.Ollama)

	board, err := svcCtx.Market.Quotes(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, board.Rows)
}

func TestNewServiceContextProdWithoutMarket(t *testing.T) {
	svcCtx, err := NewServiceContext(context.Background(), baseConfig("prod"))
	require.NoError(t, err)
	assert.Nil(t, svcCtx.Market)
	assert.Nil(t, svcCtx.Feeds)
}

func TestNewServiceContextBuildsClients(t *testing.T) {
	c := baseConfig("dev")
	c.LLM = confkit.Section[llmpkg.Config]{Value: &llmpkg.Config{
		BaseURL: "http://127.0.0.1:1/v1", APIKey: "sk-test", Model: "gpt-5-nano", Timeout: 1e9,
	}}
	c.Ollama = confkit.Section[llmpkg.OllamaConfig]{Value: &llmpkg.OllamaConfig{
		BaseURL: "http://127.0.0.1:1", Model: "NM-Ai-v0.1a", Timeout: 1e9,
	}}
	c.Market = confkit.Section[marketpkg.Config]{Value: &marketpkg.Config{
		Default: "local",
		Providers: map[string]*marketpkg.ProviderConfig{
			"local": {Type: "static", FixtureDir: t.TempDir()},
		},
	}}

	svcCtx, err := NewServiceContext(context.Background(), c)
	require.NoError(t, err)
	assert.NotNil(t, svcCtx.LLM)
	assert.NotNil(t, svcCtx.Ollama)
	assert.Len(t, svcCtx.MarketProviders, 1)
	assert.NotNil(t, svcCtx.Feeds)
}

func TestNewServiceContextRejectsBadClientConfig(t *testing.T) {
	c := baseConfig("dev")
	c.LLM = confkit.Section[llmpkg.Config]{Value: &llmpkg.Config{Model: "gpt-5-nano"}}
	_, err := NewServiceContext(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm client")
}

func TestNewServiceContextPersonaOverride(t *testing.T) {
	c := baseConfig("dev")
	c.Prompt.Persona = "/nonexistent/persona.tmpl"
	_, err := NewServiceContext(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load persona")
}
