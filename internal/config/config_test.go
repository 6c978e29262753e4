package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nmai-api/pkg/calc"
	"nmai-api/pkg/chatstore"
	_ "nmai-api/pkg/market/static"
	"nmai-api/pkg/upload"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	dir := t.TempDir()
	path := writeFile(t, dir, "nmai.yaml", "Name: nmai-api\nHost: 127.0.0.1\nPort: 8899\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.True(t, cfg.IsTestEnv())
	assert.Equal(t, "Asia/Jakarta", cfg.Timezone)
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())
	assert.Equal(t, int64(upload.DefaultMaxBytes), cfg.MaxUploadBytes)
	assert.Equal(t, calc.DefaultContractSize, cfg.Calc.ContractSize)
	assert.Equal(t, calc.DefaultFXRate, cfg.Calc.FXRate)
	assert.Equal(t, CacheTTL{Short: 10, Medium: 60, Long: 300}, cfg.TTL)
	assert.Equal(t, chatstore.Config{Driver: chatstore.DriverMemory, Limit: 100}, cfg.ChatStore())
	assert.False(t, cfg.LLM.Loaded())
	assert.False(t, cfg.Ollama.Loaded())
	assert.False(t, cfg.Market.Loaded())
	assert.Equal(t, path, cfg.MainPath())
	assert.Equal(t, dir, cfg.BaseDir())
	assert.Empty(t, cfg.PersonaPath())
}

func TestLoadDefaultsEmptyPlaceholders(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	t.Setenv("NMAI_HISTORY_DRIVER", "")
	dir := t.TempDir()
	path := writeFile(t, dir, "nmai.yaml", `Name: nmai-api
Host: 127.0.0.1
Port: 8899
Env: dev
History:
  Driver: ${NMAI_HISTORY_DRIVER}
`)

	require.NotPanics(t, func() {
		cfg := MustLoad(path)
		assert.Equal(t, chatstore.DriverMemory, cfg.History.Driver)
		assert.Equal(t, CacheTTL{Short: 10, Medium: 60, Long: 300}, cfg.TTL)
	})

	// conf.Load runs Validate on configs that expose it, before any
	// defaults are applied.
	_, exposed := any(&Config{}).(interface{ Validate() error })
	assert.False(t, exposed)
}

func TestLoadHydratesSections(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("NMAI_ENV", "dev")
	dir := t.TempDir()
	fixtures := filepath.Join(dir, "fixtures")
	require.NoError(t, os.MkdirAll(fixtures, 0o755))

	writeFile(t, dir, "llm.yaml", "model: gpt-5-nano\ntimeout: 30s\n")
	writeFile(t, dir, "ollama.yaml", "base_url: http://ollama.internal:11434/\nmodel: NM-Ai-v0.1a\n")
	writeFile(t, dir, "market.yaml", "default: local\nproviders:\n  local:\n    type: static\n    fixture_dir: "+fixtures+"\n")
	path := writeFile(t, dir, "nmai.yaml", `Name: nmai-api
Host: 0.0.0.0
Port: 8899
Env: ${NMAI_ENV}
Timezone: Asia/Jakarta
Calc:
  ContractSize: 100
  FXRate: 16000
History:
  Driver: Memory
  Limit: 20
Prompt:
  Persona: prompts/persona.tmpl
LLM:
  File: llm.yaml
Ollama:
  File: ollama.yaml
Market:
  File: market.yaml
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 100.0, cfg.Calc.ContractSize)
	assert.Equal(t, 16000.0, cfg.Calc.FXRate)
	assert.Equal(t, chatstore.DriverMemory, cfg.History.Driver)
	assert.Equal(t, 20, cfg.ChatStore().Limit)
	assert.Equal(t, filepath.Join(dir, "prompts", "persona.tmpl"), cfg.PersonaPath())

	require.True(t, cfg.LLM.Loaded())
	assert.Equal(t, filepath.Join(dir, "llm.yaml"), cfg.LLM.File)
	assert.Equal(t, "sk-test", cfg.LLM.Value.APIKey)
	assert.Equal(t, "gpt-5-nano", cfg.LLM.Value.Model)

	require.True(t, cfg.Ollama.Loaded())
	assert.Equal(t, "http://ollama.internal:11434", cfg.Ollama.Value.BaseURL)

	require.True(t, cfg.Market.Loaded())
	assert.Equal(t, "local", cfg.Market.Value.Default)
}

func TestLoadSectionErrorNamesSection(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	dir := t.TempDir()
	writeFile(t, dir, "market.yaml", "default: missing\nproviders: {}\n")
	path := writeFile(t, dir, "nmai.yaml", "Name: nmai-api\nHost: 127.0.0.1\nPort: 8899\nMarket:\n  File: market.yaml\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Market section")
}

func TestValidateRejects(t *testing.T) {
	valid := func() Config {
		c := Config{Env: "prod", Timezone: "Asia/Jakarta"}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad env", mutate: func(c *Config) { c.Env = "staging" }, wantErr: "invalid Env"},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, wantErr: "invalid Timezone"},
		{name: "negative ttl", mutate: func(c *Config) { c.TTL.Medium = -1 }, wantErr: "TTL values must be positive"},
		{name: "unknown driver", mutate: func(c *Config) { c.History.Driver = "mongo" }, wantErr: "invalid History.Driver"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.History.Driver = chatstore.DriverPostgres }, wantErr: "requires Postgres.DSN"},
		{name: "postgres with dsn", mutate: func(c *Config) {
			c.History.Driver = chatstore.DriverPostgres
			c.Postgres.DSN = "postgres://localhost/nmai"
		}},
		{name: "firestore", mutate: func(c *Config) { c.History.Driver = chatstore.DriverFirestore }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLocationFallsBackToReferenceZone(t *testing.T) {
	var c Config
	assert.Equal(t, "Asia/Jakarta", c.Location().String())
}
