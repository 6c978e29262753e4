package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "nmai-api/pkg/market/newsmaker"
)

// The shipped etc/ files must load with only the API key provided.
func TestRepositoryConfigLoads(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	t.Setenv("OPENAI_API_KEY", "sk-repo-test")
	t.Setenv("NMAI_HISTORY_DRIVER", "")
	t.Setenv("POSTGRES_DSN", "")

	cfg, err := Load(filepath.Join("..", "..", "etc", "nmai.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "nmai-api", cfg.Name)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "memory", cfg.History.Driver)
	assert.Equal(t, 1000.0, cfg.Calc.ContractSize)
	require.True(t, cfg.LLM.Loaded())
	require.True(t, cfg.Ollama.Loaded())
	require.True(t, cfg.Market.Loaded())
	assert.Equal(t, "newsmaker", cfg.Market.Value.Default)
	assert.Len(t, cfg.Market.Value.Providers, 2)
	assert.Equal(t, filepath.Join(cfg.BaseDir(), "prompts", "persona.tmpl"), cfg.PersonaPath())
}
