package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"

	"nmai-api/pkg/calc"
	"nmai-api/pkg/chatstore"
	"nmai-api/pkg/confkit"
	llmpkg "nmai-api/pkg/llm"
	marketpkg "nmai-api/pkg/market"
	"nmai-api/pkg/textparse"
	"nmai-api/pkg/upload"
)

const (
	defaultTimezone     = "Asia/Jakarta"
	defaultHistoryLimit = 100
)

type PostgresConf struct {
	DSN     string `json:",optional"`
	MaxOpen int    `json:",default=10"`
	MaxIdle int    `json:",default=5"`
}

// CacheTTL is expressed in seconds.
type CacheTTL struct {
	Short  int `json:",default=10"`
	Medium int `json:",default=60"`
	Long   int `json:",default=300"`
}

// CalcConf drives the margin calculator.
type CalcConf struct {
	ContractSize float64 `json:",optional"`
	FXRate       float64 `json:",optional"`
}

// HistoryConf selects the chat history backend.
type HistoryConf struct {
	Driver    string `json:",optional"`
	Limit     int    `json:",optional"`
	ProjectID string `json:",optional"`
}

type PromptConf struct {
	// Persona overrides the embedded system prompt template.
	Persona string `json:",optional"`
}

type Config struct {
	rest.RestConf

	Env            string `json:",default=test"`
	Timezone       string `json:",optional"`
	MaxUploadBytes int64  `json:",optional"`

	Calc     CalcConf        `json:",optional"`
	History  HistoryConf     `json:",optional"`
	Prompt   PromptConf      `json:",optional"`
	Postgres PostgresConf    `json:",optional"`
	Redis    redis.RedisConf `json:",optional"`
	TTL      CacheTTL        `json:",optional"`

	LLM    confkit.Section[llmpkg.Config]       `json:",optional"`
	Ollama confkit.Section[llmpkg.OllamaConfig] `json:",optional"`
	Market confkit.Section[marketpkg.Config]    `json:",optional"`

	mainPath string
	baseDir  string
	location *time.Location
}

// IsTestEnv returns true if the environment is set to test.
func (c *Config) IsTestEnv() bool {
	return c.Env == "test"
}

// MustLoad loads the main config at path and panics on failure.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the main service config, applies defaults and hydrates the
// LLM, Ollama and Market sections from their sibling files.
func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve path %s: %w", path, err)
	}

	var cfg Config
	if err := conf.Load(abs, &cfg, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("config: load %s: %w", abs, err)
	}
	cfg.mainPath = abs
	cfg.baseDir = confkit.BaseDir(abs)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := cfg.hydrateSections(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if strings.TrimSpace(c.Timezone) == "" {
		c.Timezone = defaultTimezone
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = upload.DefaultMaxBytes
	}
	if c.Calc.ContractSize <= 0 {
		c.Calc.ContractSize = calc.DefaultContractSize
	}
	if c.Calc.FXRate <= 0 {
		c.Calc.FXRate = calc.DefaultFXRate
	}
	c.History.Driver = strings.ToLower(strings.TrimSpace(c.History.Driver))
	if c.History.Driver == "" {
		c.History.Driver = chatstore.DriverMemory
	}
	if c.History.Limit <= 0 {
		c.History.Limit = defaultHistoryLimit
	}
	if c.TTL == (CacheTTL{}) {
		c.TTL = CacheTTL{Short: 10, Medium: 60, Long: 300}
	}
}

// validate checks the config after defaults are applied. It stays
// unexported so conf.Load does not run it on the raw, undefaulted values.
func (c *Config) validate() error {
	switch c.Env {
	case "test", "dev", "prod":
	default:
		return fmt.Errorf("config: invalid Env %q (want test|dev|prod)", c.Env)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("config: invalid Timezone %q: %w", c.Timezone, err)
	}
	c.location = loc
	if c.TTL.Short <= 0 || c.TTL.Medium <= 0 || c.TTL.Long <= 0 {
		return fmt.Errorf("config: TTL values must be positive (got short=%d medium=%d long=%d)", c.TTL.Short, c.TTL.Medium, c.TTL.Long)
	}
	switch c.History.Driver {
	case chatstore.DriverMemory, chatstore.DriverFirestore:
	case chatstore.DriverPostgres:
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			return fmt.Errorf("config: History.Driver %q requires Postgres.DSN", c.History.Driver)
		}
	default:
		return fmt.Errorf("config: invalid History.Driver %q (want memory|firestore|postgres)", c.History.Driver)
	}
	return nil
}

func (c *Config) hydrateSections() error {
	if err := c.LLM.Hydrate("LLM", c.baseDir, llmpkg.LoadConfig); err != nil {
		return err
	}
	if err := c.Ollama.Hydrate("Ollama", c.baseDir, llmpkg.LoadOllamaConfig); err != nil {
		return err
	}
	return c.Market.Hydrate("Market", c.baseDir, marketpkg.LoadConfig)
}

// Location is the zone used for day boundaries and user-facing timestamps.
func (c *Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	return textparse.ReferenceLocation()
}

// ChatStore maps the History block onto chatstore options.
func (c *Config) ChatStore() chatstore.Config {
	return chatstore.Config{
		Driver:    c.History.Driver,
		Limit:     c.History.Limit,
		ProjectID: c.History.ProjectID,
		DSN:       c.Postgres.DSN,
	}
}

// PersonaPath resolves Prompt.Persona against the main config directory.
// Empty means the embedded persona.
func (c *Config) PersonaPath() string {
	return confkit.ResolvePath(c.baseDir, c.Prompt.Persona)
}

// MainPath returns the absolute path of the main config file.
func (c *Config) MainPath() string {
	return c.mainPath
}

// BaseDir returns the directory containing the main config file.
func (c *Config) BaseDir() string {
	return c.baseDir
}
