package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "NM-Ai-v0.1a"
	defaultOllamaTimeout = 120 * time.Second

	envOllamaBaseURL    = "OLLAMA_BASE_URL"
	envOllamaModel      = "OLLAMA_MODEL"
	envOllamaTimeout    = "OLLAMA_TIMEOUT"
	envOllamaMaxRetries = "OLLAMA_MAX_RETRIES"

	// NoReply is returned when the model answered with empty content.
	NoReply = "NM Ai tidak memberikan respon."
)

// OllamaConfig holds settings for a self-hosted Ollama chat endpoint.
type OllamaConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"-"`
	MaxRetries int           `yaml:"max_retries"`
	LogLevel   string        `yaml:"log_level"`
}

// LoadOllamaConfig reads Ollama configuration from disk.
func LoadOllamaConfig(path string) (*OllamaConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ollama config: %w", err)
	}
	defer file.Close()
	return LoadOllamaConfigFromReader(file)
}

// LoadOllamaConfigFromReader constructs an OllamaConfig from a reader.
func LoadOllamaConfigFromReader(r io.Reader) (*OllamaConfig, error) {
	var raw struct {
		BaseURL    string `yaml:"base_url"`
		Model      string `yaml:"model"`
		Timeout    string `yaml:"timeout"`
		MaxRetries int    `yaml:"max_retries"`
		LogLevel   string `yaml:"log_level"`
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read ollama config: %w", err)
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal ollama config: %w", err)
	}

	cfg := &OllamaConfig{
		BaseURL:    expandAndOverride(raw.BaseURL, envOllamaBaseURL),
		Model:      expandAndOverride(raw.Model, envOllamaModel),
		MaxRetries: raw.MaxRetries,
		LogLevel:   raw.LogLevel,
	}
	timeoutRaw := expandAndOverride(raw.Timeout, envOllamaTimeout)
	if v := os.Getenv(envOllamaMaxRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	if cfg.Timeout, err = parseTimeout(timeoutRaw, defaultOllamaTimeout); err != nil {
		return nil, fmt.Errorf("ollama config: %w", err)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultOllamaBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultOllamaModel
	}
	if cfg.MaxRetries < 0 {
		return nil, errors.New("ollama config: max_retries cannot be negative")
	}
	return cfg, nil
}

// StatusError is a non-2xx answer from an HTTP model backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm: http %d: %s", e.StatusCode, e.Body)
}

// OllamaClient calls Ollama's /api/chat without streaming.
type OllamaClient struct {
	config       *OllamaConfig
	httpClient   *http.Client
	logger       Logger
	retryHandler *RetryHandler
}

var _ Chatter = (*OllamaClient)(nil)

// NewOllamaClient builds a client. Only the logger, retry and HTTP client
// options apply.
func NewOllamaClient(cfg *OllamaConfig, opts ...ClientOption) (*OllamaClient, error) {
	if cfg == nil {
		return nil, errors.New("llm: ollama config cannot be nil")
	}
	optState := clientOptions{}
	for _, opt := range opts {
		opt(&optState)
	}
	c := &OllamaClient{
		config:       cfg,
		httpClient:   optState.httpClient,
		logger:       optState.logger,
		retryHandler: optState.retry,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if c.logger == nil {
		c.logger = NewLogger(cfg.LogLevel)
	}
	if c.retryHandler == nil {
		c.retryHandler = NewRetryHandler(RetryConfig{MaxRetries: cfg.MaxRetries})
	}
	return c, nil
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Stream   bool            `json:"stream"`
	Messages []ollamaMessage `json:"messages"`
}

type ollamaResponse struct {
	Model   string `json:"model"`
	Message *struct {
		Content string `json:"content"`
	} `json:"message"`
	Response        string `json:"response"`
	Content         string `json:"content"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// reply returns the first non-empty of message.content, response, content.
func (r ollamaResponse) reply() string {
	if r.Message != nil && r.Message.Content != "" {
		return r.Message.Content
	}
	if r.Response != "" {
		return r.Response
	}
	if r.Content != "" {
		return r.Content
	}
	return NoReply
}

// Chat implements Chatter.
func (c *OllamaClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, errors.New("llm: request requires at least one message")
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.config.Model
	}

	body := ollamaRequest{Model: model, Messages: make([]ollamaMessage, 0, len(req.Messages))}
	for _, m := range req.Messages {
		msg := ollamaMessage{Role: m.Role, Content: m.Content}
		for _, img := range m.Images {
			msg.Images = append(msg.Images, img.Base64())
		}
		body.Messages = append(body.Messages, msg)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("llm: encode ollama request: %w", err)
	}

	start := time.Now()
	url := c.config.BaseURL + "/api/chat"
	var parsed ollamaResponse
	err = c.retryHandler.Do(ctx, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		}
		parsed = ollamaResponse{}
		if err := json.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("llm: decode ollama response: %w", err)
		}
		return nil
	})
	if err != nil {
		c.logger.Error(ctx, fmt.Errorf("ollama chat failed: %w", err), Fields{"model": model})
		return nil, err
	}

	c.logger.Info(ctx, "ollama chat success", Fields{
		"model":       model,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	respModel := parsed.Model
	if respModel == "" {
		respModel = model
	}
	return &ChatResponse{
		Model:        respModel,
		Content:      parsed.reply(),
		FinishReason: parsed.DoneReason,
		Usage: Usage{
			PromptTokens:     parsed.PromptEvalCount,
			CompletionTokens: parsed.EvalCount,
			TotalTokens:      parsed.PromptEvalCount + parsed.EvalCount,
		},
	}, nil
}
