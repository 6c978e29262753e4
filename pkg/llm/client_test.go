package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
	"id":"chatcmpl-1",
	"object":"chat.completion",
	"created":1764122400,
	"model":"gpt-5-nano",
	"choices":[{
		"index":0,
		"finish_reason":"stop",
		"logprobs":null,
		"message":{"role":"assistant","content":"Halo, saya NM Ai."}
	}],
	"usage":{"prompt_tokens":10,"completion_tokens":12,"total_tokens":22}
}`

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Model:      "gpt-5-nano",
		Timeout:    5 * time.Second,
		MaxRetries: 1,
		LogLevel:   "error",
	}
}

func fastRetry(n int) *RetryHandler {
	return NewRetryHandler(RetryConfig{MaxRetries: n, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond})
}

func TestClientChat(t *testing.T) {
	var (
		mu       sync.Mutex
		lastBody []byte
		lastPath string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		lastPath = r.URL.Path
		lastBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)
	defer client.Close()

	temp := 0.2
	resp, err := client.Chat(context.Background(), &ChatRequest{
		Temperature: &temp,
		Messages: []Message{
			{Role: RoleSystem, Content: "Kamu adalah NM Ai."},
			{Role: "ai", Content: "ignored role maps to user"},
			{Role: RoleAssistant, Content: "Halo!"},
			{Role: RoleUser, Content: "hai"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Halo, saya NM Ai.", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 22, resp.Usage.TotalTokens)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/chat/completions", lastPath)
	var payload struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content any    `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(lastBody, &payload))
	assert.Equal(t, "gpt-5-nano", payload.Model)
	assert.InDelta(t, 0.2, payload.Temperature, 1e-9)
	require.Len(t, payload.Messages, 4)
	assert.Equal(t, "system", payload.Messages[0].Role)
	assert.Equal(t, "user", payload.Messages[1].Role)
	assert.Equal(t, "assistant", payload.Messages[2].Role)
	assert.Equal(t, "hai", payload.Messages[3].Content)
}

func TestClientChatSendsImagesAsContentParts(t *testing.T) {
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), &ChatRequest{
		Model: "gpt-5-mini",
		Messages: []Message{{
			Role:    RoleUser,
			Content: "analisa chart ini",
			Images:  []Image{{MimeType: "image/jpeg", Data: []byte("jpeg")}},
		}},
	})
	require.NoError(t, err)

	var payload struct {
		Model    string `json:"model"`
		Messages []struct {
			Content []struct {
				Type     string `json:"type"`
				Text     string `json:"text"`
				ImageURL struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "gpt-5-mini", payload.Model)
	require.Len(t, payload.Messages, 1)
	parts := payload.Messages[0].Content
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].Type)
	assert.Equal(t, "analisa chart ini", parts[0].Text)
	assert.Equal(t, "image_url", parts[1].Type)
	assert.Equal(t, "data:image/jpeg;base64,anBlZw==", parts[1].ImageURL.URL)
}

func TestClientChatRetries(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int
	}{
		{name: "server error is retried", status: http.StatusServiceUnavailable, wantCalls: 3},
		{name: "auth error is not retried", status: http.StatusUnauthorized, wantCalls: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var mu sync.Mutex
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				calls++
				mu.Unlock()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, `{"error":{"message":"nope","type":"test"}}`)
			}))
			defer server.Close()

			client, err := NewClient(testConfig(server.URL), WithHTTPClient(server.Client()), WithRetryHandler(fastRetry(2)))
			require.NoError(t, err)

			_, err = client.Chat(context.Background(), &ChatRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
			var apiErr *openai.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, tc.wantCalls, calls)
		})
	}
}

func TestClientChatStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{"Halo", ", ", "trader"} {
			fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"gpt-5-nano\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", delta)
		}
		fmt.Fprint(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"gpt-5-nano\",\"choices\":[{\"index\":0,\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)

	ch, err := client.ChatStream(context.Background(), &ChatRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)

	var text, finish string
	for chunk := range ch {
		require.NoError(t, chunk.Err)
		text += chunk.Delta
		if chunk.FinishReason != "" {
			finish = chunk.FinishReason
		}
	}
	assert.Equal(t, "Halo, trader", text)
	assert.Equal(t, "stop", finish)
}

func TestClientRejectsEmptyRequests(t *testing.T) {
	client, err := NewClient(testConfig("https://api.example.com"))
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), nil)
	require.Error(t, err)
	_, err = client.Chat(context.Background(), &ChatRequest{})
	require.ErrorContains(t, err, "at least one message")
	_, err = client.ChatStream(context.Background(), &ChatRequest{})
	require.Error(t, err)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(nil)
	require.Error(t, err)

	cfg := testConfig("https://api.example.com")
	cfg.APIKey = ""
	_, err = NewClient(cfg)
	require.ErrorContains(t, err, "api_key")

	logger := NewLogger("error")
	retry := fastRetry(4)
	cfg = testConfig("https://api.example.com")
	client, err := NewClient(cfg, WithLogger(logger), WithRetryHandler(retry))
	require.NoError(t, err)
	assert.Equal(t, logger, client.logger)
	assert.Same(t, retry, client.retryHandler)
	assert.Equal(t, "gpt-5-nano", client.Model())

	cfg.Model = "mutated"
	assert.Equal(t, "gpt-5-nano", client.Model(), "client keeps its own copy of the config")
}

func TestImageDataURL(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AQI=", Image{Data: []byte{1, 2}}.DataURL())
	assert.Equal(t, "data:image/webp;base64,AQI=", Image{MimeType: "image/webp", Data: []byte{1, 2}}.DataURL())
}
