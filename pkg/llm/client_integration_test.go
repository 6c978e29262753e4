//go:build integration

package llm

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

// TestMain loads the nearest .env so OPENAI_API_KEY can live outside the shell.
func TestMain(m *testing.M) {
	if _, file, _, ok := runtime.Caller(0); ok {
		dir := filepath.Dir(file)
		for i := 0; i < 10; i++ {
			_ = godotenv.Load(filepath.Join(dir, ".env"))
			if exists(filepath.Join(dir, "go.mod")) {
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	os.Exit(m.Run())
}

func exists(p string) bool { _, err := os.Stat(p); return err == nil }

func newIntegrationClient(t *testing.T) *Client {
	t.Helper()
	apiKey := os.Getenv(envAPIKey)
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set; skipping integration test")
	}
	baseURL := os.Getenv(envBaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client, err := NewClient(&Config{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      defaultModel,
		Timeout:    30 * time.Second,
		MaxRetries: 1,
		LogLevel:   "error",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestIntegration_Chat(t *testing.T) {
	client := newIntegrationClient(t)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Second)
	defer cancel()

	resp, err := client.Chat(ctx, &ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "Jawab dalam satu kalimat bahasa Indonesia."},
			{Role: RoleUser, Content: "Apa itu pivot point?"},
		},
	})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if resp.Content == "" {
		t.Fatalf("unexpected empty response: %#v", resp)
	}
}

func TestIntegration_ChatStream(t *testing.T) {
	client := newIntegrationClient(t)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Second)
	defer cancel()

	ch, err := client.ChatStream(ctx, &ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "Sebutkan satu mata uang utama."}},
	})
	if err != nil {
		t.Fatalf("ChatStream error: %v", err)
	}
	var text string
	for chunk := range ch {
		if chunk.Err != nil {
			t.Fatalf("stream error: %v", chunk.Err)
		}
		text += chunk.Delta
	}
	if text == "" {
		t.Fatal("stream produced no text")
	}
}
