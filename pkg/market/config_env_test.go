package market_test

import (
	"os"
	"path/filepath"
	"testing"

	market "nmai-api/pkg/market"
	_ "nmai-api/pkg/market/newsmaker"
)

// Ensures env placeholders are expanded and durations parsed.
func TestMarketConfig_EnvExpansionAndDurations(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QUOTES_API_URL", "https://feeds.test/api/quotes")
	t.Setenv("CALENDAR_API_URL", "")
	t.Setenv("TOUT", "9s")
	t.Setenv("HTTP_TOUT", "13s")

	yaml := []byte(`
default: nm
providers:
  nm:
    type: newsmaker
    quotes_url: ${QUOTES_API_URL}
    calendar_url: ${CALENDAR_API_URL}
    timeout: ${TOUT}
    http_timeout: ${HTTP_TOUT}
`)
	path := filepath.Join(dir, "market.yaml")
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := market.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	p := cfg.Providers["nm"]
	if p == nil {
		t.Fatalf("provider nm missing")
	}
	if p.QuotesURL != "https://feeds.test/api/quotes" {
		t.Fatalf("QuotesURL not expanded, got %q", p.QuotesURL)
	}
	if p.CalendarURL != "" {
		t.Fatalf("empty env should leave CalendarURL blank, got %q", p.CalendarURL)
	}
	if p.Timeout.String() != "9s" || p.HTTPTimeout.String() != "13s" {
		t.Fatalf("durations not parsed, timeout=%s http_timeout=%s", p.Timeout, p.HTTPTimeout)
	}
}

func TestMarketConfig_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "market.yaml")
	if err := os.WriteFile(path, []byte("providers:\n  nm:\n    type: newsmaker\n    timeout: soon\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := market.LoadConfig(path); err == nil {
		t.Fatalf("expected invalid timeout error")
	}
}
