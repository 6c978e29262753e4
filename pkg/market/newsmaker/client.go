// Package newsmaker reads the Newsmaker quotes, calendar, historical and
// news JSON endpoints.
package newsmaker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"nmai-api/pkg/market"
	"nmai-api/pkg/textparse"
)

const (
	defaultBaseURL          = "https://endpoapi-production-3202.up.railway.app"
	defaultHTTPTimeout      = 10 * time.Second
	defaultMaxRetries       = 2
	defaultRetryBackoffBase = 150 * time.Millisecond
	maxErrorBody            = 512
)

// StatusError reports a non-2xx feed response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("newsmaker: %s: http status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Endpoints lists the feed URLs.
type Endpoints struct {
	Quotes     string
	Calendar   string
	Historical string
	News       string
}

// DefaultEndpoints returns the production feed URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Quotes:     defaultBaseURL + "/api/quotes",
		Calendar:   defaultBaseURL + "/api/calendar/today",
		Historical: defaultBaseURL + "/api/historical?dateFrom=2025-07-01",
		News:       defaultBaseURL + "/api/news-id",
	}
}

// Client fetches Newsmaker feeds.
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithEndpoints overrides feed URLs. Empty fields keep their defaults.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) {
		if e.Quotes != "" {
			c.endpoints.Quotes = e.Quotes
		}
		if e.Calendar != "" {
			c.endpoints.Calendar = e.Calendar
		}
		if e.Historical != "" {
			c.endpoints.Historical = e.Historical
		}
		if e.News != "" {
			c.endpoints.News = e.News
		}
	}
}

// WithMaxRetries adjusts the retry budget.
func WithMaxRetries(max int) Option {
	return func(c *Client) {
		if max >= 0 {
			c.maxRetries = max
		}
	}
}

// WithRetryBackoff sets the first retry delay; later delays double.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// NewClient constructs a Newsmaker feed client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		endpoints:  DefaultEndpoints(),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		maxRetries: defaultMaxRetries,
		backoff:    defaultRetryBackoffBase,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Endpoints returns the configured feed URLs.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// Quotes fetches the quote board.
func (c *Client) Quotes(ctx context.Context) (*market.QuoteBoard, error) {
	env, err := c.fetch(ctx, c.endpoints.Quotes)
	if err != nil {
		return nil, err
	}
	return market.NewQuoteBoard(env), nil
}

// Calendar fetches calendar events for date, or today's when date is empty.
func (c *Client) Calendar(ctx context.Context, date string) (*market.CalendarFeed, error) {
	target := c.endpoints.Calendar
	if date != "" {
		target = textparse.CalendarURL(target, date)
	}
	env, err := c.fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	return &market.CalendarFeed{Date: date, Rows: env.Data}, nil
}

// Historical fetches historical price rows.
func (c *Client) Historical(ctx context.Context) (*market.HistoryFeed, error) {
	env, err := c.fetch(ctx, c.endpoints.Historical)
	if err != nil {
		return nil, err
	}
	return market.NewHistoryFeed(env, dateFromQuery(c.endpoints.Historical)), nil
}

// News fetches the latest articles.
func (c *Client) News(ctx context.Context) (*market.NewsFeed, error) {
	env, err := c.fetch(ctx, c.endpoints.News)
	if err != nil {
		return nil, err
	}
	return &market.NewsFeed{Rows: env.Data}, nil
}

func dateFromQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Query().Get("dateFrom")
}

func (c *Client) fetch(ctx context.Context, target string) (market.Envelope, error) {
	body, err := c.doRequest(ctx, target)
	if err != nil {
		return market.Envelope{}, err
	}
	env, err := market.DecodeEnvelope(body)
	if err != nil {
		return market.Envelope{}, fmt.Errorf("newsmaker: decode %s: %w", target, err)
	}
	return env, nil
}

// doRequest GETs target, retrying transport errors, 429 and 5xx with
// exponential backoff.
func (c *Client) doRequest(ctx context.Context, target string) ([]byte, error) {
	var lastErr error
	backoff := c.backoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("newsmaker: build request: %w", err)
		}
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("Cache-Control", "no-store")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("newsmaker: read response: %w", readErr)
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				statusErr := &StatusError{URL: target, StatusCode: resp.StatusCode, Body: truncate(string(body), maxErrorBody)}
				if !statusErr.Retryable() {
					return nil, statusErr
				}
				lastErr = statusErr
			default:
				return body, nil
			}
		}

		if attempt < c.maxRetries {
			logx.WithContext(ctx).Infof("newsmaker: retrying %s attempt=%d err=%v", target, attempt+1, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("newsmaker: request failed without error detail")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
