package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nmai-api/internal/config"
	"nmai-api/pkg/market"
)

type countingProvider struct {
	quotes   atomic.Int32
	calendar atomic.Int32
	failNews bool
}

func (p *countingProvider) Quotes(context.Context) (*market.QuoteBoard, error) {
	n := p.quotes.Add(1)
	return &market.QuoteBoard{
		UpdatedAt: time.Date(2025, 11, 26, 2, 0, 0, 0, time.UTC),
		Rows:      []market.Row{{"symbol": "XAUUSD", "last": 2000.5, "fetch": int(n)}},
	}, nil
}

func (p *countingProvider) Calendar(_ context.Context, date string) (*market.CalendarFeed, error) {
	p.calendar.Add(1)
	return &market.CalendarFeed{Date: date, Rows: []market.Row{{"event": "CPI " + date}}}, nil
}

func (p *countingProvider) Historical(context.Context) (*market.HistoryFeed, error) {
	return &market.HistoryFeed{DateFrom: "2025-07-01"}, nil
}

func (p *countingProvider) News(context.Context) (*market.NewsFeed, error) {
	if p.failNews {
		return nil, errors.New("news down")
	}
	return &market.NewsFeed{}, nil
}

func newMemoryCache(t *testing.T, next market.Provider) *FeedCache {
	t.Helper()
	store, err := NewMemoryStore(time.Minute)
	require.NoError(t, err)
	return NewFeedCache(next, store, NewTTLSet(config.CacheTTL{Short: 10, Medium: 60, Long: 300}))
}

func TestFeedCacheServesRepeatReadsFromStore(t *testing.T) {
	upstream := &countingProvider{}
	c := newMemoryCache(t, upstream)
	ctx := context.Background()

	first, err := c.Quotes(ctx)
	require.NoError(t, err)
	second, err := c.Quotes(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), upstream.quotes.Load())
	assert.True(t, first.UpdatedAt.Equal(second.UpdatedAt))
	last, ok := second.Rows[0].Float("last")
	require.True(t, ok)
	assert.Equal(t, 2000.5, last)
	assert.Equal(t, "XAUUSD", second.Rows[0].Text("symbol"))
}

func TestFeedCacheKeysCalendarByDate(t *testing.T) {
	upstream := &countingProvider{}
	c := newMemoryCache(t, upstream)
	ctx := context.Background()

	a, err := c.Calendar(ctx, "2025-11-26")
	require.NoError(t, err)
	b, err := c.Calendar(ctx, "2025-11-27")
	require.NoError(t, err)
	_, err = c.Calendar(ctx, "2025-11-26")
	require.NoError(t, err)

	assert.Equal(t, int32(2), upstream.calendar.Load())
	assert.Equal(t, "CPI 2025-11-26", a.Rows[0].Text("event"))
	assert.Equal(t, "CPI 2025-11-27", b.Rows[0].Text("event"))
}

func TestFeedCacheRefresh(t *testing.T) {
	upstream := &countingProvider{}
	c := newMemoryCache(t, upstream)
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx, "2025-11-26"))
	_, err := c.Quotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), upstream.quotes.Load(), "quotes should come from the warmed cache")

	upstream.failNews = true
	require.Error(t, c.Refresh(ctx, "2025-11-26"))
}

func TestFeedCacheDoesNotCacheErrors(t *testing.T) {
	upstream := &countingProvider{failNews: true}
	c := newMemoryCache(t, upstream)
	_, err := c.News(context.Background())
	require.Error(t, err)

	upstream.failNews = false
	feed, err := c.News(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, feed)
}

func TestKeysAndTTL(t *testing.T) {
	assert.Equal(t, "nmai:feed:quotes", FeedKey(FeedQuotes, ""))
	assert.Equal(t, "nmai:feed:calendar:2025-11-26", FeedKey(FeedCalendar, "2025-11-26"))

	ttl := NewTTLSet(config.CacheTTL{Short: 0, Medium: 30, Long: -1})
	assert.Equal(t, 10*time.Second, FeedTTL(ttl, FeedQuotes))
	assert.Equal(t, 30*time.Second, FeedTTL(ttl, FeedNews))
	assert.Equal(t, time.Duration(0), FeedTTL(ttl, FeedHistorical))
}
