package cache

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/mr"

	"nmai-api/pkg/market"
)

// FeedCache is a read-through market.Provider. Cache failures are logged
// and never fail a fetch.
type FeedCache struct {
	next  market.Provider
	store Store
	ttl   TTLSet
}

var _ market.Provider = (*FeedCache)(nil)

// NewFeedCache wraps next with store.
func NewFeedCache(next market.Provider, store Store, ttl TTLSet) *FeedCache {
	return &FeedCache{next: next, store: store, ttl: ttl}
}

// Quotes implements market.Provider.
func (c *FeedCache) Quotes(ctx context.Context) (*market.QuoteBoard, error) {
	return readThrough(ctx, c, FeedQuotes, "", c.next.Quotes)
}

// Calendar implements market.Provider.
func (c *FeedCache) Calendar(ctx context.Context, date string) (*market.CalendarFeed, error) {
	return readThrough(ctx, c, FeedCalendar, date, func(ctx context.Context) (*market.CalendarFeed, error) {
		return c.next.Calendar(ctx, date)
	})
}

// Historical implements market.Provider.
func (c *FeedCache) Historical(ctx context.Context) (*market.HistoryFeed, error) {
	return readThrough(ctx, c, FeedHistorical, "", c.next.Historical)
}

// News implements market.Provider.
func (c *FeedCache) News(ctx context.Context) (*market.NewsFeed, error) {
	return readThrough(ctx, c, FeedNews, "", c.next.News)
}

// Refresh fetches every feed from the upstream provider and overwrites the
// cached copies. It returns the first upstream error.
func (c *FeedCache) Refresh(ctx context.Context, calendarDate string) error {
	return mr.Finish(
		func() error {
			return refresh(ctx, c, FeedQuotes, "", c.next.Quotes)
		},
		func() error {
			return refresh(ctx, c, FeedCalendar, calendarDate, func(ctx context.Context) (*market.CalendarFeed, error) {
				return c.next.Calendar(ctx, calendarDate)
			})
		},
		func() error {
			return refresh(ctx, c, FeedHistorical, "", c.next.Historical)
		},
		func() error {
			return refresh(ctx, c, FeedNews, "", c.next.News)
		},
	)
}

func readThrough[T any](ctx context.Context, c *FeedCache, kind FeedKind, date string, fetch func(context.Context) (*T, error)) (*T, error) {
	key := FeedKey(kind, date)
	var cached T
	err := c.store.GetCtx(ctx, key, &cached)
	switch {
	case err == nil:
		return &cached, nil
	case !c.store.IsNotFound(err):
		logx.WithContext(ctx).Errorf("cache: get %s: %v", key, err)
	}

	value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, FeedTTL(c.ttl, kind), value)
	return value, nil
}

func refresh[T any](ctx context.Context, c *FeedCache, kind FeedKind, date string, fetch func(context.Context) (*T, error)) error {
	value, err := fetch(ctx)
	if err != nil {
		return err
	}
	c.put(ctx, FeedKey(kind, date), FeedTTL(c.ttl, kind), value)
	return nil
}

func (c *FeedCache) put(ctx context.Context, key string, ttl time.Duration, value any) {
	if ttl <= 0 {
		return
	}
	if err := c.store.SetWithExpireCtx(ctx, key, value, ttl); err != nil {
		logx.WithContext(ctx).Errorf("cache: set %s: %v", key, err)
	}
}
