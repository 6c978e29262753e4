package market

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/mr"
)

// Snapshot bundles the four feeds fetched for one request. A nil member
// means that feed could not be fetched.
type Snapshot struct {
	Quotes   *QuoteBoard
	Calendar *CalendarFeed
	History  *HistoryFeed
	News     *NewsFeed
}

// FetchAll fetches every feed concurrently. Failures are logged and leave
// the corresponding member nil; they never fail the request.
func FetchAll(ctx context.Context, p Provider, calendarDate string) Snapshot {
	var snap Snapshot
	if p == nil {
		logx.WithContext(ctx).Errorf("market: fetch skipped: %v", ErrProviderUnavailable)
		return snap
	}
	logger := logx.WithContext(ctx)

	mr.FinishVoid(
		func() {
			board, err := p.Quotes(ctx)
			if err != nil {
				logger.Errorf("market: fetch quotes: %v", err)
				return
			}
			snap.Quotes = board
		},
		func() {
			feed, err := p.Calendar(ctx, calendarDate)
			if err != nil {
				logger.Errorf("market: fetch calendar date=%s: %v", calendarDate, err)
				return
			}
			snap.Calendar = feed
		},
		func() {
			feed, err := p.Historical(ctx)
			if err != nil {
				logger.Errorf("market: fetch historical: %v", err)
				return
			}
			snap.History = feed
		},
		func() {
			feed, err := p.News(ctx)
			if err != nil {
				logger.Errorf("market: fetch news: %v", err)
				return
			}
			snap.News = feed
		},
	)
	return snap
}

// QuoteRows returns the quote rows, or nil when quotes are unavailable.
func (s Snapshot) QuoteRows() []Row {
	if s.Quotes == nil {
		return nil
	}
	return s.Quotes.Rows
}
