package market

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

const (
	// MaxQuoteRows caps the quote board handed to the rest of the system.
	MaxQuoteRows = 50
	// MaxHistoryRows caps historical rows per fetch.
	MaxHistoryRows = 2000
)

// ErrProviderUnavailable is returned when no market provider is configured.
var ErrProviderUnavailable = errors.New("market: provider unavailable")

// Provider exposes the four Newsmaker data feeds.
type Provider interface {
	// Quotes returns the live quote board.
	Quotes(ctx context.Context) (*QuoteBoard, error)
	// Calendar returns economic calendar events for date (YYYY-MM-DD).
	Calendar(ctx context.Context, date string) (*CalendarFeed, error)
	// Historical returns daily price rows for every tracked symbol.
	Historical(ctx context.Context) (*HistoryFeed, error)
	// News returns the latest published articles.
	News(ctx context.Context) (*NewsFeed, error)
}

// QuoteBoard is a snapshot of live quotes.
type QuoteBoard struct {
	UpdatedAt time.Time `json:"updatedAt" msgpack:"updatedAt"`
	Rows      []Row     `json:"rows" msgpack:"rows"`
}

// CalendarFeed holds the calendar rows requested for Date.
type CalendarFeed struct {
	Date string `json:"date" msgpack:"date"`
	Rows []Row  `json:"rows" msgpack:"rows"`
}

// HistoryFeed holds historical rows starting at DateFrom when known.
type HistoryFeed struct {
	DateFrom string `json:"dateFrom" msgpack:"dateFrom"`
	Rows     []Row  `json:"rows" msgpack:"rows"`
}

// NewsFeed holds news articles in feed order.
type NewsFeed struct {
	Rows []Row `json:"rows" msgpack:"rows"`
}

// Envelope is the common {"data": [...]} response body of every feed.
type Envelope struct {
	UpdatedAt string
	DateFrom  string
	Data      []Row
}

type rawEnvelope struct {
	UpdatedAt any             `json:"updatedAt"`
	DateFrom  string          `json:"dateFrom"`
	Data      json.RawMessage `json:"data"`
}

// DecodeEnvelope parses a feed body. A "data" member that is not an array
// of objects yields no rows rather than an error.
func DecodeEnvelope(body []byte) (Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return Envelope{}, err
	}
	env := Envelope{DateFrom: raw.DateFrom}
	switch v := raw.UpdatedAt.(type) {
	case string:
		env.UpdatedAt = v
	case float64:
		env.UpdatedAt = Row{"v": v}.Text("v")
	}
	if len(raw.Data) > 0 {
		var items []any
		if err := json.Unmarshal(raw.Data, &items); err == nil {
			env.Data = make([]Row, 0, len(items))
			for _, it := range items {
				if m, ok := it.(map[string]any); ok {
					env.Data = append(env.Data, Row(m))
				}
			}
		}
	}
	return env, nil
}

// NewQuoteBoard builds a capped board from an envelope.
func NewQuoteBoard(env Envelope) *QuoteBoard {
	board := &QuoteBoard{Rows: capRows(env.Data, MaxQuoteRows)}
	if t, ok := ParseTime(env.UpdatedAt); ok {
		board.UpdatedAt = t
	}
	return board
}

// NewHistoryFeed builds a capped historical feed from an envelope.
func NewHistoryFeed(env Envelope, dateFrom string) *HistoryFeed {
	if dateFrom == "" {
		dateFrom = env.DateFrom
	}
	return &HistoryFeed{DateFrom: dateFrom, Rows: capRows(env.Data, MaxHistoryRows)}
}

func capRows(rows []Row, limit int) []Row {
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
