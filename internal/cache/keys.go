package cache

import (
	"strings"
	"time"

	"nmai-api/internal/config"
)

// Namespace is the key prefix shared by every NM Ai cache entry.
const Namespace = "nmai"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLShort  TTLClass = "short"
	TTLMedium TTLClass = "medium"
	TTLLong   TTLClass = "long"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 10*time.Second),
		Medium: durationOrDefault(cfg.Medium, time.Minute),
		Long:   durationOrDefault(cfg.Long, 5*time.Minute),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

// FeedKind names one of the four market feeds.
type FeedKind string

const (
	FeedQuotes     FeedKind = "quotes"
	FeedCalendar   FeedKind = "calendar"
	FeedHistorical FeedKind = "historical"
	FeedNews       FeedKind = "news"
)

// FeedKey returns nmai:feed:<kind>[:<date>].
func FeedKey(kind FeedKind, date string) string {
	return formatKey("feed", string(kind), date)
}

// FeedTTL maps a feed to its TTL class. Quotes move fastest; historical
// closes change once a day.
func FeedTTL(ttl TTLSet, kind FeedKind) time.Duration {
	switch kind {
	case FeedQuotes:
		return ttl.Duration(TTLShort)
	case FeedCalendar, FeedNews:
		return ttl.Duration(TTLMedium)
	case FeedHistorical:
		return ttl.Duration(TTLLong)
	default:
		return 0
	}
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}
