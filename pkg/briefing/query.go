// Package briefing turns market feed payloads into the Indonesian system
// context NM Ai hands to its language models, and into the digests the
// dispatcher answers from directly.
package briefing

import (
	"strings"
	"time"

	"nmai-api/pkg/instrument"
	"nmai-api/pkg/textparse"
)

// News categories recognised in the news feed.
const (
	CategoryMarketAnalysis = "MARKET ANALISYS"
	CategoryEconomic       = "ECONOMIC"
	CategoryCrypto         = "CRYPTO"
)

// Query is everything the briefing derives from one user prompt.
type Query struct {
	Text  string
	Lower string
	// Now is the request time in the reference zone.
	Now   time.Time
	Today string

	Instrument       instrument.Key
	CalendarDate     string
	CalendarOverview bool
	HighImpactOnly   bool
	News             bool
	NewsCategory     string
	DaysAgo          textparse.RelativeDateQuery
	HasDaysAgo       bool
}

// ParseQuery inspects text relative to now. now is converted to the
// reference zone before any date is resolved.
func ParseQuery(text string, now time.Time, table *instrument.Table) Query {
	now = now.In(textparse.ReferenceLocation())
	lower := strings.ToLower(text)
	today := textparse.FormatISODate(now)

	q := Query{
		Text:             text,
		Lower:            lower,
		Now:              now,
		Today:            today,
		Instrument:       table.Detect(text),
		CalendarDate:     today,
		CalendarOverview: IsCalendarOverview(lower),
		HighImpactOnly:   WantsHighImpact(lower),
		News:             isNewsQuery(lower),
		NewsCategory:     detectNewsCategory(lower),
	}
	if date, ok := textparse.ParseRequestedDate(text, now); ok {
		q.CalendarDate = date
	}
	q.DaysAgo, q.HasDaysAgo = textparse.ParseRelativeDaysAgo(text, now)
	return q
}

// IsCalendarOverview reports whether lower asks for the economic calendar.
func IsCalendarOverview(lower string) bool {
	return containsAny(lower, "kalender ekonomi", "economic calendar", "calendar ekonomi")
}

// WantsHighImpact reports whether lower narrows the calendar to ★★★ events.
func WantsHighImpact(lower string) bool {
	return containsAny(lower, "high impact", "high-impact", "highimpact", "dampak tinggi", "impact tinggi", "★★★")
}

func isNewsQuery(lower string) bool {
	if containsAny(lower, "berita terbaru", "news terbaru", "headline", "berita hari ini") {
		return true
	}
	return strings.Contains(lower, "berita") && containsAny(lower, "update", "pasar", "market")
}

func detectNewsCategory(lower string) string {
	switch {
	case containsAny(lower, "analisis", "analysis", "teknikal", "fundamental", "emas", "gold"):
		return CategoryMarketAnalysis
	case containsAny(lower, "ekonomi", "data makro", "cpi"):
		return CategoryEconomic
	case containsAny(lower, "kripto", "crypto", "bitcoin"):
		return CategoryCrypto
	default:
		return ""
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
