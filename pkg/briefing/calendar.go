package briefing

import (
	"fmt"
	"strings"

	"nmai-api/pkg/market"
	"nmai-api/pkg/textparse"
)

// MaxCalendarEvents caps the events carried into a digest.
const MaxCalendarEvents = 40

// NoHighImpactLine is the high-impact summary when no event qualifies.
const NoHighImpactLine = "- Tidak ada event berdampak sangat tinggi (★★★) pada tanggal ini."

// CalendarEvent is a normalised calendar row. Missing fields read "-",
// except Actual which stays empty.
type CalendarEvent struct {
	Date     string
	Time     string
	Currency string
	Impact   string
	Event    string
	Previous string
	Forecast string
	Actual   string
}

// HighImpact reports whether the event is rated ★★★ or "high".
func (e CalendarEvent) HighImpact() bool {
	return strings.Contains(e.Impact, "★★★") || strings.Contains(strings.ToLower(e.Impact), "high")
}

// ImpactLabel maps star ratings and words to tinggi/sedang/rendah.
func ImpactLabel(impact string) string {
	lower := strings.ToLower(impact)
	switch {
	case strings.Contains(impact, "★★★") || strings.Contains(lower, "high"):
		return "tinggi"
	case strings.Contains(impact, "★★") || strings.Contains(lower, "medium"):
		return "sedang"
	case strings.Contains(impact, "★") || strings.Contains(lower, "low"):
		return "rendah"
	default:
		return "tidak diketahui"
	}
}

// CalendarDigest summarises the events of one calendar date.
type CalendarDigest struct {
	Date  string
	Today string
	// Label names Date relative to Today, e.g. "besok (2025-11-27)".
	Label  string
	Events []CalendarEvent
	// All lists every event; HighImpact lists ★★★ events or NoHighImpactLine.
	All        string
	HighImpact string
}

// DigestCalendar keeps the feed rows dated on date (rows without a date
// are kept), normalises them and renders both summaries.
func DigestCalendar(feed *market.CalendarFeed, date, today string) CalendarDigest {
	d := CalendarDigest{Date: date, Today: today, Label: textparse.RelativeDayLabel(date, today)}
	if feed == nil {
		return d
	}
	for _, row := range feed.Rows {
		if len(d.Events) == MaxCalendarEvents {
			break
		}
		if eventDate := calendarRowDate(row); eventDate != "" && !strings.HasPrefix(eventDate, date) {
			continue
		}
		d.Events = append(d.Events, CalendarEvent{
			Date:     date,
			Time:     raw(row, "-", "time"),
			Currency: raw(row, "-", "currency"),
			Impact:   raw(row, "-", "impact"),
			Event:    raw(row, "-", "event"),
			Previous: raw(row, "-", "previous"),
			Forecast: raw(row, "-", "forecast"),
			Actual:   raw(row, "", "actual"),
		})
	}

	all := make([]string, 0, len(d.Events))
	var high []string
	for _, ev := range d.Events {
		actual := ev.Actual
		if actual == "" {
			actual = "-"
		}
		all = append(all, fmt.Sprintf("- Pukul %s, %s – %s. Dampaknya **%s** (%s). Sebelumnya: %s, perkiraan: %s, aktual: %s.",
			ev.Time, ev.Currency, ev.Event, ImpactLabel(ev.Impact), ev.Impact, ev.Previous, ev.Forecast, actual))
		if ev.HighImpact() {
			high = append(high, fmt.Sprintf("- Pukul %s, %s – %s (dampak tinggi %s).", ev.Time, ev.Currency, ev.Event, ev.Impact))
		}
	}
	d.All = strings.Join(all, "\n")
	if len(high) > 0 {
		d.HighImpact = strings.Join(high, "\n")
	} else {
		d.HighImpact = NoHighImpactLine
	}
	return d
}

func calendarRowDate(row market.Row) string {
	if date := row.Text("date"); date != "" {
		return date
	}
	if history := row.Object("details").Objects("history"); len(history) > 0 {
		return history[0].Text("date")
	}
	return ""
}

// HasData reports whether any event survived filtering.
func (d CalendarDigest) HasData() bool {
	return len(d.Events) > 0
}

// Message renders the calendar system message for q.
func (d CalendarDigest) Message(q Query) string {
	if !d.HasData() {
		return fmt.Sprintf("Kalender ekonomi internal untuk %s tidak berhasil diambil. Jika pengguna bertanya jadwal rilis, jelaskan keterbatasan data dan jangan mengarang jam/event.", d.Label)
	}

	var extra string
	switch {
	case q.HighImpactOnly:
		extra = "Pengguna menanyakan event berdampak tinggi (high impact / ★★★). Utamakan event tersebut.\n"
	case q.CalendarOverview:
		extra = "Pengguna menanyakan kalender ekonomi secara umum. Tampilkan seluruh event tanggal tersebut dalam bentuk bullet.\n"
	default:
		extra = "Jika pengguna bertanya event tertentu (NFP, CPI, suku bunga), fokus ke event tersebut.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Kalender ekonomi internal untuk %s:\n\n", d.Label)
	fmt.Fprintf(&b, "Catatan: hari ini adalah %s. Tanggal yang dibahas adalah %s. Gunakan frasa **%s** saat menyebut tanggal ini.\n\n", d.Today, d.Date, d.Label)
	if q.HighImpactOnly {
		b.WriteString("Event berdampak tinggi:\n")
		b.WriteString(d.HighImpact)
	} else {
		b.WriteString("Daftar event utama:\n")
		b.WriteString(d.All)
		b.WriteString("\n\nRingkasan event berdampak tinggi:\n")
		b.WriteString(d.HighImpact)
	}
	b.WriteString("\n\n")
	b.WriteString(extra)
	return b.String()
}
