package briefing

import (
	"fmt"
	"strings"
	"time"

	"nmai-api/pkg/instrument"
	"nmai-api/pkg/market"
	"nmai-api/pkg/textparse"
)

// MaxHistoryWindow caps the per-day window listed for "N hari sebelumnya".
const MaxHistoryWindow = 10

var historyTimeKeys = []string{"date", "Date", "time", "Time", "timestamp"}

// SymbolMove is the first-to-last move of one symbol over the feed.
type SymbolMove struct {
	Symbol string
	Start  float64
	End    float64
	Change float64
	Pct    float64
}

// Trend describes the move in words. Thresholds are ±3% and ±15%.
func (m SymbolMove) Trend() string {
	switch {
	case m.Pct > 15:
		return "mengalami kenaikan tajam (uptrend kuat) dalam periode tersebut."
	case m.Pct > 3:
		return "cenderung naik (uptrend) dalam periode tersebut."
	case m.Pct < -15:
		return "mengalami penurunan tajam (downtrend kuat) dalam periode tersebut."
	case m.Pct < -3:
		return "cenderung turun (downtrend) dalam periode tersebut."
	default:
		return "cenderung sideways / bergerak datar dalam periode data yang tersedia."
	}
}

func (m SymbolMove) line() string {
	return fmt.Sprintf("- **%s**: dari sekitar **%s** menjadi sekitar **%s**, perubahan ±%s poin (~%.2f%%). Secara garis besar instrumen ini %s",
		m.Symbol, compact(m.Start), compact(m.End), compact(m.Change), m.Pct, m.Trend())
}

// HistoricalDigest summarises the historical feed.
type HistoricalDigest struct {
	DateFrom string
	Moves    []SymbolMove
	// Window lists daily prices of the requested instrument when the
	// prompt asked for "N hari sebelumnya"; empty otherwise.
	Window string
}

// DigestHistorical computes per-symbol moves and, when q carries a
// days-ago phrase, the daily window of q's instrument.
func DigestHistorical(feed *market.HistoryFeed, q Query, table *instrument.Table) HistoricalDigest {
	if feed == nil {
		return HistoricalDigest{}
	}
	d := HistoricalDigest{DateFrom: feed.DateFrom}
	groups := market.GroupBySymbol(feed.Rows)
	for _, g := range groups {
		sorted := g.Sorted()
		if len(sorted) == 0 {
			continue
		}
		start, ok1 := sorted[0].Float(market.ClosePriceKeys...)
		end, ok2 := sorted[len(sorted)-1].Float(market.ClosePriceKeys...)
		if !ok1 || !ok2 {
			continue
		}
		m := SymbolMove{Symbol: g.Symbol, Start: start, End: end, Change: end - start}
		if start != 0 {
			m.Pct = m.Change / start * 100
		}
		d.Moves = append(d.Moves, m)
	}

	if q.HasDaysAgo && q.DaysAgo.DaysAgo > 0 {
		if series, ok := table.PickSeries(groups, q.Instrument); ok && len(series.Rows) > 0 {
			d.Window = dailyWindow(series, q, table)
		}
	}
	return d
}

func dailyWindow(series market.Series, q Query, table *instrument.Table) string {
	loc := textparse.ReferenceLocation()
	prices := make(map[string]float64, len(series.Rows))
	for _, row := range series.Rows {
		t, ok := row.Time(historyTimeKeys...)
		if !ok {
			continue
		}
		price, ok := row.Float(market.ClosePriceKeys...)
		if !ok {
			continue
		}
		prices[textparse.FormatISODate(t.In(loc))] = price
	}

	spec := table.Label(q.Instrument)
	name := spec.Name
	if q.Instrument == instrument.Other {
		name = series.Symbol
	}
	window := min(q.DaysAgo.DaysAgo, MaxHistoryWindow)

	var lines []string
	y, mo, day := q.Now.In(loc).Date()
	for i := window; i >= 1; i-- {
		iso := textparse.FormatISODate(time.Date(y, mo, day-i, 0, 0, 0, 0, loc))
		if price, ok := prices[iso]; ok {
			lines = append(lines, fmt.Sprintf("- %s: sekitar **%s** %s.", iso, compact(price), spec.Unit))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return fmt.Sprintf("Ringkasan harga %s untuk %d hari terakhir (data historis internal):\n", name, window) +
		strings.Join(lines, "\n") +
		"\n\nGunakan daftar ini saat pengguna meminta 'historical data X hari sebelumnya' untuk instrumen tersebut."
}

// HasData reports whether at least one symbol had a start and end price.
func (d HistoricalDigest) HasData() bool {
	return len(d.Moves) > 0
}

// Message renders the historical system message for q.
func (d HistoricalDigest) Message(q Query) string {
	if !d.HasData() {
		return "Sistem tidak berhasil mengambil data historis harga. Jika pengguna bertanya tentang pergerakan historis, jawab secara konseptual tanpa menyebut angka spesifik."
	}
	rangeLabel := "selama periode data historis yang tersedia"
	if d.DateFrom != "" {
		rangeLabel = fmt.Sprintf("sejak **%s** hingga data terbaru yang tersedia", d.DateFrom)
	}

	var b strings.Builder
	b.WriteString("Sistem Data Historis Harga (internal Newsmaker):\n\n")
	fmt.Fprintf(&b, "Ringkasan pergerakan harga %s (per simbol utama):\n", rangeLabel)
	for i, m := range d.Moves {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.line())
	}
	b.WriteString("\n\n")
	if d.Window != "" {
		b.WriteString(d.Window)
		b.WriteString("\n\n")
	}
	b.WriteString("Panduan menjawab:\n")
	b.WriteString("- Gunakan saat pengguna bertanya tentang tren beberapa waktu terakhir atau X hari sebelumnya.\n")
	b.WriteString("- Jangan mengarang angka historis yang tidak ada di data.\n\n")
	if q.HasDaysAgo {
		fmt.Fprintf(&b, "Pengguna menggunakan frasa waktu relatif, misalnya **%d hari sebelumnya** dari hari ini (WIB), kira-kira tanggal **%s**.\n", q.DaysAgo.DaysAgo, q.DaysAgo.ResolvedDate)
		b.WriteString("- Jika pertanyaan seperti: 'historical data [instrumen] 5 hari sebelumnya', gunakan data historis instrumen tersebut (jika tersedia) untuk merangkum harga per hari.\n")
		b.WriteString("- Jika data per hari untuk periode tersebut tidak lengkap, jelaskan keterbatasan dan jangan mengarang angka.\n")
	} else {
		b.WriteString("Jika pengguna menggunakan frasa 'X hari sebelumnya' atau 'X hari lalu', anggap X sebagai jumlah hari mundur dari tanggal hari ini (WIB) dan gunakan data historis untuk mendekati tanggal tersebut.\n")
	}
	return b.String()
}
