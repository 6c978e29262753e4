package dispatch

import (
	"fmt"
	"math"
	"strings"

	"nmai-api/pkg/briefing"
	"nmai-api/pkg/instrument"
	"nmai-api/pkg/market"
	"nmai-api/pkg/textparse"
)

var (
	changeKeys  = []string{"valueChange", "change", "diff"}
	percentKeys = []string{"percentChange", "pctChange", "percentage"}
	// Prices, leverage and lots belong to the margin simulator.
	priceExclusions = []string{"margin", "leverage", " lot"}
	priceTriggers   = []string{"berapa harga", "harga berapa", "harga emas sekarang", "harga xauusd sekarang", "price ", "quote "}
)

const (
	allCalendarHint  = "\n\nFokus di atas hanya event berdampak tinggi. Jika ingin melihat semua event, tulis saja: kalender ekonomi hari ini lengkap."
	emptyCalendarRow = "- Tidak ada event terdaftar pada tanggal ini di sistem Newsmaker."
)

func (d *Dispatcher) goldPrice(in Input) (float64, bool) {
	row, ok := d.table.PickQuote(in.Quotes, instrument.Gold)
	if !ok {
		return 0, false
	}
	v, ok := row.Float(market.LastPriceKeys...)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

func isPriceQuestion(lower string) bool {
	for _, ex := range priceExclusions {
		if strings.Contains(lower, ex) {
			return false
		}
	}
	return strings.HasPrefix(lower, "harga ") || containsAny(lower, priceTriggers...)
}

func (d *Dispatcher) price(in Input, lower string) (string, bool) {
	if len(in.Quotes) == 0 || !isPriceQuestion(lower) {
		return "", false
	}
	keys := d.table.DetectAll(in.Text)
	if len(keys) == 0 {
		keys = []instrument.Key{d.table.Detect(in.Text)}
	}

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		row, ok := d.table.PickQuote(in.Quotes, key)
		if !ok {
			continue
		}
		lines = append(lines, d.priceLine(key, row))
	}
	if len(lines) == 0 {
		return "", false
	}

	updated := ""
	if !in.QuotesUpdatedAt.IsZero() {
		updated = fmt.Sprintf(" (pembaruan sekitar %s WIB)", in.QuotesUpdatedAt.In(d.loc).Format("02/01/2006, 15.04"))
	}
	return fmt.Sprintf("Harga terkini berdasarkan data internal Newsmaker%s:\n\n", updated) +
		strings.Join(lines, "\n") +
		"\n\nJika mau, kamu bisa minta penjelasan faktor yang mempengaruhi salah satu instrumen di atas.", true
}

func (d *Dispatcher) priceLine(key instrument.Key, row market.Row) string {
	spec := d.table.Label(key)
	name := spec.DisplayName
	if name == "" {
		name = spec.Name
	}

	last := row.TextOr("-", market.LastPriceKeys...)
	if v, ok := row.Float(market.LastPriceKeys...); ok {
		last = money(v)
	}

	change := "relatif stabil tanpa perubahan signifikan"
	if v, ok := row.Float(changeKeys...); ok && v != 0 {
		dir := "naik"
		if v < 0 {
			dir = "turun"
		}
		change = fmt.Sprintf("%s sekitar %s poin", dir, money(math.Abs(v)))
	}
	pct := ""
	if v, ok := row.Float(percentKeys...); ok && v != 0 {
		pct = fmt.Sprintf(" (~%s%%)", textparse.FormatFixed(v, 2))
	}
	return fmt.Sprintf("- **%s**: sekitar **%s** (%s), %s%s.", name, last, spec.Unit, change, pct)
}

func (d *Dispatcher) calendar(in Input, lower string) (string, bool) {
	if !briefing.IsCalendarOverview(lower) {
		return "", false
	}
	cal := in.Calendar
	label := cal.Label
	if label == "" {
		today := textparse.FormatISODate(in.Now.In(d.loc))
		label = textparse.RelativeDayLabel(today, today)
	}
	if !cal.HasData() {
		return fmt.Sprintf("Kalender ekonomi %s di sistem Newsmaker saat ini tidak tersedia atau kosong.\n", label) +
			"Jadi, NM Ai tidak bisa menyebut jam dan event spesifik untuk hari ini. " +
			"Kalau mau, NM Ai bisa jelaskan contoh event ekonomi penting secara umum tanpa menyebut tanggal dan jam tertentu.", true
	}

	header := fmt.Sprintf("Kalender ekonomi %s di sistem Newsmaker:\n\n", label)
	if briefing.WantsHighImpact(lower) {
		body := cal.HighImpact
		if body == "" {
			body = briefing.NoHighImpactLine
		}
		return header + body + allCalendarHint, true
	}
	body := cal.All
	if body == "" {
		body = emptyCalendarRow
	}
	return header + body, true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
