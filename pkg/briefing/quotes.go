package briefing

import (
	"fmt"
	"regexp"
	"strings"

	"nmai-api/pkg/market"
)

var (
	goldSymbolRe   = regexp.MustCompile(`(?i)gold|emas|xau`)
	silverSymbolRe = regexp.MustCompile(`(?i)silver|perak|xag`)
	oilSymbolRe    = regexp.MustCompile(`(?i)oil|brent|cl`)
	forexSymbolRe  = regexp.MustCompile(`[A-Z]{3}/?[A-Z]{3}`)
)

// QuoteCategory classifies a feed symbol for the quote digest.
func QuoteCategory(symbol string) string {
	upper := strings.ToUpper(symbol)
	switch {
	case goldSymbolRe.MatchString(symbol) || upper == "LGD":
		return "emas (asumsi USD per troy ounce)"
	case silverSymbolRe.MatchString(symbol) || upper == "LSI":
		return "perak (asumsi USD per troy ounce)"
	case oilSymbolRe.MatchString(symbol):
		return "minyak (asumsi USD per barrel)"
	case forexSymbolRe.MatchString(symbol):
		return "pasangan mata uang (forex)"
	default:
		return "indeks / instrumen lainnya"
	}
}

// QuotesDigest summarises the quote board.
type QuotesDigest struct {
	// UpdatedAt is the board timestamp in WIB, empty when unknown.
	UpdatedAt string
	Lines     []string
}

// DigestQuotes builds one line per quote row.
func DigestQuotes(board *market.QuoteBoard) QuotesDigest {
	if board == nil {
		return QuotesDigest{}
	}
	d := QuotesDigest{UpdatedAt: FormatWIB(board.UpdatedAt)}
	for _, q := range board.Rows {
		symbol := raw(q, "-", "symbol")
		pct, _ := q.Float("percentChange")
		d.Lines = append(d.Lines, fmt.Sprintf(
			"- **%s** (%s) sekitar **%s**, bergerak %s sekitar ±%s poin (~%s%%).",
			symbol,
			QuoteCategory(symbol),
			raw(q, "-", "last"),
			direction(pct),
			raw(q, "0", "valueChange"),
			raw(q, "0", "percentChange"),
		))
	}
	return d
}

func direction(pct float64) string {
	switch {
	case pct > 0:
		return "naik"
	case pct < 0:
		return "turun"
	default:
		return "stabil"
	}
}

// HasData reports whether any quote made it into the digest.
func (d QuotesDigest) HasData() bool {
	return len(d.Lines) > 0
}

// Message renders the quotes system message.
func (d QuotesDigest) Message() string {
	if !d.HasData() {
		return "Sistem harga live saat ini tidak berhasil mengambil data. Jika pengguna bertanya harga terkini, jangan mengarang angka; jelaskan bahwa data live sementara tidak tersedia dan beri penjelasan umum."
	}
	var b strings.Builder
	b.WriteString("Sistem Harga Live (internal Newsmaker):\n\n")
	if d.UpdatedAt != "" {
		fmt.Fprintf(&b, "Data harga terakhir diperbarui sekitar **%s WIB**.\n\n", d.UpdatedAt)
	}
	b.WriteString("Ringkasan harga terkini (hanya referensi internal, rangkai ulang dengan kata-katamu sendiri):\n")
	b.WriteString(strings.Join(d.Lines, "\n"))
	b.WriteString("\n\nPanduan menjawab:\n")
	b.WriteString("- Gunakan angka ini hanya ketika pengguna bertanya harga terkini atau pergerakan terbaru.\n")
	b.WriteString("- Jangan menyalin bullet di atas mentah-mentah sebagai jawaban final.\n")
	b.WriteString("- Jika instrumen yang diminta tidak ada, jelaskan dengan sopan dan beri konteks edukatif.\n")
	return b.String()
}
