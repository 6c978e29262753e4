// Package instrument maps free text and feed symbols to the instruments
// NM Ai knows how to describe.
package instrument

import (
	"regexp"
	"strings"

	"nmai-api/pkg/market"
)

// Key identifies an instrument.
type Key string

const (
	Gold   Key = "gold"
	Silver Key = "silver"
	Oil    Key = "oil"
	HSI    Key = "hsi"
	SNI    Key = "sni"
	USDCHF Key = "usdchf"
	USDJPY Key = "usdjpy"
	GBPUSD Key = "gbpusd"
	AUDUSD Key = "audusd"
	EURUSD Key = "eurusd"
	USDIDR Key = "usdidr"
	Other  Key = "other"
)

// Spec describes one instrument.
type Spec struct {
	Key Key
	// Pattern matches lower-cased user text mentioning the instrument.
	Pattern *regexp.Regexp
	// Hints are upper-case substrings of feed symbols for the instrument.
	Hints []string
	// DisplayName is the short name used in price replies.
	DisplayName string
	// Name is the descriptive Indonesian label used in context text.
	Name string
	Unit string
}

// Table is an ordered instrument list. Detection walks it in order.
type Table struct {
	specs []Spec
	other Spec
}

// NewTable builds a table from specs. other describes unmatched text.
func NewTable(other Spec, specs ...Spec) *Table {
	return &Table{specs: specs, other: other}
}

// Default returns the built-in instrument table.
func Default() *Table {
	return defaultTable
}

var defaultTable = NewTable(
	Spec{Key: Other, Name: "instrumen ini", Unit: "unit harga"},
	Spec{
		Key:         Gold,
		Pattern:     regexp.MustCompile(`(emas|gold|xau|lgd)`),
		Hints:       []string{"LGD", "LGD DAILY", "XAUUSD", "XAU", "GOLD", "EMAS"},
		DisplayName: "Gold",
		Name:        "emas (Gold)",
		Unit:        "USD per troy ounce",
	},
	Spec{
		Key:         Silver,
		Pattern:     regexp.MustCompile(`(perak|silver|xag|lsi)`),
		Hints:       []string{"LSI", "LSI DAILY", "XAGUSD", "XAG", "SILVER", "PERAK"},
		DisplayName: "Silver",
		Name:        "perak (Silver)",
		Unit:        "USD per troy ounce",
	},
	Spec{
		Key:         Oil,
		Pattern:     regexp.MustCompile(`(oil|minyak|bco|brent)`),
		Hints:       []string{"BCO", "BCO DAILY", "OIL", "BRENT"},
		DisplayName: "Oil",
		Name:        "minyak (Oil)",
		Unit:        "USD per barrel",
	},
	Spec{
		Key:         HSI,
		Pattern:     regexp.MustCompile(`(hang\s*seng|hangseng|hsi)`),
		Hints:       []string{"HSI", "HSI DAILY", "HANG SENG"},
		DisplayName: "Hang Seng",
		Name:        "indeks Hang Seng (HSI)",
		Unit:        "poin indeks",
	},
	Spec{
		Key:         SNI,
		Pattern:     regexp.MustCompile(`(nikkei|sni|n225|jepang)`),
		Hints:       []string{"SNI", "SNI DAILY", "NIKKEI", "N225", "JAPAN INDEX"},
		DisplayName: "Nikkei 225",
		Name:        "indeks Nikkei / Jepang (SNI)",
		Unit:        "poin indeks",
	},
	forexSpec(USDCHF, `(usd/chf|usdchf|\bchf\b)`, "USD/CHF", "USDCHF", "CHF"),
	forexSpec(USDJPY, `(usd/jpy|usdjpy|dolar yen|dollar yen|\byen\b|\bjpy\b)`, "USD/JPY", "USDJPY", "YEN", "JPY"),
	forexSpec(GBPUSD, `(gbp/usd|gbpusd|cable|\bpound\b)`, "GBP/USD", "GBPUSD", "CABLE", "POUND"),
	forexSpec(AUDUSD, `(aud/usd|audusd|aussie)`, "AUD/USD", "AUDUSD", "AUSSIE"),
	forexSpec(EURUSD, `(eur/usd|eurusd|euro)`, "EUR/USD", "EURUSD", "EURO"),
	forexSpec(USDIDR, `(usd/idr|usdidr|indo|idr|rupiah)`, "USD/IDR", "USDIDR", "INDO"),
)

func forexSpec(key Key, pattern string, hints ...string) Spec {
	name := "Pasangan mata uang " + hints[0]
	return Spec{
		Key:         key,
		Pattern:     regexp.MustCompile(pattern),
		Hints:       hints,
		DisplayName: name,
		Name:        name,
		Unit:        "nilai tukar (rate)",
	}
}

// Detect returns the first instrument mentioned in text, or Other.
func (t *Table) Detect(text string) Key {
	lower := strings.ToLower(text)
	for _, s := range t.specs {
		if s.Pattern.MatchString(lower) {
			return s.Key
		}
	}
	return t.other.Key
}

// DetectAll returns every instrument mentioned in text, in table order.
func (t *Table) DetectAll(text string) []Key {
	lower := strings.ToLower(text)
	var out []Key
	for _, s := range t.specs {
		if s.Pattern.MatchString(lower) {
			out = append(out, s.Key)
		}
	}
	return out
}

// Label returns the spec for key, or the Other spec when key is unknown.
func (t *Table) Label(key Key) Spec {
	for _, s := range t.specs {
		if s.Key == key {
			return s
		}
	}
	return t.other
}

// MatchesSymbol reports whether symbol carries one of key's hints.
func (t *Table) MatchesSymbol(key Key, symbol string) bool {
	upper := strings.ToUpper(symbol)
	if upper == "" {
		return false
	}
	for _, h := range t.Label(key).Hints {
		if strings.Contains(upper, h) {
			return true
		}
	}
	return false
}

// PickQuote returns the first row whose symbol carries one of key's hints,
// falling back to the first row.
func (t *Table) PickQuote(rows []market.Row, key Key) (market.Row, bool) {
	if len(rows) == 0 {
		return nil, false
	}
	for _, row := range rows {
		if t.MatchesSymbol(key, row.Text(market.SymbolKeys...)) {
			return row, true
		}
	}
	return rows[0], true
}

// PickSeries returns the series whose symbol carries one of key's hints.
// For Other the first series is used.
func (t *Table) PickSeries(groups []market.Series, key Key) (market.Series, bool) {
	for _, g := range groups {
		if t.MatchesSymbol(key, g.Symbol) {
			return g, true
		}
	}
	if key == t.other.Key && len(groups) > 0 {
		return groups[0], true
	}
	return market.Series{}, false
}
