package market

import (
	"sort"
	"time"
)

// Field priority lists shared by every consumer of feed rows.
var (
	SymbolKeys     = []string{"symbol", "Symbol", "ticker", "Ticker"}
	DateKeys       = []string{"date", "Date", "time", "Time"}
	ClosePriceKeys = []string{"close", "Close", "last", "Last", "price", "Price"}
	LastPriceKeys  = []string{"last", "close", "price"}
)

// UnknownSymbol groups rows that carry no symbol field.
const UnknownSymbol = "UNKNOWN"

// Series is the history of one symbol.
type Series struct {
	Symbol string
	Rows   []Row
}

// GroupBySymbol splits rows per symbol, keeping first-appearance order.
func GroupBySymbol(rows []Row) []Series {
	index := make(map[string]int)
	var out []Series
	for _, row := range rows {
		sym := row.TextOr(UnknownSymbol, SymbolKeys...)
		i, ok := index[sym]
		if !ok {
			i = len(out)
			index[sym] = i
			out = append(out, Series{Symbol: sym})
		}
		out[i].Rows = append(out[i].Rows, row)
	}
	return out
}

// Sorted returns the rows ordered by date ascending. Rows without a
// parseable date sort first.
func (s Series) Sorted() []Row {
	sorted := make([]Row, len(s.Rows))
	copy(sorted, s.Rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rowTime(sorted[i]).Before(rowTime(sorted[j]))
	})
	return sorted
}

func rowTime(r Row) time.Time {
	t, _ := r.Time(DateKeys...)
	return t
}
