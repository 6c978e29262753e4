package textparse

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const maxDecimals = 9

// ParseLocaleNumber parses s after converting its first comma to a dot.
// It returns NaN when s is not a finite number.
func ParseLocaleNumber(s string) float64 {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(v) {
		return math.NaN()
	}
	return v
}

// FormatLocaleNumber renders v in id-ID style with "." grouping and ","
// decimals, rounding half away from zero. Non-finite values render as "-".
func FormatLocaleNumber(v float64, decimals int) string {
	if !isFinite(v) {
		return "-"
	}
	decimals = clampDecimals(decimals)
	rounded := decimal.NewFromFloat(v).Round(int32(decimals)).InexactFloat64()
	format := "#.###,"
	if decimals > 0 {
		format += strings.Repeat("#", decimals)
	}
	return humanize.FormatFloat(format, rounded)
}

// FormatFixed renders v with a dot decimal separator and no grouping.
func FormatFixed(v float64, decimals int) string {
	if !isFinite(v) {
		return "-"
	}
	return decimal.NewFromFloat(v).StringFixed(int32(clampDecimals(decimals)))
}

// FormatPlain renders v with the shortest representation, e.g. "0.5" or "100".
func FormatPlain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clampDecimals(d int) int {
	if d < 0 {
		return 0
	}
	if d > maxDecimals {
		return maxDecimals
	}
	return d
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
