package textparse

import (
	"regexp"

	"nmai-api/pkg/calc"
)

var (
	lotRe = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*lot`)
	// leverageRe takes the leftmost ratio. The unlabeled "1:N" / "1/N" form
	// also matches inside dates, so "21/11/2025" reads as 1:11 when it comes
	// before any stated leverage.
	leverageRe = regexp.MustCompile(`(?i)leverage\s*1\s*[:/]\s*(\d+(?:[.,]\d+)?)|1\s*[:/]\s*(\d+(?:[.,]\d+)?)`)
	priceRe    = regexp.MustCompile(`(?i)\b(?:harga|price)\s+(\d+(?:[.,]\d+)?)`)

	downtrendRe = regexp.MustCompile(`(?i)downtren|downtrend|tren turun|trend turun|turun`)
	uptrendRe   = regexp.MustCompile(`(?i)uptren|uptrend|tren naik|trend naik|naik`)
)

// ParseLot reads "<N> lot". It returns calc.DefaultLotSize when absent or unparsable.
func ParseLot(text string) float64 {
	m := lotRe.FindStringSubmatch(text)
	if m == nil {
		return calc.DefaultLotSize
	}
	if v := ParseLocaleNumber(m[1]); isFinite(v) {
		return v
	}
	return calc.DefaultLotSize
}

// ParseLeverage reads "leverage 1:<N>", "1:<N>" or "1/<N>". The stated
// value is returned as is, including zero, so the calculator can reject it.
// Without a match it returns calc.DefaultLeverage.
func ParseLeverage(text string) float64 {
	m := leverageRe.FindStringSubmatch(text)
	if m == nil {
		return calc.DefaultLeverage
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	if v := ParseLocaleNumber(raw); isFinite(v) {
		return v
	}
	return calc.DefaultLeverage
}

// ParseStatedPrice reads "harga <N>" or "price <N>".
func ParseStatedPrice(text string) (float64, bool) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v := ParseLocaleNumber(m[1])
	return v, isFinite(v)
}

// DetectTrend returns calc.TrendDown when the text uses downtrend vocabulary
// and calc.TrendUp otherwise.
func DetectTrend(text string) calc.Trend {
	switch {
	case downtrendRe.MatchString(text):
		return calc.TrendDown
	case uptrendRe.MatchString(text):
		return calc.TrendUp
	default:
		return calc.TrendUp
	}
}
