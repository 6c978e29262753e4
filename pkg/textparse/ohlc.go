package textparse

import (
	"errors"
	"math"
	"regexp"

	"nmai-api/pkg/calc"
)

var (
	// ErrInsufficientInput means the text holds fewer numbers than required.
	ErrInsufficientInput = errors.New("textparse: insufficient numeric input")
	// ErrNonFinite means a number was found but did not parse to a finite value.
	ErrNonFinite = errors.New("textparse: non-finite number")
)

const numberPattern = `-?\d+(?:[.,]\d+)?`

var bareNumberRe = regexp.MustCompile(numberPattern)

// labelRule extracts the number that follows one of a field's labels.
type labelRule struct {
	re *regexp.Regexp
}

// A label must be followed by ":", "=" or whitespace, so timeframe tokens
// such as "h1" or "h4" are not read as labeled values.
func newLabelRule(labels string) labelRule {
	return labelRule{re: regexp.MustCompile(`(?i)\b(?:` + labels + `)(?:\s*[:=]\s*|\s+)(` + numberPattern + `)`)}
}

func (r labelRule) extract(text string) (float64, error) {
	m := r.re.FindStringSubmatch(text)
	if m == nil {
		return math.NaN(), ErrInsufficientInput
	}
	v := ParseLocaleNumber(m[1])
	if !isFinite(v) {
		return v, ErrNonFinite
	}
	return v, nil
}

var (
	openRule  = newLabelRule("open|o")
	highRule  = newLabelRule("high|h")
	lowRule   = newLabelRule("low|l")
	closeRule = newLabelRule("close|c")
)

// strategy yields n values from text or an error explaining why it could not.
type strategy func(text string, n int) ([]float64, error)

// labeled reads one value per rule; every rule must succeed.
func labeled(rules ...labelRule) strategy {
	return func(text string, n int) ([]float64, error) {
		out := make([]float64, 0, n)
		for _, r := range rules[:n] {
			v, err := r.extract(text)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
}

// positional takes the first n bare numbers in text order.
func positional(text string, n int) ([]float64, error) {
	tokens := bareNumberRe.FindAllString(text, n)
	if len(tokens) < n {
		return nil, ErrInsufficientInput
	}
	out := make([]float64, n)
	for i, tok := range tokens {
		v := ParseLocaleNumber(tok)
		if !isFinite(v) {
			return nil, ErrNonFinite
		}
		out[i] = v
	}
	return out, nil
}

// firstOf runs strategies in order and returns the first complete result.
// When all fail, the last strategy's error is returned.
func firstOf(text string, n int, strategies ...strategy) ([]float64, error) {
	err := ErrInsufficientInput
	for _, s := range strategies {
		var vals []float64
		vals, err = s(text, n)
		if err == nil {
			return vals, nil
		}
	}
	return nil, err
}

// ParseHighLow extracts a swing range from text. Labeled "high"/"h" and
// "low"/"l" values are preferred, then the first two bare numbers. The
// result is always ordered so High >= Low.
func ParseHighLow(text string) (calc.HighLow, error) {
	vals, err := firstOf(text, 2, labeled(highRule, lowRule), positional)
	if err != nil {
		return calc.HighLow{}, err
	}
	return calc.HighLow{
		High: math.Max(vals[0], vals[1]),
		Low:  math.Min(vals[0], vals[1]),
	}, nil
}

// ParseOHLC extracts a bar from text. Labeled values are preferred, then
// the first four bare numbers read as open, high, low, close. Values are
// returned as given.
func ParseOHLC(text string) (calc.OHLC, error) {
	vals, err := firstOf(text, 4, labeled(openRule, highRule, lowRule, closeRule), positional)
	if err != nil {
		return calc.OHLC{}, err
	}
	return calc.OHLC{Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3]}, nil
}
