package briefing

import (
	"fmt"
	"math"
	"time"

	"nmai-api/pkg/market"
	"nmai-api/pkg/textparse"
)

// Timestamp layouts in the id-ID style, e.g. "26/11/2025, 09.05".
const (
	layoutMinute = "02/01/2006, 15.04"
	layoutSecond = "02/01/2006, 15.04.05"
	layoutClock  = "15.04"
)

// FormatWIB renders t in the reference zone to the minute. The zero time
// renders as "".
func FormatWIB(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(textparse.ReferenceLocation()).Format(layoutMinute)
}

// formatClock renders the time of day in the reference zone.
func formatClock(t time.Time) string {
	return t.In(textparse.ReferenceLocation()).Format(layoutClock)
}

// compact renders prices with no decimals from 100 upward, else two.
func compact(v float64) string {
	if math.Abs(v) >= 100 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// raw renders a feed value the way it arrived: strings verbatim, numbers
// in their shortest form.
func raw(r market.Row, fallback string, keys ...string) string {
	return r.TextOr(fallback, keys...)
}
