package calc

// HighLow is a swing range. Parsers guarantee High >= Low.
type HighLow struct {
	High float64
	Low  float64
}

// Range returns High - Low.
func (hl HighLow) Range() float64 {
	return hl.High - hl.Low
}

// Trend selects which side of the swing Fibonacci levels are measured from.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// FibLevel is a single labelled Fibonacci price.
type FibLevel struct {
	Label string
	Ratio float64
	Price float64
}

type fibRatio struct {
	label string
	ratio float64
}

// Labels are used verbatim as table keys by the reply formatters.
var (
	retracementRatios = []fibRatio{
		{"23.60%", 0.236},
		{"38.20%", 0.382},
		{"50.00%", 0.5},
		{"61.80%", 0.618},
		{"78.60%", 0.786},
	}
	projectionRatios = []fibRatio{
		{"138.20%", 0.382},
		{"150.00%", 0.5},
		{"161.80%", 0.618},
		{"200.00%", 1.0},
		{"238.20%", 1.382},
		{"261.80%", 1.618},
	}
)

// RetracementLabels returns the retracement label vocabulary in ascending ratio order.
func RetracementLabels() []string {
	return labelsOf(retracementRatios)
}

// ProjectionLabels returns the projection label vocabulary in ascending ratio order.
func ProjectionLabels() []string {
	return labelsOf(projectionRatios)
}

func labelsOf(ratios []fibRatio) []string {
	out := make([]string, len(ratios))
	for i, r := range ratios {
		out[i] = r.label
	}
	return out
}

// FibonacciLevels is the full retracement and projection table for one trend.
type FibonacciLevels struct {
	Trend        Trend
	High         float64
	Low          float64
	Range        float64
	Retracements []FibLevel
	Projections  []FibLevel
}

// Retracement looks up a retracement price by label.
func (f FibonacciLevels) Retracement(label string) (float64, bool) {
	return findLevel(f.Retracements, label)
}

// Projection looks up a projection price by label.
func (f FibonacciLevels) Projection(label string) (float64, bool) {
	return findLevel(f.Projections, label)
}

func findLevel(levels []FibLevel, label string) (float64, bool) {
	for _, lvl := range levels {
		if lvl.Label == label {
			return lvl.Price, true
		}
	}
	return 0, false
}

// Fibonacci computes retracements and projections of hl for trend.
// Uptrend retracements are listed from 78.60% down to 23.60%; downtrend
// retracements from 23.60% up to 78.60%. Projections always ascend.
func Fibonacci(hl HighLow, trend Trend) FibonacciLevels {
	if trend != TrendDown {
		trend = TrendUp
	}
	d := hl.Range()
	out := FibonacciLevels{
		Trend:        trend,
		High:         hl.High,
		Low:          hl.Low,
		Range:        d,
		Retracements: make([]FibLevel, 0, len(retracementRatios)),
		Projections:  make([]FibLevel, 0, len(projectionRatios)),
	}

	if trend == TrendUp {
		for i := len(retracementRatios) - 1; i >= 0; i-- {
			r := retracementRatios[i]
			out.Retracements = append(out.Retracements, FibLevel{Label: r.label, Ratio: r.ratio, Price: hl.Low + d*r.ratio})
		}
		for _, r := range projectionRatios {
			out.Projections = append(out.Projections, FibLevel{Label: r.label, Ratio: r.ratio, Price: hl.High + d*r.ratio})
		}
		return out
	}

	for _, r := range retracementRatios {
		out.Retracements = append(out.Retracements, FibLevel{Label: r.label, Ratio: r.ratio, Price: hl.High - d*r.ratio})
	}
	for _, r := range projectionRatios {
		out.Projections = append(out.Projections, FibLevel{Label: r.label, Ratio: r.ratio, Price: hl.Low - d*r.ratio})
	}
	return out
}
