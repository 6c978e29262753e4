package calc

// OHLC is a single bar of open/high/low/close prices. No ordering between
// High and Low is enforced.
type OHLC struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Scheme names a pivot calculation method.
type Scheme string

const (
	SchemeClassic   Scheme = "classic"
	SchemeWoodie    Scheme = "woodie"
	SchemeCamarilla Scheme = "camarilla"
)

// Level names, in display order from the highest resistance to the lowest support.
var LevelNames = []string{"R4", "R3", "R2", "R1", "P", "S1", "S2", "S3", "S4"}

// PivotLevels holds the pivot and four resistance/support levels of one scheme.
type PivotLevels struct {
	P  float64
	R1 float64
	R2 float64
	R3 float64
	R4 float64
	S1 float64
	S2 float64
	S3 float64
	S4 float64
}

// Level returns the level value for one of LevelNames.
func (l PivotLevels) Level(name string) (float64, bool) {
	switch name {
	case "P":
		return l.P, true
	case "R1":
		return l.R1, true
	case "R2":
		return l.R2, true
	case "R3":
		return l.R3, true
	case "R4":
		return l.R4, true
	case "S1":
		return l.S1, true
	case "S2":
		return l.S2, true
	case "S3":
		return l.S3, true
	case "S4":
		return l.S4, true
	default:
		return 0, false
	}
}

// PivotSet groups the three schemes computed from the same bar.
type PivotSet struct {
	Classic   PivotLevels
	Woodie    PivotLevels
	Camarilla PivotLevels
}

// Scheme returns the levels of the named scheme.
func (s PivotSet) Scheme(name Scheme) (PivotLevels, bool) {
	switch name {
	case SchemeClassic:
		return s.Classic, true
	case SchemeWoodie:
		return s.Woodie, true
	case SchemeCamarilla:
		return s.Camarilla, true
	default:
		return PivotLevels{}, false
	}
}

// Pivots computes Classic, Woodie and Camarilla levels for bar.
// Non-finite input propagates as NaN.
func Pivots(bar OHLC) PivotSet {
	return PivotSet{
		Classic:   Classic(bar),
		Woodie:    Woodie(bar),
		Camarilla: Camarilla(bar),
	}
}

// Classic returns floor-trader pivots. S4 uses a coefficient of 4 while R4
// uses 3; both values are published that way and callers rely on them.
func Classic(bar OHLC) PivotLevels {
	h, l, c := bar.High, bar.Low, bar.Close
	p := (h + l + c) / 3
	rng := h - l
	return PivotLevels{
		P:  p,
		R1: 2*p - l,
		S1: 2*p - h,
		R2: p + rng,
		S2: p - rng,
		R3: p + 2*rng,
		S3: p - 2*rng,
		R4: p + 3*rng,
		S4: p - 4*rng,
	}
}

// Woodie weights the open twice in the pivot.
func Woodie(bar OHLC) PivotLevels {
	o, h, l := bar.Open, bar.High, bar.Low
	p := (h + l + 2*o) / 4
	rng := h - l
	return PivotLevels{
		P:  p,
		R1: 2*p - l,
		S1: 2*p - h,
		R2: p + rng,
		S2: p - rng,
		R3: h + 2*(p-l),
		S3: l - 2*(h-p),
		R4: p + 3*rng,
		S4: p - 3*rng,
	}
}

const camarillaK = 1.1

// Camarilla spreads levels around the close using range*1.1 over 12, 6, 4 and 2.
func Camarilla(bar OHLC) PivotLevels {
	h, l, c := bar.High, bar.Low, bar.Close
	step := (h - l) * camarillaK
	return PivotLevels{
		P:  (h + l + c) / 3,
		R1: c + step/12,
		R2: c + step/6,
		R3: c + step/4,
		R4: c + step/2,
		S1: c - step/12,
		S2: c - step/6,
		S3: c - step/4,
		S4: c - step/2,
	}
}
