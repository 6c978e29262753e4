package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestClassicPivotFixture(t *testing.T) {
	got := Classic(OHLC{Open: 95, High: 110, Low: 90, Close: 100})

	want := map[string]float64{
		"P": 100, "R1": 110, "S1": 90, "R2": 120, "S2": 80,
		"R3": 140, "S3": 60, "R4": 160, "S4": 20,
	}
	for _, name := range LevelNames {
		v, ok := got.Level(name)
		require.True(t, ok, name)
		assert.InDelta(t, want[name], v, eps, name)
	}
	// R1-P and P-S1 coincide for this bar because P sits mid-range.
	assert.InDelta(t, got.R1-got.P, got.P-got.S1, eps)
}

func TestClassicS4KeepsCoefficientFour(t *testing.T) {
	got := Classic(OHLC{High: 2000, Low: 1900, Close: 1950})
	p := (2000.0 + 1900 + 1950) / 3
	assert.InDelta(t, p+300, got.R4, eps)
	assert.InDelta(t, p-400, got.S4, eps)
}

func TestWoodie(t *testing.T) {
	got := Woodie(OHLC{Open: 100, High: 110, Low: 90, Close: 105})

	assert.InDelta(t, 100.0, got.P, eps)
	assert.InDelta(t, 110.0, got.R1, eps)
	assert.InDelta(t, 90.0, got.S1, eps)
	assert.InDelta(t, 120.0, got.R2, eps)
	assert.InDelta(t, 80.0, got.S2, eps)
	assert.InDelta(t, 130.0, got.R3, eps)
	assert.InDelta(t, 70.0, got.S3, eps)
	assert.InDelta(t, 160.0, got.R4, eps)
	assert.InDelta(t, 40.0, got.S4, eps)
}

func TestCamarilla(t *testing.T) {
	got := Camarilla(OHLC{High: 110, Low: 98, Close: 100})

	assert.InDelta(t, 102.666666666, got.P, 1e-6)
	assert.InDelta(t, 101.1, got.R1, eps)
	assert.InDelta(t, 102.2, got.R2, eps)
	assert.InDelta(t, 103.3, got.R3, eps)
	assert.InDelta(t, 106.6, got.R4, eps)
	assert.InDelta(t, 98.9, got.S1, eps)
	assert.InDelta(t, 97.8, got.S2, eps)
	assert.InDelta(t, 96.7, got.S3, eps)
	assert.InDelta(t, 93.4, got.S4, eps)
}

func TestPivotsGroupsSchemes(t *testing.T) {
	bar := OHLC{Open: 1945, High: 1962.5, Low: 1931.2, Close: 1958}
	set := Pivots(bar)

	classic, ok := set.Scheme(SchemeClassic)
	require.True(t, ok)
	assert.Equal(t, Classic(bar), classic)

	woodie, ok := set.Scheme(SchemeWoodie)
	require.True(t, ok)
	assert.Equal(t, Woodie(bar), woodie)

	cam, ok := set.Scheme(SchemeCamarilla)
	require.True(t, ok)
	assert.Equal(t, Camarilla(bar), cam)

	_, ok = set.Scheme("fibonacci")
	assert.False(t, ok)

	// Same input, same bits.
	assert.Equal(t, set, Pivots(bar))
}

func TestPivotsPropagateNaN(t *testing.T) {
	set := Pivots(OHLC{Open: 1, High: math.NaN(), Low: 1, Close: 1})
	assert.True(t, math.IsNaN(set.Classic.P))
	assert.True(t, math.IsNaN(set.Camarilla.R1))
}

func TestFibonacciUp(t *testing.T) {
	got := Fibonacci(HighLow{High: 110, Low: 100}, TrendUp)

	assert.Equal(t, TrendUp, got.Trend)
	assert.InDelta(t, 10.0, got.Range, eps)

	v, ok := got.Retracement("50.00%")
	require.True(t, ok)
	assert.InDelta(t, 105.0, v, eps)

	v, ok = got.Projection("161.80%")
	require.True(t, ok)
	assert.InDelta(t, 116.18, v, eps)

	v, ok = got.Retracement("61.80%")
	require.True(t, ok)
	assert.InDelta(t, 106.18, v, eps)

	labels := make([]string, 0, len(got.Retracements))
	for _, lvl := range got.Retracements {
		labels = append(labels, lvl.Label)
	}
	assert.Equal(t, []string{"78.60%", "61.80%", "50.00%", "38.20%", "23.60%"}, labels)
}

func TestFibonacciDown(t *testing.T) {
	got := Fibonacci(HighLow{High: 110, Low: 100}, TrendDown)

	v, ok := got.Retracement("50.00%")
	require.True(t, ok)
	assert.InDelta(t, 105.0, v, eps)

	v, ok = got.Projection("161.80%")
	require.True(t, ok)
	assert.InDelta(t, 93.82, v, eps)

	v, ok = got.Retracement("23.60%")
	require.True(t, ok)
	assert.InDelta(t, 107.64, v, eps)

	assert.Equal(t, "23.60%", got.Retracements[0].Label)
	assert.Equal(t, "78.60%", got.Retracements[len(got.Retracements)-1].Label)
}

func TestFibonacciLabelVocabulary(t *testing.T) {
	wantRetr := []string{"23.60%", "38.20%", "50.00%", "61.80%", "78.60%"}
	wantProj := []string{"138.20%", "150.00%", "161.80%", "200.00%", "238.20%", "261.80%"}

	assert.Equal(t, wantRetr, RetracementLabels())
	assert.Equal(t, wantProj, ProjectionLabels())

	for _, hl := range []HighLow{{High: 1, Low: 0}, {High: 2650.5, Low: 2310}, {High: -5, Low: -20}} {
		for _, trend := range []Trend{TrendUp, TrendDown} {
			got := Fibonacci(hl, trend)
			var retr, proj []string
			for _, l := range got.Retracements {
				retr = append(retr, l.Label)
			}
			for _, l := range got.Projections {
				proj = append(proj, l.Label)
			}
			assert.ElementsMatch(t, wantRetr, retr)
			assert.Equal(t, wantProj, proj)
		}
	}
}

func TestFibonacciUnknownTrendDefaultsUp(t *testing.T) {
	got := Fibonacci(HighLow{High: 2, Low: 1}, Trend("sideways"))
	assert.Equal(t, TrendUp, got.Trend)
}

func TestMargin(t *testing.T) {
	t.Run("fixture", func(t *testing.T) {
		res, err := Margin(MarginRequest{Price: 2000, LotSize: 1, Leverage: 100, ContractSize: 1000, FXRate: 10000})
		require.NoError(t, err)
		assert.InDelta(t, 2_000_000.0, res.Notional, eps)
		assert.InDelta(t, 20_000.0, res.MarginUSD, eps)
		assert.InDelta(t, 200_000_000.0, res.MarginLocal, eps)
	})

	t.Run("defaults for contract and fx", func(t *testing.T) {
		res, err := Margin(MarginRequest{Price: 1970, LotSize: 0.1, Leverage: 100})
		require.NoError(t, err)
		assert.Equal(t, DefaultContractSize, res.Request.ContractSize)
		assert.Equal(t, DefaultFXRate, res.Request.FXRate)
		assert.InDelta(t, 1970.0, res.MarginUSD, 1e-6)
		assert.InDelta(t, 19_700_000.0, res.MarginLocal, 1e-3)
	})

	tests := []struct {
		name string
		req  MarginRequest
		want error
	}{
		{"missing price", MarginRequest{Leverage: 100}, ErrMissingPrice},
		{"nan price", MarginRequest{Price: math.NaN(), Leverage: 100}, ErrMissingPrice},
		{"negative price", MarginRequest{Price: -1, Leverage: 100}, ErrMissingPrice},
		{"zero leverage", MarginRequest{Price: 2000, Leverage: 0}, ErrInvalidLeverage},
		{"negative leverage", MarginRequest{Price: 2000, Leverage: -50}, ErrInvalidLeverage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Margin(tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
