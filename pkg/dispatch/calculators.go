package dispatch

import (
	"fmt"
	"strings"

	"nmai-api/pkg/calc"
	"nmai-api/pkg/textparse"
)

const fibFooter = "\n\n---\n_- Newsmaker23 & Newsmaker Ai -_"

const pivotNote = "---\n\n" +
	"**Note:**\n" +
	"- _**Classic** biasanya paling umum dipakai._\n" +
	"- _**Woodie** cenderung lebih menekankan harga pembukaan._\n" +
	"- _**Camarilla** populer untuk mencari area intraday reversal._"

// Table rows pair retracements and projections; the last projection has
// no retracement partner.
var (
	fibUpRows   = []string{"23.60%", "38.20%", "50.00%", "61.80%", "78.60%"}
	fibDownRows = []string{"78.60%", "61.80%", "50.00%", "38.20%", "23.60%"}
	fibProjRows = []string{"138.20%", "150.00%", "161.80%", "200.00%", "238.20%"}
)

func (d *Dispatcher) fibonacci(in Input, lower string) (string, bool) {
	if !strings.Contains(lower, "fibo") {
		return "", false
	}
	hl, err := textparse.ParseHighLow(in.Text)
	if err != nil {
		return "", false
	}
	trend := textparse.DetectTrend(lower)
	levels := calc.Fibonacci(hl, trend)

	var b strings.Builder
	title, retrRows := "Uptrend", fibUpRows
	if trend == calc.TrendDown {
		title, retrRows = "Downtrend", fibDownRows
	}
	fmt.Fprintf(&b, "## Perhitungan Fibonacci – %s\n\n", title)
	fmt.Fprintf(&b, "- **High (H)**:\n`%s`\n", money(levels.High))
	fmt.Fprintf(&b, "- **Low  (L)**:\n`%s`\n", money(levels.Low))
	fmt.Fprintf(&b, "- **Range (D = H - L)**:\n`%s`\n\n", money(levels.Range))

	if trend == calc.TrendDown {
		b.WriteString("| _Down Retracement_ | Harga | _Down Projection_ | Harga |\n")
		b.WriteString("|--------------------|-------|-------------------|-------|\n")
	} else {
		b.WriteString("| _Up Retracement_ | Harga | _Up Projection_ | Harga |\n")
		b.WriteString("|------------------|-------|-----------------|-------|\n")
	}
	for i, label := range retrRows {
		retr, _ := levels.Retracement(label)
		proj, _ := levels.Projection(fibProjRows[i])
		fmt.Fprintf(&b, "| %s  | **%s** | %s | **%s** |\n", label, money(retr), fibProjRows[i], money(proj))
	}
	last, _ := levels.Projection("261.80%")
	fmt.Fprintf(&b, "| -       | -     | 261.80%% | **%s** |\n", money(last))
	b.WriteString(fibFooter)
	return b.String(), true
}

func (d *Dispatcher) pivot(in Input, lower string) (string, bool) {
	if !strings.Contains(lower, "pivot") && !strings.Contains(lower, "pp ") {
		return "", false
	}
	bar, err := textparse.ParseOHLC(in.Text)
	if err != nil {
		return "", false
	}
	set := calc.Pivots(bar)
	fixed := func(v float64) string { return textparse.FormatFixed(v, 2) }

	var b strings.Builder
	b.WriteString("## Perhitungan Pivot Point\n\n")
	fmt.Fprintf(&b, "- **Open (O)**: `%s`\n", fixed(bar.Open))
	fmt.Fprintf(&b, "- **High (H)**: `%s`\n", fixed(bar.High))
	fmt.Fprintf(&b, "- **Low (L)**: `%s`\n", fixed(bar.Low))
	fmt.Fprintf(&b, "- **Close (C)**: `%s`\n", fixed(bar.Close))
	b.WriteString("---\n\n")

	b.WriteString("___Pivot Tabel___\n\n")
	b.WriteString("| Level | Classic | Woodie | Camarilla |\n")
	b.WriteString("|-------|--------|--------|-----------|\n")
	for _, name := range calc.LevelNames {
		classic, _ := set.Classic.Level(name)
		woodie, _ := set.Woodie.Level(name)
		camarilla, _ := set.Camarilla.Level(name)
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", pivotRowLabel(name), fixed(classic), fixed(woodie), fixed(camarilla))
	}
	b.WriteString("\n")
	b.WriteString(pivotNote)
	return b.String(), true
}

func pivotRowLabel(name string) string {
	switch name {
	case "R4", "S4":
		return name
	case "P":
		return "**Pivot** "
	default:
		return "**" + name + "**"
	}
}

func (d *Dispatcher) margin(in Input, lower string) (string, bool) {
	if !strings.Contains(lower, "margin") {
		return "", false
	}
	if !strings.Contains(lower, "xauusd") && !strings.Contains(lower, " emas") && !strings.Contains(lower, " gold") {
		return "", false
	}
	price, ok := textparse.ParseStatedPrice(lower)
	if !ok {
		price, ok = d.goldPrice(in)
	}
	if !ok {
		return "", false
	}
	res, err := calc.Margin(calc.MarginRequest{
		Price:        price,
		LotSize:      textparse.ParseLot(lower),
		Leverage:     textparse.ParseLeverage(lower),
		ContractSize: d.contractSize,
		FXRate:       d.fxRate,
	})
	if err != nil {
		return "", false
	}
	req := res.Request
	lot := textparse.FormatPlain(req.LotSize)
	contract := textparse.FormatLocaleNumber(req.ContractSize, 0)

	var b strings.Builder
	b.WriteString("Simulasi margin XAUUSD (Gold):\n\n")
	fmt.Fprintf(&b, "- Lot: %s lot\n", lot)
	fmt.Fprintf(&b, "- Harga: sekitar %s USD per troy ounce\n", money(req.Price))
	fmt.Fprintf(&b, "- Ukuran kontrak: %s oz per lot\n", contract)
	fmt.Fprintf(&b, "- Leverage: 1:%s\n\n", textparse.FormatPlain(req.Leverage))
	b.WriteString("Nilai kontrak (notional) ≈ harga × kontrak × lot\n")
	fmt.Fprintf(&b, "= %s × %s × %s\n", money(req.Price), contract, lot)
	fmt.Fprintf(&b, "≈ %s USD\n\n", money(res.Notional))
	b.WriteString("Margin yang dibutuhkan ≈ nilai kontrak ÷ leverage\n")
	fmt.Fprintf(&b, "≈ %s USD (sekitar Rp %s dengan asumsi 1 USD = Rp %s).\n\n",
		money(res.MarginUSD), textparse.FormatLocaleNumber(res.MarginLocal, 0), textparse.FormatLocaleNumber(req.FXRate, 0))
	b.WriteString("Ini hanya simulasi edukatif. Syarat margin riil bisa berbeda di masing-masing pialang dan produk.")
	return b.String(), true
}
