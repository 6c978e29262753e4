package briefing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nmai-api/pkg/instrument"
	"nmai-api/pkg/llm"
	"nmai-api/pkg/market"
	"nmai-api/pkg/textparse"
)

func refNow() time.Time {
	return time.Date(2025, 11, 26, 9, 30, 15, 0, textparse.ReferenceLocation())
}

func query(text string) Query {
	return ParseQuery(text, refNow(), instrument.Default())
}

func TestParseQuery(t *testing.T) {
	q := query("Kalender ekonomi besok yang high impact")
	assert.True(t, q.CalendarOverview)
	assert.True(t, q.HighImpactOnly)
	assert.Equal(t, "2025-11-27", q.CalendarDate)
	assert.Equal(t, "2025-11-26", q.Today)

	q = query("historical data emas 5 hari sebelumnya")
	assert.Equal(t, instrument.Gold, q.Instrument)
	require.True(t, q.HasDaysAgo)
	assert.Equal(t, 5, q.DaysAgo.DaysAgo)
	assert.Equal(t, "2025-11-26", q.CalendarDate)
	assert.Equal(t, CategoryMarketAnalysis, q.NewsCategory)

	q = query("apa berita terbaru soal bitcoin")
	assert.True(t, q.News)
	assert.Equal(t, CategoryCrypto, q.NewsCategory)

	q = query("ada berita update data makro?")
	assert.True(t, q.News)
	assert.Equal(t, CategoryEconomic, q.NewsCategory)

	q = query("berita saja")
	assert.False(t, q.News)
	assert.Empty(t, q.NewsCategory)
	assert.False(t, q.HasDaysAgo)

	utc := ParseQuery("halo", time.Date(2025, 11, 26, 20, 0, 0, 0, time.UTC), instrument.Default())
	assert.Equal(t, "2025-11-27", utc.Today, "dates resolve in WIB")
}

func TestDigestQuotes(t *testing.T) {
	board := &market.QuoteBoard{
		UpdatedAt: time.Date(2025, 11, 26, 2, 0, 0, 0, time.UTC),
		Rows: []market.Row{
			{"symbol": "XAUUSD", "last": 2001.5, "valueChange": -3.2, "percentChange": -0.16},
			{"symbol": "EUR/USD", "last": "1.0850"},
			{"symbol": "HSI", "last": 25000.0, "valueChange": 120.0, "percentChange": 0.5},
			{"last": 1.0},
		},
	}
	d := DigestQuotes(board)
	assert.Equal(t, "26/11/2025, 09.00", d.UpdatedAt)
	require.Len(t, d.Lines, 4)
	assert.Equal(t, "- **XAUUSD** (emas (asumsi USD per troy ounce)) sekitar **2001.5**, bergerak turun sekitar ±-3.2 poin (~-0.16%).", d.Lines[0])
	assert.Equal(t, "- **EUR/USD** (pasangan mata uang (forex)) sekitar **1.0850**, bergerak stabil sekitar ±0 poin (~0%).", d.Lines[1])
	assert.Equal(t, "- **HSI** (indeks / instrumen lainnya) sekitar **25000**, bergerak naik sekitar ±120 poin (~0.5%).", d.Lines[2])
	assert.True(t, strings.HasPrefix(d.Lines[3], "- **-** (indeks / instrumen lainnya)"))

	msg := d.Message()
	assert.True(t, strings.HasPrefix(msg, "Sistem Harga Live (internal Newsmaker):\n\nData harga terakhir diperbarui sekitar **26/11/2025, 09.00 WIB**.\n\n"))
	assert.True(t, strings.HasSuffix(msg, "beri konteks edukatif.\n"))

	empty := DigestQuotes(nil)
	assert.False(t, empty.HasData())
	assert.Contains(t, empty.Message(), "tidak berhasil mengambil data")
}

func TestQuoteCategory(t *testing.T) {
	tests := map[string]string{
		"LGD":       "emas (asumsi USD per troy ounce)",
		"Gold Spot": "emas (asumsi USD per troy ounce)",
		"lsi":       "perak (asumsi USD per troy ounce)",
		"XAGUSD":    "perak (asumsi USD per troy ounce)",
		"BRENT":     "minyak (asumsi USD per barrel)",
		"USDJPY":    "pasangan mata uang (forex)",
		"SNI":       "indeks / instrumen lainnya",
	}
	for symbol, want := range tests {
		assert.Equal(t, want, QuoteCategory(symbol), symbol)
	}
}

func calendarFeed() *market.CalendarFeed {
	return &market.CalendarFeed{Date: "2025-11-26", Rows: []market.Row{
		{"date": "2025-11-26", "time": "19:30", "currency": "USD", "impact": "★★★", "event": "Core PCE", "previous": "0.2%", "forecast": "0.3%"},
		{"date": "2025-11-27", "time": "08:00", "currency": "JPY", "impact": "★★★", "event": "Tokyo CPI"},
		{"time": "14:00", "currency": "EUR", "impact": "★★", "event": "German GfK", "actual": "-23.1",
			"details": map[string]any{"history": []any{map[string]any{"date": "2025-11-26T00:00:00"}}}},
		{"event": "Speech"},
	}}
}

func TestDigestCalendar(t *testing.T) {
	d := DigestCalendar(calendarFeed(), "2025-11-26", "2025-11-26")
	assert.Equal(t, "hari ini (2025-11-26)", d.Label)
	require.Len(t, d.Events, 3)
	assert.Equal(t, "-", d.Events[2].Time)
	assert.Equal(t, "", d.Events[2].Actual)

	wantAll := strings.Join([]string{
		"- Pukul 19:30, USD – Core PCE. Dampaknya **tinggi** (★★★). Sebelumnya: 0.2%, perkiraan: 0.3%, aktual: -.",
		"- Pukul 14:00, EUR – German GfK. Dampaknya **sedang** (★★). Sebelumnya: -, perkiraan: -, aktual: -23.1.",
		"- Pukul -, - – Speech. Dampaknya **tidak diketahui** (-). Sebelumnya: -, perkiraan: -, aktual: -.",
	}, "\n")
	assert.Equal(t, wantAll, d.All)
	assert.Equal(t, "- Pukul 19:30, USD – Core PCE (dampak tinggi ★★★).", d.HighImpact)

	msg := d.Message(query("kalender ekonomi hari ini"))
	assert.True(t, strings.HasPrefix(msg, "Kalender ekonomi internal untuk hari ini (2025-11-26):\n\nCatatan: hari ini adalah 2025-11-26."))
	assert.Contains(t, msg, "Daftar event utama:\n- Pukul 19:30")
	assert.True(t, strings.HasSuffix(msg, "dalam bentuk bullet.\n"))

	high := d.Message(query("event high impact hari ini"))
	assert.Contains(t, high, "Event berdampak tinggi:\n- Pukul 19:30, USD – Core PCE (dampak tinggi ★★★).\n\n")
	assert.NotContains(t, high, "Daftar event utama")

	tomorrow := DigestCalendar(calendarFeed(), "2025-11-27", "2025-11-26")
	assert.Equal(t, "besok (2025-11-27)", tomorrow.Label)
	require.Len(t, tomorrow.Events, 2, "the dated Tokyo CPI row and the undated row")

	none := DigestCalendar(&market.CalendarFeed{Rows: []market.Row{{"date": "2025-01-01", "impact": "★"}}}, "2025-11-26", "2025-11-26")
	assert.False(t, none.HasData())
	assert.Equal(t, NoHighImpactLine, none.HighImpact)
	assert.Contains(t, none.Message(query("x")), "tidak berhasil diambil")
}

func TestDigestCalendarCapsEvents(t *testing.T) {
	rows := make([]market.Row, 0, 60)
	for i := 0; i < 60; i++ {
		rows = append(rows, market.Row{"event": "e", "impact": "High"})
	}
	d := DigestCalendar(&market.CalendarFeed{Rows: rows}, "2025-11-26", "2025-11-26")
	assert.Len(t, d.Events, MaxCalendarEvents)
}

func TestImpactLabel(t *testing.T) {
	assert.Equal(t, "tinggi", ImpactLabel("High"))
	assert.Equal(t, "sedang", ImpactLabel("medium"))
	assert.Equal(t, "rendah", ImpactLabel("★"))
	assert.Equal(t, "rendah", ImpactLabel("Low"))
	assert.Equal(t, "tidak diketahui", ImpactLabel("-"))
}

func historyFeed() *market.HistoryFeed {
	return &market.HistoryFeed{DateFrom: "2025-07-01", Rows: []market.Row{
		{"symbol": "LGD DAILY", "date": "2025-11-24", "close": 2050.0},
		{"symbol": "HSI DAILY", "date": "2025-07-01", "close": 20000.0},
		{"symbol": "LGD DAILY", "date": "2025-07-01", "close": 1800.0},
		{"symbol": "LGD DAILY", "date": "2025-11-21", "close": 2000.0},
		{"symbol": "BCO DAILY", "date": "2025-11-21", "close": "n/a"},
		{"symbol": "LGD DAILY", "date": "2025-11-25", "close": 2100.0},
		{"symbol": "HSI DAILY", "date": "2025-11-25", "close": 24000.0},
	}}
}

func TestDigestHistorical(t *testing.T) {
	q := query("historical data emas 5 hari sebelumnya")
	d := DigestHistorical(historyFeed(), q, instrument.Default())
	require.Len(t, d.Moves, 2, "BCO has no usable price")

	gold := d.Moves[0]
	assert.Equal(t, "LGD DAILY", gold.Symbol)
	assert.InDelta(t, 300, gold.Change, 1e-9)
	assert.Equal(t, "- **LGD DAILY**: dari sekitar **1800** menjadi sekitar **2100**, perubahan ±300 poin (~16.67%). Secara garis besar instrumen ini mengalami kenaikan tajam (uptrend kuat) dalam periode tersebut.", gold.line())

	wantWindow := "Ringkasan harga emas (Gold) untuk 5 hari terakhir (data historis internal):\n" +
		"- 2025-11-21: sekitar **2000** USD per troy ounce.\n" +
		"- 2025-11-24: sekitar **2050** USD per troy ounce.\n" +
		"- 2025-11-25: sekitar **2100** USD per troy ounce.\n\n" +
		"Gunakan daftar ini saat pengguna meminta 'historical data X hari sebelumnya' untuk instrumen tersebut."
	assert.Equal(t, wantWindow, d.Window)

	msg := d.Message(q)
	assert.True(t, strings.HasPrefix(msg, "Sistem Data Historis Harga (internal Newsmaker):\n\nRingkasan pergerakan harga sejak **2025-07-01** hingga data terbaru yang tersedia (per simbol utama):\n"))
	assert.Contains(t, msg, "misalnya **5 hari sebelumnya** dari hari ini (WIB), kira-kira tanggal **2025-11-21**")

	plain := DigestHistorical(historyFeed(), query("tren emas"), instrument.Default())
	assert.Empty(t, plain.Window)
	assert.Contains(t, plain.Message(query("tren emas")), "anggap X sebagai jumlah hari mundur")

	empty := DigestHistorical(nil, q, instrument.Default())
	assert.Contains(t, empty.Message(q), "tidak berhasil mengambil data historis")
}

func TestSymbolMoveTrend(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{20, "kenaikan tajam"},
		{5, "cenderung naik"},
		{3, "sideways"},
		{-3, "sideways"},
		{-5, "cenderung turun"},
		{-16, "penurunan tajam"},
	}
	for _, tc := range tests {
		assert.Contains(t, SymbolMove{Pct: tc.pct}.Trend(), tc.want)
	}
	assert.Equal(t, "99.50", compact(99.5))
	assert.Equal(t, "-150", compact(-150.2))
}

func newsFeed() *market.NewsFeed {
	return &market.NewsFeed{Rows: []market.Row{
		{"title": "Emas menguat", "category": "Market Analisys", "published_at": "2025-11-26T01:15:00Z",
			"summary": "Harga  emas\n naik ", "source_url": "https://newsmaker.id/a", "author_name": "Rina", "language": "id"},
		{"title": "Bitcoin turun", "category": "crypto", "published_at": "2025-11-25T10:00:00Z"},
		{"title": "CPI AS", "category": "economic", "createdAt": "2025-11-26T03:00:00Z", "language": "en"},
	}}
}

func TestDigestNews(t *testing.T) {
	q := query("berita terbaru emas")
	d := DigestNews(newsFeed(), q)
	require.Len(t, d.Lines, 1)
	want := "- pukul 08.15 WIB: **Emas menguat** (kategori **MARKET ANALISYS**, bahasa Indonesia, ditulis oleh Rina). Ringkasan singkat: Harga emas naik Sumber: https://newsmaker.id/a"
	assert.Equal(t, want, d.Lines[0])
	assert.Equal(t, []string{want}, d.Today)
	assert.Contains(t, d.Message(q), "SEDANG MENANYAKAN BERITA TERBARU")

	all := DigestNews(newsFeed(), query("apa kabar pasar"))
	require.Len(t, all.Lines, 3)
	assert.Equal(t, "- pukul 10.00 WIB: **CPI AS** (kategori **ECONOMIC**, bahasa en).", all.Lines[0])
	assert.True(t, strings.HasPrefix(all.Lines[2], "- pukul 17.00 WIB: **Bitcoin turun**"))
	assert.Len(t, all.Today, 2)
	assert.Contains(t, all.Message(query("apa kabar pasar")), "tidak perlu memaksakan")

	fallback := DigestNews(&market.NewsFeed{Rows: []market.Row{{"title": "Tanpa kategori"}}}, query("berita crypto"))
	require.Len(t, fallback.Lines, 1)
	assert.Equal(t, "- waktu tidak diketahui: **Tanpa kategori** (kategori tidak disebutkan).", fallback.Lines[0])

	assert.Contains(t, DigestNews(nil, q).Message(q), "tidak berhasil mengambil data")
}

func TestParseHistory(t *testing.T) {
	turns := ParseHistory(`[
		{"role":"user","content":"halo"},
		{"role":"ai","content":[{"type":"text","text":"Halo!"},"apa kabar"]},
		{"role":"user","content":{"text":"objek"}},
		{"role":"user","content":{"foo":1}}
	]`)
	require.Len(t, turns, 4)
	assert.Equal(t, "Halo!\napa kabar", turns[1].Content)
	assert.Equal(t, "objek", turns[2].Content)
	assert.Equal(t, `{"foo":1}`, turns[3].Content)

	assert.Nil(t, ParseHistory("not json"))
	assert.Nil(t, ParseHistory(""))

	long := make([]Turn, 14)
	for i := range long {
		long[i] = Turn{Role: "user", Content: string(rune('a' + i))}
	}
	trimmed := TrimHistory(long)
	require.Len(t, trimmed, MaxHistoryTurns)
	assert.Equal(t, "e", trimmed[0].Content)

	msgs := HistoryMessages([]Turn{{Role: "ai"}, {Role: "assistant"}, {Role: "system"}})
	assert.Equal(t, llm.RoleAssistant, msgs[0].Role)
	assert.Equal(t, llm.RoleAssistant, msgs[1].Role)
	assert.Equal(t, llm.RoleUser, msgs[2].Role)
}

func TestUserPromptAndText(t *testing.T) {
	assert.Equal(t, "harga emas", UserPrompt("  harga emas ", false))
	assert.Equal(t, DefaultImagePrompt, UserPrompt(" ", true))
	assert.Equal(t, DefaultTextPrompt, UserPrompt("", false))

	assert.Equal(t, "p", UserText("p", ""))
	assert.Equal(t, "p\n\n=== DATA DARI FILE TERLAMPIR ===\nFormat bisa berupa teks/CSV/Excel yang sudah diringkas ke tabel.\n\na\tb", UserText("p", "a\tb"))
}

func TestBuilderMessages(t *testing.T) {
	b := NewBuilder(nil, nil, 0)
	q := b.Query("kalender ekonomi hari ini", refNow())
	snap := market.Snapshot{Calendar: calendarFeed(), News: newsFeed()}
	digests := b.Digest(q, snap)
	assert.True(t, digests.Calendar.HasData())
	assert.False(t, digests.Quotes.HasData())

	msgs, err := b.Messages(Context{
		Query:    q,
		Digests:  digests,
		History:  []Turn{{Role: "user", Content: "halo"}, {Role: "ai", Content: "hai"}},
		UserText: "kalender ekonomi hari ini",
		Images:   []llm.Image{{Data: []byte{1}}},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 12)
	for _, m := range msgs[:9] {
		assert.Equal(t, llm.RoleSystem, m.Role)
	}
	assert.Contains(t, msgs[0].Content, "SUDAH ada riwayat percakapan")
	assert.Equal(t, "Sistem internal: waktu saat ini di zona waktu Asia/Jakarta (WIB) adalah 26/11/2025, 09.30.15. Jika pengguna menanyakan tanggal/jam sekarang, gunakan informasi ini. Di luar itu, jangan sebutkan tanggal/jam secara spontan.", msgs[1].Content)
	assert.True(t, strings.HasPrefix(msgs[2].Content, "ATURAN KHUSUS TENTANG BLOK UPDATE"))
	assert.Contains(t, msgs[3].Content, "**1 USD = Rp 10.000**")
	assert.Contains(t, msgs[4].Content, "Sistem harga live saat ini tidak berhasil")
	assert.Contains(t, msgs[5].Content, "Kalender ekonomi internal untuk hari ini")
	assert.Contains(t, msgs[6].Content, "Sistem tidak berhasil mengambil data historis")
	assert.Contains(t, msgs[7].Content, "Sistem Berita Pasar")
	assert.Contains(t, msgs[8].Content, "menyertakan GAMBAR/CHART")
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "halo"}, msgs[9])
	assert.Equal(t, llm.RoleAssistant, msgs[10].Role)
	assert.Equal(t, "kalender ekonomi hari ini", msgs[11].Content)
	assert.Len(t, msgs[11].Images, 1)

	first, err := NewBuilder(nil, nil, 15000).Messages(Context{Query: q, UserText: "hai"})
	require.NoError(t, err)
	require.Len(t, first, 10)
	assert.Contains(t, first[0].Content, "INI INTERAKSI PERTAMA")
	assert.Contains(t, first[3].Content, "**1 USD = Rp 15.000**")
	assert.Contains(t, first[8].Content, "TIDAK menyertakan gambar")
}

func TestRawContext(t *testing.T) {
	board := &market.QuoteBoard{
		UpdatedAt: time.Date(2025, 11, 26, 2, 0, 0, 0, time.UTC),
		Rows:      []market.Row{{"symbol": "XAUUSD", "last": 2001.5}},
	}
	msgs := RawContext(refNow(), board, nil)
	require.Len(t, msgs, 4)
	assert.Contains(t, msgs[0].Content, "bukan Qwen")
	assert.Contains(t, msgs[1].Content, "adalah 26/11/2025, 09.30.15. Informasi ini hanya untuk konteks internal.")
	assert.Contains(t, msgs[2].Content, `{"updatedAt":"2025-11-26T02:00:00Z","data":[{"last":2001.5,"symbol":"XAUUSD"}]}`)
	assert.True(t, strings.HasPrefix(msgs[3].Content, "Saat ini sistem tidak berhasil mengambil kalender ekonomi"))

	cal := RawContext(refNow(), nil, &market.CalendarFeed{Date: "2025-11-26", Rows: []market.Row{{"event": "NFP"}}})
	assert.True(t, strings.HasPrefix(cal[2].Content, "Saat ini sistem tidak berhasil mengambil data quotes"))
	assert.Contains(t, cal[3].Content, `{"date":"2025-11-26","data":[{"event":"NFP"}]}`)
}
