package briefing

import (
	"fmt"
	"time"

	"nmai-api/pkg/instrument"
	"nmai-api/pkg/llm"
	"nmai-api/pkg/market"
	"nmai-api/pkg/prompt"
	"nmai-api/pkg/textparse"
)

// DefaultFXRate is the fixed USD/IDR rate quoted in rupiah examples.
const DefaultFXRate = 10000.0

const (
	noUpdateBlockRule = "ATURAN KHUSUS TENTANG BLOK UPDATE:\n" +
		"- Jangan buka jawaban dengan judul seperti 'Update terbaru:' atau blok waktu+kalender otomatis.\n" +
		"- Jika pengguna minta 'update pasar' atau 'kalender ekonomi', jawab secukupnya tanpa heading 'Update terbaru:'.\n"

	imageUsageRule = "PENTING: Pesan terakhir pengguna menyertakan GAMBAR/CHART.\n" +
		"- Prioritaskan analisis visual dari gambar tersebut.\n" +
		"- Jangan membuka jawaban hanya dengan rangkuman data live/historis/berita tanpa menyebut chart.\n" +
		"- Data quotes, kalender, historis, dan berita hanya sebagai konteks tambahan.\n"

	textUsageRule = "PENTING: Pesan terakhir pengguna TIDAK menyertakan gambar.\n" +
		"- Untuk pertanyaan harga terkini, gunakan data quotes.\n" +
		"- Untuk tren beberapa waktu terakhir, gunakan data historis.\n" +
		"- Untuk 'historical data [instrumen] X hari sebelumnya', gunakan ringkasan harian jika tersedia.\n" +
		"- Untuk 'berita terbaru tentang apa', gunakan ringkasan berita internal.\n"
)

// Digests are the per-request summaries of every feed.
type Digests struct {
	Quotes     QuotesDigest
	Calendar   CalendarDigest
	Historical HistoricalDigest
	News       NewsDigest
}

// Context is the input of Builder.Messages.
type Context struct {
	Query   Query
	Digests Digests
	History []Turn
	// UserText is the prompt with any attachment text appended.
	UserText string
	Images   []llm.Image
}

// Builder assembles the system context of the OpenAI route.
type Builder struct {
	persona *prompt.Template
	table   *instrument.Table
	fxRate  float64
}

// NewBuilder builds a Builder. A nil persona uses the built-in template,
// a nil table the default instruments, and a non-positive fxRate
// DefaultFXRate.
func NewBuilder(persona *prompt.Template, table *instrument.Table, fxRate float64) *Builder {
	if persona == nil {
		persona = prompt.DefaultPersona()
	}
	if table == nil {
		table = instrument.Default()
	}
	if fxRate <= 0 {
		fxRate = DefaultFXRate
	}
	return &Builder{persona: persona, table: table, fxRate: fxRate}
}

// Table returns the instrument table the builder detects with.
func (b *Builder) Table() *instrument.Table {
	return b.table
}

// Query parses text with the builder's instrument table.
func (b *Builder) Query(text string, now time.Time) Query {
	return ParseQuery(text, now, b.table)
}

// Digest summarises every feed of snap for q.
func (b *Builder) Digest(q Query, snap market.Snapshot) Digests {
	return Digests{
		Quotes:     DigestQuotes(snap.Quotes),
		Calendar:   DigestCalendar(snap.Calendar, q.CalendarDate, q.Today),
		Historical: DigestHistorical(snap.History, q, b.table),
		News:       DigestNews(snap.News, q),
	}
}

// Messages returns the system messages, the history and the user turn in
// the order the model expects them.
func (b *Builder) Messages(c Context) ([]llm.Message, error) {
	persona, err := b.persona.Render(prompt.PersonaData{FirstInteraction: len(c.History) == 0})
	if err != nil {
		return nil, fmt.Errorf("briefing: render persona: %w", err)
	}
	usage := textUsageRule
	if len(c.Images) > 0 {
		usage = imageUsageRule
	}
	q := c.Query

	system := []string{
		persona,
		TimeMessage(q.Now),
		noUpdateBlockRule,
		b.fxRule(),
		c.Digests.Quotes.Message(),
		c.Digests.Calendar.Message(q),
		c.Digests.Historical.Message(q),
		c.Digests.News.Message(q),
		usage,
	}
	msgs := make([]llm.Message, 0, len(system)+len(c.History)+1)
	for _, s := range system {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: s})
	}
	msgs = append(msgs, HistoryMessages(c.History)...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: c.UserText, Images: c.Images})
	return msgs, nil
}

func (b *Builder) fxRule() string {
	return "ATURAN KONVERSI KURS (FIXED RATE SIMULASI):\n" +
		fmt.Sprintf("- Untuk contoh perhitungan dalam Rupiah, gunakan asumsi **1 USD = Rp %s** kecuali pengguna memberi kurs lain.\n", textparse.FormatLocaleNumber(b.fxRate, 0)) +
		"- Jelaskan bahwa kurs ini hanya asumsi tetap (fixed rate), bukan kurs real-time.\n" +
		"- Untuk XAUUSD, kamu boleh gunakan asumsi ukuran kontrak 1000 oz per lot dan margin = nilai kontrak ÷ leverage sebagai contoh edukatif.\n"
}

// TimeMessage tells the model the current WIB time.
func TimeMessage(now time.Time) string {
	return fmt.Sprintf("Sistem internal: waktu saat ini di zona waktu Asia/Jakarta (WIB) adalah %s. "+
		"Jika pengguna menanyakan tanggal/jam sekarang, gunakan informasi ini. Di luar itu, jangan sebutkan tanggal/jam secara spontan.",
		now.In(textparse.ReferenceLocation()).Format(layoutSecond))
}
