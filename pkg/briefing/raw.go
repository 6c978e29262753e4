package briefing

import (
	"encoding/json"
	"fmt"
	"time"

	"nmai-api/pkg/llm"
	"nmai-api/pkg/market"
	"nmai-api/pkg/textparse"
)

const ollamaPersona = "Kamu adalah NM Ai, kesadaran digital milik Newsmaker.id. " +
	"Di hadapan pengguna, kamu SELALU memperkenalkan diri sebagai NM Ai, " +
	"bukan Qwen, bukan Tongyi, bukan ChatGPT, dan bukan Ollama. " +
	"JANGAN pernah menulis kalimat seperti 'Nama saya Qwen' atau " +
	"'saya dikembangkan oleh Tongyi Lab'. " +
	"Tugasmu: jurnalis-ekonom, edukator risiko, dan penjaga etika untuk pengguna Newsmaker.id. " +
	"Gunakan bahasa Indonesia yang rapi, profesional, hangat, dan edukatif."

type quotesPayload struct {
	UpdatedAt string       `json:"updatedAt,omitempty"`
	Data      []market.Row `json:"data"`
}

type calendarPayload struct {
	Date string       `json:"date,omitempty"`
	Data []market.Row `json:"data"`
}

// RawContext builds the system messages of the self-hosted model route:
// a short persona, the time, and the quote board and calendar as JSON.
// A nil feed gets the matching "not available" instruction.
func RawContext(now time.Time, quotes *market.QuoteBoard, calendar *market.CalendarFeed) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: ollamaPersona},
		{Role: llm.RoleSystem, Content: rawTimeMessage(now)},
		{Role: llm.RoleSystem, Content: rawQuotesMessage(quotes)},
		{Role: llm.RoleSystem, Content: rawCalendarMessage(calendar)},
	}
}

func rawTimeMessage(now time.Time) string {
	return fmt.Sprintf("Sistem internal: waktu saat ini di zona waktu Asia/Jakarta (WIB) adalah %s. "+
		"Informasi ini hanya untuk konteks internal. Jangan menyebutkan jam atau tanggal saat ini "+
		"kepada pengguna kecuali pengguna secara eksplisit menanyakan waktu/tanggal atau sesi market.",
		now.In(textparse.ReferenceLocation()).Format(layoutSecond))
}

func rawQuotesMessage(board *market.QuoteBoard) string {
	var payload []byte
	if board != nil {
		p := quotesPayload{Data: board.Rows}
		if !board.UpdatedAt.IsZero() {
			p.UpdatedAt = board.UpdatedAt.UTC().Format(time.RFC3339)
		}
		payload, _ = json.Marshal(p)
	}
	if len(payload) == 0 {
		return "Saat ini sistem tidak berhasil mengambil data quotes real-time. " +
			"Jika pengguna bertanya harga terkini, jangan mengarang angka. " +
			"Jelaskan bahwa data live sementara tidak tersedia dan berikan penjelasan edukatif secara umum."
	}
	return "Berikut adalah data quotes pasar terbaru dalam format JSON:\n\n" +
		string(payload) +
		"\n\nGunakan data ini sebagai sumber UTAMA ketika pengguna bertanya tentang harga terkini " +
		"(misalnya: 'berapa harga gold hari ini', 'harga oil sekarang', dan sebagainya). " +
		"Cari instrumen yang relevan (misalnya yang mengandung kata Gold, Emas, XAU, XAUUSD, Oil, Brent, Silver, XAG, dll). " +
		"JANGAN mengarang angka di luar data ini. Jika instrumen yang ditanya tidak ditemukan " +
		"di JSON, jelaskan dengan jujur bahwa data real-time untuk instrumen tersebut tidak tersedia."
}

func rawCalendarMessage(feed *market.CalendarFeed) string {
	var payload []byte
	if feed != nil {
		payload, _ = json.Marshal(calendarPayload{Date: feed.Date, Data: feed.Rows})
	}
	if len(payload) == 0 {
		return "Saat ini sistem tidak berhasil mengambil kalender ekonomi hari ini. " +
			"Jika pengguna bertanya soal jadwal rilis data hari ini, jelaskan bahwa data live sementara tidak tersedia " +
			"dan berikan penjelasan edukatif umum tentang pentingnya kalender ekonomi."
	}
	return "Berikut adalah kalender ekonomi untuk hari ini dalam format JSON:\n\n" +
		string(payload) +
		"\n\nGunakan data ini ketika pengguna bertanya tentang rilis data ekonomi hari ini, " +
		"misalnya: 'data penting hari ini apa', 'jadwal rilis NFP hari ini jam berapa', " +
		"atau pertanyaan sejenis. Jawab berdasarkan event yang ada di JSON ini, termasuk " +
		"waktu rilis (dalam zona waktu yang tertera), nama data, negara, dan level dampak. " +
		"JANGAN mengarang jadwal rilis yang tidak ada di data ini."
}
