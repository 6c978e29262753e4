package briefing

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"nmai-api/pkg/market"
	"nmai-api/pkg/textparse"
)

// MaxNewsItems caps the articles carried into a digest.
const MaxNewsItems = 15

var (
	newsTimeKeys = []string{"published_at", "createdAt", "date"}
	spaceRunRe   = regexp.MustCompile(`\s+`)
)

// NewsDigest summarises the latest articles.
type NewsDigest struct {
	Lines []string
	// Today holds the lines of articles published on the query day in WIB.
	Today []string
}

// DigestNews filters the feed by q's category (falling back to every
// article when none match), sorts newest first and renders each line.
func DigestNews(feed *market.NewsFeed, q Query) NewsDigest {
	if feed == nil || len(feed.Rows) == 0 {
		return NewsDigest{}
	}
	rows := feed.Rows
	if q.NewsCategory != "" {
		want := strings.ToLower(q.NewsCategory)
		var filtered []market.Row
		for _, r := range rows {
			if strings.Contains(strings.ToLower(r.Text("category")), want) {
				filtered = append(filtered, r)
			}
		}
		if len(filtered) > 0 {
			rows = filtered
		}
	}

	sorted := make([]market.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, _ := sorted[i].Time(newsTimeKeys...)
		tj, _ := sorted[j].Time(newsTimeKeys...)
		return ti.After(tj)
	})
	if len(sorted) > MaxNewsItems {
		sorted = sorted[:MaxNewsItems]
	}

	loc := textparse.ReferenceLocation()
	var d NewsDigest
	for _, item := range sorted {
		clock := "waktu tidak diketahui"
		published := ""
		if t, ok := item.Time(newsTimeKeys...); ok {
			clock = "pukul " + formatClock(t) + " WIB"
			published = textparse.FormatISODate(t.In(loc))
		}
		line := newsLine(item, clock)
		d.Lines = append(d.Lines, line)
		if published == q.Today {
			d.Today = append(d.Today, line)
		}
	}
	return d
}

func newsLine(item market.Row, clock string) string {
	category := raw(item, "-", "category")
	catLabel := "kategori tidak disebutkan"
	if category != "-" {
		catLabel = "kategori **" + strings.ToUpper(category) + "**"
	}
	var meta strings.Builder
	meta.WriteString(catLabel)
	if lang := item.Text("language"); lang != "" {
		if strings.EqualFold(lang, "id") {
			meta.WriteString(", bahasa Indonesia")
		} else {
			meta.WriteString(", bahasa " + lang)
		}
	}
	if author := item.Text("author_name", "author"); author != "" {
		meta.WriteString(", ditulis oleh " + author)
	}

	line := fmt.Sprintf("- %s: **%s** (%s).", clock, raw(item, "-", "title"), meta.String())
	if summary := strings.TrimSpace(spaceRunRe.ReplaceAllString(item.Text("summary"), " ")); summary != "" {
		line += " Ringkasan singkat: " + summary
	}
	if link := item.Text("source_url", "link"); link != "" {
		line += " Sumber: " + link
	}
	return line
}

// HasData reports whether any article made it into the digest.
func (d NewsDigest) HasData() bool {
	return len(d.Lines) > 0
}

// Message renders the news system message for q.
func (d NewsDigest) Message(q Query) string {
	if !d.HasData() {
		return "Sistem berita pasar Newsmaker.id saat ini tidak berhasil mengambil data. Jika pengguna bertanya 'berita terbaru', jelaskan bahwa data berita internal sedang tidak dapat diakses dan beri penjelasan pasar secara umum."
	}
	var b strings.Builder
	b.WriteString("Sistem Berita Pasar (internal Newsmaker.id – endpoint `/api/news-id`):\n\n")
	b.WriteString("Ringkasan beberapa berita/analisis TERBARU di database:\n")
	b.WriteString(strings.Join(d.Lines, "\n"))
	b.WriteString("\n\n")
	if len(d.Today) > 0 {
		b.WriteString("Highlight berita yang TERBIT HARI INI (WIB):\n")
		b.WriteString(strings.Join(d.Today, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("Panduan menjawab terkait BERITA:\n")
	b.WriteString("- Jika pengguna bertanya 'berita terbaru tentang apa', pilih 3–5 judul paling relevan lalu jelaskan dengan bahasamu sendiri.\n")
	b.WriteString("- Jika pengguna menyebut instrumen tertentu, prioritaskan berita yang relevan dengan instrumen tersebut.\n")
	if q.News {
		b.WriteString("\nPengguna tampaknya SEDANG MENANYAKAN BERITA TERBARU. Fokuskan jawabanmu pada 1–3 berita utama yang paling relevan.\n")
	} else {
		b.WriteString("\nJika pengguna tidak menyinggung berita, tidak perlu memaksakan menyebut judul berita.\n")
	}
	return b.String()
}
