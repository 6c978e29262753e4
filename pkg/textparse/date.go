package textparse

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// ReferenceZone is the civil calendar every relative date is resolved in.
	ReferenceZone = "Asia/Jakarta"
	maxDaysAgo    = 3650
)

// ReferenceLocation loads ReferenceZone, falling back to a fixed UTC+7
// zone when tzdata is unavailable.
func ReferenceLocation() *time.Location {
	loc, err := time.LoadLocation(ReferenceZone)
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

// RelativeDateQuery is a "N days ago" request resolved against a reference day.
type RelativeDateQuery struct {
	DaysAgo      int
	ResolvedDate string
}

var daysAgoRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*hari\s*(?:sebelum(?:nya)?|yg lalu|yang lalu|lalu)`),
	regexp.MustCompile(`(?i)(\d+)\s*days?\s+(?:ago|before|earlier)`),
}

// ParseRelativeDaysAgo recognises "<N> hari sebelumnya" style phrases and
// their English equivalents. N must lie in (0, 3650). now is read in its
// own location; callers pass it in the reference zone.
func ParseRelativeDaysAgo(text string, now time.Time) (RelativeDateQuery, bool) {
	for _, re := range daysAgoRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 || n >= maxDaysAgo {
			return RelativeDateQuery{}, false
		}
		return RelativeDateQuery{DaysAgo: n, ResolvedDate: FormatISODate(addDays(now, -n))}, true
	}
	return RelativeDateQuery{}, false
}

type relativeDay struct {
	re     *regexp.Regexp
	offset int
}

// Longer phrases come before the words they contain.
var relativeDays = []relativeDay{
	{regexp.MustCompile(`(?i)\bthe day after tomorrow\b`), 2},
	{regexp.MustCompile(`(?i)\bthe day before yesterday\b`), -2},
	{regexp.MustCompile(`(?i)\b(?:hari ini|today)\b`), 0},
	{regexp.MustCompile(`(?i)\b(?:besoknya|besok|tomorrow)\b`), 1},
	{regexp.MustCompile(`(?i)\blusa\b`), 2},
	{regexp.MustCompile(`(?i)\b(?:kemarin|yesterday)\b`), -1},
	{regexp.MustCompile(`(?i)\bselumbari\b`), -2},
}

var monthIndex = map[string]time.Month{
	"januari": time.January, "january": time.January, "jan": time.January,
	"februari": time.February, "febuari": time.February, "february": time.February, "feb": time.February,
	"maret": time.March, "march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"mei": time.May, "may": time.May,
	"juni": time.June, "june": time.June, "jun": time.June,
	"juli": time.July, "july": time.July, "jul": time.July,
	"agustus": time.August, "august": time.August, "agu": time.August, "agt": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"oktober": time.October, "october": time.October, "okt": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"desember": time.December, "december": time.December, "des": time.December, "dec": time.December,
}

var (
	isoDateRe   = regexp.MustCompile(`\b(\d{4})[-/](\d{1,2})[-/](\d{1,2})\b`)
	dmyDateRe   = regexp.MustCompile(`\b(\d{1,2})[-/](\d{1,2})[-/](\d{4})\b`)
	monthNameRe = buildMonthNameRe()
)

func buildMonthNameRe() *regexp.Regexp {
	names := make([]string, 0, len(monthIndex))
	for name := range monthIndex {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return regexp.MustCompile(`(?i)\b(\d{1,2})\s+(` + strings.Join(names, "|") + `)(?:\s+(\d{4}))?\b`)
}

// ParseRequestedDate resolves the calendar day a message asks about.
// Relative day words win, then YYYY-M-D, then D-M-YYYY, then day plus
// month name with an optional year. Impossible dates such as 31 Feb are
// skipped.
func ParseRequestedDate(text string, now time.Time) (string, bool) {
	for _, rd := range relativeDays {
		if rd.re.MatchString(text) {
			return FormatISODate(addDays(now, rd.offset)), true
		}
	}

	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		if d, ok := civilDate(m[1], m[2], m[3], now.Location()); ok {
			return d, true
		}
	}
	if m := dmyDateRe.FindStringSubmatch(text); m != nil {
		if d, ok := civilDate(m[3], m[2], m[1], now.Location()); ok {
			return d, true
		}
	}
	if m := monthNameRe.FindStringSubmatch(text); m != nil {
		month := monthIndex[strings.ToLower(m[2])]
		year := strconv.Itoa(now.Year())
		if m[3] != "" {
			year = m[3]
		}
		if d, ok := civilDate(year, strconv.Itoa(int(month)), m[1], now.Location()); ok {
			return d, true
		}
	}
	return "", false
}

func civilDate(y, m, d string, loc *time.Location) (string, bool) {
	year, err1 := strconv.Atoi(y)
	month, err2 := strconv.Atoi(m)
	day, err3 := strconv.Atoi(d)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return "", false
	}
	return FormatISODate(t), true
}

func addDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}

// FormatISODate renders the civil date of t as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	return t.Format("2006-01-02")
}

var todaySuffixRe = regexp.MustCompile(`/today/?$`)

// CalendarURL points a calendar endpoint at date, either by replacing a
// trailing "/today" segment or by setting the date query parameter.
func CalendarURL(base, date string) string {
	if todaySuffixRe.MatchString(base) {
		return todaySuffixRe.ReplaceAllString(base, "/"+date)
	}
	u, err := url.Parse(base)
	if err != nil {
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		return base + sep + "date=" + url.QueryEscape(date)
	}
	q := u.Query()
	q.Set("date", date)
	u.RawQuery = q.Encode()
	return u.String()
}

// RelativeDayLabel names target relative to today, both YYYY-MM-DD, e.g.
// "besok (2025-11-27)" or "tanggal 2025-12-01".
func RelativeDayLabel(target, today string) string {
	t, err1 := time.Parse("2006-01-02", target)
	n, err2 := time.Parse("2006-01-02", today)
	if err1 != nil || err2 != nil {
		return "tanggal " + target
	}
	switch int(t.Sub(n).Hours() / 24) {
	case 0:
		return fmt.Sprintf("hari ini (%s)", target)
	case -1:
		return fmt.Sprintf("kemarin (%s)", target)
	case 1:
		return fmt.Sprintf("besok (%s)", target)
	case -2:
		return fmt.Sprintf("selumbari (%s)", target)
	case 2:
		return fmt.Sprintf("lusa (%s)", target)
	default:
		return "tanggal " + target
	}
}
