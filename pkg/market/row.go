package market

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Row is one loosely typed JSON object from a feed. Field names vary
// between feeds and versions, so reads go through first-available
// accessors that try keys in priority order.
type Row map[string]any

// Value returns the first non-nil value among keys.
func (r Row) Value(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Float returns the first value among keys that converts to a finite
// number. Numeric strings count; unparsable values are skipped.
func (r Row) Float(keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := toFloat(r[k]); ok {
			return f, true
		}
	}
	return 0, false
}

// Text returns the first non-blank value among keys as a string.
// Numbers are rendered in their shortest form.
func (r Row) Text(keys ...string) string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		case bool:
			return strconv.FormatBool(v)
		default:
			if f, ok := toFloat(v); ok {
				return strconv.FormatFloat(f, 'f', -1, 64)
			}
		}
	}
	return ""
}

// TextOr is Text with a fallback for missing fields.
func (r Row) TextOr(fallback string, keys ...string) string {
	if s := r.Text(keys...); s != "" {
		return s
	}
	return fallback
}

// Time returns the first value among keys that parses as a timestamp.
func (r Row) Time(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		if t, ok := ParseTime(r[k]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Object returns the nested object stored under key.
func (r Row) Object(key string) Row {
	switch v := r[key].(type) {
	case map[string]any:
		return Row(v)
	case Row:
		return v
	default:
		return nil
	}
}

// Objects returns the nested array of objects stored under key.
func (r Row) Objects(key string) []Row {
	items, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Row, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, Row(m))
		}
	}
	return out
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTime converts a feed timestamp into a time.Time. Strings are tried
// against common layouts; zone-less values are read as UTC. Numbers are
// Unix epochs in seconds or milliseconds.
func ParseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return epoch(f)
		}
		return time.Time{}, false
	default:
		if f, ok := toFloat(v); ok {
			return epoch(f)
		}
		return time.Time{}, false
	}
}

func epoch(f float64) (time.Time, bool) {
	if f <= 0 || !finite(f) {
		return time.Time{}, false
	}
	if f >= 1e12 {
		return time.UnixMilli(int64(f)).UTC(), true
	}
	return time.Unix(int64(f), 0).UTC(), true
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	return f, finite(f)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
