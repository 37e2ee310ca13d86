package normalize

import (
	"encoding/json"
	"math"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
// It is a heuristic: provider values above it are read as milliseconds.
const epochMillisThreshold = 2_000_000_000

var (
	compactDigits = regexp.MustCompile(`^\d{14}$`)
	epochDigits   = regexp.MustCompile(`^\d{10,13}$`)
	gdeltCompact  = regexp.MustCompile(`^\d{8}T\d{6}Z$`)
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ToISO converts a provider timestamp to an ISO-8601 UTC string. It
// accepts epoch numbers, compact digit strings, RFC 2822 dates and
// ISO-8601-like strings; anything else reports false.
func ToISO(v any) (string, bool) {
	t, ok := toTime(v)
	if !ok || t.UTC().Year() < 1 || t.UTC().Year() > 9999 {
		return "", false
	}
	return FormatTime(t), true
}

// FormatTime renders t in UTC with a +00:00 offset. Fractional seconds
// appear only when present, as microseconds.
func FormatTime(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/1000 != 0 {
		return t.Format("2006-01-02T15:04:05.000000-07:00")
	}
	return t.Format("2006-01-02T15:04:05-07:00")
}

func toTime(v any) (time.Time, bool) {
	switch ts := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return ts, !ts.IsZero()
	case *time.Time:
		if ts == nil {
			return time.Time{}, false
		}
		return toTime(*ts)
	case float64:
		return fromEpoch(ts)
	case float32:
		return fromEpoch(float64(ts))
	case int:
		return fromEpoch(float64(ts))
	case int64:
		return fromEpoch(float64(ts))
	case json.Number:
		f, err := ts.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpoch(f)
	case string:
		return fromString(ts)
	}
	return time.Time{}, false
}

func fromEpoch(n float64) (time.Time, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return time.Time{}, false
	}

	sec := n
	if n > epochMillisThreshold {
		sec = n / 1000
	}

	whole, frac := math.Modf(sec)
	// microsecond precision
	usec := math.Round(frac * 1e6)
	return time.Unix(int64(whole), int64(usec)*1000).UTC(), true
}

func fromString(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if compactDigits.MatchString(s) {
		if t, err := time.Parse("20060102150405", s); err == nil {
			return t, true
		}
	}

	if epochDigits.MatchString(s) {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromEpoch(float64(n))
		}
	}

	if gdeltCompact.MatchString(s) {
		if t, err := time.Parse("20060102T150405Z", s); err == nil {
			return t, true
		}
	}

	if t, err := mail.ParseDate(s); err == nil {
		return t, true
	}

	iso := s
	if strings.HasSuffix(iso, "Z") || strings.HasSuffix(iso, "z") {
		iso = iso[:len(iso)-1] + "+00:00"
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
