package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the fixed-width, lexically sortable timestamp format
// written by this service.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

var timeLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
}

// IsNull reports whether a cell denotes a missing value.
func IsNull(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "na", "n/a", "null", "none", "nat":
		return true
	}
	return false
}

// ParseFloat parses a numeric cell. Missing cells yield nil.
func ParseFloat(s string) (*float64, error) {
	if IsNull(s) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, fmt.Errorf("table: parse float %q: %w", s, err)
	}
	return &v, nil
}

// ParseTime parses a date or timestamp cell. Values without a zone are UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if IsNull(s) {
		return time.Time{}, fmt.Errorf("table: empty time")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("table: parse time %q", s)
}

// ParseTimeLenient returns nil instead of an error for unparseable cells.
func ParseTimeLenient(s string) *time.Time {
	t, err := ParseTime(s)
	if err != nil {
		return nil
	}
	return &t
}

// FormatFloat renders a float for CSV output without losing precision.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FormatDate renders a date. Midnight UTC values are written as plain dates.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	utc := t.UTC()
	if utc.Hour() == 0 && utc.Minute() == 0 && utc.Second() == 0 && utc.Nanosecond() == 0 {
		return utc.Format("2006-01-02")
	}
	return t.Format(time.RFC3339Nano)
}
