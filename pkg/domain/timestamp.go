package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The API emits two ISO-8601 variants, both in UTC.
const (
	// TimestampLayout is used for every outgoing date, e.g. 2025-09-30T09:04:08.069000Z.
	TimestampLayout = "2006-01-02T15:04:05.000000Z"

	// timestampLayoutSeconds has no fractional part, e.g. 2025-09-30T18:00:00Z.
	timestampLayoutSeconds = "2006-01-02T15:04:05Z"
)

// FormatTimestamp renders t in UTC with microsecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts the fractional layout first, then the whole-second layout.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	// time.Parse tolerates a fraction the layout does not declare.
	if !strings.Contains(s, ".") {
		if t, err := time.Parse(timestampLayoutSeconds, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date string %q does not match any expected ISO8601 format", s)
}

// Timestamp is a time.Time that uses the API's date encoding.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(FormatTimestamp(t.Time))), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("date is not a JSON string: %s", data)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// TimePtr returns the wrapped time, or nil for a nil Timestamp.
func (t *Timestamp) TimePtr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}
