package tdasync

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampFormat is the second-precision part of the brokerage timestamps.
const TimestampFormat = "2006-01-02T15:04:05"

// CanonicalFormat is the canonical text form of a timestamp, with microseconds.
// It sorts lexicographically in chronological order.
const CanonicalFormat = "2006-01-02T15:04:05.000000"

// DecodeTimestamp parses a brokerage timestamp like "2022-01-06T10:09:40+0005".
//
// The signed suffix is not a timezone: it counts milliseconds, so the example
// above is 10:09:40.005 UTC. The result has microsecond precision.
func DecodeTimestamp(raw string) (time.Time, error) {
	const op = "decode timestamp"
	base, millis, err := splitTimestamp(raw)
	if err != nil {
		return time.Time{}, NewParseError(op, err)
	}
	t, err := time.ParseInLocation(TimestampFormat, base, time.UTC)
	if err != nil {
		return time.Time{}, NewParseError(op, fmt.Errorf("invalid timestamp %q: %w", raw, err))
	}
	return t.Add(time.Duration(millis) * time.Millisecond).Truncate(time.Microsecond), nil
}

// splitTimestamp splits raw on its single sign, after the date part.
func splitTimestamp(raw string) (base string, millis int, err error) {
	day, clock, ok := strings.Cut(raw, "T")
	if !ok {
		return "", 0, fmt.Errorf("invalid timestamp %q: missing 'T' separator", raw)
	}
	parts := strings.FieldsFunc(clock, func(r rune) bool { return r == '+' || r == '-' })
	if len(parts) != 2 || strings.Count(clock, "+")+strings.Count(clock, "-") != 1 {
		return "", 0, fmt.Errorf("invalid timestamp %q: want exactly one signed milliseconds suffix", raw)
	}
	suffix := parts[1]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return "", 0, fmt.Errorf("invalid timestamp %q: milliseconds %q is not an integer", raw, suffix)
		}
	}
	millis, err = strconv.Atoi(suffix)
	if err != nil {
		return "", 0, fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	if millis > 999 {
		return "", 0, fmt.Errorf("invalid timestamp %q: milliseconds %d out of range", raw, millis)
	}
	if strings.Contains(clock, "-") {
		millis = -millis
	}
	return day + "T" + parts[0], millis, nil
}

// EncodeTimestamp formats t in the brokerage format. Precision below the
// millisecond is dropped.
func EncodeTimestamp(t time.Time) string {
	t = t.UTC().Truncate(time.Millisecond)
	return fmt.Sprintf("%s+%04d", t.Format(TimestampFormat), t.Nanosecond()/int(time.Millisecond))
}

// CanonicalTimestamp formats t in the canonical format, in UTC.
func CanonicalTimestamp(t time.Time) string { return t.UTC().Format(CanonicalFormat) }
