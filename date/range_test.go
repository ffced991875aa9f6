package date

import (
	"testing"
	"time"
)

func TestCovering(t *testing.T) {
	utc := func(y int, m time.Month, d, h int) time.Time { return time.Date(y, m, d, h, 0, 0, 0, time.UTC) }
	testCases := []struct {
		name       string
		start, end time.Time
		want       Range
	}{
		{
			name:  "A month",
			start: utc(2024, time.February, 1, 0),
			end:   utc(2024, time.March, 1, 0),
			want:  Range{From: New(2024, time.February, 1), To: New(2024, time.February, 29)},
		},
		{
			name:  "Up to now",
			start: utc(2024, time.March, 1, 0),
			end:   utc(2024, time.March, 15, 10),
			want:  Range{From: New(2024, time.March, 1), To: New(2024, time.March, 15)},
		},
		{
			name:  "From a transaction",
			start: utc(2023, time.November, 20, 10),
			end:   utc(2023, time.December, 1, 0),
			want:  Range{From: New(2023, time.November, 20), To: New(2023, time.November, 30)},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Covering(tc.start, tc.end); got != tc.want {
				t.Errorf("Covering() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRange(t *testing.T) {
	r := Range{From: New(2024, time.February, 1), To: New(2024, time.February, 29)}
	if got := r.Days(); got != 29 {
		t.Errorf("Days() = %d, want 29", got)
	}
	if !r.Contains(New(2024, time.February, 29)) || r.Contains(New(2024, time.March, 1)) {
		t.Errorf("Contains() is wrong on the range boundaries")
	}
	if r.Closed(New(2024, time.February, 29)) {
		t.Errorf("Closed() = true on the last day of the range")
	}
	if !r.Closed(New(2024, time.March, 1)) {
		t.Errorf("Closed() = false the day after the range")
	}
}
