package tdasync

import (
	"testing"
	"time"
)

func TestAdvanceMonth(t *testing.T) {
	testCases := []struct {
		name string
		in   time.Time
		dir  Direction
		want time.Time
	}{
		{"forward mid month", utc(2024, time.March, 15, 10, 30, 0), Forward, day(2024, time.April, 1)},
		{"forward from the first", day(2024, time.March, 1), Forward, day(2024, time.April, 1)},
		{"forward december", utc(2023, time.December, 31, 23, 59, 59), Forward, day(2024, time.January, 1)},
		{"backward mid month", utc(2024, time.March, 15, 10, 30, 0), Backward, day(2024, time.February, 1)},
		{"backward january", day(2024, time.January, 1), Backward, day(2023, time.December, 1)},
		{"backward from march 31st", day(2024, time.March, 31), Backward, day(2024, time.February, 1)},
		{"forward from january 31st", day(2023, time.January, 31), Forward, day(2023, time.February, 1)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AdvanceMonth(tc.in, tc.dir); !got.Equal(tc.want) {
				t.Errorf("AdvanceMonth(%v, %v) = %v, want %v", tc.in, tc.dir, got, tc.want)
			}
		})
	}
}

func TestAdvanceMonth_roundTrip(t *testing.T) {
	// every month of a few years, at various days and hours.
	for y := 1999; y <= 2025; y++ {
		for m := time.January; m <= time.December; m++ {
			for _, d := range []int{1, 15, 28} {
				in := utc(y, m, d, 13, 7, 5)
				got := AdvanceMonth(AdvanceMonth(in, Backward), Forward)
				if got.Year() != in.Year() || got.Month() != in.Month() {
					t.Fatalf("AdvanceMonth round trip of %v = %v, want the same month", in, got)
				}
			}
		}
	}
}

func TestAdvanceMonth_keepsLocation(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	in := time.Date(2024, time.December, 31, 22, 0, 0, 0, loc) // already 2025 in UTC
	want := time.Date(2025, time.January, 1, 0, 0, 0, 0, loc)
	if got := AdvanceMonth(in, Forward); !got.Equal(want) {
		t.Errorf("AdvanceMonth() = %v, want %v", got, want)
	}
}

func TestFirstOfMonth(t *testing.T) {
	if got, want := FirstOfMonth(utc(2024, time.February, 29, 23, 59, 59)), day(2024, time.February, 1); !got.Equal(want) {
		t.Errorf("FirstOfMonth() = %v, want %v", got, want)
	}
}

func TestWindow_Contains(t *testing.T) {
	w := Window{Start: day(2024, time.January, 1), End: day(2024, time.February, 1)}
	testCases := []struct {
		in   time.Time
		want bool
	}{
		{day(2024, time.January, 1), true},
		{utc(2024, time.January, 31, 23, 59, 59), true},
		{day(2024, time.February, 1), false},
		{utc(2023, time.December, 31, 23, 59, 59), false},
	}
	for _, tc := range testCases {
		if got := w.Contains(tc.in); got != tc.want {
			t.Errorf("%v.Contains(%v) = %v, want %v", w, tc.in, got, tc.want)
		}
	}
}

func TestWindow_Valid(t *testing.T) {
	now := day(2024, time.March, 1)
	if (Window{Start: now, End: now}).Valid() {
		t.Error("empty window is valid")
	}
	if !(Window{Start: now, End: now.Add(time.Microsecond)}).Valid() {
		t.Error("one microsecond window is not valid")
	}
}

func TestDirection_String(t *testing.T) {
	for d, want := range map[Direction]string{Backward: "backward", Forward: "forward", Direction(7): "Direction(7)"} {
		if got := d.String(); got != want {
			t.Errorf("Direction(%d).String() = %q, want %q", int(d), got, want)
		}
	}
}
