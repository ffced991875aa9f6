package tdasync

import (
	"errors"
	"testing"
	"time"
)

func TestDecodeTimestamp(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
		err      bool
	}{
		{"2022-01-06T10:09:40+0000", utc(2022, time.January, 6, 10, 9, 40), false},
		{"2022-01-06T10:09:40+0005", utc(2022, time.January, 6, 10, 9, 40).Add(5 * time.Millisecond), false},
		{"2022-01-06T10:09:40+999", utc(2022, time.January, 6, 10, 9, 40).Add(999 * time.Millisecond), false},
		{"2022-01-06T10:09:40-0005", utc(2022, time.January, 6, 10, 9, 39).Add(995 * time.Millisecond), false},
		{"2023-11-20T10:00:00+0000", utc(2023, time.November, 20, 10, 0, 0), false},

		{"garbage", time.Time{}, true},
		{"", time.Time{}, true},
		{"2022-01-06T10:09:40", time.Time{}, true},
		{"2022-01-06T10:09:40+", time.Time{}, true},
		{"2022-01-06T10:09:40+00+00", time.Time{}, true},
		{"2022-01-06T10:09:40+abc", time.Time{}, true},
		{"2022-01-06T10:09:40+1000", time.Time{}, true},
		{"2022-13-06T10:09:40+0000", time.Time{}, true},
		{"2022-01-06 10:09:40+0000", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := DecodeTimestamp(tt.input)
			if tt.err {
				if err == nil {
					t.Fatalf("DecodeTimestamp(%q) expected an error, got %v", tt.input, got)
				}
				if !errors.Is(err, ErrParse) {
					t.Errorf("DecodeTimestamp(%q) error = %v, want a parse error", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeTimestamp(%q) unexpected error = %v", tt.input, err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("DecodeTimestamp(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDecodeTimestamp_canonical(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"2022-01-06T10:09:40+0000", "2022-01-06T10:09:40.000000"},
		{"2022-01-06T10:09:40+0005", "2022-01-06T10:09:40.005000"},
	}
	for _, tt := range tests {
		got, err := DecodeTimestamp(tt.input)
		if err != nil {
			t.Fatalf("DecodeTimestamp(%q) unexpected error = %v", tt.input, err)
		}
		if s := CanonicalTimestamp(got); s != tt.want {
			t.Errorf("CanonicalTimestamp(DecodeTimestamp(%q)) = %q, want %q", tt.input, s, tt.want)
		}
	}
}

func TestEncodeTimestamp(t *testing.T) {
	for _, raw := range []string{"2022-01-06T10:09:40+0000", "2022-01-06T10:09:40+0005", "1999-12-31T23:59:59+0999"} {
		ts, err := DecodeTimestamp(raw)
		if err != nil {
			t.Fatalf("DecodeTimestamp(%q) unexpected error = %v", raw, err)
		}
		if got := EncodeTimestamp(ts); got != raw {
			t.Errorf("EncodeTimestamp(DecodeTimestamp(%q)) = %q", raw, got)
		}
	}
}
