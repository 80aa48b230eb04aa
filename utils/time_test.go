package utils

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
		ok     bool
	}{
		{"00:00", 0, 0, true},
		{"9:05", 9, 5, true},
		{"09:05", 9, 5, true},
		{"19:59", 19, 59, true},
		{"23:59", 23, 59, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"1200", 0, 0, false},
		{"12:5", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tc := range cases {
		hour, minute, ok := ParseClock(tc.in)
		if ok != tc.ok || hour != tc.hour || minute != tc.minute {
			t.Errorf("ParseClock(%q) = (%d, %d, %v), want (%d, %d, %v)",
				tc.in, hour, minute, ok, tc.hour, tc.minute, tc.ok)
		}
	}
}

func TestAtClock(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	got := AtClock(day, "14:30", time.UTC)
	want := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("AtClock = %v, want %v", got, want)
	}

	if !AtClock(day, "bogus", time.UTC).IsZero() {
		t.Fatal("AtClock accepted an invalid clock string")
	}
}

func TestAtClockUsesLocationDate(t *testing.T) {
	// Midnight UTC on March 10 is already March 10 in IST; the anchored
	// timestamp must carry the target location's calendar date.
	ist := time.FixedZone("IST", 5*3600+1800)
	day := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)

	got := AtClock(day, "09:00", ist)
	want := time.Date(2026, 3, 11, 9, 0, 0, 0, ist)
	if !got.Equal(want) {
		t.Fatalf("AtClock = %v, want %v", got, want)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	if !SameDay(a, b, time.UTC) {
		t.Fatal("same UTC day not recognized")
	}
	if SameDay(a, b.AddDate(0, 0, 1), time.UTC) {
		t.Fatal("different days reported as same")
	}

	// 23:00 UTC is past midnight in IST, so the two instants land on
	// different calendar days there.
	ist := time.FixedZone("IST", 5*3600+1800)
	if SameDay(a, b, ist) {
		t.Fatal("location not applied to day comparison")
	}
}

func TestGenerateAccessCode(t *testing.T) {
	code := GenerateAccessCode(8)
	if len(code) != 8 {
		t.Fatalf("code length = %d", len(code))
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '2' || r > '9') {
			t.Fatalf("code %q contains unexpected character %q", code, r)
		}
	}
}
