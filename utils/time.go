package utils

import (
	"os"
	"regexp"
	"time"
)

var clockRegex = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ClinicLocation returns the timezone appointments are scheduled in.
// Defaults to IST, the clinic's home timezone.
func ClinicLocation() *time.Location {
	name := os.Getenv("CLINIC_TIMEZONE")
	if name == "" {
		name = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseClock parses an HH:MM wall-clock string.
func ParseClock(s string) (hour, minute int, ok bool) {
	if !clockRegex.MatchString(s) {
		return 0, 0, false
	}
	// The hour may be one or two digits.
	i := 1
	if s[1] != ':' {
		i = 2
	}
	for _, ch := range s[:i] {
		hour = hour*10 + int(ch-'0')
	}
	minute = int(s[i+1]-'0')*10 + int(s[i+2]-'0')
	return hour, minute, true
}

// AtClock anchors an HH:MM wall-clock string on day's calendar date in loc.
func AtClock(day time.Time, clock string, loc *time.Location) time.Time {
	hour, minute, ok := ParseClock(clock)
	if !ok {
		return time.Time{}
	}
	d := day.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
