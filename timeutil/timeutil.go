package timeutil

import (
	"sync"
	"time"
)

// Layout is the canonical timestamp format stored in the database. Timestamps
// are kept as strings in this layout so range filters compare lexicographically.
const Layout = "2006-01-02 15:04:05"

// DateLayout is the calendar-day format accepted by history filters.
const DateLayout = "2006-01-02"

var (
	locOnce sync.Once
	loc     *time.Location
)

// Location returns the canonical timezone all timestamps are recorded in.
// US Eastern, with a fixed-offset fallback if the tz database is unavailable.
func Location() *time.Location {
	locOnce.Do(func() {
		l, err := time.LoadLocation("America/New_York")
		if err != nil {
			l = time.FixedZone("EST", -5*60*60)
		}
		loc = l
	})
	return loc
}

// Now returns the current time normalized to the canonical timezone.
func Now() time.Time {
	return time.Now().In(Location())
}

// Format renders t in the canonical layout and timezone.
func Format(t time.Time) string {
	return t.In(Location()).Format(Layout)
}

// Parse reads a canonical timestamp string back into a time.Time.
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, Location())
}

// StartOfDay widens a calendar date to the first instant of that day.
func StartOfDay(date string) string {
	return date + " 00:00:00"
}

// EndOfDay widens a calendar date to the last whole second of that day.
func EndOfDay(date string) string {
	return date + " 23:59:59"
}
