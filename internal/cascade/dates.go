package cascade

import "time"

// dayLayout is the canonical calendar-day format used for cache keys and
// server-side activity records.
const dayLayout = "2006-01-02"

// Day formats t as a local calendar day (YYYY-MM-DD).
func Day(t time.Time) string {
	return t.Format(dayLayout)
}

// StartOfDay returns local midnight of t's calendar day. The instant is
// absolute, so expressing it in UTC tells the server exactly when this
// user's day began.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDay parses a YYYY-MM-DD string. Returns the zero time on failure.
func ParseDay(s string) (time.Time, bool) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DaysIn returns the number of calendar days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DayOf builds the YYYY-MM-DD string for a specific day of a month.
func DayOf(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(dayLayout)
}
