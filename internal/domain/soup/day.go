package soup

import "time"

// StartOfDay returns local midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayBounds returns the inclusive range [00:00:00.000, 23:59:59.999] of t's calendar day.
func DayBounds(t time.Time) (start, end time.Time) {
	start = StartOfDay(t)
	end = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
	return start, end
}

// OnDay reports whether ts falls within the calendar day of day.
func OnDay(ts, day time.Time) bool {
	start, end := DayBounds(day)
	return !ts.Before(start) && !ts.After(end)
}
