package schedule

import "time"

// DateOf truncates a timestamp to its calendar date, anchored at UTC
// midnight. Timestamps reach this package in mixed locations (rows scanned in
// the DB session zone, wall clocks in server local time); anchoring every
// date at the same zone keeps whole-day arithmetic exact across them.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b. Negative when b is
// before a.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// SameDate reports whether two timestamps fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}
