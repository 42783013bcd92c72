package status

import "time"

// referenceHour is the canonical start-of-isolation hour.
const referenceHour = 7

// atSevenAM maps a calendar date to 07:00 UTC on that date.
func atSevenAM(day time.Time) time.Time {
	y, m, d := day.UTC().Date()
	return time.Date(y, m, d, referenceHour, 0, 0, 0, time.UTC)
}

// endOfDay maps a calendar date to 23:59:59 UTC on that date.
func endOfDay(day time.Time) time.Time {
	y, m, d := day.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
}

func addDays(day time.Time, days int) time.Time {
	return day.AddDate(0, 0, days)
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
