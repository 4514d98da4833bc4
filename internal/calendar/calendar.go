// Package calendar resolves day-of-month patterns and answers business-day
// questions. Everything here is pure: the same inputs always produce the
// same date, which the reconciliation engine relies on for idempotence.
package calendar

import "time"

// DateOnly truncates t to midnight UTC. All core comparisons happen at day
// granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports day-granularity equality.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfMonth returns the first day of (year, month).
func StartOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of calendar days in (year, month), computed as
// the day before the first day of the next month.
func DaysIn(year int, month time.Month) int {
	return StartOfMonth(year, month).AddDate(0, 1, -1).Day()
}

// AddPeriods steps (year, month) forward by n months without the day
// overflow behavior of time.AddDate.
func AddPeriods(year int, month time.Month, n int) (int, time.Month) {
	idx := year*12 + int(month) - 1 + n
	return idx / 12, time.Month(idx%12 + 1)
}

// PeriodIndex linearizes (year, month) for ordering and distance math.
func PeriodIndex(year int, month time.Month) int {
	return year*12 + int(month) - 1
}
