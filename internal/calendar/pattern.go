package calendar

import (
	"time"

	"duetrack/internal/model"
)

// Resolve maps a day pattern onto a concrete date within (year, month).
// The second return is false when the pattern has no date that month, e.g.
// fixed(31) in February or a fifth Friday that does not exist.
//
// The switch covers every PatternKind; an unhandled zero-value pattern
// resolves to nothing.
func Resolve(p model.DayPattern, year int, month time.Month, calc *Calculator) (time.Time, bool) {
	switch p.Kind {
	case model.PatternFixedDay:
		if p.N < 1 || p.N > DaysIn(year, month) {
			return time.Time{}, false
		}
		return time.Date(year, month, p.N, 0, 0, 0, 0, time.UTC), true

	case model.PatternEndOfMonth:
		return StartOfMonth(year, month).AddDate(0, 1, -1), true

	case model.PatternEndOfMonthMinus:
		d := StartOfMonth(year, month).AddDate(0, 1, -1).AddDate(0, 0, -p.N)
		if d.Month() != month {
			return time.Time{}, false
		}
		return d, true

	case model.PatternNthWeekday:
		if p.Week < 1 {
			return time.Time{}, false
		}
		count := 0
		days := DaysIn(year, month)
		for day := 1; day <= days; day++ {
			d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			if d.Weekday() == p.Weekday {
				count++
				if count == p.Week {
					return d, true
				}
			}
		}
		return time.Time{}, false

	case model.PatternLastWeekday:
		// Scan backward from the first day of the next month; at most
		// seven steps can be needed.
		d := StartOfMonth(year, month).AddDate(0, 1, 0)
		for i := 0; i < 7; i++ {
			d = d.AddDate(0, 0, -1)
			if d.Weekday() == p.Weekday {
				return d, true
			}
		}
		return time.Time{}, false

	case model.PatternFirstBusinessDay:
		return calc.FirstBusinessDay(year, month)

	case model.PatternLastBusinessDay:
		return calc.LastBusinessDay(year, month)

	case model.PatternNthBusinessDay:
		return calc.NthBusinessDay(p.N, year, month)

	case model.PatternLastBusinessDayMinus:
		return calc.LastBusinessDayMinus(p.N, year, month)
	}
	return time.Time{}, false
}
