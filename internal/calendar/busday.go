package calendar

import "time"

// maxDaySearch caps the linear next/previous business-day search. A run of
// more than ten consecutive non-business days is treated as bad holiday
// data, not something to keep walking through.
const maxDaySearch = 10

// Calculator answers business-day questions against the union of its
// holiday providers. A date is a business day when it is a weekday and not
// a holiday.
type Calculator struct {
	providers []HolidayProvider
}

// NewCalculator builds a calculator over zero or more holiday providers.
// With no providers only weekends are non-business days.
func NewCalculator(providers ...HolidayProvider) *Calculator {
	return &Calculator{providers: providers}
}

// IsBusinessDay reports whether t (at day granularity) is a business day.
func (c *Calculator) IsBusinessDay(t time.Time) bool {
	t = DateOnly(t)
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	for _, p := range c.providers {
		for _, h := range p.Holidays(t.Year()) {
			if SameDay(t, h) {
				return false
			}
		}
	}
	return true
}

// NextBusinessDay returns the first business day strictly after t, or
// false if none is found within the search cap.
func (c *Calculator) NextBusinessDay(t time.Time) (time.Time, bool) {
	d := DateOnly(t)
	for i := 0; i < maxDaySearch; i++ {
		d = d.AddDate(0, 0, 1)
		if c.IsBusinessDay(d) {
			return d, true
		}
	}
	return time.Time{}, false
}

// PreviousBusinessDay returns the first business day strictly before t, or
// false if none is found within the search cap.
func (c *Calculator) PreviousBusinessDay(t time.Time) (time.Time, bool) {
	d := DateOnly(t)
	for i := 0; i < maxDaySearch; i++ {
		d = d.AddDate(0, 0, -1)
		if c.IsBusinessDay(d) {
			return d, true
		}
	}
	return time.Time{}, false
}

// FirstBusinessDay returns the first business day of (year, month).
func (c *Calculator) FirstBusinessDay(year int, month time.Month) (time.Time, bool) {
	d := StartOfMonth(year, month)
	if c.IsBusinessDay(d) {
		return d, true
	}
	next, ok := c.NextBusinessDay(d)
	if !ok || next.Month() != month {
		return time.Time{}, false
	}
	return next, true
}

// LastBusinessDay returns the last business day of (year, month).
func (c *Calculator) LastBusinessDay(year int, month time.Month) (time.Time, bool) {
	d := StartOfMonth(year, month).AddDate(0, 1, -1)
	if c.IsBusinessDay(d) {
		return d, true
	}
	prev, ok := c.PreviousBusinessDay(d)
	if !ok || prev.Month() != month {
		return time.Time{}, false
	}
	return prev, true
}

// NthBusinessDay counts business days from the 1st of the month until the
// n-th is found or the month ends.
func (c *Calculator) NthBusinessDay(n, year int, month time.Month) (time.Time, bool) {
	if n < 1 {
		return time.Time{}, false
	}
	days := DaysIn(year, month)
	count := 0
	for day := 1; day <= days; day++ {
		d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		if c.IsBusinessDay(d) {
			count++
			if count == n {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

// LastBusinessDayMinus walks backward from the month's last business day
// exactly `days` business-day steps.
func (c *Calculator) LastBusinessDayMinus(days, year int, month time.Month) (time.Time, bool) {
	d, ok := c.LastBusinessDay(year, month)
	if !ok {
		return time.Time{}, false
	}
	for i := 0; i < days; i++ {
		d, ok = c.PreviousBusinessDay(d)
		if !ok {
			return time.Time{}, false
		}
	}
	return d, true
}
