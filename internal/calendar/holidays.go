package calendar

import "time"

// HolidayProvider supplies the non-weekend days off for a year. Multiple
// providers compose by set union; the source of the data (static config,
// a regional table, an API cache) is the provider's concern.
type HolidayProvider interface {
	Holidays(year int) []time.Time
}

// HolidayFunc adapts a function to the HolidayProvider interface.
type HolidayFunc func(year int) []time.Time

func (f HolidayFunc) Holidays(year int) []time.Time { return f(year) }

// StaticHolidays serves a fixed list of dates, bucketed by year.
type StaticHolidays struct {
	byYear map[int][]time.Time
}

// NewStaticHolidays builds a provider from explicit dates. Times are
// normalized to day granularity.
func NewStaticHolidays(dates []time.Time) *StaticHolidays {
	byYear := make(map[int][]time.Time)
	for _, d := range dates {
		d = DateOnly(d)
		byYear[d.Year()] = append(byYear[d.Year()], d)
	}
	return &StaticHolidays{byYear: byYear}
}

func (s *StaticHolidays) Holidays(year int) []time.Time {
	return s.byYear[year]
}
