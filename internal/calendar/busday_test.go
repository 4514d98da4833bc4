package calendar

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func newYearCalc(t *testing.T) *Calculator {
	t.Helper()
	return NewCalculator(NewStaticHolidays([]time.Time{
		mustDate(t, "2025-01-01"),
	}))
}

func TestIsBusinessDay_WeekendsAndHolidays(t *testing.T) {
	calc := newYearCalc(t)

	cases := []struct {
		date string
		want bool
	}{
		{"2025-01-01", false}, // holiday (Wednesday)
		{"2025-01-02", true},  // Thursday
		{"2025-01-04", false}, // Saturday
		{"2025-01-05", false}, // Sunday
		{"2025-01-06", true},  // Monday
	}
	for _, tc := range cases {
		if got := calc.IsBusinessDay(mustDate(t, tc.date)); got != tc.want {
			t.Errorf("IsBusinessDay(%s) = %v, want %v", tc.date, got, tc.want)
		}
	}
}

func TestIsBusinessDay_NoProvidersWeekendsOnly(t *testing.T) {
	calc := NewCalculator()
	if !calc.IsBusinessDay(mustDate(t, "2025-01-01")) {
		t.Error("weekday should be a business day without holiday providers")
	}
	if calc.IsBusinessDay(mustDate(t, "2025-01-04")) {
		t.Error("Saturday should never be a business day")
	}
}

func TestNextBusinessDay_SkipsWeekendAndHoliday(t *testing.T) {
	calc := newYearCalc(t)

	// Dec 31 2024 is a Tuesday; Jan 1 is a holiday, so the next business
	// day is Thursday Jan 2.
	next, ok := calc.NextBusinessDay(mustDate(t, "2024-12-31"))
	if !ok {
		t.Fatal("NextBusinessDay returned !ok")
	}
	if !SameDay(next, mustDate(t, "2025-01-02")) {
		t.Fatalf("NextBusinessDay = %s, want 2025-01-02", next.Format("2006-01-02"))
	}
}

func TestPreviousBusinessDay_SkipsWeekend(t *testing.T) {
	calc := newYearCalc(t)

	prev, ok := calc.PreviousBusinessDay(mustDate(t, "2025-01-06")) // Monday
	if !ok {
		t.Fatal("PreviousBusinessDay returned !ok")
	}
	if !SameDay(prev, mustDate(t, "2025-01-03")) { // Friday
		t.Fatalf("PreviousBusinessDay = %s, want 2025-01-03", prev.Format("2006-01-02"))
	}
}

func TestNextBusinessDay_SearchCap(t *testing.T) {
	// Every day in March 2025 is a holiday; the ten-step search from
	// March 1 finds nothing.
	var all []time.Time
	for day := 1; day <= 31; day++ {
		all = append(all, time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC))
	}
	calc := NewCalculator(NewStaticHolidays(all))

	if _, ok := calc.NextBusinessDay(mustDate(t, "2025-03-01")); ok {
		t.Error("NextBusinessDay should give up after the search cap")
	}
	if _, ok := calc.PreviousBusinessDay(mustDate(t, "2025-03-31")); ok {
		t.Error("PreviousBusinessDay should give up after the search cap")
	}
}

func TestFirstAndLastBusinessDay(t *testing.T) {
	calc := newYearCalc(t)

	first, ok := calc.FirstBusinessDay(2025, time.January)
	if !ok || !SameDay(first, mustDate(t, "2025-01-02")) {
		t.Fatalf("FirstBusinessDay = %s ok=%v, want 2025-01-02", first.Format("2006-01-02"), ok)
	}

	last, ok := calc.LastBusinessDay(2025, time.January)
	if !ok || !SameDay(last, mustDate(t, "2025-01-31")) { // Friday
		t.Fatalf("LastBusinessDay = %s ok=%v, want 2025-01-31", last.Format("2006-01-02"), ok)
	}
}

func TestNthBusinessDay(t *testing.T) {
	calc := newYearCalc(t)

	// January 2025 business days start Jan 2 (Thu), Jan 3 (Fri), Jan 6 (Mon).
	third, ok := calc.NthBusinessDay(3, 2025, time.January)
	if !ok || !SameDay(third, mustDate(t, "2025-01-06")) {
		t.Fatalf("NthBusinessDay(3) = %s ok=%v, want 2025-01-06", third.Format("2006-01-02"), ok)
	}

	if _, ok := calc.NthBusinessDay(0, 2025, time.January); ok {
		t.Error("NthBusinessDay(0) should not resolve")
	}
	if _, ok := calc.NthBusinessDay(25, 2025, time.January); ok {
		t.Error("NthBusinessDay(25) should not resolve in a 22-business-day month")
	}
}

func TestLastBusinessDayMinus(t *testing.T) {
	calc := newYearCalc(t)

	// Last business day of January 2025 is Fri Jan 31; two business-day
	// steps back lands on Wed Jan 29.
	d, ok := calc.LastBusinessDayMinus(2, 2025, time.January)
	if !ok || !SameDay(d, mustDate(t, "2025-01-29")) {
		t.Fatalf("LastBusinessDayMinus(2) = %s ok=%v, want 2025-01-29", d.Format("2006-01-02"), ok)
	}
}

func TestAddPeriodsAndPeriodIndex(t *testing.T) {
	y, m := AddPeriods(2024, time.November, 3)
	if y != 2025 || m != time.February {
		t.Fatalf("AddPeriods(2024, Nov, 3) = %d-%s, want 2025-February", y, m)
	}

	if got := PeriodIndex(2025, time.January) - PeriodIndex(2024, time.December); got != 1 {
		t.Fatalf("adjacent period index delta = %d, want 1", got)
	}
}

func TestDaysIn_LeapYear(t *testing.T) {
	if got := DaysIn(2024, time.February); got != 29 {
		t.Fatalf("DaysIn(2024, Feb) = %d, want 29", got)
	}
	if got := DaysIn(2025, time.February); got != 28 {
		t.Fatalf("DaysIn(2025, Feb) = %d, want 28", got)
	}
}
