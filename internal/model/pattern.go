package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PatternKind enumerates the closed set of day-of-month rules. The calendar
// package switches over every kind with no default branch, so adding a kind
// means touching the resolver too.
type PatternKind string

const (
	PatternFixedDay             PatternKind = "fixed"
	PatternEndOfMonth           PatternKind = "end_of_month"
	PatternEndOfMonthMinus      PatternKind = "end_of_month_minus"
	PatternNthWeekday           PatternKind = "nth_weekday"
	PatternLastWeekday          PatternKind = "last_weekday"
	PatternFirstBusinessDay     PatternKind = "first_business_day"
	PatternLastBusinessDay      PatternKind = "last_business_day"
	PatternNthBusinessDay       PatternKind = "nth_business_day"
	PatternLastBusinessDayMinus PatternKind = "last_business_day_minus"
)

// DayPattern is a tagged union over PatternKind. N carries the fixed day,
// the minus-offset, or the business-day ordinal depending on the kind; Week
// and Weekday apply only to the weekday kinds. Patterns are immutable value
// types resolved per (year, month).
type DayPattern struct {
	Kind    PatternKind
	N       int
	Week    int
	Weekday time.Weekday
}

func FixedDay(day int) DayPattern       { return DayPattern{Kind: PatternFixedDay, N: day} }
func EndOfMonth() DayPattern            { return DayPattern{Kind: PatternEndOfMonth} }
func EndOfMonthMinus(days int) DayPattern {
	return DayPattern{Kind: PatternEndOfMonthMinus, N: days}
}
func NthWeekday(week int, wd time.Weekday) DayPattern {
	return DayPattern{Kind: PatternNthWeekday, Week: week, Weekday: wd}
}
func LastWeekday(wd time.Weekday) DayPattern {
	return DayPattern{Kind: PatternLastWeekday, Weekday: wd}
}
func FirstBusinessDay() DayPattern { return DayPattern{Kind: PatternFirstBusinessDay} }
func LastBusinessDay() DayPattern  { return DayPattern{Kind: PatternLastBusinessDay} }
func NthBusinessDay(n int) DayPattern {
	return DayPattern{Kind: PatternNthBusinessDay, N: n}
}
func LastBusinessDayMinus(days int) DayPattern {
	return DayPattern{Kind: PatternLastBusinessDayMinus, N: days}
}

// String encodes the pattern in the compact form used by the store and the
// CLI, e.g. "fixed:15", "eom", "eom-2", "nth:2:Mon", "last:Fri", "fbd",
// "lbd", "nbd:3", "lbd-2".
func (p DayPattern) String() string {
	switch p.Kind {
	case PatternFixedDay:
		return fmt.Sprintf("fixed:%d", p.N)
	case PatternEndOfMonth:
		return "eom"
	case PatternEndOfMonthMinus:
		return fmt.Sprintf("eom-%d", p.N)
	case PatternNthWeekday:
		return fmt.Sprintf("nth:%d:%s", p.Week, shortWeekday(p.Weekday))
	case PatternLastWeekday:
		return fmt.Sprintf("last:%s", shortWeekday(p.Weekday))
	case PatternFirstBusinessDay:
		return "fbd"
	case PatternLastBusinessDay:
		return "lbd"
	case PatternNthBusinessDay:
		return fmt.Sprintf("nbd:%d", p.N)
	case PatternLastBusinessDayMinus:
		return fmt.Sprintf("lbd-%d", p.N)
	}
	return ""
}

// ParseDayPattern is the inverse of String.
func ParseDayPattern(s string) (DayPattern, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "eom":
		return EndOfMonth(), nil
	case s == "fbd":
		return FirstBusinessDay(), nil
	case s == "lbd":
		return LastBusinessDay(), nil
	case strings.HasPrefix(s, "eom-"):
		n, err := strconv.Atoi(s[len("eom-"):])
		if err != nil {
			return DayPattern{}, fmt.Errorf("parsing pattern %q: %w", s, err)
		}
		return EndOfMonthMinus(n), nil
	case strings.HasPrefix(s, "lbd-"):
		n, err := strconv.Atoi(s[len("lbd-"):])
		if err != nil {
			return DayPattern{}, fmt.Errorf("parsing pattern %q: %w", s, err)
		}
		return LastBusinessDayMinus(n), nil
	case strings.HasPrefix(s, "fixed:"):
		n, err := strconv.Atoi(s[len("fixed:"):])
		if err != nil {
			return DayPattern{}, fmt.Errorf("parsing pattern %q: %w", s, err)
		}
		return FixedDay(n), nil
	case strings.HasPrefix(s, "nbd:"):
		n, err := strconv.Atoi(s[len("nbd:"):])
		if err != nil {
			return DayPattern{}, fmt.Errorf("parsing pattern %q: %w", s, err)
		}
		return NthBusinessDay(n), nil
	case strings.HasPrefix(s, "nth:"):
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return DayPattern{}, fmt.Errorf("parsing pattern %q: want nth:<week>:<weekday>", s)
		}
		week, err := strconv.Atoi(parts[1])
		if err != nil {
			return DayPattern{}, fmt.Errorf("parsing pattern %q: %w", s, err)
		}
		wd, ok := parseWeekday(parts[2])
		if !ok {
			return DayPattern{}, fmt.Errorf("parsing pattern %q: unknown weekday %q", s, parts[2])
		}
		return NthWeekday(week, wd), nil
	case strings.HasPrefix(s, "last:"):
		wd, ok := parseWeekday(s[len("last:"):])
		if !ok {
			return DayPattern{}, fmt.Errorf("parsing pattern %q: unknown weekday", s)
		}
		return LastWeekday(wd), nil
	}
	return DayPattern{}, fmt.Errorf("unknown day pattern %q", s)
}

func shortWeekday(wd time.Weekday) string {
	return wd.String()[:3]
}

func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(s)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.ToLower(wd.String()[:3]) == s || strings.ToLower(wd.String()) == s {
			return wd, true
		}
	}
	return 0, false
}
