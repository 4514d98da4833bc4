// Package schedule turns an obligation definition into the ordered list of
// (date, amount) targets it should have over a horizon.
package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"duetrack/internal/calendar"
	"duetrack/internal/model"
)

// maxSteps bounds both the anchor search and forward generation so a
// malformed interval can never loop unbounded.
const maxSteps = 600

// Target is one scheduled (date, amount) pair a definition implies.
type Target struct {
	Date   time.Time
	Amount decimal.Decimal
}

// Generate produces the targets a definition should have between its
// effective start and reference+horizon months.
//
// seed anchors the recurrence grid, normally one interval past the latest
// completed occurrence. When the first-due month lies before the seed's
// month, generation restarts from the first due date: this is what
// backfills the gap after a user retroactively moves the first due date
// earlier than settled history. Otherwise the anchor fast-forwards from
// the seed in interval steps until it reaches the reference month, so a
// brand-new definition does not accrete years of stale past occurrences.
//
// A non-positive recurrence interval yields nil; callers reject that as
// invalid input before getting here.
func Generate(def *model.Definition, seed, reference time.Time, horizonMonths int, calc *calendar.Calculator) []Target {
	if def.RecurrenceMonths <= 0 {
		return nil
	}

	seed = calendar.DateOnly(seed)
	reference = calendar.DateOnly(reference)
	firstDue := calendar.DateOnly(def.FirstDue)
	if seed.Before(firstDue) {
		seed = firstDue
	}

	refIdx := calendar.PeriodIndex(reference.Year(), reference.Month())
	startIdx := calendar.PeriodIndex(firstDue.Year(), firstDue.Month())

	y, m := seed.Year(), seed.Month()
	if startIdx < calendar.PeriodIndex(y, m) {
		// The definition now starts before the seed: regenerate from the
		// earlier point instead of fast-forwarding past it.
		y, m = startIdx/12, time.Month(startIdx%12+1)
	} else {
		for i := 0; i < maxSteps && calendar.PeriodIndex(y, m) < refIdx; i++ {
			y, m = calendar.AddPeriods(y, m, def.RecurrenceMonths)
		}
	}
	anchorYear, anchorMonth := y, m

	endIdx := refIdx + horizonMonths

	var targets []Target
	for i := 0; i < maxSteps && calendar.PeriodIndex(y, m) <= endIdx; i++ {
		if d, ok := dueDateIn(def, y, m, calc); ok {
			d = adjust(def, d, calc)
			if !d.Before(firstDue) && withinEnd(def, d) {
				targets = append(targets, Target{Date: d, Amount: def.Amount})
			}
		}
		y, m = calendar.AddPeriods(y, m, def.RecurrenceMonths)
	}

	// A definition must never be left with zero occurrences; fall back to
	// the anchor date itself.
	if len(targets) == 0 {
		d, ok := dueDateIn(def, anchorYear, anchorMonth, calc)
		if !ok {
			d = calendar.StartOfMonth(anchorYear, anchorMonth)
		}
		targets = append(targets, Target{Date: adjust(def, d, calc), Amount: def.Amount})
	}

	return targets
}

// dueDateIn resolves the definition's due date within one month: the day
// pattern when set, otherwise the first-due day clamped to the month's
// length.
func dueDateIn(def *model.Definition, year int, month time.Month, calc *calendar.Calculator) (time.Time, bool) {
	if def.DayPattern != nil {
		return calendar.Resolve(*def.DayPattern, year, month, calc)
	}
	day := def.FirstDue.Day()
	if max := calendar.DaysIn(year, month); day > max {
		day = max
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// adjust applies the definition's business-day policy. If the capped
// search finds nothing the resolved date stands.
func adjust(def *model.Definition, d time.Time, calc *calendar.Calculator) time.Time {
	if calc == nil || calc.IsBusinessDay(d) {
		return d
	}
	switch def.Adjustment {
	case model.AdjustPrevious:
		if prev, ok := calc.PreviousBusinessDay(d); ok {
			return prev
		}
	case model.AdjustNext:
		if next, ok := calc.NextBusinessDay(d); ok {
			return next
		}
	}
	return d
}

func withinEnd(def *model.Definition, d time.Time) bool {
	return def.EndDate == nil || !d.After(calendar.DateOnly(*def.EndDate))
}
