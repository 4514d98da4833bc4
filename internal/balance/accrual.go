// Package balance accrues savings toward obligations and caches full
// balance recomputations behind a content-derived version key.
package balance

import (
	"time"

	"github.com/shopspring/decimal"

	"duetrack/internal/calendar"
	"duetrack/internal/model"
)

// RecordMonthlySavings adds one period's saving amount to the balance.
// It is idempotent per (year, month): if that period is already the last
// recorded one, nothing changes and false is returned.
func RecordMonthlySavings(def *model.Definition, bal *model.Balance, year int, month time.Month, now time.Time) bool {
	if bal.LastRecordedYear == year && bal.LastRecordedMonth == int(month) {
		return false
	}
	bal.TotalSaved = bal.TotalSaved.Add(def.MonthlySaving())
	bal.LastRecordedYear = year
	bal.LastRecordedMonth = int(month)
	bal.UpdatedAt = now
	return true
}

// PaymentClass classifies a settled amount against the expected one.
type PaymentClass string

const (
	PaidExact PaymentClass = "exact"
	PaidOver  PaymentClass = "over"
	PaidUnder PaymentClass = "under"
)

// PaymentOutcome is the signed difference between actual and expected.
type PaymentOutcome struct {
	Delta decimal.Decimal // actual - expected
	Class PaymentClass
}

// ProcessPayment adds a settled amount to the cumulative paid total and
// classifies it against the expected amount.
func ProcessPayment(bal *model.Balance, expected, actual decimal.Decimal, now time.Time) PaymentOutcome {
	bal.TotalPaid = bal.TotalPaid.Add(actual)
	bal.UpdatedAt = now

	delta := actual.Sub(expected)
	out := PaymentOutcome{Delta: delta, Class: PaidExact}
	switch {
	case delta.IsPositive():
		out.Class = PaidOver
	case delta.IsNegative():
		out.Class = PaidUnder
	}
	return out
}

// Recalculation is a from-scratch balance recomputation for one target
// period.
type Recalculation struct {
	TotalSaved    decimal.Decimal
	TotalPaid     decimal.Decimal
	MonthsElapsed int
}

// recalculate recomputes the balance without the cache: paid is the sum of
// all completed occurrences' actual amounts; saved is the months elapsed
// from the start period to the target period inclusive, floored at zero,
// times the monthly saving amount. O(occurrences), which is why callers go
// through the cache.
func recalculate(def *model.Definition, year int, month time.Month, startOverride *time.Time) Recalculation {
	paid := decimal.Zero
	for _, occ := range def.Occurrences {
		if occ.Status == model.StatusCompleted && occ.ActualAmount != nil {
			paid = paid.Add(*occ.ActualAmount)
		}
	}

	start := def.FirstDue
	if startOverride != nil {
		start = *startOverride
	}

	elapsed := calendar.PeriodIndex(year, month) - calendar.PeriodIndex(start.Year(), start.Month()) + 1
	if elapsed < 0 {
		elapsed = 0
	}

	saved := def.MonthlySaving().Mul(decimal.NewFromInt(int64(elapsed)))
	return Recalculation{TotalSaved: saved, TotalPaid: paid, MonthsElapsed: elapsed}
}
