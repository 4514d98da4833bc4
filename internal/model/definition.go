// Package model defines the domain types: obligation definitions, their
// scheduled occurrences, savings balances, and the transaction history the
// detector mines.
package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SavingStrategy controls how money is set aside for an obligation between
// due dates.
type SavingStrategy string

const (
	// SavingNone disables saving; nothing accrues.
	SavingNone SavingStrategy = "none"
	// SavingEven spreads the amount evenly across the recurrence interval.
	SavingEven SavingStrategy = "even"
	// SavingCustom accrues a fixed user-chosen amount each month.
	SavingCustom SavingStrategy = "custom"
)

// Adjustment moves a resolved due date that lands on a weekend or holiday.
type Adjustment string

const (
	AdjustNone     Adjustment = "none"
	AdjustPrevious Adjustment = "previous" // move to previous business day
	AdjustNext     Adjustment = "next"     // move to next business day
)

// Definition describes one recurring obligation: what is owed, how often,
// and how its due day is chosen within a month.
//
// A definition exclusively owns its occurrences. The slice is kept sorted
// ascending by scheduled date; every mutation path restores that order.
// Field invariants are enforced at validation time, not at construction,
// so an in-memory definition may transiently be invalid while edited.
type Definition struct {
	ID               string
	Name             string
	Amount           decimal.Decimal
	RecurrenceMonths int
	FirstDue         time.Time
	EndDate          *time.Time
	LeadMonths       int
	Saving           SavingStrategy
	CustomMonthly    *decimal.Decimal // required iff Saving == SavingCustom
	Adjustment       Adjustment
	DayPattern       *DayPattern // nil means "same day of month as FirstDue"
	CategoryID       *string

	Occurrences []Occurrence

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SortOccurrences restores the scheduled-date ordering invariant.
func (d *Definition) SortOccurrences() {
	sort.Slice(d.Occurrences, func(i, j int) bool {
		return d.Occurrences[i].Scheduled.Before(d.Occurrences[j].Scheduled)
	})
}

// Occurrence returns the occurrence with the given ID, or nil.
func (d *Definition) Occurrence(id string) *Occurrence {
	for i := range d.Occurrences {
		if d.Occurrences[i].ID == id {
			return &d.Occurrences[i]
		}
	}
	return nil
}

// MonthlySaving returns the amount that accrues per month under the
// definition's saving strategy. Even distribution divides the obligation
// amount by the recurrence interval.
func (d *Definition) MonthlySaving() decimal.Decimal {
	switch d.Saving {
	case SavingEven:
		if d.RecurrenceMonths <= 0 {
			return decimal.Zero
		}
		return d.Amount.Div(decimal.NewFromInt(int64(d.RecurrenceMonths)))
	case SavingCustom:
		if d.CustomMonthly == nil {
			return decimal.Zero
		}
		return *d.CustomMonthly
	}
	return decimal.Zero
}
