package balance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"duetrack/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func evenDef(t *testing.T) *model.Definition {
	t.Helper()
	return &model.Definition{
		ID:               "def-1",
		Name:             "Property tax",
		Amount:           decimal.NewFromInt(1200),
		RecurrenceMonths: 12,
		FirstDue:         mustDate(t, "2025-01-15"),
		Saving:           model.SavingEven,
	}
}

func TestRecordMonthlySavings_AccruesOncePerMonth(t *testing.T) {
	def := evenDef(t) // 1200 over 12 months = 100 per month
	bal := &model.Balance{ID: "bal-1", DefinitionID: def.ID}
	now := mustDate(t, "2025-06-30")

	if !RecordMonthlySavings(def, bal, 2025, time.June, now) {
		t.Fatal("first accrual reported no change")
	}
	if !bal.TotalSaved.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("total saved = %s, want 100", bal.TotalSaved)
	}

	if RecordMonthlySavings(def, bal, 2025, time.June, now) {
		t.Fatal("repeat accrual for the same month reported a change")
	}
	if !bal.TotalSaved.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("repeat accrual changed total to %s", bal.TotalSaved)
	}

	if !RecordMonthlySavings(def, bal, 2025, time.July, now) {
		t.Fatal("next month accrual reported no change")
	}
	if !bal.TotalSaved.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("total saved after July = %s, want 200", bal.TotalSaved)
	}
}

func TestRecordMonthlySavings_Strategies(t *testing.T) {
	now := mustDate(t, "2025-06-30")

	custom := decimal.NewFromInt(75)
	cases := []struct {
		name     string
		saving   model.SavingStrategy
		monthly  *decimal.Decimal
		expected decimal.Decimal
	}{
		{"none accrues nothing", model.SavingNone, nil, decimal.Zero},
		{"even divides by interval", model.SavingEven, nil, decimal.NewFromInt(100)},
		{"custom uses the fixed amount", model.SavingCustom, &custom, custom},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def := evenDef(t)
			def.Saving = tc.saving
			def.CustomMonthly = tc.monthly
			bal := &model.Balance{ID: "bal", DefinitionID: def.ID}

			RecordMonthlySavings(def, bal, 2025, time.June, now)
			if !bal.TotalSaved.Equal(tc.expected) {
				t.Fatalf("total saved = %s, want %s", bal.TotalSaved, tc.expected)
			}
		})
	}
}

func TestProcessPayment_Classification(t *testing.T) {
	now := mustDate(t, "2025-06-30")
	expected := decimal.NewFromInt(100)

	cases := []struct {
		name   string
		actual int64
		class  PaymentClass
		delta  int64
	}{
		{"exact", 100, PaidExact, 0},
		{"over", 120, PaidOver, 20},
		{"under", 80, PaidUnder, -20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bal := &model.Balance{ID: "bal"}
			out := ProcessPayment(bal, expected, decimal.NewFromInt(tc.actual), now)
			if out.Class != tc.class {
				t.Fatalf("class = %s, want %s", out.Class, tc.class)
			}
			if !out.Delta.Equal(decimal.NewFromInt(tc.delta)) {
				t.Fatalf("delta = %s, want %d", out.Delta, tc.delta)
			}
			if !bal.TotalPaid.Equal(decimal.NewFromInt(tc.actual)) {
				t.Fatalf("total paid = %s, want %d", bal.TotalPaid, tc.actual)
			}
		})
	}
}

func TestProcessPayment_Accumulates(t *testing.T) {
	now := mustDate(t, "2025-06-30")
	bal := &model.Balance{ID: "bal"}

	ProcessPayment(bal, decimal.NewFromInt(100), decimal.NewFromInt(100), now)
	ProcessPayment(bal, decimal.NewFromInt(100), decimal.NewFromInt(150), now)

	if !bal.TotalPaid.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("total paid = %s, want 250", bal.TotalPaid)
	}
}

func TestRecalculate_MonthsElapsedAndPaid(t *testing.T) {
	def := evenDef(t) // first due 2025-01, 100 per month
	a1 := decimal.NewFromInt(90)
	a2 := decimal.NewFromInt(110)
	def.Occurrences = []model.Occurrence{
		{ID: "a", Status: model.StatusCompleted, ActualAmount: &a1},
		{ID: "b", Status: model.StatusCompleted, ActualAmount: &a2},
		{ID: "c", Status: model.StatusPlanned},
	}

	rec := recalculate(def, 2025, time.June, nil)
	if rec.MonthsElapsed != 6 {
		t.Fatalf("months elapsed = %d, want 6 (Jan through June inclusive)", rec.MonthsElapsed)
	}
	if !rec.TotalSaved.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("total saved = %s, want 600", rec.TotalSaved)
	}
	if !rec.TotalPaid.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("total paid = %s, want 200 (completed occurrences only)", rec.TotalPaid)
	}
}

func TestRecalculate_StartOverrideAndFloor(t *testing.T) {
	def := evenDef(t)

	start := mustDate(t, "2025-04-01")
	rec := recalculate(def, 2025, time.June, &start)
	if rec.MonthsElapsed != 3 {
		t.Fatalf("months elapsed with override = %d, want 3", rec.MonthsElapsed)
	}

	// Target before the start period floors at zero.
	rec = recalculate(def, 2024, time.June, nil)
	if rec.MonthsElapsed != 0 {
		t.Fatalf("months elapsed before start = %d, want 0", rec.MonthsElapsed)
	}
	if !rec.TotalSaved.IsZero() {
		t.Fatalf("total saved before start = %s, want 0", rec.TotalSaved)
	}
}
