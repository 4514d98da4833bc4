package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"duetrack/internal/calendar"
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

func testDef(t *testing.T, firstDue string, interval int) *model.Definition {
	t.Helper()
	now := mustDate(t, "2025-01-01")
	return &model.Definition{
		ID:               "def-1",
		Name:             "Insurance",
		Amount:           decimal.NewFromInt(600),
		RecurrenceMonths: interval,
		FirstDue:         mustDate(t, firstDue),
		Saving:           model.SavingNone,
		Adjustment:       model.AdjustNone,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestReconcile_CreatesFromEmpty(t *testing.T) {
	def := testDef(t, "2025-01-15", 1)
	now := mustDate(t, "2025-01-10")

	d := reconcile(def, now, 2, calendar.NewCalculator(), now)

	if len(d.created) != 3 || len(d.updated) != 0 || len(d.removed) != 0 {
		t.Fatalf("diff = %d/%d/%d, want 3 created only", len(d.created), len(d.updated), len(d.removed))
	}
	for _, occ := range d.created {
		if occ.ID == "" {
			t.Error("created occurrence has no ID")
		}
		if occ.DefinitionID != def.ID {
			t.Errorf("created occurrence definition = %q, want %q", occ.DefinitionID, def.ID)
		}
	}
}

func TestReconcile_SecondRunIsNoOp(t *testing.T) {
	def := testDef(t, "2025-01-15", 1)
	now := mustDate(t, "2025-01-10")
	calc := calendar.NewCalculator()

	first := reconcile(def, now, 3, calc, now)
	def.Occurrences = first.final

	second := reconcile(def, now, 3, calc, now)
	if len(second.created) != 0 || len(second.updated) != 0 || len(second.removed) != 0 {
		t.Fatalf("second run diff = %d/%d/%d, want 0/0/0",
			len(second.created), len(second.updated), len(second.removed))
	}
}

func TestReconcile_PreservesOccurrenceIdentity(t *testing.T) {
	def := testDef(t, "2025-01-15", 1)
	now := mustDate(t, "2025-01-10")
	calc := calendar.NewCalculator()

	first := reconcile(def, now, 3, calc, now)
	def.Occurrences = first.final
	ids := make(map[string]bool, len(def.Occurrences))
	for _, occ := range def.Occurrences {
		ids[occ.ID] = true
	}

	// Changing the amount updates occurrences in place rather than
	// replacing them.
	def.Amount = decimal.NewFromInt(650)
	second := reconcile(def, now, 3, calc, now)

	if len(second.created) != 0 || len(second.removed) != 0 {
		t.Fatalf("amount change diff = %d created, %d removed, want in-place updates",
			len(second.created), len(second.removed))
	}
	if len(second.updated) == 0 {
		t.Fatal("amount change produced no updates")
	}
	for _, occ := range second.final {
		if !ids[occ.ID] {
			t.Errorf("occurrence %s is new; identity was not preserved", occ.ID)
		}
		if !occ.ExpectedAmount.Equal(def.Amount) {
			t.Errorf("occurrence amount = %s, want %s", occ.ExpectedAmount, def.Amount)
		}
	}
}

func TestReconcile_LockedOccurrencesUntouched(t *testing.T) {
	def := testDef(t, "2025-01-15", 1)
	now := mustDate(t, "2025-03-10")
	calc := calendar.NewCalculator()

	actualDate := mustDate(t, "2025-01-16")
	actualAmount := decimal.NewFromInt(610)
	done := model.Occurrence{
		ID:             "occ-done",
		DefinitionID:   def.ID,
		Scheduled:      mustDate(t, "2025-01-15"),
		ExpectedAmount: decimal.NewFromInt(600),
		Status:         model.StatusCompleted,
		ActualDate:     &actualDate,
		ActualAmount:   &actualAmount,
	}
	cancelled := model.Occurrence{
		ID:             "occ-cancelled",
		DefinitionID:   def.ID,
		Scheduled:      mustDate(t, "2025-02-15"),
		ExpectedAmount: decimal.NewFromInt(600),
		Status:         model.StatusCancelled,
	}
	def.Occurrences = []model.Occurrence{done, cancelled}

	// Even with a changed amount the settled rows must come through intact.
	def.Amount = decimal.NewFromInt(999)
	d := reconcile(def, now, 2, calc, now)

	var gotDone, gotCancelled *model.Occurrence
	for i := range d.final {
		switch d.final[i].ID {
		case done.ID:
			gotDone = &d.final[i]
		case cancelled.ID:
			gotCancelled = &d.final[i]
		}
	}
	if gotDone == nil || gotCancelled == nil {
		t.Fatal("locked occurrences missing from final set")
	}
	if !gotDone.ExpectedAmount.Equal(done.ExpectedAmount) || gotDone.Status != model.StatusCompleted {
		t.Errorf("completed occurrence was modified: %+v", gotDone)
	}
	if gotCancelled.Status != model.StatusCancelled {
		t.Errorf("cancelled occurrence was modified: %+v", gotCancelled)
	}
	for _, occ := range d.removed {
		if occ.ID == done.ID || occ.ID == cancelled.ID {
			t.Errorf("locked occurrence %s was removed", occ.ID)
		}
	}
}

func TestReconcile_RemovesStaleAfterIntervalChange(t *testing.T) {
	def := testDef(t, "2025-01-15", 1)
	now := mustDate(t, "2025-01-10")
	calc := calendar.NewCalculator()

	first := reconcile(def, now, 5, calc, now)
	def.Occurrences = first.final
	before := len(def.Occurrences)

	def.RecurrenceMonths = 3
	second := reconcile(def, now, 5, calc, now)

	if len(second.removed) == 0 {
		t.Fatal("interval change removed nothing")
	}
	if len(second.final) >= before {
		t.Fatalf("final set has %d occurrences, want fewer than %d", len(second.final), before)
	}
	for _, occ := range second.final {
		if (occ.Scheduled.Month()-def.FirstDue.Month())%3 != 0 {
			t.Errorf("occurrence %s does not sit on the new quarterly grid", occ.Scheduled.Format("2006-01-02"))
		}
	}
}

func TestReconcile_FinalSetSortedByDate(t *testing.T) {
	def := testDef(t, "2025-01-15", 1)
	now := mustDate(t, "2025-01-10")

	d := reconcile(def, now, 6, calendar.NewCalculator(), now)
	for i := 1; i < len(d.final); i++ {
		if d.final[i].Scheduled.Before(d.final[i-1].Scheduled) {
			t.Fatalf("final set out of order at %d: %s before %s",
				i, d.final[i].Scheduled, d.final[i-1].Scheduled)
		}
	}
}

func TestReconcile_ExactlyOneSaving(t *testing.T) {
	def := testDef(t, "2025-01-15", 1)
	now := mustDate(t, "2025-03-10")

	d := reconcile(def, now, 4, calendar.NewCalculator(), now)

	saving := 0
	var elected model.Occurrence
	for _, occ := range d.final {
		if occ.Status == model.StatusSaving {
			saving++
			elected = occ
		}
	}
	if saving != 1 {
		t.Fatalf("got %d saving occurrences, want exactly 1", saving)
	}
	// The earliest upcoming occurrence relative to the reference wins.
	if elected.Scheduled.Before(now) {
		t.Errorf("elected saving occurrence %s is in the past", elected.Scheduled.Format("2006-01-02"))
	}
	for _, occ := range d.final {
		if occ.ID != elected.ID && !occ.Scheduled.Before(now) && occ.Scheduled.Before(elected.Scheduled) {
			t.Errorf("occurrence %s is upcoming and earlier than the elected one", occ.Scheduled.Format("2006-01-02"))
		}
	}
}

func TestSeedDate_AnchorsPastLatestCompleted(t *testing.T) {
	def := testDef(t, "2024-01-31", 1)
	def.Occurrences = []model.Occurrence{
		{ID: "a", Scheduled: mustDate(t, "2024-01-31"), Status: model.StatusCompleted},
		{ID: "b", Scheduled: mustDate(t, "2024-03-31"), Status: model.StatusPlanned},
	}

	seed := seedDate(def)
	// One interval past Jan 31 with day clamping lands on Feb 29 (2024 is
	// a leap year).
	if got := seed.Format("2006-01-02"); got != "2024-02-29" {
		t.Fatalf("seed = %s, want 2024-02-29", got)
	}
}

func TestSeedDate_NoCompletedUsesFirstDue(t *testing.T) {
	def := testDef(t, "2025-04-15", 1)
	if got := seedDate(def); !calendar.SameDay(got, def.FirstDue) {
		t.Fatalf("seed = %s, want first due date", got.Format("2006-01-02"))
	}
}

func TestReconcile_BackfillAfterRetroactiveFirstDueEdit(t *testing.T) {
	// A yearly obligation with one completed occurrence in 2025; the first
	// due date is then moved back to 2023. Reconciling must backfill the
	// missing yearly occurrences without duplicating the settled day.
	def := testDef(t, "2023-01-15", 12)
	actualDate := mustDate(t, "2025-01-15")
	actualAmount := decimal.NewFromInt(600)
	def.Occurrences = []model.Occurrence{{
		ID:             "occ-2025",
		DefinitionID:   def.ID,
		Scheduled:      mustDate(t, "2025-01-15"),
		ExpectedAmount: decimal.NewFromInt(600),
		Status:         model.StatusCompleted,
		ActualDate:     &actualDate,
		ActualAmount:   &actualAmount,
	}}

	now := mustDate(t, "2025-02-01")
	d := reconcile(def, now, 12, calendar.NewCalculator(), now)

	var days []string
	for _, occ := range d.final {
		days = append(days, occ.Scheduled.Format("2006-01-02"))
	}
	want := []string{"2023-01-15", "2024-01-15", "2025-01-15", "2026-01-15"}
	if len(days) != len(want) {
		t.Fatalf("final days = %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("final[%d] = %s, want %s", i, days[i], want[i])
		}
	}

	// The settled 2025 occurrence survives as-is; the backfilled days are
	// fresh creations.
	for _, occ := range d.created {
		if occ.Scheduled.Format("2006-01-02") == "2025-01-15" {
			t.Error("settled day was re-created instead of being skipped")
		}
	}
}
