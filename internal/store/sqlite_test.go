package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"duetrack/internal/model"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "duetrack.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func sampleDefinition(t *testing.T) *model.Definition {
	t.Helper()
	now := mustDate(t, "2025-01-01")
	end := mustDate(t, "2026-12-31")
	custom := decimal.RequireFromString("33.50")
	pattern := model.NthWeekday(2, time.Friday)
	return &model.Definition{
		ID:               "def-1",
		Name:             "Car insurance",
		Amount:           decimal.RequireFromString("402.11"),
		RecurrenceMonths: 6,
		FirstDue:         mustDate(t, "2025-02-14"),
		EndDate:          &end,
		LeadMonths:       1,
		Saving:           model.SavingCustom,
		CustomMonthly:    &custom,
		Adjustment:       model.AdjustPrevious,
		DayPattern:       &pattern,
		CreatedAt:        now,
		UpdatedAt:        now,
		Occurrences: []model.Occurrence{{
			ID:             "occ-1",
			DefinitionID:   "def-1",
			Scheduled:      mustDate(t, "2025-02-14"),
			ExpectedAmount: decimal.RequireFromString("402.11"),
			Status:         model.StatusSaving,
			CreatedAt:      now,
			UpdatedAt:      now,
		}},
	}
}

func TestSQLite_DefinitionRoundTrip(t *testing.T) {
	s := openTestDB(t)
	want := sampleDefinition(t)

	if err := s.InsertDefinition(want); err != nil {
		t.Fatalf("InsertDefinition: %v", err)
	}

	got, err := s.Definition(want.ID)
	if err != nil {
		t.Fatalf("Definition: %v", err)
	}

	if got.Name != want.Name || got.RecurrenceMonths != want.RecurrenceMonths {
		t.Errorf("basic fields differ: %+v", got)
	}
	if !got.Amount.Equal(want.Amount) {
		t.Errorf("amount = %s, want %s", got.Amount, want.Amount)
	}
	if !got.FirstDue.Equal(want.FirstDue) {
		t.Errorf("first due = %s, want %s", got.FirstDue, want.FirstDue)
	}
	if got.EndDate == nil || !got.EndDate.Equal(*want.EndDate) {
		t.Error("end date not round-tripped")
	}
	if got.Saving != model.SavingCustom || got.CustomMonthly == nil || !got.CustomMonthly.Equal(*want.CustomMonthly) {
		t.Error("saving strategy not round-tripped")
	}
	if got.Adjustment != model.AdjustPrevious {
		t.Errorf("adjustment = %s, want previous", got.Adjustment)
	}
	if got.DayPattern == nil || *got.DayPattern != *want.DayPattern {
		t.Errorf("day pattern = %v, want %v", got.DayPattern, want.DayPattern)
	}
	if len(got.Occurrences) != 1 {
		t.Fatalf("got %d occurrences, want 1", len(got.Occurrences))
	}
	if got.Occurrences[0].Status != model.StatusSaving {
		t.Errorf("occurrence status = %s, want saving", got.Occurrences[0].Status)
	}
}

func TestSQLite_DefinitionNotFound(t *testing.T) {
	s := openTestDB(t)
	if _, err := s.Definition("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := s.SaveDefinition(sampleDefinition(t)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("save of unknown definition: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteDefinition("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete of unknown definition: got %v, want ErrNotFound", err)
	}
}

func TestSQLite_SaveDefinitionReconcilesOccurrences(t *testing.T) {
	s := openTestDB(t)
	def := sampleDefinition(t)
	if err := s.InsertDefinition(def); err != nil {
		t.Fatalf("InsertDefinition: %v", err)
	}

	// Replace the occurrence set: one kept with changes, one new, the
	// insert-time row gone.
	now := mustDate(t, "2025-03-01")
	def.Occurrences = []model.Occurrence{
		{
			ID:             "occ-1",
			DefinitionID:   def.ID,
			Scheduled:      mustDate(t, "2025-02-14"),
			ExpectedAmount: decimal.RequireFromString("410.00"),
			Status:         model.StatusPlanned,
			CreatedAt:      def.CreatedAt,
			UpdatedAt:      now,
		},
		{
			ID:             "occ-2",
			DefinitionID:   def.ID,
			Scheduled:      mustDate(t, "2025-08-14"),
			ExpectedAmount: decimal.RequireFromString("410.00"),
			Status:         model.StatusSaving,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
	if err := s.SaveDefinition(def); err != nil {
		t.Fatalf("SaveDefinition: %v", err)
	}

	got, err := s.Definition(def.ID)
	if err != nil {
		t.Fatalf("Definition: %v", err)
	}
	if len(got.Occurrences) != 2 {
		t.Fatalf("got %d occurrences, want 2", len(got.Occurrences))
	}
	if !got.Occurrences[0].ExpectedAmount.Equal(decimal.RequireFromString("410.00")) {
		t.Errorf("kept occurrence amount = %s, want 410.00", got.Occurrences[0].ExpectedAmount)
	}

	// Dropping a row from the aggregate deletes it.
	def.Occurrences = def.Occurrences[1:]
	if err := s.SaveDefinition(def); err != nil {
		t.Fatalf("second SaveDefinition: %v", err)
	}
	got, err = s.Definition(def.ID)
	if err != nil {
		t.Fatalf("Definition: %v", err)
	}
	if len(got.Occurrences) != 1 || got.Occurrences[0].ID != "occ-2" {
		t.Fatalf("occurrences after trim = %+v, want only occ-2", got.Occurrences)
	}
}

func TestSQLite_DeleteDefinitionCascades(t *testing.T) {
	s := openTestDB(t)
	def := sampleDefinition(t)
	if err := s.InsertDefinition(def); err != nil {
		t.Fatalf("InsertDefinition: %v", err)
	}
	bal := &model.Balance{
		ID:           "bal-1",
		DefinitionID: def.ID,
		TotalSaved:   decimal.NewFromInt(50),
		TotalPaid:    decimal.Zero,
		CreatedAt:    mustDate(t, "2025-01-01"),
		UpdatedAt:    mustDate(t, "2025-01-01"),
	}
	if err := s.SaveBalance(bal); err != nil {
		t.Fatalf("SaveBalance: %v", err)
	}

	if err := s.DeleteDefinition(def.ID); err != nil {
		t.Fatalf("DeleteDefinition: %v", err)
	}
	if _, err := s.DefinitionIDForOccurrence("occ-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("occurrence survived the cascade: %v", err)
	}
	if _, err := s.BalanceFor(def.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("balance survived the cascade: %v", err)
	}
}

func TestSQLite_BalanceUpsert(t *testing.T) {
	s := openTestDB(t)
	def := sampleDefinition(t)
	if err := s.InsertDefinition(def); err != nil {
		t.Fatalf("InsertDefinition: %v", err)
	}

	bal := &model.Balance{
		ID:                "bal-1",
		DefinitionID:      def.ID,
		TotalSaved:        decimal.NewFromInt(100),
		TotalPaid:         decimal.Zero,
		LastRecordedYear:  2025,
		LastRecordedMonth: 6,
		CreatedAt:         mustDate(t, "2025-01-01"),
		UpdatedAt:         mustDate(t, "2025-06-30"),
	}
	if err := s.SaveBalance(bal); err != nil {
		t.Fatalf("SaveBalance insert: %v", err)
	}

	bal.TotalSaved = decimal.NewFromInt(200)
	bal.LastRecordedMonth = 7
	if err := s.SaveBalance(bal); err != nil {
		t.Fatalf("SaveBalance update: %v", err)
	}

	got, err := s.BalanceFor(def.ID)
	if err != nil {
		t.Fatalf("BalanceFor: %v", err)
	}
	if !got.TotalSaved.Equal(decimal.NewFromInt(200)) {
		t.Errorf("total saved = %s, want 200", got.TotalSaved)
	}
	if got.LastRecordedYear != 2025 || got.LastRecordedMonth != 7 {
		t.Errorf("last recorded = %d-%d, want 2025-7", got.LastRecordedYear, got.LastRecordedMonth)
	}
}

func TestSQLite_DeleteTransactionNullsOccurrenceLink(t *testing.T) {
	s := openTestDB(t)
	def := sampleDefinition(t)

	txID := "tx-1"
	if err := s.InsertTransaction(&model.Transaction{
		ID:        txID,
		Title:     "Insurance payment",
		Amount:    decimal.RequireFromString("402.11"),
		Date:      mustDate(t, "2025-02-14"),
		CreatedAt: mustDate(t, "2025-02-14"),
	}); err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}

	def.Occurrences[0].TransactionID = &txID
	if err := s.InsertDefinition(def); err != nil {
		t.Fatalf("InsertDefinition: %v", err)
	}

	if err := s.DeleteTransaction(txID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}

	got, err := s.Definition(def.ID)
	if err != nil {
		t.Fatalf("Definition: %v", err)
	}
	if got.Occurrences[0].TransactionID != nil {
		t.Fatal("occurrence still references the deleted transaction")
	}
	// The occurrence itself must survive.
	if got.Occurrences[0].ID != "occ-1" {
		t.Fatal("occurrence was deleted along with the transaction")
	}
}

func TestSQLite_TransactionsAndCategories(t *testing.T) {
	s := openTestDB(t)

	if err := s.InsertCategory(&model.Category{ID: "cat-1", Name: "Housing"}); err != nil {
		t.Fatalf("InsertCategory: %v", err)
	}
	catID := "cat-1"
	if err := s.InsertTransaction(&model.Transaction{
		ID:         "tx-b",
		Title:      "Rent",
		Amount:     decimal.NewFromInt(950),
		Date:       mustDate(t, "2025-02-01"),
		CategoryID: &catID,
		CreatedAt:  mustDate(t, "2025-02-01"),
	}); err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}
	if err := s.InsertTransaction(&model.Transaction{
		ID:        "tx-a",
		Title:     "Rent",
		Amount:    decimal.NewFromInt(950),
		Date:      mustDate(t, "2025-01-01"),
		CreatedAt: mustDate(t, "2025-01-01"),
	}); err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}

	txs, err := s.Transactions()
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	if txs[0].ID != "tx-a" {
		t.Errorf("transactions not ordered by date: first is %s", txs[0].ID)
	}
	if txs[1].CategoryID == nil || *txs[1].CategoryID != "cat-1" {
		t.Error("category link not round-tripped")
	}

	cat, err := s.Category("cat-1")
	if err != nil {
		t.Fatalf("Category: %v", err)
	}
	if cat.Name != "Housing" {
		t.Errorf("category name = %q, want Housing", cat.Name)
	}
	if _, err := s.Category("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing category: got %v, want ErrNotFound", err)
	}
}
