package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // register sqlite driver

	"duetrack/internal/model"
)

const (
	dayLayout = "2006-01-02"
)

// SQLite is the default Store backed by a local database file. A single
// mutex serializes mutations: one logical writer at a time, reads free to
// proceed concurrently through the connection pool.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the database at the given path and applies the
// schema.
func Open(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// InsertDefinition persists a new definition and any occurrences it
// already carries.
func (s *SQLite) InsertDefinition(def *model.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertDefinitionRow(tx, def); err != nil {
		return err
	}
	for i := range def.Occurrences {
		if err := upsertOccurrence(tx, &def.Occurrences[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveDefinition upserts the definition row and reconciles its occurrence
// rows as one transaction: the batch computed by the engine lands whole or
// not at all.
func (s *SQLite) SaveDefinition(def *model.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`UPDATE definitions SET
		name = ?, amount = ?, recurrence_months = ?, first_due = ?, end_date = ?,
		lead_months = ?, saving = ?, custom_monthly = ?, adjustment = ?, day_pattern = ?,
		category_id = ?, updated_at = ?
		WHERE id = ?`,
		def.Name, def.Amount.String(), def.RecurrenceMonths, def.FirstDue.Format(dayLayout),
		nullDay(def.EndDate), def.LeadMonths, string(def.Saving), nullDecimal(def.CustomMonthly),
		string(def.Adjustment), nullPattern(def.DayPattern), def.CategoryID,
		def.UpdatedAt.UTC().Format(time.RFC3339), def.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	// Reconcile occurrence rows against the aggregate.
	existing := make(map[string]struct{})
	rows, err := tx.Query("SELECT id FROM occurrences WHERE definition_id = ?", def.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return err
		}
		existing[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for i := range def.Occurrences {
		occ := &def.Occurrences[i]
		if err := upsertOccurrence(tx, occ); err != nil {
			return err
		}
		delete(existing, occ.ID)
	}
	for id := range existing {
		if _, err := tx.Exec("DELETE FROM occurrences WHERE id = ?", id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Definition loads a definition with its occurrences sorted by scheduled
// date.
func (s *SQLite) Definition(id string) (*model.Definition, error) {
	row := s.db.QueryRow(`SELECT id, name, amount, recurrence_months, first_due, end_date,
		lead_months, saving, custom_monthly, adjustment, day_pattern, category_id,
		created_at, updated_at
		FROM definitions WHERE id = ?`, id)

	def, err := scanDefinition(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadOccurrences(def); err != nil {
		return nil, err
	}
	return def, nil
}

// Definitions loads every definition with occurrences.
func (s *SQLite) Definitions() ([]*model.Definition, error) {
	rows, err := s.db.Query(`SELECT id, name, amount, recurrence_months, first_due, end_date,
		lead_months, saving, custom_monthly, adjustment, day_pattern, category_id,
		created_at, updated_at
		FROM definitions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var defs []*model.Definition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, def := range defs {
		if err := s.loadOccurrences(def); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// DeleteDefinition removes the definition; occurrences and its balance
// cascade.
func (s *SQLite) DeleteDefinition(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM definitions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DefinitionIDForOccurrence resolves which definition owns an occurrence.
func (s *SQLite) DefinitionIDForOccurrence(occurrenceID string) (string, error) {
	var defID string
	err := s.db.QueryRow("SELECT definition_id FROM occurrences WHERE id = ?", occurrenceID).Scan(&defID)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return defID, nil
}

// BalanceFor loads the balance owned by a definition.
func (s *SQLite) BalanceFor(definitionID string) (*model.Balance, error) {
	row := s.db.QueryRow(`SELECT id, definition_id, total_saved, total_paid, last_year, last_month,
		created_at, updated_at
		FROM balances WHERE definition_id = ?`, definitionID)

	var bal model.Balance
	var saved, paid, createdAt, updatedAt string
	err := row.Scan(&bal.ID, &bal.DefinitionID, &saved, &paid,
		&bal.LastRecordedYear, &bal.LastRecordedMonth, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if bal.TotalSaved, err = decimal.NewFromString(saved); err != nil {
		return nil, fmt.Errorf("parsing total_saved: %w", err)
	}
	if bal.TotalPaid, err = decimal.NewFromString(paid); err != nil {
		return nil, fmt.Errorf("parsing total_paid: %w", err)
	}
	bal.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	bal.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &bal, nil
}

// SaveBalance upserts a balance.
func (s *SQLite) SaveBalance(bal *model.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO balances
		(id, definition_id, total_saved, total_paid, last_year, last_month, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		total_saved = excluded.total_saved, total_paid = excluded.total_paid,
		last_year = excluded.last_year, last_month = excluded.last_month,
		updated_at = excluded.updated_at`,
		bal.ID, bal.DefinitionID, bal.TotalSaved.String(), bal.TotalPaid.String(),
		bal.LastRecordedYear, bal.LastRecordedMonth,
		bal.CreatedAt.UTC().Format(time.RFC3339), bal.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// InsertTransaction persists a history record.
func (s *SQLite) InsertTransaction(t *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO transactions (id, title, amount, date, category_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Amount.String(), t.Date.Format(dayLayout), t.CategoryID,
		t.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// Transactions loads history ordered by date.
func (s *SQLite) Transactions() ([]model.Transaction, error) {
	rows, err := s.db.Query(`SELECT id, title, amount, date, category_id, created_at
		FROM transactions ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txs []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var amount, date, createdAt string
		if err := rows.Scan(&t.ID, &t.Title, &amount, &date, &t.CategoryID, &createdAt); err != nil {
			return nil, err
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parsing transaction amount: %w", err)
		}
		if t.Date, err = time.Parse(dayLayout, date); err != nil {
			return nil, fmt.Errorf("parsing transaction date: %w", err)
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// DeleteTransaction removes a history record. Occurrence links to it are
// nulled by the schema, never cascaded.
func (s *SQLite) DeleteTransaction(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertCategory persists a category.
func (s *SQLite) InsertCategory(cat *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("INSERT INTO categories (id, name) VALUES (?, ?)", cat.ID, cat.Name)
	return err
}

// Category loads one category.
func (s *SQLite) Category(id string) (*model.Category, error) {
	var cat model.Category
	err := s.db.QueryRow("SELECT id, name FROM categories WHERE id = ?", id).Scan(&cat.ID, &cat.Name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// Categories lists all categories.
func (s *SQLite) Categories() ([]model.Category, error) {
	rows, err := s.db.Query("SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cats []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			return nil, err
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

func (s *SQLite) loadOccurrences(def *model.Definition) error {
	rows, err := s.db.Query(`SELECT id, definition_id, scheduled, expected_amount, status,
		actual_date, actual_amount, transaction_id, created_at, updated_at
		FROM occurrences WHERE definition_id = ? ORDER BY scheduled`, def.ID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	def.Occurrences = nil
	for rows.Next() {
		var occ model.Occurrence
		var scheduled, amount, createdAt, updatedAt string
		var actualDate, actualAmount sql.NullString
		if err := rows.Scan(&occ.ID, &occ.DefinitionID, &scheduled, &amount, &occ.Status,
			&actualDate, &actualAmount, &occ.TransactionID, &createdAt, &updatedAt); err != nil {
			return err
		}
		if occ.Scheduled, err = time.Parse(dayLayout, scheduled); err != nil {
			return fmt.Errorf("parsing scheduled date: %w", err)
		}
		if occ.ExpectedAmount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("parsing expected amount: %w", err)
		}
		if actualDate.Valid {
			d, err := time.Parse(dayLayout, actualDate.String)
			if err != nil {
				return fmt.Errorf("parsing actual date: %w", err)
			}
			occ.ActualDate = &d
		}
		if actualAmount.Valid {
			a, err := decimal.NewFromString(actualAmount.String)
			if err != nil {
				return fmt.Errorf("parsing actual amount: %w", err)
			}
			occ.ActualAmount = &a
		}
		occ.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		occ.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		def.Occurrences = append(def.Occurrences, occ)
	}
	return rows.Err()
}

func insertDefinitionRow(tx *sql.Tx, def *model.Definition) error {
	_, err := tx.Exec(`INSERT INTO definitions
		(id, name, amount, recurrence_months, first_due, end_date, lead_months,
		 saving, custom_monthly, adjustment, day_pattern, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		def.ID, def.Name, def.Amount.String(), def.RecurrenceMonths,
		def.FirstDue.Format(dayLayout), nullDay(def.EndDate), def.LeadMonths,
		string(def.Saving), nullDecimal(def.CustomMonthly), string(def.Adjustment),
		nullPattern(def.DayPattern), def.CategoryID,
		def.CreatedAt.UTC().Format(time.RFC3339), def.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func upsertOccurrence(tx *sql.Tx, occ *model.Occurrence) error {
	_, err := tx.Exec(`INSERT INTO occurrences
		(id, definition_id, scheduled, expected_amount, status, actual_date, actual_amount,
		 transaction_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		scheduled = excluded.scheduled, expected_amount = excluded.expected_amount,
		status = excluded.status, actual_date = excluded.actual_date,
		actual_amount = excluded.actual_amount, transaction_id = excluded.transaction_id,
		updated_at = excluded.updated_at`,
		occ.ID, occ.DefinitionID, occ.Scheduled.Format(dayLayout), occ.ExpectedAmount.String(),
		string(occ.Status), nullDay(occ.ActualDate), nullDecimal(occ.ActualAmount),
		occ.TransactionID,
		occ.CreatedAt.UTC().Format(time.RFC3339), occ.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefinition(row rowScanner) (*model.Definition, error) {
	var def model.Definition
	var amount, firstDue, saving, adjustment, createdAt, updatedAt string
	var endDate, customMonthly, dayPattern sql.NullString

	err := row.Scan(&def.ID, &def.Name, &amount, &def.RecurrenceMonths, &firstDue, &endDate,
		&def.LeadMonths, &saving, &customMonthly, &adjustment, &dayPattern, &def.CategoryID,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if def.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parsing amount: %w", err)
	}
	if def.FirstDue, err = time.Parse(dayLayout, firstDue); err != nil {
		return nil, fmt.Errorf("parsing first_due: %w", err)
	}
	if endDate.Valid {
		d, err := time.Parse(dayLayout, endDate.String)
		if err != nil {
			return nil, fmt.Errorf("parsing end_date: %w", err)
		}
		def.EndDate = &d
	}
	if customMonthly.Valid {
		a, err := decimal.NewFromString(customMonthly.String)
		if err != nil {
			return nil, fmt.Errorf("parsing custom_monthly: %w", err)
		}
		def.CustomMonthly = &a
	}
	if dayPattern.Valid {
		p, err := model.ParseDayPattern(dayPattern.String)
		if err != nil {
			return nil, err
		}
		def.DayPattern = &p
	}
	def.Saving = model.SavingStrategy(saving)
	def.Adjustment = model.Adjustment(adjustment)
	def.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	def.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &def, nil
}

func nullDay(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dayLayout)
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullPattern(p *model.DayPattern) any {
	if p == nil {
		return nil
	}
	return p.String()
}
