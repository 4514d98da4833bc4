// Package engine exposes the obligation service: definition CRUD, schedule
// synchronization, completion transitions, and detection, all on top of the
// abstract store.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"duetrack/internal/balance"
	"duetrack/internal/calendar"
	"duetrack/internal/detect"
	"duetrack/internal/model"
	"duetrack/internal/store"
)

// Clock supplies the current time so tests can pin it.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock struct{ At time.Time }

func (c FixedClock) Now() time.Time { return c.At }

// SyncSummary reports what one synchronization changed.
type SyncSummary struct {
	Created  int
	Updated  int
	Removed  int
	SyncedAt time.Time
}

// Service wires the reconciliation engine, balance accrual, and detection
// together over one store. Writes are serialized by the store; the service
// itself holds no mutable state besides the balance cache.
type Service struct {
	store store.Store
	calc  *calendar.Calculator
	cache *balance.Cache
	clock Clock

	horizonMonths     int // default horizon when the caller passes none
	actualDateDays    int // completion date tolerance around the scheduled date
	detectionCriteria detect.Criteria
}

// Option configures a Service.
type Option func(*Service)

func WithClock(c Clock) Option               { return func(s *Service) { s.clock = c } }
func WithDefaultHorizon(months int) Option   { return func(s *Service) { s.horizonMonths = months } }
func WithActualDateTolerance(days int) Option {
	return func(s *Service) { s.actualDateDays = days }
}
func WithDetectionCriteria(c detect.Criteria) Option {
	return func(s *Service) { s.detectionCriteria = c }
}

// NewService builds a service over the given store and business-day
// calculator.
func NewService(st store.Store, calc *calendar.Calculator, opts ...Option) *Service {
	s := &Service{
		store:             st,
		calc:              calc,
		cache:             balance.NewCache(),
		clock:             SystemClock{},
		horizonMonths:     12,
		actualDateDays:    90,
		detectionCriteria: detect.DefaultCriteria(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache exposes the balance cache for observability.
func (s *Service) Cache() *balance.Cache { return s.cache }

// DefinitionInput is the mutable state for creating or updating a
// definition.
type DefinitionInput struct {
	Name             string
	Amount           decimal.Decimal
	RecurrenceMonths int
	FirstDue         time.Time
	EndDate          *time.Time
	LeadMonths       int
	Saving           model.SavingStrategy
	CustomMonthly    *decimal.Decimal
	Adjustment       model.Adjustment
	DayPattern       *model.DayPattern
	CategoryID       *string
}

// CreateDefinition validates, persists, and immediately synchronizes a new
// definition so it is never left with zero occurrences.
func (s *Service) CreateDefinition(input DefinitionInput) (*model.Definition, error) {
	now := s.clock.Now()
	def := &model.Definition{
		ID:               uuid.NewString(),
		Name:             input.Name,
		Amount:           input.Amount,
		RecurrenceMonths: input.RecurrenceMonths,
		FirstDue:         calendar.DateOnly(input.FirstDue),
		EndDate:          normalizeDate(input.EndDate),
		LeadMonths:       input.LeadMonths,
		Saving:           input.Saving,
		CustomMonthly:    input.CustomMonthly,
		Adjustment:       input.Adjustment,
		DayPattern:       input.DayPattern,
		CategoryID:       input.CategoryID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if def.Saving == "" {
		def.Saving = model.SavingNone
	}
	if def.Adjustment == "" {
		def.Adjustment = model.AdjustNone
	}

	if verr := validateDefinition(def); verr != nil {
		return nil, verr
	}
	if err := s.checkCategory(def.CategoryID); err != nil {
		return nil, err
	}

	if err := s.store.InsertDefinition(def); err != nil {
		return nil, fmt.Errorf("inserting definition: %w", err)
	}
	if _, err := s.Synchronize(def.ID, s.horizonMonths, nil); err != nil {
		return nil, err
	}
	return s.Definition(def.ID)
}

// UpdateDefinition applies input to an existing definition. The schedule is
// not re-synchronized here; callers follow up with Synchronize once the
// edit is settled.
func (s *Service) UpdateDefinition(id string, input DefinitionInput) error {
	def, err := s.Definition(id)
	if err != nil {
		return err
	}

	def.Name = input.Name
	def.Amount = input.Amount
	def.RecurrenceMonths = input.RecurrenceMonths
	def.FirstDue = calendar.DateOnly(input.FirstDue)
	def.EndDate = normalizeDate(input.EndDate)
	def.LeadMonths = input.LeadMonths
	def.Saving = input.Saving
	def.CustomMonthly = input.CustomMonthly
	def.Adjustment = input.Adjustment
	def.DayPattern = input.DayPattern
	def.CategoryID = input.CategoryID

	if verr := validateDefinition(def); verr != nil {
		return verr
	}
	if err := s.checkCategory(def.CategoryID); err != nil {
		return err
	}

	def.UpdatedAt = s.clock.Now()
	if err := s.store.SaveDefinition(def); err != nil {
		return fmt.Errorf("saving definition: %w", err)
	}
	s.cache.InvalidateDefinition(id)
	return nil
}

// DeleteDefinition removes a definition and its owned occurrences.
func (s *Service) DeleteDefinition(id string) error {
	if _, err := s.Definition(id); err != nil {
		return err
	}
	if err := s.store.DeleteDefinition(id); err != nil {
		return fmt.Errorf("deleting definition: %w", err)
	}
	s.cache.InvalidateDefinition(id)
	return nil
}

// Definition fetches one definition with its occurrences.
func (s *Service) Definition(id string) (*model.Definition, error) {
	def, err := s.store.Definition(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrDefinitionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching definition: %w", err)
	}
	return def, nil
}

// Definitions lists every definition.
func (s *Service) Definitions() ([]*model.Definition, error) {
	return s.store.Definitions()
}

// Occurrence finds an occurrence and its owning definition.
func (s *Service) Occurrence(occurrenceID string) (*model.Definition, *model.Occurrence, error) {
	defID, err := s.store.DefinitionIDForOccurrence(occurrenceID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrOccurrenceNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("resolving occurrence: %w", err)
	}
	def, err := s.Definition(defID)
	if err != nil {
		return nil, nil, err
	}
	occ := def.Occurrence(occurrenceID)
	if occ == nil {
		return nil, nil, ErrOccurrenceNotFound
	}
	return def, occ, nil
}

// Synchronize reconciles a definition's occurrences against its current
// schedule. The diff is computed fully, applied as one batch, and persisted
// as one unit. reference defaults to the clock's now.
func (s *Service) Synchronize(definitionID string, horizonMonths int, reference *time.Time) (SyncSummary, error) {
	if horizonMonths < 0 {
		return SyncSummary{}, ErrInvalidHorizon
	}

	def, err := s.Definition(definitionID)
	if err != nil {
		return SyncSummary{}, err
	}
	if def.RecurrenceMonths <= 0 {
		return SyncSummary{}, ErrInvalidRecurrence
	}

	now := s.clock.Now()
	ref := now
	if reference != nil {
		ref = *reference
	}

	d := reconcile(def, ref, horizonMonths, s.calc, now)

	changed := len(d.created)+len(d.updated)+len(d.removed) > 0
	def.Occurrences = d.final
	if changed {
		def.UpdatedAt = now
	}
	if err := s.store.SaveDefinition(def); err != nil {
		return SyncSummary{}, fmt.Errorf("saving synchronized definition: %w", err)
	}
	if changed {
		s.cache.InvalidateDefinition(def.ID)
	}

	return SyncSummary{
		Created:  len(d.created),
		Updated:  len(d.updated),
		Removed:  len(d.removed),
		SyncedAt: now,
	}, nil
}

// MarkCompleted settles an occurrence with its actual date and amount,
// optionally linking the settling transaction, then re-synchronizes so
// future occurrences re-anchor off the new completed date.
func (s *Service) MarkCompleted(occurrenceID string, actualDate time.Time, actualAmount decimal.Decimal, transactionID *string, horizonMonths int) (SyncSummary, error) {
	if horizonMonths < 0 {
		return SyncSummary{}, ErrInvalidHorizon
	}

	defID, err := s.store.DefinitionIDForOccurrence(occurrenceID)
	if errors.Is(err, store.ErrNotFound) {
		return SyncSummary{}, ErrOccurrenceNotFound
	}
	if err != nil {
		return SyncSummary{}, fmt.Errorf("locating occurrence: %w", err)
	}

	def, err := s.Definition(defID)
	if err != nil {
		return SyncSummary{}, err
	}
	occ := def.Occurrence(occurrenceID)
	if occ == nil {
		return SyncSummary{}, ErrOccurrenceNotFound
	}

	actualDate = calendar.DateOnly(actualDate)
	if verr := validateCompletion(occ, actualDate, actualAmount, s.actualDateDays); verr != nil {
		return SyncSummary{}, verr
	}

	now := s.clock.Now()
	occ.Status = model.StatusCompleted
	occ.ActualDate = &actualDate
	amt := actualAmount
	occ.ActualAmount = &amt
	occ.TransactionID = transactionID
	occ.UpdatedAt = now
	def.UpdatedAt = now

	if err := s.store.SaveDefinition(def); err != nil {
		return SyncSummary{}, fmt.Errorf("saving completed occurrence: %w", err)
	}
	s.cache.InvalidateDefinition(def.ID)

	// Feed the settlement into the running balance.
	bal, err := s.ensureBalance(def.ID)
	if err != nil {
		return SyncSummary{}, err
	}
	balance.ProcessPayment(bal, occ.ExpectedAmount, actualAmount, now)
	if err := s.store.SaveBalance(bal); err != nil {
		return SyncSummary{}, fmt.Errorf("saving balance: %w", err)
	}
	s.cache.InvalidateBalance(bal.ID)

	return s.Synchronize(def.ID, horizonMonths, nil)
}

// RecordMonthlySavings accrues one period's saving amount for a
// definition. Recording the same (year, month) twice is a no-op.
func (s *Service) RecordMonthlySavings(definitionID string, year int, month time.Month) (*model.Balance, error) {
	def, err := s.Definition(definitionID)
	if err != nil {
		return nil, err
	}
	bal, err := s.ensureBalance(def.ID)
	if err != nil {
		return nil, err
	}
	if balance.RecordMonthlySavings(def, bal, year, month, s.clock.Now()) {
		if err := s.store.SaveBalance(bal); err != nil {
			return nil, fmt.Errorf("saving balance: %w", err)
		}
		s.cache.InvalidateBalance(bal.ID)
	}
	return bal, nil
}

// RecalculateBalance recomputes a definition's balance from scratch for
// the target period, memoized in the balance cache.
func (s *Service) RecalculateBalance(definitionID string, year int, month time.Month, startOverride *time.Time) (balance.Recalculation, error) {
	def, err := s.Definition(definitionID)
	if err != nil {
		return balance.Recalculation{}, err
	}
	bal, err := s.ensureBalance(def.ID)
	if err != nil {
		return balance.Recalculation{}, err
	}
	return s.cache.Recalculate(def, bal, year, month, startOverride), nil
}

// Balance returns the savings balance for a definition, or nil when no
// accrual has happened yet.
func (s *Service) Balance(definitionID string) (*model.Balance, error) {
	bal, err := s.store.BalanceFor(definitionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching balance: %w", err)
	}
	return bal, nil
}

// DetectSuggestions mines the stored transaction history for repeating
// obligations not yet defined. Read-only; nothing is persisted.
func (s *Service) DetectSuggestions(criteria *detect.Criteria) ([]model.Suggestion, error) {
	txs, err := s.store.Transactions()
	if err != nil {
		return nil, fmt.Errorf("fetching transactions: %w", err)
	}
	defs, err := s.store.Definitions()
	if err != nil {
		return nil, fmt.Errorf("fetching definitions: %w", err)
	}

	c := s.detectionCriteria
	if criteria != nil {
		c = *criteria
	}
	return detect.Suggestions(txs, defs, c), nil
}

func (s *Service) ensureBalance(definitionID string) (*model.Balance, error) {
	bal, err := s.store.BalanceFor(definitionID)
	if errors.Is(err, store.ErrNotFound) {
		now := s.clock.Now()
		bal = &model.Balance{
			ID:           uuid.NewString(),
			DefinitionID: definitionID,
			TotalSaved:   decimal.Zero,
			TotalPaid:    decimal.Zero,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.store.SaveBalance(bal); err != nil {
			return nil, fmt.Errorf("creating balance: %w", err)
		}
		return bal, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching balance: %w", err)
	}
	return bal, nil
}

func (s *Service) checkCategory(id *string) error {
	if id == nil {
		return nil
	}
	_, err := s.store.Category(*id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("fetching category: %w", err)
	}
	return nil
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := calendar.DateOnly(*t)
	return &d
}
