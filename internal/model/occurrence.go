package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OccurrenceStatus is the lifecycle state of a scheduled occurrence.
type OccurrenceStatus string

const (
	// StatusPlanned is the default state for a generated occurrence.
	StatusPlanned OccurrenceStatus = "planned"
	// StatusSaving marks the single next occurrence money is being set
	// aside for.
	StatusSaving OccurrenceStatus = "saving"
	// StatusCompleted records a settled occurrence. Completed occurrences
	// are locked.
	StatusCompleted OccurrenceStatus = "completed"
	// StatusCancelled records an occurrence the user dismissed. Cancelled
	// occurrences are locked.
	StatusCancelled OccurrenceStatus = "cancelled"
)

// Occurrence is one concrete scheduled instance of an obligation. It refers
// to its owning definition by ID only; the definition owns the collection.
//
// TransactionID is a weak reference to the settling transaction: deleting
// the transaction nulls the reference and never cascades to the occurrence.
type Occurrence struct {
	ID             string
	DefinitionID   string
	Scheduled      time.Time
	ExpectedAmount decimal.Decimal
	Status         OccurrenceStatus

	// Set together when the occurrence is completed.
	ActualDate   *time.Time
	ActualAmount *decimal.Decimal

	TransactionID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Locked reports whether the occurrence is immutable historical fact. The
// reconciliation engine never mutates or removes a locked occurrence.
func (o Occurrence) Locked() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}
