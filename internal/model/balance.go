package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance tracks the running saved and paid totals for one definition.
// It is created lazily by the first accrual and updated only by the
// balance package, never directly by callers.
//
// LastRecordedYear/Month is the idempotence marker: recording savings for
// a period already marked is a no-op.
type Balance struct {
	ID           string
	DefinitionID string
	TotalSaved   decimal.Decimal
	TotalPaid    decimal.Decimal

	LastRecordedYear  int
	LastRecordedMonth int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available returns what remains set aside after payments.
func (b *Balance) Available() decimal.Decimal {
	return b.TotalSaved.Sub(b.TotalPaid)
}
