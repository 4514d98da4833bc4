package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"duetrack/internal/model"
)

// validateDefinition collects every field-level rule violation. Rules are
// checked here, at the boundary, so an in-memory definition can be edited
// through invalid intermediate states.
func validateDefinition(def *model.Definition) *ValidationError {
	var msgs []string

	if def.Name == "" {
		msgs = append(msgs, "name must not be empty")
	}
	if !def.Amount.IsPositive() {
		msgs = append(msgs, "amount must be positive")
	}
	if def.RecurrenceMonths <= 0 {
		msgs = append(msgs, "recurrence interval must be positive")
	}
	if def.LeadMonths < 0 {
		msgs = append(msgs, "lead time must not be negative")
	}
	if def.FirstDue.IsZero() {
		msgs = append(msgs, "first due date is required")
	}
	if def.EndDate != nil && def.EndDate.Before(def.FirstDue) {
		msgs = append(msgs, "end date must not be before the first due date")
	}

	switch def.Saving {
	case model.SavingCustom:
		if def.CustomMonthly == nil {
			msgs = append(msgs, "custom saving strategy requires a monthly saving amount")
		} else if !def.CustomMonthly.IsPositive() {
			msgs = append(msgs, "custom monthly saving amount must be positive")
		}
	case model.SavingNone, model.SavingEven:
		if def.CustomMonthly != nil {
			msgs = append(msgs, "monthly saving amount is only allowed with the custom strategy")
		}
	default:
		msgs = append(msgs, "unknown saving strategy")
	}

	switch def.Adjustment {
	case model.AdjustNone, model.AdjustPrevious, model.AdjustNext:
	default:
		msgs = append(msgs, "unknown date adjustment policy")
	}

	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// validateCompletion checks the mark-completed input against the
// occurrence being settled.
func validateCompletion(occ *model.Occurrence, actualDate time.Time, actualAmount decimal.Decimal, toleranceDays int) *ValidationError {
	var msgs []string

	if occ.Status == model.StatusCompleted {
		msgs = append(msgs, "occurrence is already completed")
	}
	if occ.Status == model.StatusCancelled {
		msgs = append(msgs, "occurrence is cancelled")
	}
	if actualDate.IsZero() {
		msgs = append(msgs, "actual date is required")
	}
	if !actualAmount.IsPositive() {
		msgs = append(msgs, "actual amount must be positive")
	}
	if !actualDate.IsZero() {
		diff := actualDate.Sub(occ.Scheduled)
		if diff < 0 {
			diff = -diff
		}
		if diff > time.Duration(toleranceDays)*24*time.Hour {
			msgs = append(msgs, "actual date is too far from the scheduled date")
		}
	}

	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}
