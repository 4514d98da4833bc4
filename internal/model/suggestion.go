package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Suggestion is a candidate obligation proposed by the detector from
// transaction history. Suggestions are ranked by confidence and require
// human approval before becoming definitions.
type Suggestion struct {
	Name             string
	Amount           decimal.Decimal
	RecurrenceMonths int
	DayPattern       DayPattern
	Confidence       float64
	Occurrences      int
	StableAmount     bool
	FirstSeen        time.Time
	LastSeen         time.Time
}
