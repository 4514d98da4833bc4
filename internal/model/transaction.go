package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one historical payment record. The detector mines these
// for repeating obligations, and a completed occurrence may link to the
// transaction that settled it.
type Transaction struct {
	ID         string
	Title      string
	Amount     decimal.Decimal
	Date       time.Time
	CategoryID *string

	CreatedAt time.Time
}

// Category is a simple label definitions and transactions may reference.
type Category struct {
	ID   string
	Name string
}
