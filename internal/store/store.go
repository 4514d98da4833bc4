// Package store persists definitions, occurrences, balances, and
// transaction history. The engine only sees the Store interface; the
// SQLite implementation is the default and an in-memory one backs tests.
package store

import (
	"errors"

	"duetrack/internal/model"
)

// ErrNotFound is returned when a fetch matches nothing.
var ErrNotFound = errors.New("not found")

// Store is the abstract persistence boundary. Implementations serialize
// writes: one mutation is in flight at a time, which the reconciliation
// invariants depend on. A definition is stored as an aggregate: saving it
// persists its occurrence collection in the same transaction-like unit.
type Store interface {
	InsertDefinition(def *model.Definition) error
	Definition(id string) (*model.Definition, error)
	Definitions() ([]*model.Definition, error)
	SaveDefinition(def *model.Definition) error
	DeleteDefinition(id string) error
	DefinitionIDForOccurrence(occurrenceID string) (string, error)

	BalanceFor(definitionID string) (*model.Balance, error)
	SaveBalance(bal *model.Balance) error

	InsertTransaction(tx *model.Transaction) error
	Transactions() ([]model.Transaction, error)
	DeleteTransaction(id string) error

	InsertCategory(cat *model.Category) error
	Category(id string) (*model.Category, error)
	Categories() ([]model.Category, error)

	Close() error
}
