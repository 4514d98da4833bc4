package store

import (
	"sort"
	"sync"

	"duetrack/internal/model"
)

// Memory is an in-process Store used by tests and anywhere persistence is
// not wanted. It copies aggregates in and out so callers never alias its
// internal state.
type Memory struct {
	mu           sync.Mutex
	definitions  map[string]*model.Definition
	balances     map[string]*model.Balance // by definition ID
	transactions map[string]model.Transaction
	categories   map[string]model.Category
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		definitions:  make(map[string]*model.Definition),
		balances:     make(map[string]*model.Balance),
		transactions: make(map[string]model.Transaction),
		categories:   make(map[string]model.Category),
	}
}

func (m *Memory) InsertDefinition(def *model.Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.definitions[def.ID] = copyDefinition(def)
	return nil
}

func (m *Memory) Definition(id string) (*model.Definition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	def, ok := m.definitions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDefinition(def), nil
}

func (m *Memory) Definitions() ([]*model.Definition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defs := make([]*model.Definition, 0, len(m.definitions))
	for _, def := range m.definitions {
		defs = append(defs, copyDefinition(def))
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}

func (m *Memory) SaveDefinition(def *model.Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.definitions[def.ID]; !ok {
		return ErrNotFound
	}
	m.definitions[def.ID] = copyDefinition(def)
	return nil
}

func (m *Memory) DeleteDefinition(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.definitions[id]; !ok {
		return ErrNotFound
	}
	delete(m.definitions, id)
	delete(m.balances, id)
	return nil
}

func (m *Memory) DefinitionIDForOccurrence(occurrenceID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, def := range m.definitions {
		for _, occ := range def.Occurrences {
			if occ.ID == occurrenceID {
				return def.ID, nil
			}
		}
	}
	return "", ErrNotFound
}

func (m *Memory) BalanceFor(definitionID string) (*model.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.balances[definitionID]
	if !ok {
		return nil, ErrNotFound
	}
	b := *bal
	return &b, nil
}

func (m *Memory) SaveBalance(bal *model.Balance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := *bal
	m.balances[bal.DefinitionID] = &b
	return nil
}

func (m *Memory) InsertTransaction(t *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = *t
	return nil
}

func (m *Memory) Transactions() ([]model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txs := make([]model.Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		txs = append(txs, t)
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
	return txs, nil
}

// DeleteTransaction removes the record and nulls any occurrence link to
// it; the occurrence itself is never touched beyond that.
func (m *Memory) DeleteTransaction(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[id]; !ok {
		return ErrNotFound
	}
	delete(m.transactions, id)
	for _, def := range m.definitions {
		for i := range def.Occurrences {
			if def.Occurrences[i].TransactionID != nil && *def.Occurrences[i].TransactionID == id {
				def.Occurrences[i].TransactionID = nil
			}
		}
	}
	return nil
}

func (m *Memory) InsertCategory(cat *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[cat.ID] = *cat
	return nil
}

func (m *Memory) Category(id string) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cat, ok := m.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := cat
	return &c, nil
}

func (m *Memory) Categories() ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cats := make([]model.Category, 0, len(m.categories))
	for _, c := range m.categories {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (m *Memory) Close() error { return nil }

func copyDefinition(def *model.Definition) *model.Definition {
	cp := *def
	cp.Occurrences = make([]model.Occurrence, len(def.Occurrences))
	copy(cp.Occurrences, def.Occurrences)
	cp.SortOccurrences()
	if def.EndDate != nil {
		d := *def.EndDate
		cp.EndDate = &d
	}
	if def.CustomMonthly != nil {
		a := *def.CustomMonthly
		cp.CustomMonthly = &a
	}
	if def.DayPattern != nil {
		p := *def.DayPattern
		cp.DayPattern = &p
	}
	if def.CategoryID != nil {
		id := *def.CategoryID
		cp.CategoryID = &id
	}
	return &cp
}
