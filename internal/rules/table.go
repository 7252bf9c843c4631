// Package rules holds the compliance rule table and the sources it can be
// loaded from.
package rules

import (
	"compliance_checker/internal/domain"
	"errors"
	"fmt"
)

var (
	ErrEmptyTable   = errors.New("rule table is empty")
	ErrDuplicateID  = errors.New("duplicate rule id")
	ErrRuleNotFound = errors.New("rule not found")
)

// Table is an ordered, validated and immutable set of compliance rules.
// It is safe for concurrent use.
type Table struct {
	rules []domain.ComplianceRule
	index map[string]int
}

// NewTable validates rules and freezes them in the given order.
func NewTable(rules []domain.ComplianceRule) (*Table, error) {
	if len(rules) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{
		rules: make([]domain.ComplianceRule, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	copy(t.rules, rules)

	for i := range t.rules {
		r := &t.rules[i]
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", i, r.ID, err)
		}
		if _, exists := t.index[r.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
		}
		t.index[r.ID] = i
	}

	return t, nil
}

// Default returns the built-in catalog as a table.
func Default() *Table {
	t, err := NewTable(Catalog())
	if err != nil {
		panic(fmt.Sprintf("rules: built-in catalog is invalid: %v", err))
	}
	return t
}

func (t *Table) Len() int { return len(t.rules) }

// Rules returns a copy of the rules in table order.
func (t *Table) Rules() []domain.ComplianceRule {
	out := make([]domain.ComplianceRule, len(t.rules))
	copy(out, t.rules)
	return out
}

func (t *Table) Get(id string) (domain.ComplianceRule, error) {
	i, ok := t.index[id]
	if !ok {
		return domain.ComplianceRule{}, fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}
	return t.rules[i], nil
}

// Each calls fn with a copy of every rule in table order.
func (t *Table) Each(fn func(r domain.ComplianceRule)) {
	for _, r := range t.rules {
		fn(r)
	}
}
