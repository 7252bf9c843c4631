package rules

import (
	"compliance_checker/internal/domain"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// pack is the on-disk YAML layout of a rule table. Thresholds are optional;
// an absent key means unbounded.
type pack struct {
	Rules []packRule `yaml:"rules"`
}

type packRule struct {
	ID                 string `yaml:"id"`
	Name               string `yaml:"name"`
	Reason             string `yaml:"reason"`
	Deadline           string `yaml:"deadline"`
	RiskLevel          string `yaml:"risk_level"`
	PenaltyPreview     string `yaml:"penalty_preview"`
	PenaltyExplanation string `yaml:"penalty_explanation"`
	PlainExplanation   string `yaml:"plain_explanation"`

	MinTurnover  *float64 `yaml:"min_turnover,omitempty"`
	MaxTurnover  *float64 `yaml:"max_turnover,omitempty"`
	MinEmployees *float64 `yaml:"min_employees,omitempty"`
	MaxEmployees *float64 `yaml:"max_employees,omitempty"`
}

// ParsePack decodes and validates a YAML rule pack.
func ParsePack(r io.Reader) (*Table, error) {
	var p pack
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyTable
		}
		return nil, fmt.Errorf("parse rule pack: %w", err)
	}

	rules := make([]domain.ComplianceRule, 0, len(p.Rules))
	for i, pr := range p.Rules {
		level, err := domain.ParseRiskLevel(pr.RiskLevel)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", i, pr.ID, err)
		}
		rules = append(rules, domain.ComplianceRule{
			ID:                 pr.ID,
			Name:               pr.Name,
			Reason:             pr.Reason,
			Deadline:           pr.Deadline,
			RiskLevel:          level,
			PenaltyPreview:     pr.PenaltyPreview,
			PenaltyExplanation: pr.PenaltyExplanation,
			PlainExplanation:   pr.PlainExplanation,
			MinTurnover:        toBound(pr.MinTurnover),
			MaxTurnover:        toBound(pr.MaxTurnover),
			MinEmployees:       toBound(pr.MinEmployees),
			MaxEmployees:       toBound(pr.MaxEmployees),
		})
	}

	return NewTable(rules)
}

// MarshalPack renders a table in the format ParsePack reads.
func MarshalPack(t *Table) ([]byte, error) {
	var p pack
	t.Each(func(r domain.ComplianceRule) {
		p.Rules = append(p.Rules, packRule{
			ID:                 r.ID,
			Name:               r.Name,
			Reason:             r.Reason,
			Deadline:           r.Deadline,
			RiskLevel:          string(r.RiskLevel),
			PenaltyPreview:     r.PenaltyPreview,
			PenaltyExplanation: r.PenaltyExplanation,
			PlainExplanation:   r.PlainExplanation,
			MinTurnover:        fromBound(r.MinTurnover),
			MaxTurnover:        fromBound(r.MaxTurnover),
			MinEmployees:       fromBound(r.MinEmployees),
			MaxEmployees:       fromBound(r.MaxEmployees),
		})
	})
	return yaml.Marshal(&p)
}

func toBound(v *float64) domain.Bound {
	if v == nil {
		return domain.Unbounded()
	}
	return domain.BoundAt(*v)
}

func fromBound(b domain.Bound) *float64 {
	v, ok := b.Value()
	if !ok {
		return nil
	}
	return &v
}
