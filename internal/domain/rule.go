package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

// RiskLevels lists every level in presentation order.
var RiskLevels = []RiskLevel{RiskCritical, RiskHigh, RiskMedium, RiskLow}

func ParseRiskLevel(s string) (RiskLevel, error) {
	switch l := RiskLevel(s); l {
	case RiskCritical, RiskHigh, RiskMedium, RiskLow:
		return l, nil
	default:
		return "", fmt.Errorf("invalid risk level: %q", s)
	}
}

func (l RiskLevel) Valid() bool {
	_, err := ParseRiskLevel(string(l))
	return err == nil
}

// Rank orders levels for display: critical is 0, low is 3.
// Unknown levels sort after low.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskCritical:
		return 0
	case RiskHigh:
		return 1
	case RiskMedium:
		return 2
	case RiskLow:
		return 3
	default:
		return 4
	}
}

func (l RiskLevel) Label() string {
	switch l {
	case RiskCritical:
		return "Critical"
	case RiskHigh:
		return "High Risk"
	case RiskMedium:
		return "Medium"
	case RiskLow:
		return "Low"
	default:
		return string(l)
	}
}

// Bound is an optional inclusive threshold. The zero value is unbounded.
type Bound struct {
	value float64
	set   bool
}

func Unbounded() Bound { return Bound{} }

func BoundAt(v float64) Bound { return Bound{value: v, set: true} }

func (b Bound) Value() (float64, bool) { return b.value, b.set }

func (b Bound) IsSet() bool { return b.set }

// AllowsAtLeast reports whether x satisfies b used as a lower bound.
func (b Bound) AllowsAtLeast(x float64) bool {
	if !b.set {
		return true
	}
	return x >= b.value
}

// AllowsAtMost reports whether x satisfies b used as an upper bound.
func (b Bound) AllowsAtMost(x float64) bool {
	if !b.set {
		return true
	}
	return x <= b.value
}

func (b Bound) String() string {
	if !b.set {
		return "unbounded"
	}
	return fmt.Sprintf("%g", b.value)
}

func (b Bound) MarshalJSON() ([]byte, error) {
	if !b.set {
		return []byte("null"), nil
	}
	return json.Marshal(b.value)
}

func (b *Bound) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = Unbounded()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("bound: %w", err)
	}
	*b = BoundAt(v)
	return nil
}

// ComplianceRule is an authoritative rule record: display text plus the
// applicability thresholds.
type ComplianceRule struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Reason             string    `json:"reason"`
	Deadline           string    `json:"deadline"`
	RiskLevel          RiskLevel `json:"risk_level"`
	PenaltyPreview     string    `json:"penalty_preview"`
	PenaltyExplanation string    `json:"penalty_explanation"`
	PlainExplanation   string    `json:"plain_explanation"`

	MinTurnover  Bound `json:"min_turnover"`
	MaxTurnover  Bound `json:"max_turnover"`
	MinEmployees Bound `json:"min_employees"`
	MaxEmployees Bound `json:"max_employees"`
}

// ComplianceMatch is the display projection of a ComplianceRule.
type ComplianceMatch struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Reason             string    `json:"reason"`
	Deadline           string    `json:"deadline"`
	RiskLevel          RiskLevel `json:"risk_level"`
	PenaltyPreview     string    `json:"penalty_preview"`
	PenaltyExplanation string    `json:"penalty_explanation"`
	PlainExplanation   string    `json:"plain_explanation"`
}

// Applies evaluates the four threshold predicates. NaN inputs fail every
// present bound.
func (r *ComplianceRule) Applies(turnover, employees float64) bool {
	return r.MinTurnover.AllowsAtLeast(turnover) &&
		r.MaxTurnover.AllowsAtMost(turnover) &&
		r.MinEmployees.AllowsAtLeast(employees) &&
		r.MaxEmployees.AllowsAtMost(employees)
}

func (r *ComplianceRule) Match() ComplianceMatch {
	return ComplianceMatch{
		ID:                 r.ID,
		Name:               r.Name,
		Reason:             r.Reason,
		Deadline:           r.Deadline,
		RiskLevel:          r.RiskLevel,
		PenaltyPreview:     r.PenaltyPreview,
		PenaltyExplanation: r.PenaltyExplanation,
		PlainExplanation:   r.PlainExplanation,
	}
}

// Validate checks a single rule in isolation. Table-level checks such as id
// uniqueness live with the table.
func (r *ComplianceRule) Validate() error {
	required := []struct {
		field, value string
	}{
		{"id", r.ID},
		{"name", r.Name},
		{"reason", r.Reason},
		{"deadline", r.Deadline},
		{"penalty_preview", r.PenaltyPreview},
		{"penalty_explanation", r.PenaltyExplanation},
		{"plain_explanation", r.PlainExplanation},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidRule, f.field)
		}
	}
	if !r.RiskLevel.Valid() {
		return fmt.Errorf("%w: invalid risk level %q", ErrInvalidRule, r.RiskLevel)
	}
	if err := checkRange("turnover", r.MinTurnover, r.MaxTurnover); err != nil {
		return err
	}
	return checkRange("employees", r.MinEmployees, r.MaxEmployees)
}

func checkRange(field string, lo, hi Bound) error {
	for _, b := range []Bound{lo, hi} {
		if v, ok := b.Value(); ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
			return fmt.Errorf("%w: %s bound must be finite", ErrInvalidRule, field)
		}
	}
	minV, minOK := lo.Value()
	maxV, maxOK := hi.Value()
	if minOK && maxOK && minV > maxV {
		return fmt.Errorf("%w: min %s %g exceeds max %g", ErrInvalidRule, field, minV, maxV)
	}
	return nil
}
