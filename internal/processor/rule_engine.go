package processor

import (
	"cmp"
	"compliance_checker/internal/domain"
	"compliance_checker/internal/rules"
	"slices"
)

// Match returns the projections of every rule in table that applies to the
// given turnover and employee count, in table order. It never fails and has
// no side effects; NaN inputs fail every present threshold.
func Match(table *rules.Table, turnover, employees float64) []domain.ComplianceMatch {
	out := make([]domain.ComplianceMatch, 0, table.Len())
	table.Each(func(r domain.ComplianceRule) {
		if r.Applies(turnover, employees) {
			out = append(out, r.Match())
		}
	})
	return out
}

// SortByRisk returns a copy of matches ordered critical, high, medium, low.
// Matches of equal level keep their relative order.
func SortByRisk(matches []domain.ComplianceMatch) []domain.ComplianceMatch {
	sorted := slices.Clone(matches)
	slices.SortStableFunc(sorted, func(a, b domain.ComplianceMatch) int {
		return cmp.Compare(a.RiskLevel.Rank(), b.RiskLevel.Rank())
	})
	return sorted
}

// Summarize counts matches per risk level.
func Summarize(matches []domain.ComplianceMatch) domain.Summary {
	s := domain.Summary{Total: len(matches)}
	for _, m := range matches {
		switch m.RiskLevel {
		case domain.RiskCritical:
			s.Critical++
		case domain.RiskHigh:
			s.High++
		case domain.RiskMedium:
			s.Medium++
		case domain.RiskLow:
			s.Low++
		}
	}
	return s
}
