package validator

import (
	"compliance_checker/internal/domain"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Raw inputs longer than maxInputLength or with a decimal exponent outside
// ±maxExponent are rejected before conversion to float64.
const (
	maxInputLength = 64
	maxExponent    = 64
)

var (
	ErrInvalidTurnover  = errors.New("turnover must be a positive number")
	ErrInvalidEmployees = errors.New("employees must be a positive whole number")
)

// ProfileValidator guards the rule matcher: the matcher accepts any float,
// so non-numeric and non-positive input is rejected here.
type ProfileValidator struct{}

func NewProfileValidator() *ProfileValidator {
	return &ProfileValidator{}
}

func (v *ProfileValidator) Validate(p domain.BusinessProfile) error {
	var errs []error

	if !finite(p.Turnover) || p.Turnover <= 0 {
		errs = append(errs, ErrInvalidTurnover)
	}
	if !finite(p.Employees) || p.Employees <= 0 || p.Employees != math.Trunc(p.Employees) {
		errs = append(errs, ErrInvalidEmployees)
	}

	return errors.Join(errs...)
}

// ParseProfile reads raw form values. Both values are parsed as exact
// decimals so that inputs like "1e400" or "12.5" employees are rejected
// rather than silently rounded.
func (v *ProfileValidator) ParseProfile(turnoverRaw, employeesRaw string) (domain.BusinessProfile, error) {
	var errs []error

	turnover, err := parseBounded(turnoverRaw)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidTurnover, err))
	} else if !turnover.IsPositive() {
		errs = append(errs, ErrInvalidTurnover)
	}

	employees, err := parseBounded(employeesRaw)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidEmployees, err))
	} else if !employees.IsPositive() || !employees.IsInteger() {
		errs = append(errs, ErrInvalidEmployees)
	}

	if len(errs) > 0 {
		return domain.BusinessProfile{}, errors.Join(errs...)
	}

	p := domain.BusinessProfile{
		Turnover:  turnover.InexactFloat64(),
		Employees: employees.InexactFloat64(),
	}
	return p, v.Validate(p)
}

// parseBounded refuses oversized input and extreme exponents up front.
// InexactFloat64 materialises 10^|exp| as a big.Int, so an unbounded
// exponent costs time and memory proportional to its value.
func parseBounded(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > maxInputLength {
		return decimal.Decimal{}, fmt.Errorf("value longer than %d characters", maxInputLength)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a number: %q", raw)
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Decimal{}, fmt.Errorf("value %q out of range", raw)
	}
	return d, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
