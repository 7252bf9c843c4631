package validator

import (
	"compliance_checker/internal/domain"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileValidator_Validate(t *testing.T) {
	v := NewProfileValidator()

	tests := []struct {
		name      string
		profile   domain.BusinessProfile
		turnover  bool
		employees bool
	}{
		{"valid", domain.BusinessProfile{Turnover: 5_000_000, Employees: 25}, false, false},
		{"zero turnover", domain.BusinessProfile{Turnover: 0, Employees: 25}, true, false},
		{"negative employees", domain.BusinessProfile{Turnover: 1, Employees: -3}, false, true},
		{"fractional employees", domain.BusinessProfile{Turnover: 1, Employees: 2.5}, false, true},
		{"nan turnover", domain.BusinessProfile{Turnover: math.NaN(), Employees: 1}, true, false},
		{"inf both", domain.BusinessProfile{Turnover: math.Inf(1), Employees: math.Inf(1)}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.profile)
			assert.Equal(t, tt.turnover, errors.Is(err, ErrInvalidTurnover))
			assert.Equal(t, tt.employees, errors.Is(err, ErrInvalidEmployees))
		})
	}
}

func TestProfileValidator_ParseProfile(t *testing.T) {
	v := NewProfileValidator()

	p, err := v.ParseProfile(" 5000000 ", "25")
	require.NoError(t, err)
	assert.Equal(t, domain.BusinessProfile{Turnover: 5_000_000, Employees: 25}, p)

	p, err = v.ParseProfile("12500000.75", "20.0")
	require.NoError(t, err)
	assert.InDelta(t, 12_500_000.75, p.Turnover, 1e-6)
	assert.Equal(t, 20.0, p.Employees)

	_, err = v.ParseProfile("abc", "10")
	assert.ErrorIs(t, err, ErrInvalidTurnover)

	_, err = v.ParseProfile("100", "12.5")
	assert.ErrorIs(t, err, ErrInvalidEmployees)

	_, err = v.ParseProfile("", "")
	assert.ErrorIs(t, err, ErrInvalidTurnover)
	assert.ErrorIs(t, err, ErrInvalidEmployees)

	_, err = v.ParseProfile("1e400", "1")
	assert.ErrorIs(t, err, ErrInvalidTurnover)
}

func TestProfileValidator_ParseProfileRejectsHugeExponents(t *testing.T) {
	v := NewProfileValidator()

	tests := []struct {
		name      string
		turnover  string
		employees string
		want      error
	}{
		{"huge positive exponent", "1e50000000", "1", ErrInvalidTurnover},
		{"huge negative exponent", "1e-10000000", "1", ErrInvalidTurnover},
		{"max int exponent", "1e999999999", "1", ErrInvalidTurnover},
		{"employee exponent", "100", "1e50000000", ErrInvalidEmployees},
		{"overlong digits", strings.Repeat("9", 65), "1", ErrInvalidTurnover},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			_, err := v.ParseProfile(tt.turnover, tt.employees)
			assert.ErrorIs(t, err, tt.want)
			assert.Less(t, time.Since(start), 100*time.Millisecond)
		})
	}

	p, err := v.ParseProfile("25e6", "2e1")
	require.NoError(t, err)
	assert.Equal(t, domain.BusinessProfile{Turnover: 25_000_000, Employees: 20}, p)
}

func TestContactValidator_Email(t *testing.T) {
	v := NewContactValidator()

	email, err := v.ValidateEmail("  owner@example.in ")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.in", email)

	_, err = v.ValidateEmail("not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = v.ValidateEmail("someone@Mailinator.com")
	assert.ErrorIs(t, err, ErrDisposableEmail)

	long := make([]byte, 250)
	for i := range long {
		long[i] = 'a'
	}
	_, err = v.ValidateEmail(string(long) + "@example.com")
	assert.Error(t, err)
}

func TestContactValidator_Phone(t *testing.T) {
	v := NewContactValidator()

	for _, phone := range []string{"9876543210", "6000000000"} {
		got, err := v.ValidatePhone(phone)
		require.NoError(t, err, phone)
		assert.Equal(t, phone, got)
	}

	for _, phone := range []string{"5876543210", "987654321", "98765432101", "98765abcde"} {
		_, err := v.ValidatePhone(phone)
		assert.ErrorIs(t, err, ErrInvalidPhone, phone)
	}
}

func TestContactValidator_Normalize(t *testing.T) {
	v := NewContactValidator()

	got, err := v.Normalize(domain.ContactPhone, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "9876543210", got)

	_, err = v.Normalize(domain.ContactMethod("fax"), "123")
	assert.ErrorIs(t, err, domain.ErrInvalidContact)
}
