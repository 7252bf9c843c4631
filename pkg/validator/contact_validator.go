package validator

import (
	"compliance_checker/internal/domain"
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidEmail    = errors.New("Please enter a valid email address")
	ErrEmailTooLong    = errors.New("Email must be less than 255 characters")
	ErrDisposableEmail = errors.New("Temporary email addresses are not allowed")
	ErrInvalidPhone    = errors.New("Please enter a valid 10-digit Indian phone number")
)

const maxEmailLength = 255

var blockedEmailDomains = map[string]struct{}{
	"tempmail.com":      {},
	"temp-mail.org":     {},
	"guerrillamail.com": {},
	"10minutemail.com":  {},
	"mailinator.com":    {},
	"throwaway.email":   {},
	"fakeinbox.com":     {},
	"yopmail.com":       {},
	"getnada.com":       {},
	"trashmail.com":     {},
	"maildrop.cc":       {},
	"dispostable.com":   {},
	"mailnesia.com":     {},
	"temp.email":        {},
	"tempr.email":       {},
	"discard.email":     {},
}

// ContactValidator checks OTP login destinations.
type ContactValidator struct {
	validate   *validator.Validate
	phoneRegex *regexp.Regexp
}

func NewContactValidator() *ContactValidator {
	return &ContactValidator{
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		phoneRegex: regexp.MustCompile(`^[6-9]\d{9}$`),
	}
}

// Normalize validates destination for method and returns it trimmed.
func (v *ContactValidator) Normalize(method domain.ContactMethod, destination string) (string, error) {
	switch method {
	case domain.ContactEmail:
		return v.ValidateEmail(destination)
	case domain.ContactPhone:
		return v.ValidatePhone(destination)
	default:
		return "", domain.ErrInvalidContact
	}
}

func (v *ContactValidator) ValidateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)

	if err := v.validate.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	if len(email) > maxEmailLength {
		return "", ErrEmailTooLong
	}

	_, domainPart, _ := strings.Cut(email, "@")
	if _, blocked := blockedEmailDomains[strings.ToLower(domainPart)]; blocked {
		return "", ErrDisposableEmail
	}

	return email, nil
}

func (v *ContactValidator) ValidatePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if !v.phoneRegex.MatchString(phone) {
		return "", ErrInvalidPhone
	}
	return phone, nil
}
