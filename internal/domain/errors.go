package domain

import "errors"

var (
	ErrInvalidRule         = errors.New("invalid compliance rule")
	ErrInvalidSessionState = errors.New("invalid session state")
	ErrInvalidContact      = errors.New("invalid contact method")
)
