package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrVersionConflict        = errors.New("concurrent modification, retry")
	ErrAccountNumberExhausted = errors.New("account number generation exhausted")
)

// ValidationError carries every rule violation found during a single service
// call. Messages are surfaced verbatim to the caller.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}
