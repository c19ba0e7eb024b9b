package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIPSet = errors.New("invalid ipset")
)

// ValidationError describes one rejected attribute of a declared ipset.
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e[0].Error(), len(e)-1)
}

func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidIPSet
}

func (e *ValidationErrors) Add(field, value, message string) {
	*e = append(*e, NewValidationError(field, value, message))
}

func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}
