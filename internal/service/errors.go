package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation         = errors.New("validation")                // 400
	ErrProductUnavailable = errors.New("product unavailable")       // 400
	ErrNotFound           = errors.New("not found")                 // 404
	ErrInvalidTransition  = errors.New("invalid status transition") // 409
	ErrConflict           = errors.New("conflict")                  // 409
	ErrInvalidCredentials = errors.New("invalid credentials")       // 401
)

// ValidationError carries field-level messages keyed by JSON field path.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func fieldError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
