// README: Pipeline error taxonomy; kinds are matched with errors.Is against the sentinels below.
package types

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindGeocodeUnresolved        ErrorKind = "geocode_unresolved"
	KindProviderUnavailable      ErrorKind = "provider_unavailable"
	KindInvalidBudgetInput       ErrorKind = "invalid_budget_input"
	KindSynthesisSchemaViolation ErrorKind = "synthesis_schema_violation"
	KindSynthesisUnavailable     ErrorKind = "synthesis_unavailable"
)

// Error is a classified pipeline failure. Only GeocodeUnresolved, InvalidBudgetInput
// and SynthesisUnavailable ever leave the planner; the other kinds are absorbed.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

var (
	ErrGeocodeUnresolved        = &Error{Kind: KindGeocodeUnresolved}
	ErrProviderUnavailable      = &Error{Kind: KindProviderUnavailable}
	ErrInvalidBudgetInput       = &Error{Kind: KindInvalidBudgetInput}
	ErrSynthesisSchemaViolation = &Error{Kind: KindSynthesisSchemaViolation}
	ErrSynthesisUnavailable     = &Error{Kind: KindSynthesisUnavailable}
)

// Errorf builds a classified error; a trailing %w verb is unwrapped as the cause.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	wrapped := fmt.Errorf(format, args...)
	return &Error{Kind: kind, Message: wrapped.Error(), Err: errors.Unwrap(wrapped)}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first classified error in err's chain, or "" when none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
