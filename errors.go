package parsec

import (
	"errors"
	"fmt"
)

// ErrNotMatch is the sentinel every recoverable parse failure wraps. Use
// errors.Is(err, ErrNotMatch) to tell a recoverable ParseError apart from a
// programmer error such as ErrUnresolvedRecursion.
var ErrNotMatch = errors.New("not match")

// ErrUnresolvedRecursion is a programmer error (spec.md §7, kind 2): a
// Recursion slot was read via Ref but never assigned by the time parsing
// reached it. either/many/sepby/leftassoc must not catch it.
var ErrUnresolvedRecursion = errors.New("parser promised but never assigned")

// ParseError is the single parser-error kind. Expected is either a
// descriptor of the failing parser (commonly its name) or, for either's
// aggregated failure, an ordered []any of sub-failures. Message, when set
// by ErrorMessage, overrides the rendered text but not the Expected value.
type ParseError struct {
	Expected any
	Position int
	Message  string
}

func (e *ParseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s\nat index %d", e.Message, e.Position)
	}
	return fmt.Sprintf("expected %v at index %d", e.Expected, e.Position)
}

func (e *ParseError) Unwrap() error {
	return ErrNotMatch
}

func newParseError(expected any, position int) *ParseError {
	return &ParseError{Expected: expected, Position: position}
}
