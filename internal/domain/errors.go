package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across service boundaries.
var (
	ErrInvalidToken         = errors.New("invalid mock token")
	ErrParse                = errors.New("malformed mock token payload")
	ErrTargetMismatch       = errors.New("invalid mock token target plugin ID")
	ErrUnsupportedPrincipal = errors.New("unsupported principal")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrNotAllowed           = errors.New("credentials not allowed")
	ErrInvalidCredential    = errors.New("invalid credential")
)

// ParseReason identifies which part of a token payload was defective.
type ParseReason int

const (
	// ParseEndOfInput means the payload stopped before a complete JSON value.
	ParseEndOfInput ParseReason = iota + 1
	// ParseUnexpectedToken means the payload contains a JSON syntax error.
	ParseUnexpectedToken
	// ParseInvalidField means the payload is valid JSON but not the expected shape.
	ParseInvalidField
)

func (r ParseReason) String() string {
	switch r {
	case ParseEndOfInput:
		return "end of input"
	case ParseUnexpectedToken:
		return "unexpected token"
	case ParseInvalidField:
		return "invalid field"
	default:
		return "unknown"
	}
}

// ParseError reports a token whose prefix was recognized but whose JSON payload
// could not be decoded.
type ParseError struct {
	// TokenKind is the token family, e.g. "user" or "service".
	TokenKind string
	Reason    ParseReason
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed mock %s token: %v", e.TokenKind, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// TargetMismatchError reports a service token addressed to a different plugin.
type TargetMismatchError struct {
	Expected string
	Got      string
}

func (e *TargetMismatchError) Error() string {
	return fmt.Sprintf("%v, got '%s' but expected '%s'", ErrTargetMismatch, e.Got, e.Expected)
}

func (e *TargetMismatchError) Is(target error) bool { return target == ErrTargetMismatch }

// ErrorResponse is the standard JSON error envelope returned to clients.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
