// Package failure defines the typed, player-facing failures returned by the
// kingdom engine. None of these conditions panic; each carries a message
// suitable for direct display.
package failure

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure.
type Code string

const (
	InvalidPhase          Code = "INVALID_PHASE"
	UnknownActivity       Code = "UNKNOWN_ACTIVITY"
	UnknownStructure      Code = "UNKNOWN_STRUCTURE"
	UnknownFeat           Code = "UNKNOWN_FEAT"
	InvalidInput          Code = "INVALID_INPUT"
	InsufficientResources Code = "INSUFFICIENT_RESOURCES"
	InsufficientStock     Code = "INSUFFICIENT_STOCK"
	InsufficientFunds     Code = "INSUFFICIENT_FUNDS"
	MaxProficiencyReached Code = "MAX_PROFICIENCY_REACHED"
	PrerequisiteNotMet    Code = "PREREQUISITE_NOT_MET"
)

// Error is a recoverable domain failure.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error carrying the same Code, so callers may write
// errors.Is(err, failure.Sentinel(failure.InvalidPhase)).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New builds an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Sentinel returns a message-less Error usable as an errors.Is target.
func Sentinel(code Code) error {
	return &Error{Code: code}
}

// CodeOf returns the Code carried by err, or "" when err is not a domain failure.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err is a domain failure with the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
