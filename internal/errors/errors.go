// Package errors provides the error taxonomy for the finassist model client
// and its surfaces.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three failure classes plus conversation misuse.
var (
	ErrNotConfigured    = errors.New("not configured")
	ErrRequestFailed    = errors.New("request failed")
	ErrValidationFailed = errors.New("validation failed")
)

// User-facing messages. They are shown verbatim by the surfaces.
const (
	MsgSetupFailed     = "Failed to initialize the AI. Please check the API key."
	MsgChatFailed      = "Sorry, I couldn't process your request. Please try again."
	MsgNewsFailed      = "Sorry, I couldn't fetch the latest news. Please try again."
	MsgPortfolioFailed = "Sorry, I couldn't generate a portfolio suggestion. Please try again."
	MsgNoGoalSelected  = "Please select at least one financial goal."
)

// NotConfiguredError reports a missing credential or setting at startup
type NotConfiguredError struct {
	Setting string
}

func (e *NotConfiguredError) Error() string {
	if e.Setting == "" {
		return "not configured: API key is missing"
	}
	return fmt.Sprintf("not configured: %s is missing", e.Setting)
}

// Is allows comparison with sentinel errors
func (e *NotConfiguredError) Is(target error) bool {
	if target == ErrNotConfigured {
		return true
	}
	_, ok := target.(*NotConfiguredError)
	return ok
}

// NewNotConfiguredError creates a new NotConfiguredError
func NewNotConfiguredError(setting string) *NotConfiguredError {
	return &NotConfiguredError{Setting: setting}
}

// RequestFailedError collapses every transport, auth, quota, timeout and
// malformed-response failure of an outbound model call.
type RequestFailedError struct {
	Op  string
	Err error
}

func (e *RequestFailedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: request failed", e.Op)
	}
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause
func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *RequestFailedError) Is(target error) bool {
	if target == ErrRequestFailed {
		return true
	}
	_, ok := target.(*RequestFailedError)
	return ok
}

// NewRequestFailedError wraps err as a RequestFailedError for operation op
func NewRequestFailedError(op string, err error) *RequestFailedError {
	return &RequestFailedError{Op: op, Err: err}
}

// ValidationError is a local input constraint violation detected before any
// network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is allows comparison with sentinel errors
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidationFailed {
		return true
	}
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsNotConfigured reports whether err is a NotConfigured failure
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// IsRequestFailed reports whether err is a RequestFailed failure
func IsRequestFailed(err error) bool {
	return errors.Is(err, ErrRequestFailed)
}

// IsValidation reports whether err is a ValidationFailed failure
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

// UserMessage returns the text a surface should display for err. Validation
// errors carry their own message; everything else maps to fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if IsNotConfigured(err) {
		return MsgSetupFailed
	}
	return fallback
}
