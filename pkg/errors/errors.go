// Package errors defines the engine's categorized error values.
//
// Only upstream failures are errors: row-store reads and writes, exchange
// rate fetches, bad configuration. The absence of a match is an expected
// outcome and is modeled as a structured result in the matcher package,
// never as an error from this package.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Category groups errors by the subsystem that produced them.
type Category string

const (
	CategoryStore         Category = "store"
	CategoryRates         Category = "rates"
	CategoryParse         Category = "parse"
	CategoryMatching      Category = "matching"
	CategoryConfiguration Category = "configuration"
)

// Code identifies a specific failure within a category.
type Code string

const (
	// Store codes
	CodeStoreRead  Code = "store_read"
	CodeStoreWrite Code = "store_write"
	CodeRowInvalid Code = "row_invalid"

	// Rates codes
	CodeRateFetch   Code = "rate_fetch"
	CodeRateDecode  Code = "rate_decode"
	CodeRateMissing Code = "rate_missing"

	// Parse codes
	CodeInvalidAmount Code = "invalid_amount"
	CodeInvalidDate   Code = "invalid_date"

	// Matching codes
	CodeBatchFailed Code = "batch_failed"

	// Configuration codes
	CodeInvalidConfig Code = "invalid_config"
	CodeMissingConfig Code = "missing_config"
)

// EngineError is the base error type for all engine failures.
type EngineError struct {
	Category Category          `json:"category"`
	Code     Code              `json:"code"`
	Message  string            `json:"message"`
	Context  map[string]string `json:"context,omitempty"`
	Cause    error             `json:"-"`

	stack errors.StackTrace
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// StackTrace returns the stack captured at construction.
func (e *EngineError) StackTrace() errors.StackTrace {
	return e.stack
}

// ExitCode maps the category to a CLI exit code.
func (e *EngineError) ExitCode() int {
	switch e.Category {
	case CategoryConfiguration:
		return 2
	case CategoryParse:
		return 3
	case CategoryStore:
		return 4
	case CategoryRates:
		return 5
	case CategoryMatching:
		return 6
	default:
		return 1
	}
}

// WithContext attaches a key/value pair to the error.
func (e *EngineError) WithContext(key, value string) *EngineError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func capture() errors.StackTrace {
	return errors.New("").(stackTracer).StackTrace()
}

// New creates a new EngineError.
func New(category Category, code Code, message string) *EngineError {
	return &EngineError{
		Category: category,
		Code:     code,
		Message:  message,
		stack:    capture(),
	}
}

// Newf creates a new EngineError with a formatted message.
func Newf(category Category, code Code, format string, args ...interface{}) *EngineError {
	return New(category, code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with engine context. A nil err yields nil.
func Wrap(err error, category Category, code Code, message string) *EngineError {
	if err == nil {
		return nil
	}
	return &EngineError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    err,
		stack:    capture(),
	}
}

// StoreError creates a store-category error for the given operation.
func StoreError(code Code, op string, err error) *EngineError {
	e := Wrap(err, CategoryStore, code, fmt.Sprintf("row store %s failed", op))
	if e == nil {
		e = New(CategoryStore, code, fmt.Sprintf("row store %s failed", op))
	}
	return e.WithContext("operation", op)
}

// RatesError creates a rates-category error for the given date.
func RatesError(code Code, date string, err error) *EngineError {
	e := Wrap(err, CategoryRates, code, fmt.Sprintf("exchange rate failure for %s", date))
	if e == nil {
		e = New(CategoryRates, code, fmt.Sprintf("exchange rate failure for %s", date))
	}
	return e.WithContext("date", date)
}

// ConfigError creates a configuration-category error for the given setting.
func ConfigError(code Code, setting string, err error) *EngineError {
	e := Wrap(err, CategoryConfiguration, code, fmt.Sprintf("invalid configuration: %s", setting))
	if e == nil {
		e = New(CategoryConfiguration, code, fmt.Sprintf("invalid configuration: %s", setting))
	}
	return e.WithContext("setting", setting)
}

// As extracts an *EngineError from an error chain.
func As(err error) (*EngineError, bool) {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr, true
	}
	return nil, false
}

// Is reports whether err carries the given category and code.
func Is(err error, category Category, code Code) bool {
	e, ok := As(err)
	return ok && e.Category == category && e.Code == code
}
