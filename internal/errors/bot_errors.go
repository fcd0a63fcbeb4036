package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	// Errors that should stop a run
	ErrorCategoryFatal         ErrorCategory = "FATAL"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"

	// Input rejected at the ingestion boundary
	ErrorCategoryValidation ErrorCategory = "VALIDATION"

	// I/O problems reading or writing data files
	ErrorCategoryData ErrorCategory = "DATA"
)

// BotError represents a categorized error with context
type BotError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
}

// Error implements the error interface
func (e *BotError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}

	if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}
	return b.String()
}

// Unwrap returns the underlying error for error unwrapping
func (e *BotError) Unwrap() error {
	return e.Underlying
}

// IsFatal returns whether this error should stop the run
func (e *BotError) IsFatal() bool {
	return e.Category == ErrorCategoryFatal || e.Category == ErrorCategoryConfiguration
}

// NewBotError creates a new categorized error
func NewBotError(category ErrorCategory, component, operation, message string) *BotError {
	return &BotError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with category context
func WrapError(err error, category ErrorCategory, component, operation string) *BotError {
	if err == nil {
		return nil
	}

	return &BotError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *BotError) WithContext(key string, value interface{}) *BotError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithUnderlying attaches the cause of the error
func (e *BotError) WithUnderlying(err error) *BotError {
	e.Underlying = err
	return e
}

// CategoryOf returns the category of the first BotError in err's chain
func CategoryOf(err error) (ErrorCategory, bool) {
	var botErr *BotError
	if stderrors.As(err, &botErr) {
		return botErr.Category, true
	}
	return "", false
}

// IsValidationError reports whether err was raised at the ingestion boundary
func IsValidationError(err error) bool {
	category, ok := CategoryOf(err)
	return ok && category == ErrorCategoryValidation
}

// IsConfigError reports whether err is a configuration error
func IsConfigError(err error) bool {
	category, ok := CategoryOf(err)
	return ok && category == ErrorCategoryConfiguration
}

// Common error constructors
func NewValidationError(component, operation, message string) *BotError {
	return NewBotError(ErrorCategoryValidation, component, operation, message)
}

func NewConfigurationError(component, operation, message string) *BotError {
	return NewBotError(ErrorCategoryConfiguration, component, operation, message)
}

func NewDataError(component, operation string, err error) *BotError {
	return WrapError(err, ErrorCategoryData, component, operation)
}

func NewFatalError(component, operation, message string) *BotError {
	return NewBotError(ErrorCategoryFatal, component, operation, message)
}
