// Package errors provides structured error types and exit codes for monoctl.
package errors

import (
	"fmt"
)

// Exit codes. Each failure class maps to a distinct code so CI pipelines
// can distinguish a failing batch from a broken configuration.
const (
	ExitSuccess      = 0 // Success
	ExitRuntimeError = 1 // Execution failure (unit command failed, etc.)
	ExitConfigError  = 2 // Configuration error (invalid config, missing binding, etc.)
	ExitIOError      = 3 // I/O error (manifest or artifact read/write failure)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindIO
)

// MonoctlError is the base error type for monoctl.
type MonoctlError struct {
	Kind      ErrorKind
	Message   string
	Unit      string // Unit name if applicable
	Operation string // Operation name if applicable
	Cause     error  // Underlying error
}

func (e *MonoctlError) Error() string {
	if e.Unit != "" && e.Operation != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Unit, e.Operation, e.Message)
	}
	if e.Unit != "" {
		return fmt.Sprintf("[%s] %s", e.Unit, e.Message)
	}
	return e.Message
}

func (e *MonoctlError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *MonoctlError) ExitCode() int {
	switch e.Kind {
	case KindConfig:
		return ExitConfigError
	case KindIO:
		return ExitIOError
	default:
		return ExitRuntimeError
	}
}

// Config creates a new configuration error.
func Config(message string) *MonoctlError {
	return &MonoctlError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *MonoctlError {
	return Config(fmt.Sprintf(format, args...))
}

// WrapIO wraps an error as an I/O error with additional context.
func WrapIO(err error, message string) *MonoctlError {
	return &MonoctlError{
		Kind:    KindIO,
		Message: message,
		Cause:   err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *MonoctlError {
	return &MonoctlError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// UnitError creates an error for a specific unit.
func UnitError(unit, operation, message string) *MonoctlError {
	return &MonoctlError{
		Kind:      KindRuntime,
		Unit:      unit,
		Operation: operation,
		Message:   message,
	}
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if me, ok := err.(*MonoctlError); ok {
		return me.ExitCode()
	}
	return ExitRuntimeError
}
