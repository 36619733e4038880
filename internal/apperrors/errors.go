// Package apperrors provides the consistent error taxonomy and formatting
// used across fortudo, mirroring spec.md §7: every mutating operation
// returns its failures by value via models.OperationResult.Reason, never
// by panicking or throwing across component boundaries.
package apperrors

import (
	"fmt"
	"os"

	"github.com/iconix/fortudo/internal/logger"
)

// ValidationError reports a rejected TaskModel input: bad description,
// non-positive duration, invalid time format, or unknown task id.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidation constructs a ValidationError.
func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictPolicyError reports an engine-detected impossibility: a cascade
// blocked by a completed task, or no feasible placement around locks.
type ConflictPolicyError struct {
	Msg string
}

func (e *ConflictPolicyError) Error() string { return e.Msg }

// NewConflictPolicy constructs a ConflictPolicyError.
func NewConflictPolicy(format string, args ...any) *ConflictPolicyError {
	return &ConflictPolicyError{Msg: fmt.Sprintf(format, args...)}
}

// PreconditionError reports that a plan payload went stale between a
// requiresConfirmation result and its confirm call: the referenced task
// disappeared, or the store state changed such that the plan no longer
// applies.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// NewPrecondition constructs a PreconditionError.
func NewPrecondition(format string, args ...any) *PreconditionError {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}

// NoOpError reports a bulk operation with nothing to do — informational,
// not a failure.
type NoOpError struct {
	Msg string
}

func (e *NoOpError) Error() string { return e.Msg }

// NewNoOp constructs a NoOpError.
func NewNoOp(format string, args ...any) *NoOpError {
	return &NoOpError{Msg: fmt.Sprintf(format, args...)}
}

// Format formats an error message with a consistent "Error: " prefix.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix
// using a format string.
func Formatf(format string, args ...any) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1.
func Fatal(err error) {
	if err != nil {
		logger.Error("command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1.
func Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
