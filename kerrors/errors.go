// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

// Package kerrors collects the sentinel errors and error-construction
// helpers used throughout the module, following the teacher's convention of
// a dedicated errors package referenced as kerrors.ErrXxx from call sites
// (blockchain/state_transition.go), layered with github.com/pkg/errors for
// wrapping context onto invariant violations (node/service.go).
package kerrors

import (
	"github.com/pkg/errors"
)

// ErrOutOfGas is the sole user-visible, recoverable error that crosses the
// charge_gas API boundary (spec.md §7 propagation policy).
var ErrOutOfGas = errors.New("out of gas")

// ExecutionError wraps ErrOutOfGas (or, in principle, other recoverable
// execution errors). It adds no context of its own: Error and Unwrap both
// defer to the wrapped cause.
type ExecutionError struct {
	cause error
}

func NewExecutionError(cause error) *ExecutionError {
	return &ExecutionError{cause: cause}
}

func (e *ExecutionError) Error() string { return e.cause.Error() }
func (e *ExecutionError) Unwrap() error { return e.cause }

// IsOutOfGas reports whether err is (or wraps) ErrOutOfGas.
func IsOutOfGas(err error) bool {
	return errors.Is(err, ErrOutOfGas)
}

// InvariantViolation is raised for the fatal, programmer-error class of
// failure described in spec.md §7: it must never be surfaced to end users as
// a normal failure, only ever abort transaction execution.
type InvariantViolation struct {
	msg string
}

func (e *InvariantViolation) Error() string { return "invariant violation: " + e.msg }

// NewInvariantViolation constructs an InvariantViolation carrying a
// formatted message, using github.com/pkg/errors for the underlying
// formatting in the teacher's style.
func NewInvariantViolation(format string, args ...interface{}) error {
	return &InvariantViolation{msg: errors.Errorf(format, args...).Error()}
}

// IsInvariantViolation reports whether err is (or wraps) an InvariantViolation.
func IsInvariantViolation(err error) bool {
	var iv *InvariantViolation
	return errors.As(err, &iv)
}
