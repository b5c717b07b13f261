// Package errors provides error handling for reflex.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle missing entity
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the projection core.
// Every failure a caller can observe is one of these (possibly wrapped);
// use errors.Is() or the Is* helpers below for type-safe checks.
// None of them is retried inside the core — retry policy belongs to the
// embedding application.
var (
	// ErrNotFound indicates the requested entity has no backing data.
	ErrNotFound = New("entity not found")

	// ErrUnknownFacet indicates a facet name that was never loaded for
	// the entity. Facet sets are fixed at load time.
	ErrUnknownFacet = New("unknown facet")

	// ErrUnknownContext indicates a context name that is not registered.
	ErrUnknownContext = New("unknown context")

	// ErrInvalidTransition indicates a context switch not permitted by
	// the transition graph.
	ErrInvalidTransition = New("invalid context transition")

	// ErrContextPermission indicates an operation touching a facet
	// outside the active context's permitted set.
	ErrContextPermission = New("facet not permitted in context")

	// ErrInvalidOperation indicates an operation envelope the active
	// adapter cannot interpret (unknown kind, missing facet).
	ErrInvalidOperation = New("invalid operation")

	// ErrPersistence indicates a change-log append that failed to
	// durably commit. The corresponding in-memory mutation is not
	// applied; the caller may retry the whole operation.
	ErrPersistence = New("change log persistence failed")

	// ErrInvalidPolicy indicates a transaction grouping policy that
	// panicked while evaluating a record pair.
	ErrInvalidPolicy = New("invalid grouping policy")
)

// IsNotFound checks if an error is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsUnknownFacet checks if an error is or wraps ErrUnknownFacet.
func IsUnknownFacet(err error) bool {
	return err != nil && Is(err, ErrUnknownFacet)
}

// IsUnknownContext checks if an error is or wraps ErrUnknownContext.
func IsUnknownContext(err error) bool {
	return err != nil && Is(err, ErrUnknownContext)
}

// IsInvalidTransition checks if an error is or wraps ErrInvalidTransition.
func IsInvalidTransition(err error) bool {
	return err != nil && Is(err, ErrInvalidTransition)
}

// IsContextPermission checks if an error is or wraps ErrContextPermission.
func IsContextPermission(err error) bool {
	return err != nil && Is(err, ErrContextPermission)
}

// IsPersistence checks if an error is or wraps ErrPersistence.
func IsPersistence(err error) bool {
	return err != nil && Is(err, ErrPersistence)
}

// IsInvalidPolicy checks if an error is or wraps ErrInvalidPolicy.
func IsInvalidPolicy(err error) bool {
	return err != nil && Is(err, ErrInvalidPolicy)
}

// WrapNotFound wraps an error as a not-found error with context.
func WrapNotFound(err error, context string) error {
	return Wrap(Wrap(ErrNotFound, err.Error()), context)
}

// WrapPersistence wraps a storage error as a persistence failure with context.
func WrapPersistence(err error, context string) error {
	return Wrap(Wrap(ErrPersistence, err.Error()), context)
}

// NewNotFoundError creates a not-found error with a formatted message.
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewUnknownFacetError creates an unknown-facet error with a formatted message.
func NewUnknownFacetError(format string, args ...interface{}) error {
	return Wrap(ErrUnknownFacet, Newf(format, args...).Error())
}

// NewUnknownContextError creates an unknown-context error with a formatted message.
func NewUnknownContextError(format string, args ...interface{}) error {
	return Wrap(ErrUnknownContext, Newf(format, args...).Error())
}

// NewInvalidTransitionError creates an invalid-transition error with a formatted message.
func NewInvalidTransitionError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidTransition, Newf(format, args...).Error())
}

// NewContextPermissionError creates a context-permission error with a formatted message.
func NewContextPermissionError(format string, args ...interface{}) error {
	return Wrap(ErrContextPermission, Newf(format, args...).Error())
}
