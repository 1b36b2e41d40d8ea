// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package errors implements the errors used by extendgen.
// Errors carry a Kind, an optional source range (for configuration errors),
// the bundle that originated them and an underlying error.
package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// Error is the default error type for extendgen.
type Error struct {
	// Kind is the kind of error.
	Kind Kind

	// FileRange holds the error source.
	FileRange hcl.Range

	// Bundle which originated the error.
	Bundle Bundle

	// Description of the error.
	Description string

	// Err represents the underlying error.
	Err error
}

// Kind defines the kind of an error.
type Kind string

// Bundle is the name of the bundle related to the error.
type Bundle string

const (
	// ErrInternal indicates an internal (unexpected) error.
	ErrInternal Kind = "internal error"
)

// Separator is the separator used to join the error parts.
const Separator = ": "

// E builds an error value from its arguments.
// There must be at least one argument or E panics.
// The type of each argument determines its meaning. If more than one argument
// of a given type is presented, only the last one is recorded.
//
// The types are:
//
//	errors.Kind
//		The kind of error (eg.: ErrInternal, bundle.ErrConfig, etc).
//	hcl.Range
//		The file range where the error originated.
//	errors.Bundle
//		The bundle which the error originated.
//	string
//		Treated as an error description and assigned to the Description field.
//		If there are arguments after the string they are used as format
//		arguments for the description (fmt.Sprintf) and are not processed
//		as other types.
//	hcl.Diagnostics
//		The underlying hcl error that triggered this one.
//		If this error's FileRange is not set, the diagnostic subject range is
//		pulled.
//		If this error's Description is not set, the diagnostic detail field is
//		pulled.
//	error
//		The underlying error that triggered this one.
//
// If the error is printed, only those items that have been
// set to non-zero values will appear in the result.
//
// Minimization:
//
// In order to avoid duplicated messages, fields of the underlying *Error
// that have the same value as this error are erased.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic(errors.New("called with no args"))
	}

	e := &Error{}

processArgs:
	for i, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case hcl.Range:
			e.FileRange = arg
		case Bundle:
			e.Bundle = arg
		case hcl.Diagnostics:
			if len(arg) == 0 {
				continue
			}
			diag := arg[0]
			if diag.Subject != nil {
				e.FileRange = *diag.Subject
			}
			if e.Description == "" {
				e.Description = diag.Detail
			}
			if len(arg) > 1 {
				e.Err = arg
			}
		case *hcl.Diagnostic:
			if arg == nil {
				continue
			}
			if arg.Subject != nil {
				e.FileRange = *arg.Subject
			}
			if e.Description == "" {
				e.Description = arg.Detail
			}
		case string:
			if i+1 < len(args) {
				e.Description = fmt.Sprintf(arg, args[i+1:]...)
				break processArgs
			}
			e.Description = arg
		case error:
			e.Err = arg
		case nil:
			// ignore nil errors
		default:
			panic(fmt.Errorf("called with unknown type %T", arg))
		}
	}

	if e.isEmpty() {
		if e.Err == nil {
			panic(errors.New("empty error"))
		}
		if _, ok := e.Err.(*Error); ok {
			return e.Err
		}
		return e
	}

	prev, ok := e.Err.(*Error)
	if !ok {
		return e
	}

	if prev.Kind == e.Kind {
		prev.Kind = ""
	}
	if e.FileRange.Empty() {
		e.FileRange = prev.FileRange
	}
	if prev.FileRange == e.FileRange {
		prev.FileRange = hcl.Range{}
	}
	if e.Bundle == "" {
		e.Bundle = prev.Bundle
	}
	if prev.Bundle == e.Bundle {
		prev.Bundle = ""
	}
	if prev.Description == e.Description {
		prev.Description = ""
	}
	if prev.isEmpty() {
		e.Err = prev.Err
	}
	return e
}

// isEmpty tells if all fields of this error are empty.
// Note that e.Err is the underlying error hence not checked.
func (e *Error) isEmpty() bool {
	return e.Kind == "" && e.Description == "" && e.Bundle == "" && e.FileRange.Empty()
}

// Error returns the error message.
func (e *Error) Error() string {
	var errParts []string
	if !e.FileRange.Empty() {
		errParts = append(errParts, e.FileRange.String())
	}
	if e.Kind != "" {
		errParts = append(errParts, string(e.Kind))
	}
	if e.Description != "" {
		errParts = append(errParts, e.Description)
	}
	if e.Bundle != "" {
		errParts = append(errParts, "bundle "+string(e.Bundle))
	}
	if e.Err != nil {
		errParts = append(errParts, e.Err.Error())
	}
	return strings.Join(errParts, Separator)
}

// Unwrap returns the wrapped error, if there is any.
func (e *Error) Unwrap() error { return e.Err }

// Error implements the error interface for Kind, so it can be used directly
// as an error and as target of errors.Is.
func (k Kind) Error() string { return string(k) }

// Is tells if e matches the target error.
// A Kind target matches if e (or any wrapped error) has the same kind.
// An *Error target matches if every non empty field of the target is
// equal to the same field of e.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Kind:
		return e.Kind == t
	case *Error:
		if t.Kind != "" && e.Kind != t.Kind {
			return false
		}
		if t.Description != "" && e.Description != t.Description {
			return false
		}
		if t.Bundle != "" && e.Bundle != t.Bundle {
			return false
		}
		if !t.FileRange.Empty() && e.FileRange != t.FileRange {
			return false
		}
		return true
	}
	return false
}

// IsKind tells if err is of kind k.
// It returns false if err is nil.
// It also recursively checks if any underlying error is of kind k.
func IsKind(err error, k Kind) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, k)
}

// Is is just an alias to Go stdlib errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is just an alias to Go stdlib errors.As
func As(err error, target any) bool {
	return errors.As(err, target)
}
