/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package multi is an error type that holds multiple errors. These errors
// typically originate from operations that target several peers, for example
// discovering a channel through each configured discovery peer in turn.
package multi

import (
	"strings"
)

// Errors is used to represent multiple errors
type Errors []error

// New Errors object with the given errors. Only non-nil errors are added.
// Returns nil when no error remains and the error itself when only one remains.
func New(errs ...error) error {
	var collected Errors
	for _, err := range errs {
		if err != nil {
			collected = append(collected, err)
		}
	}
	return collected.ToError()
}

// Append adds err to errs. If errs is not an Errors value, one is created.
func Append(errs error, err error) error {
	if err == nil {
		return errs
	}
	m, ok := errs.(Errors)
	if !ok {
		return New(errs, err)
	}
	return append(m, err)
}

// ToError converts Errors to the error interface.
func (errs Errors) ToError() error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errs
	}
}

// Error implements the error interface
func (errs Errors) Error() string {
	switch len(errs) {
	case 0:
		return ""
	case 1:
		return errs[0].Error()
	}

	msgs := make([]string, 0, len(errs)+1)
	msgs = append(msgs, "Multiple errors occurred:")
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, " - ")
}

// Unwrap returns the contained errors so that errors.Is and errors.As
// can match any of them.
func (errs Errors) Unwrap() []error {
	return errs
}
