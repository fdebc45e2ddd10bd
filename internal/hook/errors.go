// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package hook

import "github.com/samber/oops"

// Error codes for hook table operations.
const (
	CodeUnknownEntryPoint = "UNKNOWN_ENTRY_POINT"
	CodeEntryPointExists  = "ENTRY_POINT_EXISTS"
	CodeNilEntryPoint     = "NIL_ENTRY_POINT"
)

// ErrUnknownEntryPoint creates an error for a call to an undeclared entry point.
func ErrUnknownEntryPoint(name string) error {
	return oops.Code(CodeUnknownEntryPoint).
		With("entry_point", name).
		Errorf("unknown entry point: %s", name)
}

// ErrEntryPointExists creates an error for a second declaration of an entry point.
func ErrEntryPointExists(name string) error {
	return oops.Code(CodeEntryPointExists).
		With("entry_point", name).
		Errorf("entry point already declared: %s", name)
}

// ErrNilEntryPoint creates an error for declaring a nil entry point.
func ErrNilEntryPoint(name string) error {
	return oops.Code(CodeNilEntryPoint).
		With("entry_point", name).
		Errorf("entry point %s has no implementation", name)
}
