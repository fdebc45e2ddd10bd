// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package integration

import "github.com/samber/oops"

// Error codes for integration registration and activation.
const (
	CodeInvalidDescriptor    = "INVALID_INTEGRATION"
	CodeDuplicateIntegration = "DUPLICATE_INTEGRATION"
	CodeInvalidStatus        = "INVALID_STATUS"
	CodeActivationPanic      = "ACTIVATION_PANIC"
)

// ErrInvalidDescriptor creates an error for a descriptor that cannot be dispatched.
func ErrInvalidDescriptor(name, reason string) error {
	return oops.Code(CodeInvalidDescriptor).
		With("integration", name).
		Errorf("invalid integration %q: %s", name, reason)
}

// ErrDuplicateIntegration creates an error for a name registered twice.
func ErrDuplicateIntegration(name string) error {
	return oops.Code(CodeDuplicateIntegration).
		With("integration", name).
		Errorf("integration already registered: %s", name)
}

// ErrInvalidStatus creates an error for an activation result outside the
// defined statuses.
func ErrInvalidStatus(name string, status Status) error {
	return oops.Code(CodeInvalidStatus).
		With("integration", name).
		With("value", int(status)).
		Errorf("invalid status returned by integration %s: %d", name, int(status))
}

// ErrActivationPanic creates an error for an activation that panicked.
func ErrActivationPanic(name string, recovered any) error {
	return oops.Code(CodeActivationPanic).
		With("integration", name).
		With("panic", recovered).
		Errorf("integration %s panicked during activation", name)
}
