// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package kernel

import "github.com/samber/oops"

// CodeBadArguments marks an entry point called with unexpected arguments.
const CodeBadArguments = "KERNEL_BAD_ARGUMENTS"

// ErrBadArguments creates an error for an entry point called with the wrong arguments.
func ErrBadArguments(entry string) error {
	return oops.Code(CodeBadArguments).
		With("entry_point", entry).
		Errorf("unexpected arguments for %s", entry)
}
