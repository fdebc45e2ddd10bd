// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package hook

var defaultTable = NewTable()

// Default returns the process-wide hook table.
func Default() *Table {
	return defaultTable
}

// SetDefault replaces the process-wide hook table and returns a function that
// restores the previous one. Intended for tests and for hosts that build their
// own table before starting the agent.
func SetDefault(t *Table) (restore func()) {
	prev := defaultTable
	defaultTable = t
	return func() { defaultTable = prev }
}
