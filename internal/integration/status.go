// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package integration activates optional instrumentation modules.
//
// Each integration targets one host library. A Loader walks an ordered
// Registry of integrations, dispatches the ones that are enabled and not yet
// settled, and records the Status each one reports. Statuses only move
// forward within a Loader's lifetime: Loaded and NotAvailable are never
// re-attempted, NotLoaded is retried on the next pass.
package integration

import "fmt"

// Status is the activation status of an integration.
type Status int

// Activation statuses. NotLoaded is the zero value and the status of any
// integration the loader has no record of.
const (
	NotLoaded Status = iota
	Loaded
	NotAvailable
)

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	return s >= NotLoaded && s <= NotAvailable
}

// Settled reports whether s stops further activation attempts.
func (s Status) Settled() bool {
	return s == Loaded || s == NotAvailable
}

func (s Status) String() string {
	switch s {
	case NotLoaded:
		return "not_loaded"
	case Loaded:
		return "loaded"
	case NotAvailable:
		return "not_available"
	default:
		return fmt.Sprintf("invalid(%d)", int(s))
	}
}

// MarshalText renders the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
