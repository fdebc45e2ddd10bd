// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package integration

import "slices"

// Config gates activation. Both methods are queried on every pass.
type Config interface {
	TracingEnabled() bool
	IntegrationEnabled(name string) bool
}

// Probe reports whether the host interception mechanism is available.
type Probe interface {
	Available() bool
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func() bool

// Available calls f.
func (f ProbeFunc) Available() bool {
	return f()
}

// StaticConfig is an in-memory Config. Its fields may be changed between
// passes; the loader sees the change on its next pass.
type StaticConfig struct {
	TracingDisabled bool
	Disabled        []string
}

// TracingEnabled implements Config.
func (c *StaticConfig) TracingEnabled() bool {
	return !c.TracingDisabled
}

// IntegrationEnabled implements Config.
func (c *StaticConfig) IntegrationEnabled(name string) bool {
	return !slices.Contains(c.Disabled, name)
}
