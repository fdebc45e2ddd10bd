// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

// Error codes for configuration loading.
const (
	CodeConfigRead    = "CONFIG_READ"
	CodeConfigInvalid = "CONFIG_INVALID"
)
