// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import "fmt"

// ConfigurationError reports an experiment that cannot be run: an unknown
// controller id or a malformed rate or duration.
type ConfigurationError struct {
	ID     string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error (controller %q): %s", e.ID, e.Reason)
}
