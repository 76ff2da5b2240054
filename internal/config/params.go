// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import "fmt"

// Params is the opaque key-value configuration subtree handed to a device or
// controller. Getters return the default when the key is absent and an error
// when the value has the wrong type.
type Params map[string]any

// Float returns key as a float64. Integer values are accepted.
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return def, fmt.Errorf("param %q: expected a number, got %T", key, v)
	}
}

// Int returns key as an int. Floats with a fractional part are rejected.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return def, fmt.Errorf("param %q: expected an integer, got %v", key, n)
		}
		return int(n), nil
	default:
		return def, fmt.Errorf("param %q: expected an integer, got %T", key, v)
	}
}

// Bool returns key as a bool.
func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return def, fmt.Errorf("param %q: expected a bool, got %T", key, v)
	}
	return b, nil
}

// String returns key as a string.
func (p Params) String(key string, def string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return def, fmt.Errorf("param %q: expected a string, got %T", key, v)
	}
	return s, nil
}
