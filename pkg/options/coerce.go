// SPDX-License-Identifier: MPL-2.0

package options

import (
	"fmt"
	"strconv"
	"time"
)

// Coercer converts a raw flag token into a typed value.
type Coercer[V any] func(raw string) (V, error)

// String passes the token through unchanged.
func String(raw string) (string, error) { return raw, nil }

// Int parses a base-10 integer.
func Int(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return n, nil
}

// Float parses a floating-point number.
func Float(raw string) (float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return f, nil
}

// Bool parses true/false in the forms strconv accepts.
func Bool(raw string) (bool, error) {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
	return b, nil
}

// Duration parses a Go duration such as "90s" or "1h30m".
func Duration(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	return d, nil
}

// OneOf restricts a string option to the given choices.
func OneOf(choices ...string) Coercer[string] {
	return func(raw string) (string, error) {
		for _, c := range choices {
			if raw == c {
				return raw, nil
			}
		}
		return "", fmt.Errorf("invalid value %q (expected one of %v)", raw, choices)
	}
}
