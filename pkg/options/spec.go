// SPDX-License-Identifier: MPL-2.0

package options

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSpec is returned for a flag spec that does not follow the grammar.
var ErrInvalidSpec = errors.New("invalid option spec")

type (
	// valueKind is how a flag consumes its value.
	valueKind int

	// flagSpec is a parsed option declaration such as "-v, --verbose",
	// "--name=VALUE" or "--level=[LEVEL]".
	flagSpec struct {
		long        string
		short       string
		kind        valueKind
		placeholder string
	}
)

const (
	switchValue valueKind = iota
	requiredValue
	optionalValue
)

// parseSpec accepts "[-s, ]--name", "[-s, ]--name=VALUE", "[-s, ]--name VALUE"
// and "[-s, ]--name=[VALUE]".
func parseSpec(spec string) (flagSpec, error) {
	var fs flagSpec
	rest := strings.TrimSpace(spec)

	if strings.HasPrefix(rest, "-") && !strings.HasPrefix(rest, "--") {
		short, after, ok := strings.Cut(rest, ",")
		if !ok {
			return fs, fmt.Errorf("%w %q: short form must be followed by \", --name\"", ErrInvalidSpec, spec)
		}
		fs.short = strings.TrimPrefix(strings.TrimSpace(short), "-")
		if len(fs.short) != 1 {
			return fs, fmt.Errorf("%w %q: short form must be a single character", ErrInvalidSpec, spec)
		}
		rest = strings.TrimSpace(after)
	}

	if !strings.HasPrefix(rest, "--") {
		return fs, fmt.Errorf("%w %q: missing --name", ErrInvalidSpec, spec)
	}
	rest = strings.TrimPrefix(rest, "--")

	name, value, hasValue := strings.Cut(rest, "=")
	if !hasValue {
		name, value, hasValue = strings.Cut(rest, " ")
		value = strings.TrimSpace(value)
	}
	fs.long = name
	if fs.long == "" || strings.ContainsAny(fs.long, " =[]") {
		return fs, fmt.Errorf("%w %q: bad flag name", ErrInvalidSpec, spec)
	}

	switch {
	case !hasValue:
		fs.kind = switchValue
	case strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]"):
		fs.kind = optionalValue
		fs.placeholder = value[1 : len(value)-1]
	default:
		fs.kind = requiredValue
		fs.placeholder = value
	}
	if fs.kind != switchValue && fs.placeholder == "" {
		return fs, fmt.Errorf("%w %q: empty value placeholder", ErrInvalidSpec, spec)
	}
	return fs, nil
}
