// SPDX-License-Identifier: MPL-2.0

package options

import "errors"

var errSwitchValue = errors.New("flag only accepts true or false")

// callbackValue is a pflag.Value that forwards every occurrence of a flag to
// an assign callback instead of storing it.
type callbackValue struct {
	spec  flagSpec
	set   func(raw string, omitted bool) error
	value string
}

func (v *callbackValue) String() string { return v.value }

func (v *callbackValue) Set(raw string) error {
	omitted := false
	switch v.spec.kind {
	case switchValue:
		if raw != "true" && raw != "false" {
			return errSwitchValue
		}
	case optionalValue:
		omitted = raw == v.noOptDefVal()
		if omitted {
			raw = ""
		}
	}
	if err := v.set(raw, omitted); err != nil {
		return err
	}
	v.value = raw
	return nil
}

// Type is the value placeholder shown in help.
func (v *callbackValue) Type() string {
	switch v.spec.kind {
	case switchValue:
		return "bool"
	case optionalValue:
		return ""
	default:
		return v.spec.placeholder
	}
}

// noOptDefVal is what pflag passes to Set when the flag is given without a value.
func (v *callbackValue) noOptDefVal() string {
	switch v.spec.kind {
	case switchValue:
		return "true"
	case optionalValue:
		return "<" + v.spec.placeholder + ">"
	default:
		return ""
	}
}
