// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against an embedded schema.
//
// Decoding compiles the schema, unifies the user document with one of the
// schema's definitions, validates the result and decodes it into a Go value.
// Validation failures are reported with the file name and a JSON-style path
// such as "commands[1].flags[0].type".
package cueutil
