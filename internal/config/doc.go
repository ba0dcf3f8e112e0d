// SPDX-License-Identifier: MPL-2.0

// Package config loads the runtime settings of the pmgmt host and the
// project configuration exposed to commands.
//
// Settings come from PMGMT_* environment variables layered over an optional
// settings file in the working directory (.pmgmt.cue, validated against an
// embedded schema, or .pmgmt.yaml). The project configuration is the
// project.yaml file read by commands that need project values.
package config
