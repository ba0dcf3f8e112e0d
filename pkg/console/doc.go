// SPDX-License-Identifier: MPL-2.0

// Package console owns the diagnostic stream shared by the dispatcher, the
// options parser and the process runner.
//
// Human-facing output (status, warnings, errors, command echoes, help text)
// goes to the error stream so that standard output stays reserved for
// machine-consumable data: completion candidates and captured command output.
// Status text is cyan, warnings are yellow, errors are red, and command
// echoes are written unstyled.
//
// Fatal paths terminate through Console.Exit, which defaults to os.Exit and
// can be replaced with WithExit so tests can observe the exit code.
package console
