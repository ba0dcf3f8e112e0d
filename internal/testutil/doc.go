// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by tests: environment and working
// directory changes that restore themselves, fixture files, and an exit
// function that can be observed instead of terminating the test binary.
package testutil
