// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing errors that name the failed operation
// and suggest how to fix it.
//
// The catalog (Get, Values) holds longer markdown guidance for common setup
// problems, rendered with glamour next to the error.
package issue
