// SPDX-License-Identifier: MPL-2.0

package testutil

import "testing"

// Exited is the panic value raised by Exit.
type Exited struct {
	Code int
}

// Exit stands in for os.Exit: it unwinds the calling goroutine with an Exited
// panic that CatchExit turns back into a status code.
func Exit(code int) {
	panic(Exited{Code: code})
}

// CatchExit runs fn and reports the code passed to Exit. exited is false when
// fn returned normally. Panics other than Exited are re-raised.
func CatchExit(t testing.TB, fn func()) (code int, exited bool) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(Exited)
			if !ok {
				panic(r)
			}
			code, exited = e.Code, true
		}
	}()
	fn()
	return 0, false
}
