// SPDX-License-Identifier: MPL-2.0

//go:build unix

package process

import (
	"os"
	"syscall"
)

func signalOf(ps *os.ProcessState) os.Signal {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ws.Signal()
	}
	return nil
}
