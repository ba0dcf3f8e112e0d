// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package process

import "os"

func signalOf(*os.ProcessState) os.Signal {
	return nil
}
