// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/pmgmt/pmgmt/cmd/pmgmt"

func main() {
	cmd.Execute()
}
