// SPDX-License-Identifier: MPL-2.0

package selfupgrade

import (
	"github.com/pmgmt/pmgmt/pkg/command"
	"github.com/pmgmt/pmgmt/pkg/process"
)

const (
	// Invocation is the command name.
	Invocation = "upgrade-self"
	// Description is shown in the command list.
	Description = "Upgrades this project tool to the latest version."

	upgradedMessage = "Tools upgraded to latest version."
)

// Plugin registers upgrade-self for the tool checked out in Dir.
type Plugin struct {
	Runner *process.Runner
	// Dir is the git working tree of the tool.
	Dir string
}

// Register adds the command flagged as self-upgrade infrastructure.
func (p Plugin) Register(r *command.Registry) error {
	return r.Register(command.Spec{
		Invocation:  Invocation,
		Description: Description,
		Handler:     command.NoArgsHandler(p.upgrade),
		SelfUpgrade: true,
	})
}

func (p Plugin) upgrade() {
	p.Runner.RunInline(process.Args("git", "pull").WithDir(p.Dir), "")
	p.Runner.Console().Status(upgradedMessage)
}
