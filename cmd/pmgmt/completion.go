// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/pmgmt/pmgmt/pkg/command"
	"github.com/pmgmt/pmgmt/pkg/options"
)

const (
	completionInvocation  = "completion"
	completionDescription = "Prints a shell completion script. Add eval \"$(PROG completion)\" to ~/.bashrc, or use --shell zsh."

	bashCompletion = `_PROG_complete() {
	local IFS=$'\n'
	COMPREPLY=($(PROG ` + command.CompletionFlag + ` "$COMP_CWORD" "${COMP_WORDS[@]}"))
}
complete -o default -F _PROG_complete PROG
`

	zshCompletion = `#compdef PROG
_PROG_complete() {
	local -a commands
	commands=("${(@f)$(PROG ` + command.CompletionFlag + ` $((CURRENT - 1)) "${words[@]}")}")
	compadd -a commands
}
compdef _PROG_complete PROG
`
)

type (
	completionPlugin struct {
		program string
	}

	completionOptions struct {
		shell string
	}
)

// Register adds the completion command.
func (p completionPlugin) Register(r *command.Registry) error {
	return r.Register(command.Spec{
		Invocation:  completionInvocation,
		Description: strings.ReplaceAll(completionDescription, "PROG", p.program),
		Handler: command.ArgsHandler(func(args []string) {
			p.print(r, args)
		}),
	})
}

func (p completionPlugin) print(r *command.Registry, args []string) {
	c := r.Console()
	parser := options.New[completionOptions](completionInvocation, args,
		options.WithConsole(c),
		options.WithProgram(p.program),
	)
	options.AddTypedOption(parser, "-s, --shell=SHELL", options.OneOf("bash", "zsh"),
		func(o *completionOptions, shell string) error {
			o.shell = shell
			return nil
		}, "bash (default) or zsh")
	parser.Parse()

	script := bashCompletion
	if parser.Options().shell == "zsh" {
		script = zshCompletion
	}
	fmt.Fprint(c.Out(), strings.ReplaceAll(script, "PROG", p.program))
}
