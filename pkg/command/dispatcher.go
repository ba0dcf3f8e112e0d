// SPDX-License-Identifier: MPL-2.0

package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// HelpFlag prints the command list.
	HelpFlag = "--help"
	// CompletionFlag answers a shell completion query:
	// --cmplt <index> <program> <words...>
	CompletionFlag = "--cmplt"

	noDescription = "[No description provided.]"
)

type (
	// DispatcherOption configures a Dispatcher.
	DispatcherOption func(*Dispatcher)

	// Dispatcher routes an argument vector to a registered command.
	Dispatcher struct {
		registry *Registry
		program  string
	}
)

// WithProgram sets the program name shown in usage.
func WithProgram(name string) DispatcherOption {
	return func(d *Dispatcher) {
		d.program = name
	}
}

// NewDispatcher creates a dispatcher over r.
func NewDispatcher(r *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: r,
		program:  filepath.Base(os.Args[0]),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// HandleOrDie dispatches args and exits with the resulting code.
func (d *Dispatcher) HandleOrDie(args []string) {
	d.registry.console.Exit(d.Handle(args))
}

// Handle dispatches args and returns the exit code the host should use.
// Handlers that fail terminate the host themselves.
func (d *Dispatcher) Handle(args []string) int {
	if len(args) == 0 || args[0] == HelpFlag {
		d.printUsage()
		return 0
	}
	if args[0] == CompletionFlag {
		d.complete(args[1:])
		return 0
	}

	name := args[0]
	cmd, ok := d.registry.Lookup(name)
	if !ok {
		d.registry.console.Error(name + " command not found.")
		return 1
	}

	d.registry.console.Logger().Debug("dispatch", "command", name, "by_name", cmd.ByName, "args", args[1:])
	if cmd.ByName {
		cmd.Handler.invoke(args)
	} else {
		cmd.Handler.invoke(args[1:])
	}
	return 0
}

func (d *Dispatcher) printUsage() {
	c := d.registry.console
	var b strings.Builder
	fmt.Fprintf(&b, "\nUsage: %s <command> <options>\n\n", d.program)

	commands := d.registry.Commands()
	if len(commands) == 0 {
		b.WriteString(" >> No commands defined.\n\n")
		fmt.Fprint(c.Err(), b.String())
		return
	}

	b.WriteString("COMMANDS\n\n")
	for _, cmd := range commands {
		desc := cmd.Description
		if desc == "" {
			desc = noDescription
		}
		fmt.Fprintf(&b, "%s\n%s\n\n", c.Bold(cmd.Invocation), desc)
	}
	fmt.Fprint(c.Err(), b.String())
}

// complete prints the invocations prefixed by the word under the cursor.
// args is <index> <program> <words...>, and the word is args[1+index]. A
// malformed query prints nothing.
func (d *Dispatcher) complete(args []string) {
	if len(args) == 0 {
		return
	}
	index, err := strconv.Atoi(args[0])
	if err != nil || index < 0 || 1+index >= len(args) {
		return
	}
	word := args[1+index]

	var matches []string
	for _, cmd := range d.registry.commands {
		if strings.HasPrefix(cmd.Invocation, word) {
			matches = append(matches, cmd.Invocation)
		}
	}
	if len(matches) > 0 {
		fmt.Fprintln(d.registry.console.Out(), strings.Join(matches, "\n"))
	}
}
