// SPDX-License-Identifier: MPL-2.0

package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// DefaultShell interprets shell-string commands that need a shell.
const DefaultShell = "/bin/sh"

// scriptName is passed as $0 to shell scripts so $1.. are the positional params.
const scriptName = "pmgmt"

var (
	// ErrEmptyCommand is returned for a command with no tokens or an empty script.
	ErrEmptyCommand = errors.New("empty command")
	// ErrShellSyntax is returned when a shell string cannot be parsed.
	ErrShellSyntax = errors.New("invalid shell syntax")
)

// Command is an external command: either argv tokens or a shell string.
type Command struct {
	shell  bool
	argv   []string
	script string
	params []string
	dir    string
	env    []string
}

// Args creates a command from argv tokens. No shell is involved.
func Args(argv ...string) Command {
	return Command{argv: argv}
}

// Shell creates a command from a single shell string. params become the
// script's positional parameters $1, $2, ...
func Shell(script string, params ...string) Command {
	return Command{shell: true, script: script, params: params}
}

// WithDir returns a copy of c that runs in dir.
func (c Command) WithDir(dir string) Command {
	c.dir = dir
	return c
}

// WithEnv returns a copy of c with extra KEY=VALUE entries added on top of the
// host environment.
func (c Command) WithEnv(kv ...string) Command {
	c.env = append(append([]string(nil), c.env...), kv...)
	return c
}

// IsShell reports whether c was created from a shell string.
func (c Command) IsShell() bool {
	return c.shell
}

// String returns the command as echoed: tokens joined by spaces, or the shell
// string followed by its positional parameters.
func (c Command) String() string {
	if !c.IsShell() {
		return strings.Join(c.argv, " ")
	}
	if len(c.params) == 0 {
		return c.script
	}
	return c.script + " " + strings.Join(c.params, " ")
}

// build resolves c into an exec.Cmd without attaching any streams.
func (c Command) build(shell string) (*exec.Cmd, error) {
	argv, err := c.resolve(shell)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // running user-provided commands is the purpose of this package
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = c.dir
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}
	return cmd, nil
}

func (c Command) resolve(shell string) ([]string, error) {
	if !c.IsShell() {
		if len(c.argv) == 0 || c.argv[0] == "" {
			return nil, ErrEmptyCommand
		}
		return c.argv, nil
	}

	direct, err := literalCommand(c.script)
	if err != nil {
		return nil, err
	}
	if direct != nil && len(c.params) == 0 && onPath(direct[0]) {
		return direct, nil
	}

	argv := []string{shell, "-c", c.script, scriptName}
	return append(argv, c.params...), nil
}

// onPath reports whether name is an executable rather than a shell builtin
// such as exit or cd.
func onPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// literalCommand parses script and returns its argv when it is exactly one
// simple command made of plain literal words. It returns nil when a shell is
// needed to run the script.
func literalCommand(script string) ([]string, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(script), "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShellSyntax, err)
	}
	if len(file.Stmts) == 0 {
		return nil, ErrEmptyCommand
	}
	if len(file.Stmts) > 1 {
		return nil, nil
	}

	stmt := file.Stmts[0]
	if stmt.Negated || stmt.Background || stmt.Coprocess || len(stmt.Redirs) > 0 {
		return nil, nil
	}
	call, ok := stmt.Cmd.(*syntax.CallExpr)
	if !ok || len(call.Assigns) > 0 || len(call.Args) == 0 {
		return nil, nil
	}

	argv := make([]string, 0, len(call.Args))
	for _, word := range call.Args {
		lit := word.Lit()
		// Escapes, globs and tilde need the shell.
		if lit == "" || strings.ContainsAny(lit, `\*?[~`) {
			return nil, nil
		}
		argv = append(argv, lit)
	}
	return argv, nil
}
