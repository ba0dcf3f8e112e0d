// SPDX-License-Identifier: MPL-2.0

package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"unicode/utf8"

	"github.com/pmgmt/pmgmt/pkg/console"
)

const abnormalExitMessage = "Command exited abnormally."

type (
	// Option configures a Runner.
	Option func(*Runner)

	// CaptureOption configures CaptureStdout.
	CaptureOption func(*captureOptions)

	captureOptions struct {
		suppressStderr bool
	}

	// Runner executes commands, echoing them to the console's diagnostic
	// stream and terminating the host through the console on failure.
	Runner struct {
		console *console.Console
		shell   string
		stdin   io.Reader
	}
)

// WithShell sets the shell used for shell-string commands.
func WithShell(path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.shell = path
		}
	}
}

// WithStdin sets the input attached to inline and piped commands.
func WithStdin(in io.Reader) Option {
	return func(r *Runner) {
		r.stdin = in
	}
}

// SuppressStderr discards the child's standard error instead of inheriting it.
func SuppressStderr() CaptureOption {
	return func(o *captureOptions) {
		o.suppressStderr = true
	}
}

// New creates a Runner that reports through c.
func New(c *console.Console, opts ...Option) *Runner {
	r := &Runner{
		console: c,
		shell:   DefaultShell,
		stdin:   os.Stdin,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Console returns the console the runner reports through.
func (r *Runner) Console() *console.Console { return r.console }

// Echo writes "+ <cmd>" to the diagnostic stream. The first occurrence of
// redact is masked with asterisks; the command itself is not changed.
func (r *Runner) Echo(cmd Command, redact string) {
	r.console.Println(echoLine(cmd.String(), redact))
}

func echoLine(command, redact string) string {
	line := "+ " + command
	if redact == "" {
		return line
	}
	return strings.Replace(line, redact, strings.Repeat("*", utf8.RuneCountInString(redact)), 1)
}

// Run executes cmd without echoing and returns its terminal status. Input is
// closed and output discarded. The error is non-nil only when the command
// could not be started.
func (r *Runner) Run(ctx context.Context, cmd Command) (Status, error) {
	c, err := cmd.build(r.shell)
	if err != nil {
		return Status{}, err
	}
	r.trace("run", cmd)
	return r.wait(ctx, c)
}

// CaptureStdout runs cmd and returns its standard output. Standard error is
// inherited unless SuppressStderr is given. The output is returned even when
// the child fails, together with a *StatusError.
func (r *Runner) CaptureStdout(ctx context.Context, cmd Command, opts ...CaptureOption) (string, error) {
	var o captureOptions
	for _, opt := range opts {
		opt(&o)
	}

	c, err := cmd.build(r.shell)
	if err != nil {
		return "", err
	}
	var stdout bytes.Buffer
	c.Stdout = &stdout
	if !o.suppressStderr {
		c.Stderr = r.console.Err()
	}

	r.trace("capture", cmd)
	status, err := r.wait(ctx, c)
	if err != nil {
		return "", err
	}
	if !status.Success() {
		return stdout.String(), &StatusError{Command: cmd.String(), Status: status}
	}
	return stdout.String(), nil
}

// RunInline echoes cmd and runs it attached to the terminal. If the child
// exits non-zero the host exits with the same code; if it terminates
// abnormally the host reports it and exits 1.
func (r *Runner) RunInline(cmd Command, redact string) {
	r.Echo(cmd, redact)
	status, err := r.runAttached(cmd)
	r.exitUnlessSuccess(status, err)
}

// RunInlineSwallowingInterrupt is RunInline for interactive children that the
// user ends with the interrupt key. An interrupt received while the child runs
// is caught, and the child's outcome is then not propagated.
func (r *Runner) RunInlineSwallowingInterrupt(cmd Command) {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	r.Echo(cmd, "")
	status, err := r.runAttached(cmd)

	select {
	case <-interrupts:
		r.console.Logger().Debug("interrupt swallowed", "command", cmd.String(), "status", status)
		return
	default:
	}
	// The child may reap before the signal reaches the channel.
	if status.Signal == os.Interrupt {
		return
	}
	r.exitUnlessSuccess(status, err)
}

// RunOrFail echoes cmd and runs it with output hidden. On failure the captured
// standard error is written to the diagnostic stream and the host exits with
// the child's code.
func (r *Runner) RunOrFail(cmd Command, redact string) {
	r.Echo(cmd, redact)

	c, err := cmd.build(r.shell)
	if err != nil {
		r.console.Fatal(err)
		return
	}
	var stderr bytes.Buffer
	c.Stderr = &stderr

	r.trace("run-or-fail", cmd)
	status, err := r.wait(context.Background(), c)
	if err != nil {
		r.console.Fatal(err)
		return
	}
	if status.Success() {
		return
	}

	fmt.Fprint(r.console.Err(), r.console.ErrorText(stderr.String()))
	r.exitUnlessSuccess(status, nil)
}

func (r *Runner) runAttached(cmd Command) (Status, error) {
	c, err := cmd.build(r.shell)
	if err != nil {
		return Status{}, err
	}
	c.Stdin = r.stdin
	c.Stdout = r.console.Out()
	c.Stderr = r.console.Err()

	r.trace("inline", cmd)
	return r.wait(context.Background(), c)
}

func (r *Runner) exitUnlessSuccess(status Status, err error) {
	switch {
	case err != nil:
		r.console.Fatal(err)
	case !status.Exited:
		r.console.Error(abnormalExitMessage)
		r.console.Exit(1)
	case status.Code != 0:
		r.console.Exit(status.Code)
	}
}

func (r *Runner) trace(mode string, cmd Command) {
	r.console.Logger().Debug("spawn", "mode", mode, "command", cmd.String())
}
