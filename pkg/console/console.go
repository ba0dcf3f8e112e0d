// SPDX-License-Identifier: MPL-2.0

package console

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/pmgmt/pmgmt/internal/issue"
)

type (
	// ExitFunc terminates the host process with the given status code.
	ExitFunc func(code int)

	// Option configures a Console.
	Option func(*Console)

	// Console writes diagnostics and terminates the host process on fatal paths.
	Console struct {
		out     io.Writer
		err     io.Writer
		exit    ExitFunc
		logger  *log.Logger
		verbose bool
		styles  styles
	}
)

// WithStreams sets the standard output and diagnostic streams.
func WithStreams(out, errOut io.Writer) Option {
	return func(c *Console) {
		c.out = out
		c.err = errOut
	}
}

// WithExit replaces os.Exit as the termination function.
func WithExit(fn ExitFunc) Option {
	return func(c *Console) {
		c.exit = fn
	}
}

// WithVerbose enables debug logging and full error chains in fatal messages.
func WithVerbose(verbose bool) Option {
	return func(c *Console) {
		c.verbose = verbose
	}
}

// New creates a Console writing to os.Stdout and os.Stderr by default.
func New(opts ...Option) *Console {
	c := &Console{
		out:  os.Stdout,
		err:  os.Stderr,
		exit: os.Exit,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.styles = newStyles(c.err)
	c.logger = log.NewWithOptions(c.err, log.Options{
		Prefix: "pmgmt",
		Level:  log.WarnLevel,
	})
	if c.verbose {
		c.logger.SetLevel(log.DebugLevel)
	}

	return c
}

// Out returns the standard output stream.
func (c *Console) Out() io.Writer { return c.out }

// Err returns the diagnostic stream.
func (c *Console) Err() io.Writer { return c.err }

// Logger returns the structured debug logger, which writes to the diagnostic stream.
func (c *Console) Logger() *log.Logger { return c.logger }

// Verbose reports whether verbose output was requested.
func (c *Console) Verbose() bool { return c.verbose }

// Status prints informational text in the status color.
func (c *Console) Status(text string) {
	fmt.Fprintln(c.err, paint(c.styles.status, text))
}

// Warning prints text in the warning color.
func (c *Console) Warning(text string) {
	fmt.Fprintln(c.err, paint(c.styles.warning, text))
}

// Error prints text in the error color.
func (c *Console) Error(text string) {
	fmt.Fprintln(c.err, paint(c.styles.err, text))
}

// ErrorText returns text rendered in the error color without printing it.
func (c *Console) ErrorText(text string) string {
	return paint(c.styles.err, text)
}

// Bold returns text rendered in bold.
func (c *Console) Bold(text string) string {
	return paint(c.styles.bold, text)
}

// Guide prints the catalog guidance for id, rendered as markdown, on the
// diagnostic stream.
func (c *Console) Guide(id issue.Id) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render(c.styles.guide)
	if err != nil {
		c.logger.Debug("render guidance", "id", id, "err", err)
		return
	}
	fmt.Fprint(c.err, rendered)
}

// Println writes an unstyled line to the diagnostic stream.
func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.err, a...)
}

// Exit terminates through the configured exit function.
func (c *Console) Exit(code int) {
	c.exit(code)
}

// Fatal prints err in the error color and exits with status 1.
// Actionable errors include their suggestions.
func (c *Console) Fatal(err error) {
	c.Error(FormatError(err, c.verbose))
	c.exit(1)
}

// FormatError renders err for display. Actionable errors list their suggestions,
// and in verbose mode the whole error chain.
func FormatError(err error, verbose bool) string {
	if err == nil {
		return ""
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
