// SPDX-License-Identifier: MPL-2.0

package options

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/pmgmt/pmgmt/pkg/console"
)

type (
	// Validator checks the parsed options as a whole.
	Validator[T any] func(*T) error

	// Option configures a Parser.
	Option func(*settings)

	settings struct {
		console *console.Console
		program string
	}

	// Parser parses one command's flags into a T.
	Parser[T any] struct {
		label      string
		args       []string
		program    string
		console    *console.Console
		flags      *pflag.FlagSet
		opts       T
		validators []Validator[T]
		remaining  []string
		// specErr holds the first bad declaration; it is reported by Parse.
		specErr error
	}
)

// WithConsole sets the console used for help and errors.
func WithConsole(c *console.Console) Option {
	return func(s *settings) {
		s.console = c
	}
}

// WithProgram overrides the program name shown in the usage banner.
func WithProgram(name string) Option {
	return func(s *settings) {
		s.program = name
	}
}

// New creates a parser for the command invoked as label with the given
// arguments (without the command name).
func New[T any](label string, args []string, opts ...Option) *Parser[T] {
	s := settings{program: filepath.Base(os.Args[0])}
	for _, opt := range opts {
		opt(&s)
	}
	if s.console == nil {
		s.console = console.New()
	}

	flags := pflag.NewFlagSet(label, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.SortFlags = false
	flags.Usage = func() {}

	return &Parser[T]{
		label:   label,
		args:    args,
		program: s.program,
		console: s.console,
		flags:   flags,
	}
}

// AddOption declares a flag. A switch ("-v, --verbose") passes "true" to
// assign; "--name=VALUE" passes the value; "--name=[VALUE]" passes the value
// or "" when given bare.
func (p *Parser[T]) AddOption(spec string, assign func(*T, string) error, help string) *Parser[T] {
	return p.add(spec, help, func(raw string, _ bool) error {
		return assign(&p.opts, raw)
	})
}

// AddTypedOption declares a flag whose token is coerced to V before assign is
// called. A bare optional-value flag assigns the zero V.
func AddTypedOption[T, V any](p *Parser[T], spec string, coerce Coercer[V], assign func(*T, V) error, help string) *Parser[T] {
	return p.add(spec, help, func(raw string, omitted bool) error {
		var v V
		if !omitted {
			var err error
			if v, err = coerce(raw); err != nil {
				return err
			}
		}
		return assign(&p.opts, v)
	})
}

// AddValidator appends fn to the validators run by Validate.
func (p *Parser[T]) AddValidator(fn Validator[T]) *Parser[T] {
	p.validators = append(p.validators, fn)
	return p
}

func (p *Parser[T]) add(spec, help string, set func(raw string, omitted bool) error) *Parser[T] {
	fs, err := parseSpec(spec)
	if err != nil {
		if p.specErr == nil {
			p.specErr = err
		}
		return p
	}
	if p.flags.Lookup(fs.long) != nil || (fs.short != "" && p.flags.ShorthandLookup(fs.short) != nil) {
		if p.specErr == nil {
			p.specErr = fmt.Errorf("%w %q: flag already declared", ErrInvalidSpec, spec)
		}
		return p
	}

	value := &callbackValue{spec: fs, set: set}
	flag := p.flags.VarPF(value, fs.long, fs.short, help)
	flag.NoOptDefVal = value.noOptDefVal()
	return p
}

// Parse parses the arguments. On an unknown or malformed flag, or a rejected
// value, it prints the error and help and exits 1. -h/--help prints help and
// exits 0.
func (p *Parser[T]) Parse() *Parser[T] {
	if err := p.TryParse(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(p.console.Err(), p.Help())
			p.console.Exit(0)
			return p
		}
		p.fail(err)
	}
	return p
}

// TryParse is Parse without the exit: it returns the error instead.
func (p *Parser[T]) TryParse() error {
	if p.specErr != nil {
		return p.specErr
	}
	if err := p.flags.Parse(p.args); err != nil {
		return err
	}
	p.remaining = p.flags.Args()
	return nil
}

// Validate runs the validators in registration order. The first failure
// prints the error and help and exits 1.
func (p *Parser[T]) Validate() *Parser[T] {
	if err := p.TryValidate(); err != nil {
		p.fail(err)
	}
	return p
}

// TryValidate is Validate without the exit.
func (p *Parser[T]) TryValidate() error {
	for _, fn := range p.validators {
		if err := fn(&p.opts); err != nil {
			return err
		}
	}
	return nil
}

// Options returns the record the assign callbacks wrote to.
func (p *Parser[T]) Options() *T { return &p.opts }

// Remaining returns the positional arguments left after Parse.
func (p *Parser[T]) Remaining() []string { return p.remaining }

// Help returns the usage banner followed by one line per flag.
func (p *Parser[T]) Help() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s %s [options]\n", p.program, p.label)
	if usages := p.flags.FlagUsages(); usages != "" {
		b.WriteString(usages)
	}
	return b.String()
}

func (p *Parser[T]) fail(err error) {
	w := p.console.Err()
	fmt.Fprintln(w, err)
	fmt.Fprintln(w)
	fmt.Fprint(w, p.Help())
	p.console.Exit(1)
}
