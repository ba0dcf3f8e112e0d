// SPDX-License-Identifier: MPL-2.0

package cmdfile

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

var (
	// ErrInvalidDefinition is wrapped by every semantic validation failure.
	ErrInvalidDefinition = errors.New("invalid command definition")
	// ErrShellSyntax is wrapped when a script does not parse as POSIX shell.
	ErrShellSyntax = errors.New("invalid shell syntax")
)

// DefinitionError locates a validation failure inside a file.
type DefinitionError struct {
	File  string
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.File, e.Path, e.Cause)
}

// Unwrap returns the cause.
func (e *DefinitionError) Unwrap() error { return e.Cause }

func (f *File) validate() error {
	for i := range f.Commands {
		if err := f.Commands[i].validate(); err != nil {
			var derr *DefinitionError
			if errors.As(err, &derr) {
				derr.File = f.Path
				derr.Path = fmt.Sprintf("commands[%d]%s", i, derr.Path)
				return derr
			}
			return &DefinitionError{File: f.Path, Path: fmt.Sprintf("commands[%d]", i), Cause: err}
		}
	}
	return nil
}

func (d *Definition) validate() error {
	sources := 0
	for _, set := range []bool{d.Script != "", len(d.Argv) > 0, len(d.Pipe) > 0} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("%w: exactly one of script, argv or pipe is required", ErrInvalidDefinition)
	}

	if d.Script != "" {
		if err := checkShell(d.Script); err != nil {
			return &DefinitionError{Path: ".script", Cause: err}
		}
	}
	for i, stage := range d.Pipe {
		if err := checkShell(stage); err != nil {
			return &DefinitionError{Path: fmt.Sprintf(".pipe[%d]", i), Cause: err}
		}
	}
	if len(d.Pipe) > 0 && d.Mode != ModeInline {
		return &DefinitionError{Path: ".mode", Cause: fmt.Errorf("%w: pipe commands only run inline", ErrInvalidDefinition)}
	}
	if d.Container != nil && len(d.Pipe) > 0 {
		return &DefinitionError{Path: ".container", Cause: fmt.Errorf("%w: pipe commands cannot run in a container", ErrInvalidDefinition)}
	}
	if d.Container != nil && d.Mode == ModeFail {
		return &DefinitionError{Path: ".mode", Cause: fmt.Errorf("%w: container commands run inline or interactive", ErrInvalidDefinition)}
	}
	if d.Container != nil && d.Dir != "" {
		return &DefinitionError{Path: ".dir", Cause: fmt.Errorf("%w: use container.workdir inside a container", ErrInvalidDefinition)}
	}
	if d.Container != nil {
		if err := d.Container.validate(); err != nil {
			return err
		}
		if d.Container.Name != "" && d.Redact != "" {
			return &DefinitionError{Path: ".redact", Cause: fmt.Errorf("%w: redact is not supported in a named container", ErrInvalidDefinition)}
		}
	}
	if d.Mode == ModeInteractive && d.Redact != "" {
		return &DefinitionError{Path: ".redact", Cause: fmt.Errorf("%w: redact is not supported in interactive mode", ErrInvalidDefinition)}
	}

	return validateFlags(d.Flags)
}

func (c *Container) validate() error {
	at := func(field, msg string) error {
		return &DefinitionError{Path: ".container" + field, Cause: fmt.Errorf("%w: %s", ErrInvalidDefinition, msg)}
	}
	switch {
	case (c.Image == "") == (c.Name == ""):
		return at("", "exactly one of image or name is required")
	case c.Name != "" && c.Build != nil:
		return at(".build", "a named container cannot be built")
	case c.Name != "" && (c.Workdir != "" || len(c.Volumes) > 0 || len(c.Ports) > 0):
		return at(".name", "workdir/volumes/ports only apply to new containers")
	}
	return nil
}

func validateFlags(flags []Flag) error {
	names := make(map[string]bool, len(flags))
	shorts := make(map[string]bool, len(flags))
	for i, fl := range flags {
		at := func(field string, format string, args ...any) error {
			return &DefinitionError{
				Path:  fmt.Sprintf(".flags[%d]%s", i, field),
				Cause: fmt.Errorf("%w: "+format, append([]any{ErrInvalidDefinition}, args...)...),
			}
		}

		if fl.Name == "help" || fl.Short == "h" {
			return at("", "-h/--help is reserved")
		}
		if names[fl.Name] {
			return at(".name", "duplicate flag --%s", fl.Name)
		}
		names[fl.Name] = true
		if fl.Short != "" {
			if shorts[fl.Short] {
				return at(".short", "duplicate short flag -%s", fl.Short)
			}
			shorts[fl.Short] = true
		}

		if len(fl.Choices) > 0 && fl.Type != FlagString {
			return at(".choices", "choices require type %q", FlagString)
		}
		if fl.Default != nil {
			switch fl.Type {
			case FlagInt:
				if _, err := strconv.Atoi(*fl.Default); err != nil {
					return at(".default", "%q is not an integer", *fl.Default)
				}
			case FlagBool:
				if _, err := strconv.ParseBool(*fl.Default); err != nil {
					return at(".default", "%q is not a boolean", *fl.Default)
				}
			case FlagString:
				if len(fl.Choices) > 0 && !slices.Contains(fl.Choices, *fl.Default) {
					return at(".default", "%q is not one of %s", *fl.Default, strings.Join(fl.Choices, ", "))
				}
			}
		}
	}

	for i, fl := range flags {
		for _, req := range fl.Requires {
			if !names[req] || req == fl.Name {
				return &DefinitionError{
					Path:  fmt.Sprintf(".flags[%d].requires", i),
					Cause: fmt.Errorf("%w: unknown flag %q", ErrInvalidDefinition, req),
				}
			}
		}
	}
	return nil
}

// checkShell parses script as POSIX shell.
func checkShell(script string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	if _, err := parser.Parse(strings.NewReader(script), ""); err != nil {
		return fmt.Errorf("%w: %w", ErrShellSyntax, err)
	}
	return nil
}
