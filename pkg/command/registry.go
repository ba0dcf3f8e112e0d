// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pmgmt/pmgmt/pkg/console"
)

var (
	// ErrNilDefinition is returned when Register is called without a definition.
	ErrNilDefinition = errors.New("register called with nil argument")
	// ErrNoHandler is returned when a definition names neither a function nor a handler.
	ErrNoHandler = errors.New("no handler defined")
	// ErrUndefinedFunc is returned when a FuncName was never passed to Define.
	ErrUndefinedFunc = errors.New("function is not defined")
	// ErrNilHandler is returned for a handler value wrapping a nil func.
	ErrNilHandler = errors.New("handler does not define a function")
	// ErrAmbiguousHandler is returned when a Spec sets both Func and Handler.
	ErrAmbiguousHandler = errors.New("both a function name and a handler are set")
)

type (
	// Handler is the function bound to a command. It is either an ArgsHandler
	// or a NoArgsHandler.
	Handler interface {
		invoke(args []string)
		isNil() bool
	}

	// ArgsHandler receives the command's arguments.
	ArgsHandler func(args []string)

	// NoArgsHandler takes no arguments.
	NoArgsHandler func()

	// Definition is what Register accepts: a FuncName or a Spec.
	Definition interface {
		definition()
	}

	// FuncName registers the function defined under this name, invoked by the
	// same name.
	FuncName string

	// Spec is the full form of a command definition. Exactly one of Func and
	// Handler must be set. When Invocation is empty it defaults to Func.
	Spec struct {
		Invocation  string
		Description string
		Func        FuncName
		Handler     Handler
		// SelfUpgrade marks infrastructure commands removed by UnregisterSelfUpgrade.
		SelfUpgrade bool
	}

	// Command is a registered command.
	Command struct {
		Invocation  string
		Description string
		Handler     Handler
		// ByName is true when the handler was resolved from a FuncName; such
		// handlers receive the command name as their first argument.
		ByName      bool
		SelfUpgrade bool
	}

	// RegistrationError reports a definition that could not be registered.
	RegistrationError struct {
		Invocation string
		Func       FuncName
		Err        error
	}

	// Registry is the ordered set of commands known to the host.
	Registry struct {
		console  *console.Console
		commands []Command
		funcs    map[FuncName]Handler
	}
)

func (h ArgsHandler) invoke(args []string) { h(args) }
func (h ArgsHandler) isNil() bool          { return h == nil }

func (h NoArgsHandler) invoke([]string) { h() }
func (h NoArgsHandler) isNil() bool     { return h == nil }

func (FuncName) definition() {}
func (Spec) definition()     {}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrNilDefinition):
		return e.Err.Error()
	case errors.Is(e.Err, ErrUndefinedFunc):
		return fmt.Sprintf("function %s is not defined for %s", e.Func, e.Invocation)
	case errors.Is(e.Err, ErrNilHandler):
		return fmt.Sprintf("handler for %s does not define a function", e.Invocation)
	case errors.Is(e.Err, ErrNoHandler):
		return fmt.Sprintf("no handler defined for command %s", e.Invocation)
	default:
		return fmt.Sprintf("command %s: %v", e.Invocation, e.Err)
	}
}

// Unwrap returns the sentinel describing the failure.
func (e *RegistrationError) Unwrap() error { return e.Err }

// NewRegistry creates an empty registry reporting through c.
func NewRegistry(c *console.Console) *Registry {
	return &Registry{
		console: c,
		funcs:   make(map[FuncName]Handler),
	}
}

// Console returns the console the registry reports through.
func (r *Registry) Console() *console.Console { return r.console }

// Define makes h available to FuncName definitions under name. Defining a
// name again replaces the function for later registrations only.
func (r *Registry) Define(name string, h Handler) {
	r.funcs[FuncName(name)] = h
}

// Register validates def and appends the resulting command. Invocations are
// not de-duplicated; Lookup returns the first match.
func (r *Registry) Register(def Definition) error {
	cmd, err := r.resolve(def)
	if err != nil {
		return err
	}
	r.commands = append(r.commands, cmd)
	r.console.Logger().Debug("registered command", "invocation", cmd.Invocation, "by_name", cmd.ByName)
	return nil
}

// MustRegister is Register that prints the error and exits 1 on failure.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		r.console.Error(err.Error())
		r.console.Exit(1)
	}
}

// UnregisterSelfUpgrade removes every command marked SelfUpgrade.
func (r *Registry) UnregisterSelfUpgrade() {
	r.commands = slices.DeleteFunc(r.commands, func(c Command) bool {
		return c.SelfUpgrade
	})
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []Command {
	return slices.Clone(r.commands)
}

// Lookup returns the first command registered under invocation.
func (r *Registry) Lookup(invocation string) (Command, bool) {
	for _, c := range r.commands {
		if c.Invocation == invocation {
			return c, true
		}
	}
	return Command{}, false
}

func (r *Registry) resolve(def Definition) (Command, error) {
	switch d := def.(type) {
	case nil:
		return Command{}, &RegistrationError{Err: ErrNilDefinition}
	case FuncName:
		if d == "" {
			return Command{}, &RegistrationError{Err: ErrNilDefinition}
		}
		return r.resolve(Spec{Func: d})
	case *Spec:
		if d == nil {
			return Command{}, &RegistrationError{Err: ErrNilDefinition}
		}
		return r.resolve(*d)
	case Spec:
		return r.resolveSpec(d)
	default:
		return Command{}, &RegistrationError{Err: fmt.Errorf("unsupported definition %T", def)}
	}
}

func (r *Registry) resolveSpec(s Spec) (Command, error) {
	cmd := Command{
		Invocation:  s.Invocation,
		Description: s.Description,
		SelfUpgrade: s.SelfUpgrade,
	}
	if cmd.Invocation == "" {
		cmd.Invocation = string(s.Func)
	}
	if cmd.Invocation == "" && s.Handler == nil {
		return Command{}, &RegistrationError{Err: ErrNilDefinition}
	}
	fail := func(err error) (Command, error) {
		return Command{}, &RegistrationError{Invocation: cmd.Invocation, Func: s.Func, Err: err}
	}

	switch {
	case s.Func != "" && s.Handler != nil:
		return fail(ErrAmbiguousHandler)
	case s.Func != "":
		h, ok := r.funcs[s.Func]
		if !ok {
			return fail(ErrUndefinedFunc)
		}
		if h == nil || h.isNil() {
			return fail(ErrNilHandler)
		}
		cmd.Handler = h
		cmd.ByName = true
	case s.Handler != nil:
		if s.Handler.isNil() {
			return fail(ErrNilHandler)
		}
		cmd.Handler = s.Handler
	default:
		return fail(ErrNoHandler)
	}
	if cmd.Invocation == "" {
		return fail(ErrNilDefinition)
	}
	return cmd, nil
}
