// SPDX-License-Identifier: MPL-2.0

package cmdfile

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/pmgmt/pmgmt/internal/config"
	"github.com/pmgmt/pmgmt/internal/container"
	"github.com/pmgmt/pmgmt/pkg/command"
	"github.com/pmgmt/pmgmt/pkg/options"
	"github.com/pmgmt/pmgmt/pkg/process"
)

var (
	// ErrNoEngine is reported when a container command runs without an engine.
	ErrNoEngine = errors.New("no container engine configured")
	// ErrEngineUnavailable is reported when an image must be built but the
	// engine cannot reach its daemon.
	ErrEngineUnavailable = errors.New("container engine is not available")
)

// Extensions lists the file extensions Parse understands.
var Extensions = []string{".cue", ".toml"}

type (
	// Loader opens definition files as plugins whose commands run through
	// Runner.
	Loader struct {
		Runner *process.Runner
		// ProjectFile is read for commands with project: true. Defaults to
		// config.ProjectFileName.
		ProjectFile string
		// Engine runs commands that declare a container.
		Engine *container.Engine
	}

	plugin struct {
		loader *Loader
		file   *File
	}

	// flagValues collects parsed flags by name.
	flagValues struct {
		set map[string]string
	}
)

// Open parses the file at path. It has the command.Opener signature.
func (l *Loader) Open(path string) (command.Plugin, error) {
	f, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return &plugin{loader: l, file: f}, nil
}

// Register adds one command per definition, in file order.
func (p *plugin) Register(r *command.Registry) error {
	for _, def := range p.file.Commands {
		h := &handler{loader: p.loader, def: def}
		err := r.Register(command.Spec{
			Invocation:  def.Invocation,
			Description: def.Description,
			Handler:     command.ArgsHandler(h.run),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

type handler struct {
	loader *Loader
	def    Definition
}

func (h *handler) run(args []string) {
	runner := h.loader.Runner
	c := runner.Console()

	p := h.parser(args)
	p.Parse().Validate()

	env := h.flagEnv(p.Options())
	if h.def.Project {
		path := h.loader.ProjectFile
		if path == "" {
			path = config.ProjectFileName
		}
		env = append(env, config.MustLoadProject(c, path).Env()...)
	}
	for _, k := range slices.Sorted(maps.Keys(h.def.Env)) {
		env = append(env, k+"="+h.def.Env[k])
	}

	if h.def.Container != nil {
		h.runContainer(env, p.Remaining())
		return
	}

	prepare := func(cmd process.Command) process.Command {
		if h.def.Dir != "" {
			cmd = cmd.WithDir(h.def.Dir)
		}
		return cmd.WithEnv(env...)
	}

	if len(h.def.Pipe) > 0 {
		stages := make([]process.Command, len(h.def.Pipe))
		for i, stage := range h.def.Pipe {
			stages[i] = prepare(process.Shell(stage, p.Remaining()...))
		}
		runner.Pipe(stages...)
		return
	}

	var cmd process.Command
	if len(h.def.Argv) > 0 {
		cmd = process.Args(append(slices.Clone(h.def.Argv), p.Remaining()...)...)
	} else {
		cmd = process.Shell(h.def.Script, p.Remaining()...)
	}
	cmd = prepare(cmd)

	switch h.def.Mode {
	case ModeFail:
		runner.RunOrFail(cmd, h.def.Redact)
	case ModeInteractive:
		runner.RunInlineSwallowingInterrupt(cmd)
	default:
		runner.RunInline(cmd, h.def.Redact)
	}
}

func (h *handler) runContainer(env, args []string) {
	engine := h.loader.Engine
	if engine == nil {
		h.loader.Runner.Console().Fatal(fmt.Errorf("%s: %w", h.def.Invocation, ErrNoEngine))
		return
	}

	command := append(slices.Clone(h.def.Argv), args...)
	if h.def.Script != "" {
		command = append([]string{"sh", "-c", h.def.Script, config.AppName}, args...)
	}
	vars := make(map[string]string, len(env))
	for _, kv := range env {
		k, v, _ := strings.Cut(kv, "=")
		vars[k] = v
	}

	spec := h.def.Container
	if spec.Name != "" {
		engine.Exec(spec.Name, vars, command...)
		return
	}
	if spec.Build != nil {
		h.ensureImage(engine)
	}

	opts := container.RunOptions{
		Image:   h.def.Container.Image,
		Command: command,
		WorkDir: h.def.Container.Workdir,
		Env:     vars,
		Volumes: h.def.Container.Volumes,
		Ports:   h.def.Container.Ports,
		Remove:  true,
	}
	if h.def.Mode == ModeInteractive {
		engine.RunInteractive(opts)
		return
	}
	engine.Run(opts, h.def.Redact)
}

// ensureImage builds the container image from its local context unless the
// engine already has it.
func (h *handler) ensureImage(engine *container.Engine) {
	ctx := context.Background()
	c := h.loader.Runner.Console()
	spec := h.def.Container

	exists, err := engine.ImageExists(ctx, spec.Image)
	if err != nil {
		c.Fatal(err)
		return
	}
	if exists {
		return
	}
	if !engine.Available(ctx) {
		c.Fatal(fmt.Errorf("%s: %w: %s", h.def.Invocation, ErrEngineUnavailable, engine.Name()))
		return
	}
	c.Status("Building " + spec.Image)
	engine.Build(container.BuildOptions{
		ContextDir: spec.Build.Context,
		Dockerfile: spec.Build.Dockerfile,
		Tag:        spec.Image,
		BuildArgs:  spec.Build.Args,
	})
}

func (h *handler) parser(args []string) *options.Parser[flagValues] {
	p := options.New[flagValues](h.def.Invocation, args, options.WithConsole(h.loader.Runner.Console()))

	for _, fl := range h.def.Flags {
		name := fl.Name
		record := func(o *flagValues, v string) error {
			if o.set == nil {
				o.set = make(map[string]string)
			}
			o.set[name] = v
			return nil
		}

		switch fl.Type {
		case FlagInt:
			options.AddTypedOption(p, flagSpec(fl, "N"), options.Int, func(o *flagValues, n int) error {
				return record(o, strconv.Itoa(n))
			}, fl.Help)
		case FlagString:
			var coerce options.Coercer[string] = options.String
			if len(fl.Choices) > 0 {
				coerce = options.OneOf(fl.Choices...)
			}
			options.AddTypedOption(p, flagSpec(fl, strings.ToUpper(fl.Name)), coerce, record, fl.Help)
		default:
			p.AddOption(flagSpec(fl, ""), record, fl.Help)
		}
	}

	for _, fl := range h.def.Flags {
		if len(fl.Requires) == 0 {
			continue
		}
		p.AddValidator(func(o *flagValues) error {
			if !h.given(o, fl.Name) {
				return nil
			}
			for _, req := range fl.Requires {
				if !h.given(o, req) {
					return fmt.Errorf("--%s requires --%s", fl.Name, req)
				}
			}
			return nil
		})
	}
	return p
}

// given reports whether the named flag was passed. A bool flag passed as
// false counts as absent.
func (h *handler) given(o *flagValues, name string) bool {
	v, ok := o.set[name]
	if !ok {
		return false
	}
	for _, fl := range h.def.Flags {
		if fl.Name == name && fl.Type == FlagBool {
			return v != "false"
		}
	}
	return true
}

// flagEnv renders flags as FLAG_<NAME> variables. Bool flags are always set;
// other flags only when given or defaulted.
func (h *handler) flagEnv(o *flagValues) []string {
	var env []string
	for _, fl := range h.def.Flags {
		v, ok := o.set[fl.Name]
		switch {
		case ok:
		case fl.Default != nil:
			v = *fl.Default
		case fl.Type == FlagBool:
			v = "false"
		default:
			continue
		}
		env = append(env, "FLAG_"+config.EnvName(fl.Name)+"="+v)
	}
	return env
}

func flagSpec(fl Flag, placeholder string) string {
	spec := "--" + fl.Name
	if fl.Short != "" {
		spec = "-" + fl.Short + ", " + spec
	}
	if placeholder != "" {
		spec += "=" + placeholder
	}
	return spec
}
