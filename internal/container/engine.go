// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"

	"github.com/pmgmt/pmgmt/pkg/process"
)

// EngineType identifies the container CLI.
type EngineType string

const (
	EngineTypeDocker EngineType = "docker"
	EngineTypePodman EngineType = "podman"
)

type (
	// BuildOptions describes an image build.
	BuildOptions struct {
		// ContextDir is the build context directory.
		ContextDir string
		// Dockerfile is resolved relative to ContextDir unless absolute.
		Dockerfile string
		Tag        string
		BuildArgs  map[string]string
		NoCache    bool
	}

	// RunOptions describes a container run.
	RunOptions struct {
		Image   string
		Command []string
		WorkDir string
		Env     map[string]string
		// Volumes are "host:container" mounts.
		Volumes []string
		// Ports are "host:container" mappings.
		Ports       []string
		Name        string
		Remove      bool
		Interactive bool
		TTY         bool
	}

	// Engine runs container CLI commands.
	Engine struct {
		kind   EngineType
		runner *process.Runner
	}
)

// NewEngine creates an engine for kind that executes through runner.
func NewEngine(runner *process.Runner, kind EngineType) (*Engine, error) {
	switch kind {
	case EngineTypeDocker, EngineTypePodman:
		return &Engine{kind: kind, runner: runner}, nil
	default:
		return nil, fmt.Errorf("unknown container engine type: %s", kind)
	}
}

// Name returns the CLI binary name.
func (e *Engine) Name() string { return string(e.kind) }

// Available reports whether the CLI is installed and can reach its daemon.
func (e *Engine) Available(ctx context.Context) bool {
	status, err := e.runner.Run(ctx, e.command("version"))
	return err == nil && status.Success()
}

// ImageExists reports whether image is present locally.
func (e *Engine) ImageExists(ctx context.Context, image string) (bool, error) {
	status, err := e.runner.Run(ctx, e.command("image", "inspect", image))
	if err != nil {
		return false, err
	}
	return status.Success(), nil
}

// Build builds an image, exiting the host with the CLI's code on failure.
func (e *Engine) Build(opts BuildOptions) {
	e.runner.RunInline(e.command(BuildArgs(opts)...), "")
}

// Run runs a container attached to the terminal, exiting the host with the
// container's code on failure. redact is masked in the echoed command.
func (e *Engine) Run(opts RunOptions, redact string) {
	e.runner.RunInline(e.command(RunArgs(opts)...), redact)
}

// RunInteractive runs a container with a terminal attached. Ending the
// session with an interrupt is not treated as a failure.
func (e *Engine) RunInteractive(opts RunOptions) {
	opts.Interactive, opts.TTY = true, true
	e.runner.RunInlineSwallowingInterrupt(e.command(RunArgs(opts)...))
}

// Exec attaches an interactive command to a running container. Ending the
// session with an interrupt is not treated as a failure.
func (e *Engine) Exec(containerName string, env map[string]string, command ...string) {
	e.runner.RunInlineSwallowingInterrupt(e.command(ExecArgs(containerName, env, command)...))
}

func (e *Engine) command(args ...string) process.Command {
	return process.Args(append([]string{e.Name()}, args...)...)
}
