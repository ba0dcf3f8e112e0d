// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/pmgmt/pmgmt/internal/config"
	"github.com/pmgmt/pmgmt/internal/container"
	"github.com/pmgmt/pmgmt/internal/issue"
	"github.com/pmgmt/pmgmt/internal/selfupgrade"
	"github.com/pmgmt/pmgmt/pkg/cmdfile"
	"github.com/pmgmt/pmgmt/pkg/command"
	"github.com/pmgmt/pmgmt/pkg/console"
	"github.com/pmgmt/pmgmt/pkg/process"
)

// settingsEnv names an explicit settings file.
const settingsEnv = config.EnvPrefix + "_SETTINGS"

// run loads the settings and the project's commands, then dispatches args.
// It only returns when the settings cannot be loaded; every other path ends
// the process through the console.
func run(ctx context.Context, args []string) error {
	settings, err := config.NewProvider().Load(ctx, config.LoadOptions{
		SettingsFile: os.Getenv(settingsEnv),
	})
	if err != nil {
		console.New().Guide(issue.SettingsInvalidId)
		return err
	}

	c := console.New(console.WithVerbose(settings.Verbose))
	c.Logger().Debug("settings", "file", settings.File, "scripts_dir", settings.ScriptsDir, "ext", settings.ScriptExt)
	runner := process.New(c, process.WithShell(settings.Shell))

	engine, err := container.NewEngine(runner, container.EngineType(settings.ContainerEngine))
	if err != nil {
		c.Guide(issue.ContainerEngineUnknownId)
		c.Fatal(err)
		return nil
	}

	program := filepath.Base(os.Args[0])
	r := command.NewRegistry(c)
	if err := r.Use(
		selfupgrade.Plugin{Runner: runner, Dir: toolDir()},
		completionPlugin{program: program},
	); err != nil {
		c.Fatal(err)
		return nil
	}

	loader := &cmdfile.Loader{Runner: runner, Engine: engine}
	for _, ext := range settings.Extensions() {
		if err := r.LoadDir(settings.ScriptsDir, ext, loader.Open); err != nil {
			if errors.Is(err, command.ErrNotDirectory) {
				c.Guide(issue.ScriptsDirNotFoundId)
			} else {
				c.Guide(issue.DefinitionInvalidId)
			}
			c.Fatal(err)
			return nil
		}
	}

	command.NewDispatcher(r, command.WithProgram(program)).HandleOrDie(args)
	return nil
}

// toolDir is the directory holding the running executable, which upgrade-self
// updates with git.
func toolDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
