// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pmgmt/pmgmt/internal/issue"
)

// ErrNotDirectory is returned by LoadDir when the path is not a directory.
var ErrNotDirectory = errors.New("not a directory")

type (
	// Plugin contributes commands to a registry.
	Plugin interface {
		Register(r *Registry) error
	}

	// PluginFunc adapts a function to the Plugin interface.
	PluginFunc func(r *Registry) error

	// Opener turns a file found by LoadDir into a Plugin.
	Opener func(path string) (Plugin, error)
)

// Register calls f(r).
func (f PluginFunc) Register(r *Registry) error { return f(r) }

// Use registers plugins in order, stopping at the first failure.
func (r *Registry) Use(plugins ...Plugin) error {
	for _, p := range plugins {
		if err := p.Register(r); err != nil {
			return err
		}
	}
	return nil
}

// LoadDir opens every file in dir whose name ends with ext, in lexical order,
// and registers the resulting plugins. Subdirectories are not scanned.
func (r *Registry) LoadDir(dir, ext string, open Opener) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		cause := ErrNotDirectory
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			cause = fmt.Errorf("%w: %w", ErrNotDirectory, err)
		}
		return issue.NewErrorContext().
			WithOperation("load scripts").
			WithResource(dir).
			WithSuggestion("Check that the scripts directory exists").
			Wrap(cause).
			BuildError()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return issue.WrapWithContext(err, "load scripts", dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ext) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		r.console.Logger().Debug("loading plugin", "path", path)
		p, err := open(path)
		if err != nil {
			return issue.WrapWithContext(err, "load script", path)
		}
		if err := p.Register(r); err != nil {
			return issue.WrapWithContext(err, "register commands from", path)
		}
	}
	return nil
}

// MustLoadDir is LoadDir that reports the error and exits 1 on failure.
func (r *Registry) MustLoadDir(dir, ext string, open Opener) {
	if err := r.LoadDir(dir, ext, open); err != nil {
		r.console.Fatal(err)
	}
}
