// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/pmgmt/pmgmt/internal/testutil"
)

// lineOpener registers one command per non-empty line of the file.
func lineOpener(path string) (Plugin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return PluginFunc(func(r *Registry) error {
		for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
			if line == "bad" {
				return errors.New("bad line")
			}
			if err := r.Register(Spec{Invocation: line, Handler: NoArgsHandler(func() {})}); err != nil {
				return err
			}
		}
		return nil
	}), nil
}

func invocations(r *Registry) []string {
	var out []string
	for _, c := range r.Commands() {
		out = append(out, c.Invocation)
	}
	return out
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "b.cmds", "test\n")
	testutil.MustWriteFile(t, dir, "a.cmds", "build\nclean\n")
	testutil.MustWriteFile(t, dir, "notes.txt", "ignored\n")
	testutil.MustWriteFile(t, dir, "nested/c.cmds", "skipped\n")

	r, _, _ := newTestRegistry()
	if err := r.LoadDir(dir, ".cmds", lineOpener); err != nil {
		t.Fatalf("LoadDir() error: %v", err)
	}
	if got := invocations(r); !slices.Equal(got, []string{"build", "clean", "test"}) {
		t.Errorf("commands = %v, want lexical file order", got)
	}
}

func TestLoadDir_NotDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := testutil.MustWriteFile(t, dir, "file", "")

	for _, path := range []string{filepath.Join(dir, "missing"), file} {
		r, _, _ := newTestRegistry()
		err := r.LoadDir(path, ".cmds", lineOpener)
		if !errors.Is(err, ErrNotDirectory) {
			t.Errorf("LoadDir(%s) error = %v, want ErrNotDirectory", path, err)
		}
	}
}

func TestLoadDir_PluginError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.MustWriteFile(t, dir, "a.cmds", "bad\n")

	r, _, _ := newTestRegistry()
	err := r.LoadDir(dir, ".cmds", lineOpener)
	if err == nil || !strings.Contains(err.Error(), path) || !strings.Contains(err.Error(), "bad line") {
		t.Errorf("LoadDir() error = %v", err)
	}
}

func TestMustLoadDir_Exits(t *testing.T) {
	t.Parallel()

	r, _, errOut := newTestRegistry()
	missing := filepath.Join(t.TempDir(), "libproject")
	code, exited := testutil.CatchExit(t, func() {
		r.MustLoadDir(missing, ".cmds", lineOpener)
	})
	if !exited || code != 1 {
		t.Fatalf("MustLoadDir() = (%d, %v), want (1, true)", code, exited)
	}
	if !strings.Contains(errOut.String(), "not a directory") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestUse(t *testing.T) {
	t.Parallel()

	r, _, _ := newTestRegistry()
	ok := PluginFunc(func(r *Registry) error {
		return r.Register(Spec{Invocation: "one", Handler: NoArgsHandler(func() {})})
	})
	failing := PluginFunc(func(*Registry) error { return errors.New("boom") })
	never := PluginFunc(func(r *Registry) error {
		return r.Register(Spec{Invocation: "never", Handler: NoArgsHandler(func() {})})
	})

	if err := r.Use(ok, failing, never); err == nil || err.Error() != "boom" {
		t.Errorf("Use() error = %v, want boom", err)
	}
	if got := invocations(r); !slices.Equal(got, []string{"one"}) {
		t.Errorf("commands = %v, want [one]", got)
	}
}
