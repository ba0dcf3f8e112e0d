// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/pmgmt/pmgmt/internal/testutil"
	"github.com/pmgmt/pmgmt/pkg/console"
)

const sampleProject = `
name: storefront
gcp_project: shop-dev-123
replicas: 3
debug: false
services:
  - api
  - web
database:
  host: localhost
`

func TestLoadProject(t *testing.T) {
	t.Parallel()

	path := testutil.MustWriteFile(t, t.TempDir(), ProjectFileName, sampleProject)
	p, err := LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject() error: %v", err)
	}
	if p.String("name") != "storefront" || p.String("replicas") != "3" {
		t.Errorf("values = %q, %q", p.String("name"), p.String("replicas"))
	}
	if p.String("missing") != "" {
		t.Error("missing key should be empty")
	}

	want := []string{
		"PROJECT_DEBUG=false",
		"PROJECT_GCP_PROJECT=shop-dev-123",
		"PROJECT_NAME=storefront",
		"PROJECT_REPLICAS=3",
	}
	if got := p.Env(); !slices.Equal(got, want) {
		t.Errorf("Env() = %q, want %q", got, want)
	}
}

func TestLoadProject_Missing(t *testing.T) {
	t.Parallel()

	_, err := LoadProject(filepath.Join(t.TempDir(), ProjectFileName))
	if !errors.Is(err, ErrProjectConfigMissing) {
		t.Errorf("LoadProject() error = %v, want ErrProjectConfigMissing", err)
	}
}

func TestLoadProject_Invalid(t *testing.T) {
	t.Parallel()

	path := testutil.MustWriteFile(t, t.TempDir(), ProjectFileName, "name: [unclosed\n")
	_, err := LoadProject(path)
	if err == nil || errors.Is(err, ErrProjectConfigMissing) {
		t.Errorf("LoadProject() error = %v, want parse error", err)
	}
}

func TestMustLoadProject_Missing(t *testing.T) {
	t.Parallel()

	var errOut bytes.Buffer
	c := console.New(console.WithStreams(&bytes.Buffer{}, &errOut), console.WithExit(testutil.Exit))
	path := filepath.Join(t.TempDir(), ProjectFileName)

	code, exited := testutil.CatchExit(t, func() { MustLoadProject(c, path) })
	if !exited || code != 1 {
		t.Fatalf("MustLoadProject() = (%d, %v), want (1, true)", code, exited)
	}
	if errOut.String() != "Missing "+path+"\n" {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestEnvName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"name":        "NAME",
		"gcp-project": "GCP_PROJECT",
		"a.b":         "A_B",
		"v2":          "V2",
	}
	for in, want := range tests {
		if got := EnvName(in); got != want {
			t.Errorf("EnvName(%q) = %q, want %q", in, got, want)
		}
	}
}
