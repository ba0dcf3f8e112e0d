// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/pmgmt/pmgmt/internal/issue"
	"github.com/pmgmt/pmgmt/pkg/console"
)

// ProjectFileName is the project configuration file read from the working
// directory.
const ProjectFileName = "project.yaml"

// ErrProjectConfigMissing is returned when the project configuration file does
// not exist.
var ErrProjectConfigMissing = errors.New("project configuration missing")

// Project holds the project configuration. Keys are lower-cased.
type Project map[string]any

// LoadProject reads the YAML project configuration at path.
func LoadProject(path string) (Project, error) {
	if !fileExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrProjectConfigMissing, path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load project configuration").
			WithResource(path).
			WithSuggestion("Check that the file is valid YAML").
			Wrap(err).
			BuildError()
	}
	return Project(v.AllSettings()), nil
}

// MustLoadProject is LoadProject that exits 1 when the file is missing or
// unreadable.
func MustLoadProject(c *console.Console, path string) Project {
	p, err := LoadProject(path)
	switch {
	case errors.Is(err, ErrProjectConfigMissing):
		c.Error("Missing " + path)
		if c.Verbose() {
			c.Guide(issue.ProjectConfigMissingId)
		}
		c.Exit(1)
	case err != nil:
		c.Fatal(err)
	}
	return p
}

// String returns the value of a top-level key, formatted if it is not a string.
func (p Project) String(key string) string {
	v, ok := p[strings.ToLower(key)]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Env renders top-level scalar values as PROJECT_<KEY>=value entries, sorted
// by key. Nested maps and lists are skipped.
func (p Project) Env() []string {
	keys := make([]string, 0, len(p))
	for k, v := range p {
		if isScalar(v) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, "PROJECT_"+EnvName(k)+"="+p.String(k))
	}
	return env
}

// EnvName upper-cases name and replaces characters that are not valid in an
// environment variable name with underscores.
func EnvName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, map[string]any, []any:
		return false
	default:
		return true
	}
}
