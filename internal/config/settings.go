// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pmgmt/pmgmt/internal/cueutil"
	"github.com/pmgmt/pmgmt/internal/issue"
)

const (
	// AppName is the program name and the settings file base name.
	AppName = "pmgmt"
	// EnvPrefix prefixes every settings environment variable.
	EnvPrefix = "PMGMT"

	// DefaultScriptsDir is where command definition files are looked up.
	DefaultScriptsDir = "./libproject"
	// DefaultScriptExt lists the definition file extensions that are loaded.
	DefaultScriptExt = ".cue,.toml"
	// DefaultShell interprets shell-string commands.
	DefaultShell = "/bin/sh"
	// DefaultContainerEngine is the container CLI used by container commands.
	DefaultContainerEngine = "docker"
)

//go:embed settings_schema.cue
var settingsSchema []byte

// ErrSettingsFileNotFound is returned when an explicitly requested settings
// file does not exist.
var ErrSettingsFileNotFound = errors.New("settings file not found")

// Settings is the resolved runtime configuration of the host.
type Settings struct {
	ScriptsDir      string `mapstructure:"scripts_dir"`
	ScriptExt       string `mapstructure:"script_ext"`
	Verbose         bool   `mapstructure:"verbose"`
	Shell           string `mapstructure:"shell"`
	ContainerEngine string `mapstructure:"container_engine"`

	// File is the settings file that was read, or empty.
	File string `mapstructure:"-"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() *Settings {
	return &Settings{
		ScriptsDir:      DefaultScriptsDir,
		ScriptExt:       DefaultScriptExt,
		Shell:           DefaultShell,
		ContainerEngine: DefaultContainerEngine,
	}
}

// Extensions splits ScriptExt into its comma-separated entries.
func (s *Settings) Extensions() []string {
	var exts []string
	for _, ext := range strings.Split(s.ScriptExt, ",") {
		if ext = strings.TrimSpace(ext); ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}

func loadSettings(ctx context.Context, opts LoadOptions) (*Settings, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load settings canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	defaults := DefaultSettings()
	v.SetDefault("scripts_dir", defaults.ScriptsDir)
	v.SetDefault("script_ext", defaults.ScriptExt)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("shell", defaults.Shell)
	v.SetDefault("container_engine", defaults.ContainerEngine)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	path, err := settingsFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := readSettingsFile(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load settings").
				WithResource(path).
				WithSuggestion("Check the file against the documented settings keys").
				WithSuggestion("Remove the file to fall back to PMGMT_* environment variables").
				Wrap(err).
				BuildError()
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	s.File = path
	return &s, nil
}

// settingsFile resolves the file to read: the explicit one, or the first of
// .pmgmt.cue and .pmgmt.yaml found in the search directory.
func settingsFile(opts LoadOptions) (string, error) {
	if opts.SettingsFile != "" {
		if !fileExists(opts.SettingsFile) {
			return "", issue.NewErrorContext().
				WithOperation("load settings").
				WithResource(opts.SettingsFile).
				WithSuggestion("Verify the file path is correct").
				Wrap(ErrSettingsFileNotFound).
				BuildError()
		}
		return opts.SettingsFile, nil
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	for _, ext := range []string{".cue", ".yaml", ".yml"} {
		candidate := filepath.Join(dir, "."+AppName+ext)
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

func readSettingsFile(v *viper.Viper, path string) error {
	if filepath.Ext(path) != ".cue" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	values, err := cueutil.Decode[map[string]any](settingsSchema, data, "#Settings",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}
	return v.MergeConfigMap(*values)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
