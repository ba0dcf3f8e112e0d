// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit settings loading inputs.
type LoadOptions struct {
	// SettingsFile forces loading from a specific file when set.
	SettingsFile string
	// Dir is searched for .pmgmt.cue or .pmgmt.yaml; defaults to the
	// working directory.
	Dir string
}

// Provider loads settings from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Settings, error)
}

type fileProvider struct{}

// NewProvider creates a settings provider backed by the environment and the
// settings file.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load resolves the settings.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Settings, error) {
	return loadSettings(ctx, opts)
}
