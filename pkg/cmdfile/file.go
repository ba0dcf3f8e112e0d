// SPDX-License-Identifier: MPL-2.0

package cmdfile

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/pmgmt/pmgmt/internal/cueutil"
)

//go:embed schema.cue
var schema []byte

const schemaDefinition = "#CommandFile"

// ErrUnsupportedFormat is returned for a file extension with no decoder.
var ErrUnsupportedFormat = errors.New("unsupported definition file format")

// Mode selects how a command's process is run.
type Mode string

const (
	// ModeInline runs attached to the terminal and mirrors the exit code.
	ModeInline Mode = "inline"
	// ModeFail hides output and shows captured stderr only on failure.
	ModeFail Mode = "fail"
	// ModeInteractive is inline, but ending the session with an interrupt is
	// not a failure.
	ModeInteractive Mode = "interactive"
)

// Flag types.
const (
	FlagBool   = "bool"
	FlagString = "string"
	FlagInt    = "int"
)

type (
	// File is a decoded definition file.
	File struct {
		Path     string       `json:"-"`
		Commands []Definition `json:"commands"`
	}

	// Definition describes one command.
	Definition struct {
		Invocation  string            `json:"invocation"`
		Description string            `json:"description,omitempty"`
		Script      string            `json:"script,omitempty"`
		Argv        []string          `json:"argv,omitempty"`
		Pipe        []string          `json:"pipe,omitempty"`
		Mode        Mode              `json:"mode"`
		Redact      string            `json:"redact,omitempty"`
		Project     bool              `json:"project"`
		Dir         string            `json:"dir,omitempty"`
		Env         map[string]string `json:"env,omitempty"`
		Flags       []Flag            `json:"flags"`
		Container   *Container        `json:"container,omitempty"`
	}

	// Container runs a command inside a fresh container of Image instead of
	// on the host. The container is removed when the command ends. With Name
	// the command is executed in that running container instead.
	Container struct {
		Image   string          `json:"image,omitempty"`
		Name    string          `json:"name,omitempty"`
		Build   *ContainerBuild `json:"build,omitempty"`
		Workdir string          `json:"workdir,omitempty"`
		Volumes []string        `json:"volumes,omitempty"`
		Ports   []string        `json:"ports,omitempty"`
	}

	// ContainerBuild builds Image from a local context when it is missing.
	ContainerBuild struct {
		Context    string            `json:"context"`
		Dockerfile string            `json:"dockerfile,omitempty"`
		Args       map[string]string `json:"args,omitempty"`
	}

	// Flag declares an option of a command.
	Flag struct {
		Name     string   `json:"name"`
		Short    string   `json:"short,omitempty"`
		Type     string   `json:"type"`
		Help     string   `json:"help"`
		Default  *string  `json:"default,omitempty"`
		Choices  []string `json:"choices,omitempty"`
		Requires []string `json:"requires,omitempty"`
	}
)

// ParseFile reads and validates the definition file at path.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Parse decodes and validates data; the format is chosen from the extension
// of name.
func Parse(name string, data []byte) (*File, error) {
	switch filepath.Ext(name) {
	case ".cue":
	case ".toml":
		converted, err := tomlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		data = converted
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	f, err := cueutil.Decode[File](schema, data, schemaDefinition, cueutil.WithFilename(name))
	if err != nil {
		return nil, err
	}
	f.Path = name
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// tomlToJSON re-encodes a TOML document as JSON, which CUE reads natively, so
// both formats go through the same schema.
func tomlToJSON(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("line %d, column %d: %w", row, col, err)
		}
		return nil, err
	}
	return json.Marshal(doc)
}
