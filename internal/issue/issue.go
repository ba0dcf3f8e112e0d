// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalog entry.
type Id int

const (
	ScriptsDirNotFoundId Id = iota + 1
	DefinitionInvalidId
	SettingsInvalidId
	ContainerEngineUnknownId
	ProjectConfigMissingId
)

type (
	// MarkdownMsg is guidance text rendered for the terminal.
	MarkdownMsg string

	// HttpLink points to further reading.
	HttpLink string

	// Issue is a catalog entry: guidance shown next to an error.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the guidance with the named glamour style ("dark", "light",
// "notty", "auto") or a style file path.
func (i *Issue) Render(stylePath string) (string, error) {
	var b strings.Builder
	b.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		b.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			b.WriteString("- " + string(link) + "\n")
		}
	}
	return render(b.String(), stylePath)
}

var (
	render = glamour.Render

	scriptsDirNotFoundIssue = &Issue{
		id: ScriptsDirNotFoundId,
		mdMsg: `
# No scripts directory found

Project commands are loaded from the scripts directory, ` + "`./libproject`" + ` by default.

## Things you can try
- Create the directory and add a command file:
~~~cue
// libproject/commands.cue
commands: [
  {invocation: "build", description: "Builds the project.", script: "make"},
]
~~~
- Point ` + "`PMGMT_SCRIPTS_DIR`" + ` at an existing directory.
- Set ` + "`scripts_dir`" + ` in ` + "`.pmgmt.yaml`" + ` or ` + "`.pmgmt.cue`" + `.`,
	}

	definitionInvalidIssue = &Issue{
		id: DefinitionInvalidId,
		mdMsg: `
# A command file could not be loaded

Every command needs an ` + "`invocation`" + ` and exactly one of ` + "`script`" + `, ` + "`argv`" + ` or ` + "`pipe`" + `.

## Things you can try
- Check the field named in the error against the example below.
- Run the script through ` + "`sh -n`" + ` to find shell syntax errors.

~~~toml
[[commands]]
invocation = "test"
script = "go test ./..."
mode = "fail"
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/", "https://toml.io/en/v1.0.0"},
	}

	settingsInvalidIssue = &Issue{
		id: SettingsInvalidId,
		mdMsg: `
# Settings could not be loaded

Settings are read from ` + "`PMGMT_*`" + ` environment variables and an optional
` + "`.pmgmt.cue`" + ` or ` + "`.pmgmt.yaml`" + ` file in the working directory.

## Known keys
- ` + "`scripts_dir`" + `, ` + "`script_ext`" + `, ` + "`verbose`" + `, ` + "`shell`" + `, ` + "`container_engine`" + ``,
	}

	containerEngineUnknownIssue = &Issue{
		id: ContainerEngineUnknownId,
		mdMsg: `
# Unknown container engine

` + "`container_engine`" + ` must be ` + "`docker`" + ` or ` + "`podman`" + `.`,
		extLinks: []HttpLink{"https://docs.docker.com/get-docker/", "https://podman.io/docs/installation"},
	}

	projectConfigMissingIssue = &Issue{
		id: ProjectConfigMissingId,
		mdMsg: `
# No project configuration

This command reads ` + "`project.yaml`" + ` from the working directory. Its
top-level values are passed to the command as ` + "`PROJECT_<KEY>`" + ` variables.`,
	}

	issues = map[Id]*Issue{
		scriptsDirNotFoundIssue.Id():     scriptsDirNotFoundIssue,
		definitionInvalidIssue.Id():      definitionInvalidIssue,
		settingsInvalidIssue.Id():        settingsInvalidIssue,
		containerEngineUnknownIssue.Id(): containerEngineUnknownIssue,
		projectConfigMissingIssue.Id():   projectConfigMissingIssue,
	}
)

// Values returns the catalog ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return int(a.id - b.id)
	})
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
