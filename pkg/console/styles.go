// SPDX-License-Identifier: MPL-2.0

package console

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette uses the basic ANSI colors so the output matches the terminal theme.
const (
	// ColorStatus is cyan - used for progress and informational status lines.
	ColorStatus = lipgloss.Color("6")

	// ColorWarning is yellow - used for warnings that do not stop the command.
	ColorWarning = lipgloss.Color("3")

	// ColorError is red - used for errors and captured stderr of failed commands.
	ColorError = lipgloss.Color("1")
)

// styles holds the lipgloss styles bound to a renderer for one writer, so color
// detection follows the stream the text is written to rather than stdout.
type styles struct {
	status  lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	bold    lipgloss.Style
	// guide is the glamour style name for markdown guidance.
	guide string
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	guide := "light"
	switch {
	case r.ColorProfile() == termenv.Ascii:
		guide = "notty"
	case r.HasDarkBackground():
		guide = "dark"
	}
	return styles{
		guide:   guide,
		status:  r.NewStyle().Foreground(ColorStatus).TabWidth(lipgloss.NoTabConversion),
		warning: r.NewStyle().Foreground(ColorWarning).TabWidth(lipgloss.NoTabConversion),
		err:     r.NewStyle().Foreground(ColorError).TabWidth(lipgloss.NoTabConversion),
		bold:    r.NewStyle().Bold(true).TabWidth(lipgloss.NoTabConversion),
	}
}

// paint renders each line on its own. lipgloss pads multi-line blocks to a
// common width, which would alter captured process output.
func paint(style lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
