package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HelpRenderer handles help content rendering
type HelpRenderer struct{}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{}
}

type helpEntry struct {
	keys string
	desc string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

var helpSections = []helpSection{
	{"Tabs", []helpEntry{
		{"tab / shift+tab", "Next / previous tab"},
		{"ctrl+r", "Reload catalog and ignore list"},
	}},
	{"Script forms", []helpEntry{
		{"↑/↓", "Move between fields"},
		{"space", "Toggle, next choice, or flip the option under the cursor"},
		{"←/→", "Previous / next choice or option"},
		{"q", "Types into text fields; use ctrl+c to quit there"},
		{"ctrl+y", "Copy the command to the clipboard"},
		{"ctrl+o", "Open the command in the pager"},
	}},
	{"Selection", []helpEntry{
		{"/", "Search by name, id or type (type:JV_F_L)"},
		{"esc / enter", "Stop searching"},
		{"↑/↓", "Move in the picker"},
		{"space", "Add or remove the entry under the cursor"},
		{"f", "Cycle filter: all, not ignored, ignored"},
		{"c", "Clear the selection"},
	}},
	{"Ignore", []helpEntry{
		{"o", "Toggle overwriting existing names"},
		{"a", "Apply the selection to the ignore list"},
	}},
	{"Run", []helpEntry{
		{"enter", "Run the pipeline on the server"},
		{"v", "View the last run's output"},
	}},
	{"Other", []helpEntry{
		{"?", "Show this help"},
		{"q / ctrl+c", "Quit"},
	}},
}

// RenderHelpContent renders the help text with colors for the pager
func (r *HelpRenderer) RenderHelpContent() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder
	help.WriteString(titleStyle.Render("Operator Console Help"))
	help.WriteString("\n")

	for _, section := range helpSections {
		help.WriteString(sectionStyle.Render(section.title))
		help.WriteString("\n")
		for _, e := range section.entries {
			help.WriteString(fmt.Sprintf("  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-16s", e.keys)), descStyle.Render(e.desc)))
		}
	}

	help.WriteString("\n")
	help.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).Render("  Commands are assembled only; nothing is executed locally."))
	return help.String()
}
