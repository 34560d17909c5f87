package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"opconsole/internal/domain"
)

// EntryRenderer renders catalog and selection rows
type EntryRenderer struct {
	styles *Styles
}

// NewEntryRenderer creates a new entry renderer
func NewEntryRenderer(styles *Styles) *EntryRenderer {
	return &EntryRenderer{styles: styles}
}

// Row describes one list line
type Row struct {
	Type      domain.SourceType
	ID        string
	Name      string
	ItemCount *int
	Selected  bool
	Ignored   bool
	Cursor    bool
	// ShowCheckbox renders a [x]/[ ] selection marker
	ShowCheckbox bool
}

// RenderRow renders a single entry line
func (r *EntryRenderer) RenderRow(row Row, query string) string {
	var parts []string

	if row.ShowCheckbox {
		box := "[ ]"
		if row.Selected {
			box = "[x]"
		}
		parts = append(parts, box)
	}

	typeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(TypeColor(string(row.Type))))
	parts = append(parts, typeStyle.Render(fmt.Sprintf("%-6s", row.Type)))

	name := row.Name
	if name == "" {
		name = r.styles.Dim.Render("(no name)")
	} else if query != "" {
		name = r.highlight(name, query)
	}
	parts = append(parts, name)
	parts = append(parts, r.styles.Dim.Render("#"+row.ID))

	if row.ItemCount != nil {
		parts = append(parts, r.styles.Dim.Render(fmt.Sprintf("(%d items)", *row.ItemCount)))
	}
	if row.Ignored {
		parts = append(parts, r.styles.Ignored.Render("ignored"))
	}

	line := strings.Join(parts, " ")
	if row.Cursor {
		return r.styles.HighlightBg.Render("> " + line)
	}
	return "  " + line
}

// highlight marks the first case-insensitive occurrence of query in text
func (r *EntryRenderer) highlight(text, query string) string {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(query))
	if idx < 0 || strings.HasPrefix(strings.ToLower(query), "type:") {
		return text
	}
	end := idx + len(query)
	if end > len(text) {
		return text
	}
	return text[:idx] + r.styles.Highlight.Render(text[idx:end]) + text[end:]
}

// RenderTabs renders the tab bar
func RenderTabs(styles *Styles, titles []string, active int) string {
	rendered := make([]string, len(titles))
	for i, title := range titles {
		if i == active {
			rendered[i] = styles.ActiveTab.Render(title)
		} else {
			rendered[i] = styles.Tab.Render(title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// Window returns the bounds of a list window of height rows that keeps
// cursor visible
func Window(total, cursor, height int) (start, end int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	start = cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > total {
		start = total - height
	}
	return start, start + height
}
