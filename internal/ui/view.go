package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"opconsole/internal/domain"
	"opconsole/internal/remote"
	"opconsole/internal/selection"
	"opconsole/internal/ui/views"
)

// rows of chrome around the picker list: title, tabs, search, summaries,
// status and help
const pickerChrome = 16

const maxSelectionRows = 6

// View renders the UI
func (m *Model) View() string {
	if m.inPagerMode {
		return ""
	}

	var b strings.Builder
	title := "Operator Console"
	if m.loading {
		title += m.styles.StatusLoading.Render("  loading catalog...")
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(views.RenderTabs(m.styles, m.tabTitles(), m.active))
	b.WriteString("\n\n")

	var bindings []key.Binding
	switch m.active {
	case m.selectionTab():
		b.WriteString(m.renderSelectionTab())
		bindings = m.keys.selectionHelp()
	case m.ignoreTab():
		b.WriteString(m.renderIgnoreTab())
		bindings = m.keys.ignoreHelp()
	case m.runTab():
		b.WriteString(m.renderRunTab())
		bindings = m.keys.runHelp()
	default:
		b.WriteString(m.forms[m.active].render(m.styles))
		bindings = m.keys.formHelp()
	}

	if m.preview != "" {
		b.WriteString("\n")
		b.WriteString(m.renderPreview())
	}

	if status := m.renderStatus(); status != "" {
		b.WriteString("\n")
		b.WriteString(status)
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(bindings))

	return m.styles.Main.Render(b.String())
}

func (m *Model) renderPreview() string {
	style := m.styles.Preview
	if m.width > 8 {
		style = style.Width(m.width - 8)
	}
	return style.Render(m.preview)
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	switch m.statusKind {
	case statusError:
		return m.styles.Status.Inherit(m.styles.StatusError).Render(m.status)
	case statusWarning:
		return m.styles.Status.Inherit(m.styles.StatusWarning).Render(m.status)
	case statusSuccess:
		return m.styles.Status.Inherit(m.styles.StatusSuccess).Render(m.status)
	}
	return m.styles.Status.Render(m.status)
}

func (m *Model) renderSelectionTab() string {
	var b strings.Builder

	entries := m.selection.Entries()
	b.WriteString(m.styles.Label.Render(fmt.Sprintf("Selected (%d)", len(entries))))
	b.WriteString("\n")
	for i, e := range entries {
		if i == maxSelectionRows {
			b.WriteString(m.styles.Scroll.Render(fmt.Sprintf("  ... and %d more", len(entries)-maxSelectionRows)))
			b.WriteString("\n")
			break
		}
		b.WriteString(m.entries.RenderRow(views.Row{
			Type: e.Type, ID: e.ID, Name: e.Name, ItemCount: e.ItemCount,
			Ignored: m.isIgnored(e.Identity()),
		}, ""))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.search.View())
	b.WriteString("  ")
	b.WriteString(m.styles.Filter.Render("filter: " + m.picker.Mode().String()))
	b.WriteString("\n")

	if !m.loadState.Loaded {
		b.WriteString(m.styles.Dim.Render("Catalog not loaded. Press ctrl+r to load it."))
		return b.String()
	}
	if len(m.loadState.ErrorSources) > 0 {
		b.WriteString(m.styles.StatusWarning.Render("Failed sources: " + strings.Join(m.loadState.ErrorSources, ", ")))
		b.WriteString("\n")
	}

	items := m.picker.Items()
	if len(items) == 0 {
		b.WriteString(m.styles.Dim.Render("No matching entries"))
		return b.String()
	}

	height := m.height - pickerChrome - min(len(entries), maxSelectionRows+1)
	if height < 5 {
		height = 5
	}
	start, end := views.Window(len(items), m.cursor, height)
	if start > 0 {
		b.WriteString(m.styles.Scroll.Render(fmt.Sprintf("  ↑ %d more", start)))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		item := items[i]
		b.WriteString(m.entries.RenderRow(views.Row{
			Type:         item.Value.Type,
			ID:           item.Value.ID,
			Name:         item.Value.Name,
			ItemCount:    item.Value.ItemCount,
			Selected:     item.Selected,
			Ignored:      item.Ignored,
			Cursor:       i == m.cursor,
			ShowCheckbox: true,
		}, m.picker.Query()))
		b.WriteString("\n")
	}
	if end < len(items) {
		b.WriteString(m.styles.Scroll.Render(fmt.Sprintf("  ↓ %d more", len(items)-end)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderIgnoreTab() string {
	var b strings.Builder

	catalogCounts := m.loadState.Catalog.CountByType()
	var ignoredCounts map[domain.SourceType]int
	if m.ignore != nil {
		ignoredCounts = m.ignore.Keys().CountByType()
	}
	for _, t := range domain.SourceTypes {
		typeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(views.TypeColor(string(t))))
		fmt.Fprintf(&b, "%s  catalog %4d  ignored %4d\n",
			typeStyle.Render(fmt.Sprintf("%-6s", t)), catalogCounts[t], ignoredCounts[t])
	}
	if m.ignore != nil && len(m.ignore.Failed()) > 0 {
		b.WriteString(m.styles.StatusWarning.Render("Ignore sources failed: " + strings.Join(m.ignore.Failed(), ", ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	overwrite := "[ ]"
	if m.overwrite {
		overwrite = "[x]"
	}
	b.WriteString(m.styles.Label.Render(fmt.Sprintf("%-*s", labelWidth, "Overwrite names")) + " " + overwrite)
	if m.applying {
		b.WriteString("  " + m.styles.StatusLoading.Render("applying..."))
	}
	b.WriteString("\n\n")

	if m.selection.Len() == 0 {
		b.WriteString(m.styles.Dim.Render("Nothing selected. Pick entries on the Selection tab."))
	} else {
		b.WriteString(m.styles.Label.Render(fmt.Sprintf("Selected (%d)", m.selection.Len())))
		b.WriteString("\n")
		for _, a := range m.annotatedSelection() {
			b.WriteString(m.entries.RenderRow(views.Row{
				Type: a.Value.Type, ID: a.Value.ID, Name: a.Value.Name, ItemCount: a.Value.ItemCount,
				Ignored: a.Ignored,
			}, ""))
			b.WriteString("\n")
		}
	}

	if len(m.applyResults) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Label.Render("Last apply"))
		b.WriteString("\n")
		for _, r := range m.applyResults {
			b.WriteString(m.renderApplyResult(r))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderApplyResult(r remote.ApplyResult) string {
	style := m.styles.StatusSuccess
	switch r.Status {
	case remote.StatusExists:
		style = m.styles.Dim
	case remote.StatusError:
		style = m.styles.StatusError
	}
	line := fmt.Sprintf("  %s %s:%s %s", style.Render(fmt.Sprintf("%-8s", r.Status)), r.Type, r.ID, r.Name)
	if r.Message != "" {
		line += " " + m.styles.Dim.Render(r.Message)
	}
	return line
}

func (m *Model) renderRunTab() string {
	var b strings.Builder
	b.WriteString(m.runForm.render(m.styles))
	b.WriteString("\n\n")

	switch {
	case m.running:
		b.WriteString(m.styles.StatusLoading.Render("Running on the server..."))
	case m.lastRun != nil:
		style := m.styles.StatusSuccess
		if m.lastRun.ReturnCode != 0 {
			style = m.styles.StatusWarning
		}
		b.WriteString(style.Render(fmt.Sprintf("Last run exited with code %d", m.lastRun.ReturnCode)))
		if m.lastRun.Command != "" {
			b.WriteString("\n")
			b.WriteString(m.styles.Dim.Render("$ " + m.lastRun.Command))
		}
	default:
		b.WriteString(m.styles.Dim.Render("Press enter to run the pipeline on the server."))
	}
	return b.String()
}

func (m *Model) isIgnored(id domain.Identity) bool {
	return m.ignore != nil && m.ignore.Contains(id)
}

func (m *Model) annotatedSelection() []selection.Annotated[domain.SelectionEntry] {
	if m.ignore != nil {
		return m.ignore.AnnotateSelection(m.selection)
	}
	return m.selection.Annotate(func(domain.SelectionEntry) selection.Annotation {
		return selection.Annotation{Selected: true}
	})
}
