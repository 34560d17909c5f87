package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"opconsole/internal/builder"
	"opconsole/internal/form"
	"opconsole/internal/ui/views"
)

// FieldKind selects how a field is edited
type FieldKind int

const (
	FieldText   FieldKind = iota // free text, lists and integers
	FieldToggle                  // on/off
	FieldChoice                  // exactly one of Options
	FieldMulti                   // any subset of Options
)

// Field is one editable form control
type Field struct {
	Name    string
	Label   string
	Kind    FieldKind
	Options []string

	input   textinput.Model
	on      bool
	choice  int
	checked map[int]bool
	cursor  int // option cursor for FieldMulti
}

func textField(name, label, placeholder string) *Field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 512
	ti.Width = 48
	return &Field{Name: name, Label: label, Kind: FieldText, input: ti}
}

func toggleField(name, label string) *Field {
	return &Field{Name: name, Label: label, Kind: FieldToggle}
}

// choiceField starts at def, or the first option when def is not listed
func choiceField(name, label string, options []string, def string) *Field {
	f := &Field{Name: name, Label: label, Kind: FieldChoice, Options: options}
	for i, o := range options {
		if o == def {
			f.choice = i
		}
	}
	return f
}

func multiField(name, label string, options []string) *Field {
	return &Field{Name: name, Label: label, Kind: FieldMulti, Options: options, checked: make(map[int]bool)}
}

// apply writes the field into v the way the builders read it
func (f *Field) apply(v form.Values) {
	switch f.Kind {
	case FieldText:
		if s := f.input.Value(); s != "" {
			v.Set(f.Name, s)
		}
	case FieldToggle:
		v.Toggle(f.Name, f.on)
	case FieldChoice:
		if len(f.Options) > 0 {
			v.Set(f.Name, f.Options[f.choice])
		}
	case FieldMulti:
		var values []string
		for i, o := range f.Options {
			if f.checked[i] {
				values = append(values, o)
			}
		}
		if len(values) > 0 {
			v.SetAll(f.Name, values...)
		}
	}
}

// SetText replaces a text field's content
func (f *Field) SetText(s string) {
	f.input.SetValue(s)
}

// Text returns a text field's content
func (f *Field) Text() string {
	return f.input.Value()
}

// Activate toggles a toggle field, advances a choice, or flips the option
// under the cursor of a multi field
func (f *Field) Activate() {
	switch f.Kind {
	case FieldToggle:
		f.on = !f.on
	case FieldChoice:
		f.Shift(1)
	case FieldMulti:
		if len(f.Options) > 0 {
			f.checked[f.cursor] = !f.checked[f.cursor]
		}
	}
}

// Shift moves a choice or the multi-option cursor by delta, wrapping around
func (f *Field) Shift(delta int) {
	n := len(f.Options)
	if n == 0 {
		return
	}
	switch f.Kind {
	case FieldChoice:
		f.choice = ((f.choice+delta)%n + n) % n
	case FieldMulti:
		f.cursor = ((f.cursor+delta)%n + n) % n
	}
}

func (f *Field) focus() tea.Cmd {
	if f.Kind == FieldText {
		return f.input.Focus()
	}
	return nil
}

func (f *Field) blur() {
	if f.Kind == FieldText {
		f.input.Blur()
	}
}

func (f *Field) update(msg tea.Msg) tea.Cmd {
	if f.Kind != FieldText {
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

func (f *Field) render(styles *views.Styles, focused bool) string {
	padded := fmt.Sprintf("%-*s", labelWidth, f.Label)
	label := styles.Label.Render(padded)
	if focused {
		label = styles.FocusedLabel.Render(padded)
	}

	var value string
	switch f.Kind {
	case FieldText:
		value = f.input.View()
	case FieldToggle:
		value = "[ ]"
		if f.on {
			value = "[x]"
		}
	case FieldChoice:
		value = "< " + f.Options[f.choice] + " >"
	case FieldMulti:
		parts := make([]string, len(f.Options))
		for i, o := range f.Options {
			box := "[ ]"
			if f.checked[i] {
				box = "[x]"
			}
			item := box + " " + o
			if focused && i == f.cursor {
				item = styles.Highlight.Render(item)
			}
			parts[i] = item
		}
		value = joinWrapped(parts, multiPerLine, strings.Repeat(" ", labelWidth+1))
	}
	return label + " " + value
}

const (
	labelWidth   = 22
	multiPerLine = 5
)

// joinWrapped joins items n per line, indenting continuation lines
func joinWrapped(items []string, n int, indent string) string {
	var b strings.Builder
	for i, item := range items {
		switch {
		case i == 0:
		case i%n == 0:
			b.WriteString("\n" + indent)
		default:
			b.WriteString("  ")
		}
		b.WriteString(item)
	}
	return b.String()
}

// ScriptForm is the form for one script tab
type ScriptForm struct {
	Script builder.ScriptID
	Fields []*Field
	focus  int
}

// Values collects the form into the builders' input shape
func (sf *ScriptForm) Values() form.Values {
	v := form.Values{}
	for _, f := range sf.Fields {
		f.apply(v)
	}
	return v
}

// Field returns the field with the given name
func (sf *ScriptForm) Field(name string) *Field {
	for _, f := range sf.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Focused returns the focused field
func (sf *ScriptForm) Focused() *Field {
	if len(sf.Fields) == 0 {
		return nil
	}
	return sf.Fields[sf.focus]
}

// MoveFocus moves focus by delta, wrapping around
func (sf *ScriptForm) MoveFocus(delta int) tea.Cmd {
	n := len(sf.Fields)
	if n == 0 {
		return nil
	}
	sf.Fields[sf.focus].blur()
	sf.focus = ((sf.focus+delta)%n + n) % n
	return sf.Fields[sf.focus].focus()
}

func (sf *ScriptForm) render(styles *views.Styles) string {
	lines := make([]string, len(sf.Fields))
	for i, f := range sf.Fields {
		lines[i] = f.render(styles, i == sf.focus)
	}
	return strings.Join(lines, "\n")
}

var (
	accountChoices = append([]string{"all"}, builder.Accounts...)
	syncTargets    = []string{"all", "catalog", "lister"}
	itemsDatasets  = []string{"all", "product", "lister"}
	exportVariants = []string{builder.VariantExport, builder.VariantProduct, builder.VariantLister}
)

// NewScriptForms builds one form per script, in tab order
func NewScriptForms() []*ScriptForm {
	return []*ScriptForm{
		{Script: builder.ScriptLogin, Fields: []*Field{
			multiField(builder.FieldAccount, "Accounts", builder.Accounts),
			toggleField(builder.FieldVerbose, "Verbose"),
		}},
		{Script: builder.ScriptSync, Fields: []*Field{
			choiceField(builder.FieldAccount, "Account", accountChoices, "all"),
			choiceField(builder.FieldTarget, "Target", syncTargets, builder.DefaultSyncTarget),
			toggleField(builder.FieldVerbose, "Verbose"),
		}},
		{Script: builder.ScriptItems, Fields: []*Field{
			choiceField(builder.FieldAccount, "Account", accountChoices, "all"),
			textField(builder.FieldLimit, "Limit", "no limit"),
			choiceField(builder.FieldDataset, "Dataset", itemsDatasets, builder.DefaultItemsDataset),
			toggleField(builder.FieldVerbose, "Verbose"),
		}},
		{Script: builder.ScriptExport, Fields: []*Field{
			choiceField(builder.FieldVariant, "Variant", exportVariants, builder.VariantExport),
			multiField(builder.FieldAccount, "Accounts", builder.Accounts),
			textField(builder.FieldFactoryIDs, "Factory ids", "comma, semicolon or newline separated"),
			textField(builder.FieldFactoryNames, "Factory names", "comma, semicolon or newline separated"),
			toggleField(builder.FieldUseSelection, "Add selected ids"),
			textField(builder.FieldLimit, "Limit", "no limit"),
			textField(builder.FieldOutputDir, "Output dir", builder.DefaultOutputDir),
			toggleField(builder.FieldSkipExisting, "Skip existing"),
			toggleField(builder.FieldRefreshExisting, "Refresh existing"),
			toggleField(builder.FieldDryRun, "Dry run"),
			toggleField(builder.FieldVerbose, "Verbose"),
			textField(builder.FieldDefinitionID, "Definition id", ""),
			textField(builder.FieldExportFormatID, "Export format id", ""),
			textField(builder.FieldExpprod, "Expprod", builder.DefaultExpprod),
			textField(builder.FieldExportEncoding, "Export encoding", builder.DefaultExportEncoding),
			textField(builder.FieldSaveExportEncoding, "Save export encoding", builder.DefaultSaveExportEncoding),
		}},
		{Script: builder.ScriptHTML, Fields: []*Field{
			multiField(builder.FieldAccount, "Accounts", builder.Accounts),
			textField(builder.FieldInputBase, "Input base", builder.DefaultInputBase),
			textField(builder.FieldOutputBase, "Output base", builder.DefaultOutputBase),
			toggleField(builder.FieldOverwrite, "Overwrite"),
			textField(builder.FieldLimit, "Limit", "no limit"),
			toggleField(builder.FieldVerbose, "Verbose"),
		}},
		{Script: builder.ScriptKill, Fields: []*Field{
			toggleField(builder.FieldRunNow, "Run cleanup now"),
			toggleField(builder.FieldVerbose, "Verbose"),
		}},
		{Script: builder.ScriptClean, Fields: []*Field{
			multiField(builder.FieldCleanTarget, "Targets", builder.CleanTargets),
			toggleField(builder.FieldDryRun, "Dry run"),
			toggleField(builder.FieldForce, "Force"),
			toggleField(builder.FieldListTargets, "List targets"),
		}},
		{Script: builder.ScriptPipeline, Fields: pipelineFields()},
	}
}

// pipelineFields is shared by the pipeline script tab and the Run tab
func pipelineFields() []*Field {
	return []*Field{
		multiField(builder.FieldSteps, "Steps", builder.PipelineSteps),
		multiField(builder.FieldSkip, "Skip", builder.PipelineSteps),
		choiceField(builder.FieldLogLevel, "Log level", builder.LogLevels, builder.DefaultLogLevel),
	}
}
