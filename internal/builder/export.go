package builder

import "strings"

// ExportBuilder builds export.py, exportProdukt.py and exportLister.py
// invocations. The three scripts share one flag contract; the lister variant
// adds --refresh-existing and has no --save-export-encoding.
type ExportBuilder struct {
	python string
}

func NewExportBuilder(python string) *ExportBuilder {
	return &ExportBuilder{python: python}
}

func (b *ExportBuilder) Script() ScriptID { return ScriptExport }
func (b *ExportBuilder) Title() string    { return "Export" }
func (b *ExportBuilder) Default() string  { return defaultLine(b.python, ExportScript) }

func exportScript(variant string) (string, error) {
	switch variant {
	case "", VariantExport:
		return ExportScript, nil
	case VariantProduct:
		return ExportProductScript, nil
	case VariantLister:
		return ExportListerScript, nil
	}
	return "", choice("variant", variant, VariantExport, VariantProduct, VariantLister)
}

func (b *ExportBuilder) Build(in Input) (string, error) {
	f := in.Form
	variant := strings.ToLower(f.Text(FieldVariant))
	script, err := exportScript(variant)
	if err != nil {
		return "", err
	}
	lister := variant == VariantLister

	ids := f.List(FieldFactoryIDs)
	if f.Checked(FieldUseSelection) {
		for _, entry := range in.Selection {
			ids = append(ids, entry.ID)
		}
	}

	a := newArgv(b.python, script)
	a.repeat("--account", upperAll(f.Values(FieldAccount)))
	a.repeat("--factory-id", ids)
	a.repeat("--factory-name", f.List(FieldFactoryNames))
	a.intOption("--limit", f, FieldLimit)
	a.option("--output-dir", f.Text(FieldOutputDir), DefaultOutputDir)
	a.flag("--skip-existing", f.Checked(FieldSkipExisting))
	if lister {
		a.flag("--refresh-existing", f.Checked(FieldRefreshExisting))
	}
	a.flag("--dry-run", f.Checked(FieldDryRun))
	a.flag("--verbose", f.Checked(FieldVerbose))
	a.option("--definition-id", f.Text(FieldDefinitionID), "")
	a.option("--export-format-id", f.Text(FieldExportFormatID), "")
	a.option("--expprod", f.Text(FieldExpprod), DefaultExpprod)
	a.option("--export-encoding", f.Text(FieldExportEncoding), DefaultExportEncoding)
	if !lister {
		a.option("--save-export-encoding", f.Text(FieldSaveExportEncoding), DefaultSaveExportEncoding)
	}
	return a.String(), nil
}

// HTMLBuilder builds makeHTML.py invocations
type HTMLBuilder struct {
	python string
}

func NewHTMLBuilder(python string) *HTMLBuilder {
	return &HTMLBuilder{python: python}
}

func (b *HTMLBuilder) Script() ScriptID { return ScriptHTML }
func (b *HTMLBuilder) Title() string    { return "HTML" }
func (b *HTMLBuilder) Default() string  { return defaultLine(b.python, HTMLScript) }

func (b *HTMLBuilder) Build(in Input) (string, error) {
	f := in.Form
	a := newArgv(b.python, HTMLScript)
	a.repeat("--account", upperAll(f.Values(FieldAccount)))
	a.option("--input-base", f.Text(FieldInputBase), DefaultInputBase)
	a.option("--output-base", f.Text(FieldOutputBase), DefaultOutputBase)
	a.flag("--overwrite", f.Checked(FieldOverwrite))
	a.intOption("--limit", f, FieldLimit)
	a.flag("--verbose", f.Checked(FieldVerbose))
	return a.String(), nil
}

func upperAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToUpper(v)
	}
	return out
}
