package builder

import "strings"

// LoginBuilder builds Login.py invocations
type LoginBuilder struct {
	python string
}

func NewLoginBuilder(python string) *LoginBuilder {
	return &LoginBuilder{python: python}
}

func (b *LoginBuilder) Script() ScriptID { return ScriptLogin }
func (b *LoginBuilder) Title() string    { return "Login" }
func (b *LoginBuilder) Default() string  { return defaultLine(b.python, LoginScript) }

func (b *LoginBuilder) Build(in Input) (string, error) {
	f := in.Form
	a := newArgv(b.python, LoginScript)
	a.repeat("--account", f.Values(FieldAccount))
	a.flag("--verbose", f.Checked(FieldVerbose))
	return a.String(), nil
}

// SyncBuilder builds getFabrik.py invocations (catalog sync)
type SyncBuilder struct {
	python string
}

func NewSyncBuilder(python string) *SyncBuilder {
	return &SyncBuilder{python: python}
}

func (b *SyncBuilder) Script() ScriptID { return ScriptSync }
func (b *SyncBuilder) Title() string    { return "Catalog sync" }
func (b *SyncBuilder) Default() string  { return defaultLine(b.python, SyncScript) }

func (b *SyncBuilder) Build(in Input) (string, error) {
	f := in.Form
	account := singleAccount(f.Text(FieldAccount))
	target := strings.ToLower(f.Text(FieldTarget))
	if err := choice("target", target, SyncTargets...); err != nil {
		return "", err
	}

	a := newArgv(b.python, SyncScript)
	a.option("--account", account, "")
	a.option("--target", target, DefaultSyncTarget)
	a.flag("--verbose", f.Checked(FieldVerbose))
	return a.String(), nil
}

// ItemsBuilder builds getItems.py invocations
type ItemsBuilder struct {
	python string
}

func NewItemsBuilder(python string) *ItemsBuilder {
	return &ItemsBuilder{python: python}
}

func (b *ItemsBuilder) Script() ScriptID { return ScriptItems }
func (b *ItemsBuilder) Title() string    { return "Items" }
func (b *ItemsBuilder) Default() string  { return defaultLine(b.python, ItemsScript) }

func (b *ItemsBuilder) Build(in Input) (string, error) {
	f := in.Form
	dataset := strings.ToLower(f.Text(FieldDataset))
	if err := choice("dataset", dataset, ItemsDatasets...); err != nil {
		return "", err
	}

	a := newArgv(b.python, ItemsScript)
	a.option("--account", singleAccount(f.Text(FieldAccount)), "")
	a.intOption("--limit", f, FieldLimit)
	a.option("--dataset", dataset, DefaultItemsDataset)
	a.flag("--verbose", f.Checked(FieldVerbose))
	return a.String(), nil
}

// singleAccount normalizes a one-account field; "all" means no restriction
func singleAccount(value string) string {
	value = strings.ToUpper(value)
	if value == "ALL" {
		return ""
	}
	return value
}
