package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the console's bindings. Bindings without a modifier are only
// active when no text field has focus.
type keyMap struct {
	NextTab   key.Binding
	PrevTab   key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Activate  key.Binding
	Copy      key.Binding
	Pager     key.Binding
	Reload    key.Binding
	Search    key.Binding
	Filter    key.Binding
	Clear     key.Binding
	Apply     key.Binding
	Overwrite key.Binding
	Run       key.Binding
	Output    key.Binding
	Help      key.Binding
	Escape    key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev option")),
		Right:     key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next option")),
		Activate:  key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
		Copy:      key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy command")),
		Pager:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open in pager")),
		Reload:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload catalog")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter mode")),
		Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear selection")),
		Apply:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "apply")),
		Overwrite: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "overwrite names")),
		Run:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
		Output:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view output")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop searching")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// formHelp is the short help shown under a script form
func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Up, k.Down, k.Activate, k.Copy, k.Pager, k.ForceQuit}
}

func (k keyMap) selectionHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Search, k.Activate, k.Filter, k.Clear, k.Reload, k.Help, k.Quit}
}

func (k keyMap) ignoreHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Overwrite, k.Apply, k.Reload, k.Help, k.Quit}
}

func (k keyMap) runHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Up, k.Down, k.Activate, k.Run, k.Output, k.ForceQuit}
}
