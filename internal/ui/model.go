package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"opconsole/internal/builder"
	"opconsole/internal/catalog"
	"opconsole/internal/config"
	"opconsole/internal/domain"
	"opconsole/internal/eventbus"
	"opconsole/internal/ignore"
	"opconsole/internal/remote"
	"opconsole/internal/selection"
	"opconsole/internal/ui/views"
)

// Runner runs the pipeline on the server
type Runner interface {
	RunScript(ctx context.Context, req remote.RunRequest) (*remote.RunResponse, error)
}

// Deps are the services the console drives
type Deps struct {
	Config    *config.Config
	Registry  *builder.Registry
	Catalog   *catalog.Loader
	Ignore    *ignore.Sync
	Selection selection.Selection
	Runner    Runner
	Bus       eventbus.EventBus
	Logger    *zap.Logger
	// Clipboard writes text to the system clipboard; defaults to
	// clipboard.WriteAll
	Clipboard func(string) error
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusWarning
	statusError
)

// Model represents the UI state
type Model struct {
	cfg       *config.Config
	registry  *builder.Registry
	loader    *catalog.Loader
	ignore    *ignore.Sync
	selection selection.Selection
	runner    Runner
	bus       eventbus.EventBus
	logger    *zap.Logger
	copyText  func(string) error

	keys         keyMap
	help         help.Model
	styles       *views.Styles
	entries      *views.EntryRenderer
	helpRenderer *HelpRenderer
	pager        *PagerOps

	width  int
	height int
	active int

	forms   []*ScriptForm
	runForm *ScriptForm
	preview string

	picker    *selection.Picker
	search    textinput.Model
	searching bool
	cursor    int
	loading   bool
	loadState domain.LoadState

	overwrite      bool
	confirmPending bool
	applying       bool
	applyResults   []remote.ApplyResult

	running bool
	lastRun *remote.RunResponse

	status      string
	statusKind  statusKind
	inPagerMode bool

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model
func NewModel(deps Deps) *Model {
	if deps.Config == nil {
		deps.Config = config.DefaultConfig()
	}
	if deps.Registry == nil {
		deps.Registry = builder.NewRegistry(deps.Config.Scripts.Python)
	}
	if deps.Selection == nil {
		deps.Selection = selection.New(deps.Bus)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "name, id or type:JV_F_L"
	search.CharLimit = 128

	styles := views.NewStyles()
	m := &Model{
		cfg:          deps.Config,
		registry:     deps.Registry,
		loader:       deps.Catalog,
		ignore:       deps.Ignore,
		selection:    deps.Selection,
		runner:       deps.Runner,
		bus:          deps.Bus,
		logger:       deps.Logger.Named("ui"),
		copyText:     deps.Clipboard,
		keys:         newKeyMap(),
		help:         help.New(),
		styles:       styles,
		entries:      views.NewEntryRenderer(styles),
		helpRenderer: NewHelpRenderer(),
		pager:        NewPagerOps(),
		forms:        NewScriptForms(),
		runForm:      &ScriptForm{Script: builder.ScriptPipeline, Fields: pipelineFields()},
		search:       search,
	}

	var lookup selection.IgnoreLookup
	if m.ignore != nil {
		lookup = m.ignore
	}
	m.picker = selection.NewPicker(m.selection, lookup)

	for _, f := range m.forms {
		f.Fields[0].focus()
	}
	m.runForm.Fields[0].focus()
	m.refreshPreview()
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.pager.SetProgram(p)
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	if !m.cfg.UI.LoadOnStart {
		return textinput.Blink
	}
	m.loading = true
	return tea.Batch(textinput.Blink, m.loadCatalog(false), m.loadIgnore())
}

func (m *Model) tabTitles() []string {
	titles := make([]string, 0, len(m.forms)+3)
	for _, f := range m.forms {
		title := string(f.Script)
		if b, ok := m.registry.Get(f.Script); ok {
			title = b.Title()
		}
		titles = append(titles, title)
	}
	return append(titles, "Selection", "Ignore", "Run")
}

func (m *Model) selectionTab() int { return len(m.forms) }
func (m *Model) ignoreTab() int    { return len(m.forms) + 1 }
func (m *Model) runTab() int       { return len(m.forms) + 2 }
func (m *Model) tabCount() int     { return len(m.forms) + 3 }

// currentForm returns the form of the active tab, or nil
func (m *Model) currentForm() *ScriptForm {
	switch {
	case m.active < len(m.forms):
		return m.forms[m.active]
	case m.active == m.runTab():
		return m.runForm
	}
	return nil
}

func (m *Model) setTab(i int) {
	n := m.tabCount()
	m.active = ((i % n) + n) % n
	m.confirmPending = false
	m.refreshPreview()
}

// refreshPreview rebuilds the command for the active form. It runs from
// Update only; View never builds commands.
func (m *Model) refreshPreview() {
	f := m.currentForm()
	if f == nil {
		m.preview = ""
		return
	}
	m.preview = m.registry.Preview(f.Script, builder.Input{
		Form:      f.Values(),
		Selection: m.selection.Entries(),
	})
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.inPagerMode {
			return m, nil
		}
		return m, m.handleKey(msg)

	default:
		return m, m.handleNonKeyboardMsg(msg)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.ForceQuit) {
		return tea.Quit
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		m.setTab(m.active + 1)
		return nil
	case key.Matches(msg, m.keys.PrevTab):
		m.setTab(m.active - 1)
		return nil
	case key.Matches(msg, m.keys.Copy):
		return m.copyPreview()
	case key.Matches(msg, m.keys.Pager):
		if m.preview == "" {
			return nil
		}
		return m.showInPager("Command", m.preview+"\n")
	case key.Matches(msg, m.keys.Reload):
		return m.reload()
	}

	switch m.active {
	case m.selectionTab():
		return m.handleSelectionKey(msg)
	case m.ignoreTab():
		return m.handleIgnoreKey(msg)
	case m.runTab():
		if key.Matches(msg, m.keys.Run) {
			return m.startRun()
		}
		if key.Matches(msg, m.keys.Output) && m.lastRun != nil {
			r := m.lastRun
			return m.showInPager("Pipeline run", formatRunOutput(r.Command, r.ReturnCode, r.Stdout, r.Stderr))
		}
		return m.handleFormKey(m.runForm, msg)
	default:
		return m.handleFormKey(m.forms[m.active], msg)
	}
}

func (m *Model) handleFormKey(f *ScriptForm, msg tea.KeyMsg) tea.Cmd {
	field := f.Focused()
	if field == nil {
		return nil
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Up):
		cmd = f.MoveFocus(-1)
	case key.Matches(msg, m.keys.Down):
		cmd = f.MoveFocus(1)
	case field.Kind == FieldText:
		cmd = field.update(msg)
	case key.Matches(msg, m.keys.Activate):
		field.Activate()
	case key.Matches(msg, m.keys.Left):
		field.Shift(-1)
	case key.Matches(msg, m.keys.Right):
		field.Shift(1)
	case key.Matches(msg, m.keys.Help):
		return m.showHelp()
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	default:
		return nil
	}

	m.clearStatus()
	m.refreshPreview()
	return cmd
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Run) {
		m.searching = false
		m.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.picker.SetQuery(m.search.Value())
	m.cursor = 0
	return cmd
}

func (m *Model) handleSelectionKey(msg tea.KeyMsg) tea.Cmd {
	items := m.picker.Items()
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m.search.Focus()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Activate):
		if m.cursor < len(items) {
			entry := items[m.cursor].Value
			if m.selection.Toggle(entry) {
				m.setStatus(statusInfo, "Selected "+entry.Identity().Key())
			} else {
				m.setStatus(statusInfo, "Removed "+entry.Identity().Key())
			}
			m.refreshPreview()
		}
	case key.Matches(msg, m.keys.Filter):
		mode := m.picker.CycleMode()
		m.cursor = 0
		m.setStatus(statusInfo, "Filter: "+mode.String())
	case key.Matches(msg, m.keys.Clear):
		m.selection.Clear()
		m.refreshPreview()
		m.setStatus(statusInfo, "Selection cleared")
	case key.Matches(msg, m.keys.Help):
		return m.showHelp()
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	}
	return nil
}

func (m *Model) handleIgnoreKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Overwrite):
		m.overwrite = !m.overwrite
		m.confirmPending = false
	case key.Matches(msg, m.keys.Apply):
		return m.startApply()
	case key.Matches(msg, m.keys.Help):
		return m.showHelp()
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	}
	return nil
}

// startApply submits the selection to the ignore list. The action is
// disabled while an apply is in flight.
func (m *Model) startApply() tea.Cmd {
	if m.ignore == nil {
		m.setStatus(statusError, "Ignore list is not configured")
		return nil
	}
	if m.applying || m.ignore.Pending() {
		m.setStatus(statusWarning, "Apply already in progress")
		return nil
	}
	entries := m.selection.Entries()
	if len(entries) == 0 {
		m.setStatus(statusWarning, "Nothing selected")
		return nil
	}
	if m.cfg.UI.ConfirmApply && !m.confirmPending {
		m.confirmPending = true
		m.setStatus(statusWarning, fmt.Sprintf("Apply %d entries to the ignore list? Press a again to confirm", len(entries)))
		return nil
	}

	m.confirmPending = false
	m.applying = true
	m.setStatus(statusInfo, "Applying...")

	sync := m.ignore
	overwrite := m.overwrite
	return func() tea.Msg {
		outcome, err := sync.Apply(context.Background(), overwrite, entries)
		return applyDoneMsg{outcome: outcome, err: err}
	}
}

func (m *Model) startRun() tea.Cmd {
	if m.runner == nil {
		m.setStatus(statusError, "Server is not configured")
		return nil
	}
	if m.running {
		m.setStatus(statusWarning, "Run already in progress")
		return nil
	}

	v := m.runForm.Values()
	req := remote.RunRequest{
		LogLevel: strings.ToUpper(v.Text(builder.FieldLogLevel)),
		Steps:    v.Values(builder.FieldSteps),
		Skip:     v.Values(builder.FieldSkip),
	}
	if req.LogLevel == "" {
		req.LogLevel = builder.DefaultLogLevel
	}

	m.running = true
	m.setStatus(statusInfo, "Running pipeline...")

	runner := m.runner
	return func() tea.Msg {
		resp, err := runner.RunScript(context.Background(), req)
		return runDoneMsg{resp: resp, err: err}
	}
}

func (m *Model) copyPreview() tea.Cmd {
	if m.preview == "" {
		return nil
	}
	text := m.preview
	write := m.copyText
	return func() tea.Msg {
		return clipboardMsg{err: write(text)}
	}
}

func (m *Model) showHelp() tea.Cmd {
	return m.showInPager("", m.helpRenderer.RenderHelpContent())
}

func (m *Model) reload() tea.Cmd {
	if m.loader == nil {
		return nil
	}
	m.loading = true
	m.setStatus(statusInfo, "Reloading catalog...")
	return tea.Batch(m.loadCatalog(true), m.loadIgnore())
}

func (m *Model) loadCatalog(reload bool) tea.Cmd {
	loader := m.loader
	if loader == nil {
		return nil
	}
	return func() tea.Msg {
		var (
			res *catalog.Result
			err error
		)
		if reload {
			res, err = loader.Reload(context.Background())
		} else {
			res, err = loader.LoadAll(context.Background())
		}
		return catalogLoadedMsg{result: res, err: err}
	}
}

func (m *Model) loadIgnore() tea.Cmd {
	sync := m.ignore
	if sync == nil {
		return nil
	}
	return func() tea.Msg {
		return ignoreLoadedMsg{err: sync.Load(context.Background())}
	}
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case EventMsg:
		m.handleEvent(msg.Event)

	case catalogLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.logger.Error("catalog load failed", zap.Error(msg.err))
			m.setStatus(statusError, "Catalog load failed: "+msg.err.Error())
			return nil
		}
		m.loadState = msg.result.State()
		m.picker.SetCatalog(msg.result.Catalog)
		m.cursor = 0
		if len(msg.result.Failed) > 0 {
			m.setStatus(statusWarning, fmt.Sprintf("Loaded %d entries; failed sources: %s",
				len(msg.result.Catalog), strings.Join(msg.result.Failed, ", ")))
		} else {
			m.setStatus(statusSuccess, fmt.Sprintf("Loaded %d entries", len(msg.result.Catalog)))
		}

	case ignoreLoadedMsg:
		if msg.err != nil {
			m.setStatus(statusError, "Ignore list load failed: "+msg.err.Error())
		}

	case applyDoneMsg:
		m.applying = false
		if msg.err != nil {
			m.setStatus(statusError, "Apply failed: "+errorText(msg.err))
			return nil
		}
		m.applyResults = msg.outcome.Results
		kind := statusSuccess
		if msg.outcome.Failed > 0 {
			kind = statusWarning
		}
		m.setStatus(kind, fmt.Sprintf("Added %d, updated %d, already present %d, failed %d",
			msg.outcome.Added, msg.outcome.Updated, msg.outcome.Exists, msg.outcome.Failed))

	case runDoneMsg:
		m.running = false
		if msg.err != nil {
			m.setStatus(statusError, "Run failed: "+errorText(msg.err))
			return nil
		}
		m.lastRun = msg.resp
		if m.bus != nil {
			m.bus.Publish(domain.RunCompletedEvent{ReturnCode: msg.resp.ReturnCode, Command: msg.resp.Command})
		}
		kind := statusSuccess
		if msg.resp.ReturnCode != 0 {
			kind = statusWarning
		}
		m.setStatus(kind, fmt.Sprintf("Pipeline exited with code %d (v to view output)", msg.resp.ReturnCode))

	case clipboardMsg:
		if msg.err != nil {
			m.setStatus(statusError, "Copy failed: "+msg.err.Error())
		} else {
			m.setStatus(statusSuccess, "Command copied to clipboard")
		}

	case pagerMsg:
		if msg.err != nil {
			m.logger.Warn("pager failed", zap.Error(msg.err))
			m.setStatus(statusError, "Pager failed: "+msg.err.Error())
		}

	case pauseRenderingMsg:
		m.inPagerMode = true

	case resumeRenderingMsg:
		m.inPagerMode = false

	default:
		// cursor blink and other component messages go to the focused input
		if m.searching {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return cmd
		}
		if f := m.currentForm(); f != nil {
			if field := f.Focused(); field != nil {
				return field.update(msg)
			}
		}
	}
	return nil
}

func (m *Model) handleEvent(event eventbus.DomainEvent) {
	switch e := event.(type) {
	case domain.CommandFallbackEvent:
		m.setStatus(statusWarning, fmt.Sprintf("Using the default %s command: %v", e.Script, e.Err))
	case domain.ErrorEvent:
		if e.Err != nil {
			m.setStatus(statusError, e.Message+": "+errorText(e.Err))
		} else {
			m.setStatus(statusError, e.Message)
		}
	case domain.CatalogLoadStartedEvent:
		m.loading = true
	case domain.ConfigSavedEvent:
		m.setStatus(statusInfo, "Config saved to "+e.Path)
	}
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.status = text
	m.statusKind = kind
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusKind = statusInfo
}

// errorText prefers the server's message for endpoint errors
func errorText(err error) string {
	if httpErr, ok := remote.IsHTTPError(err); ok {
		return fmt.Sprintf("%s (HTTP %d)", httpErr.Message, httpErr.Status)
	}
	if errors.Is(err, ignore.ErrApplyInProgress) {
		return "apply already in progress"
	}
	return err.Error()
}
