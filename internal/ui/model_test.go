package ui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opconsole/internal/builder"
	"opconsole/internal/catalog"
	"opconsole/internal/config"
	"opconsole/internal/domain"
	"opconsole/internal/eventbus"
	"opconsole/internal/ignore"
	"opconsole/internal/remote"
	"opconsole/internal/selection"
)

type fakeRunner struct {
	mu   sync.Mutex
	reqs []remote.RunRequest
	resp *remote.RunResponse
	err  error
}

func (f *fakeRunner) RunScript(_ context.Context, req remote.RunRequest) (*remote.RunResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.resp, f.err
}

type fakeApplier struct {
	mu   sync.Mutex
	reqs []remote.ApplyRequest
}

func (f *fakeApplier) ApplyIgnore(_ context.Context, req remote.ApplyRequest) (*remote.ApplyResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	resp := &remote.ApplyResponse{IgnoreKeys: []string{}}
	for _, s := range req.Selections {
		resp.Results = append(resp.Results, remote.ApplyResult{Type: s.Type, ID: s.ID, Name: s.Name, Status: remote.StatusAdded})
		resp.IgnoreKeys = append(resp.IgnoreKeys, s.Type+"::"+s.ID)
	}
	return resp, nil
}

type testModel struct {
	*Model
	runs    *fakeRunner
	applies *fakeApplier
	copied  []string
}

func newTestModel(t *testing.T, configure func(*config.Config)) *testModel {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.UI.LoadOnStart = false
	cfg.UI.ConfirmApply = false
	if configure != nil {
		configure(cfg)
	}

	tm := &testModel{
		runs:    &fakeRunner{resp: &remote.RunResponse{Command: "python main.py"}},
		applies: &fakeApplier{},
	}
	tm.Model = NewModel(Deps{
		Config:    cfg,
		Registry:  builder.NewRegistry("python"),
		Catalog:   catalog.NewLoader(nil, nil),
		Ignore:    ignore.NewSync(ignore.NewLoader(nil, nil, nil), tm.applies, nil, nil),
		Selection: selection.New(nil),
		Runner:    tm.runs,
		Clipboard: func(s string) error {
			tm.copied = append(tm.copied, s)
			return nil
		},
	})
	return tm
}

func (tm *testModel) send(msg tea.Msg) tea.Cmd {
	_, cmd := tm.Update(msg)
	return cmd
}

func (tm *testModel) press(keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		cmd = tm.send(k)
	}
	return cmd
}

func keyType(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

var testCatalog = domain.Catalog{
	{Type: domain.SourceJVCollections, ID: "c1", Name: "Alpha"},
	{Type: domain.SourceXLProducts, ID: "p7", Name: "Beta"},
}

func (tm *testModel) loadCatalog() {
	tm.send(catalogLoadedMsg{result: &catalog.Result{Catalog: testCatalog, Loaded: true}})
}

func TestInitialPreviewIsLoginDefault(t *testing.T) {
	tm := newTestModel(t, nil)
	assert.Equal(t, "python Login.py", tm.preview)
	assert.Contains(t, tm.View(), "python Login.py")
}

func TestFormEditsRefreshPreview(t *testing.T) {
	tm := newTestModel(t, nil)

	tm.press(space)
	assert.Equal(t, "python Login.py --account JV", tm.preview)

	tm.press(keyType(tea.KeyDown), space)
	assert.Equal(t, "python Login.py --account JV --verbose", tm.preview)

	tm.press(space)
	assert.Equal(t, "python Login.py --account JV", tm.preview)
}

func TestTabsCycleAndPreviewFollows(t *testing.T) {
	tm := newTestModel(t, nil)

	for range 5 {
		tm.press(keyType(tea.KeyTab))
	}
	assert.Equal(t, builder.ScriptKill, tm.currentForm().Script)
	assert.Equal(t, "python killFabriks.py", tm.preview)

	tm.setTab(0)
	tm.press(keyType(tea.KeyShiftTab))
	assert.Equal(t, tm.runTab(), tm.active)
	assert.Equal(t, "python main.py", tm.preview)

	tm.press(keyType(tea.KeyShiftTab))
	assert.Equal(t, tm.ignoreTab(), tm.active)
	assert.Empty(t, tm.preview)
}

func TestTextFieldTakesPrintableKeys(t *testing.T) {
	tm := newTestModel(t, nil)
	tm.setTab(2) // items: account, limit, dataset, verbose

	tm.press(keyType(tea.KeyDown))
	cmd := tm.press(keyRunes("q"))
	if cmd != nil {
		_, quit := cmd().(tea.QuitMsg)
		assert.False(t, quit, "q in a text field must not quit")
	}
	tm.press(keyType(tea.KeyBackspace), keyRunes("25"))
	assert.Equal(t, "python getItems.py --limit 25", tm.preview)
}

func TestNonIntegerLimitIsDropped(t *testing.T) {
	tm := newTestModel(t, nil)
	tm.setTab(2)

	tm.press(keyType(tea.KeyDown), keyRunes("many"))
	assert.Equal(t, "many", tm.forms[2].Field(builder.FieldLimit).Text())
	assert.Equal(t, "python getItems.py", tm.preview)

	tm.forms[2].Field(builder.FieldLimit).SetText("5")
	tm.refreshPreview()
	assert.Equal(t, "python getItems.py --limit 5", tm.preview)
}

func TestCopyWritesPreviewToClipboard(t *testing.T) {
	tm := newTestModel(t, nil)
	tm.press(space)

	cmd := tm.press(keyType(tea.KeyCtrlY))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, clipboardMsg{}, msg)
	assert.Equal(t, []string{"python Login.py --account JV"}, tm.copied)

	tm.send(msg)
	assert.Equal(t, "Command copied to clipboard", tm.status)
}

func TestCopyFailureIsReported(t *testing.T) {
	tm := newTestModel(t, nil)
	tm.copyText = func(string) error { return errors.New("no clipboard utility") }

	cmd := tm.press(keyType(tea.KeyCtrlY))
	require.NotNil(t, cmd)
	tm.send(cmd())
	assert.Equal(t, statusError, tm.statusKind)
	assert.Contains(t, tm.status, "no clipboard utility")
}

func TestSelectionTogglesAndFeedsCleanup(t *testing.T) {
	tm := newTestModel(t, nil)
	tm.loadCatalog()
	assert.Equal(t, "Loaded 2 entries", tm.status)

	tm.setTab(tm.selectionTab())
	tm.press(space)
	require.Equal(t, 1, tm.selection.Len())
	assert.True(t, tm.selection.IsSelected(domain.SourceJVCollections, "c1"))
	assert.Contains(t, tm.View(), "Selected (1)")

	tm.setTab(5)
	assert.Contains(t, tm.preview, "add_ignore_entry")
	assert.Contains(t, tm.preview, "c1")

	tm.setTab(tm.selectionTab())
	tm.press(space)
	assert.Zero(t, tm.selection.Len())
}

func TestSelectionCursorAndClear(t *testing.T) {
	tm := newTestModel(t, nil)
	tm.loadCatalog()
	tm.setTab(tm.selectionTab())

	tm.press(keyType(tea.KeyDown), space, keyType(tea.KeyDown), keyType(tea.KeyUp), space)
	assert.Equal(t, 2, tm.selection.Len())

	tm.press(keyRunes("c"))
	assert.Zero(t, tm.selection.Len())
	assert.Equal(t, "Selection cleared", tm.status)
}

func TestSearchNarrowsPicker(t *testing.T) {
	tm := newTestModel(t, nil)
	tm.loadCatalog()
	tm.setTab(tm.selectionTab())

	tm.press(keyRunes("/"))
	require.True(t, tm.searching)
	tm.press(keyRunes("b"), keyRunes("e"), keyRunes("t"))
	assert.Equal(t, "bet", tm.picker.Query())
	items := tm.picker.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p7", items[0].Value.ID)

	// keys go to the search box until it is closed
	tm.press(keyRunes("c"))
	assert.Equal(t, "betc", tm.picker.Query())
	tm.press(keyType(tea.KeyBackspace), keyType(tea.KeyEsc))
	assert.False(t, tm.searching)

	tm.press(space)
	assert.True(t, tm.selection.IsSelected(domain.SourceXLProducts, "p7"))
}

func TestFilterModeCycles(t *testing.T) {
	tm := newTestModel(t, nil)
	tm.loadCatalog()
	tm.setTab(tm.selectionTab())

	tm.press(keyRunes("f"))
	assert.Equal(t, selection.FilterNotIgnored, tm.picker.Mode())
	tm.press(keyRunes("f"))
	assert.Equal(t, selection.FilterIgnored, tm.picker.Mode())
	assert.Empty(t, tm.picker.Items())
}

func TestCatalogPartialFailureIsWarning(t *testing.T) {
	tm := newTestModel(t, nil)
	tm.send(catalogLoadedMsg{result: &catalog.Result{
		Catalog: testCatalog[:1],
		Failed:  []string{"XL_F_P"},
		Loaded:  true,
	}})
	assert.Equal(t, statusWarning, tm.statusKind)
	assert.Contains(t, tm.status, "XL_F_P")

	tm.setTab(tm.selectionTab())
	assert.Contains(t, tm.View(), "Failed sources: XL_F_P")
}

func TestApplyNeedsSelection(t *testing.T) {
	tm := newTestModel(t, nil)
	tm.setTab(tm.ignoreTab())

	assert.Nil(t, tm.press(keyRunes("a")))
	assert.Equal(t, "Nothing selected", tm.status)
	assert.Empty(t, tm.applies.reqs)
}

func TestApplyConfirmsThenUpdatesIgnoreKeys(t *testing.T) {
	tm := newTestModel(t, func(c *config.Config) { c.UI.ConfirmApply = true })
	tm.loadCatalog()
	tm.setTab(tm.selectionTab())
	tm.press(space)

	tm.setTab(tm.ignoreTab())
	tm.press(keyRunes("o"))
	assert.True(t, tm.overwrite)

	assert.Nil(t, tm.press(keyRunes("a")))
	assert.True(t, tm.confirmPending)

	cmd := tm.press(keyRunes("a"))
	require.NotNil(t, cmd)
	assert.True(t, tm.applying)

	// a second apply while the first is in flight is refused
	assert.Nil(t, tm.press(keyRunes("a")))
	assert.Equal(t, "Apply already in progress", tm.status)

	tm.send(cmd())
	assert.False(t, tm.applying)
	require.Len(t, tm.applies.reqs, 1)
	assert.True(t, tm.applies.reqs[0].Overwrite)
	assert.Equal(t, []remote.ApplySelection{{Type: "JV_F_L", ID: "c1", Name: "Alpha"}}, tm.applies.reqs[0].Selections)

	require.Len(t, tm.applyResults, 1)
	assert.Equal(t, "Added 1, updated 0, already present 0, failed 0", tm.status)
	assert.True(t, tm.isIgnored(domain.Identity{Type: domain.SourceJVCollections, ID: "c1"}))
	assert.Contains(t, tm.View(), "ignored")
}

func TestApplyErrorShowsServerMessage(t *testing.T) {
	tm := newTestModel(t, nil)
	tm.send(applyDoneMsg{err: &remote.HTTPError{Status: 400, Message: "Keine Auswahl"}})
	assert.Equal(t, statusError, tm.statusKind)
	assert.Equal(t, "Apply failed: Keine Auswahl (HTTP 400)", tm.status)
}

func TestRunSendsPipelineRequest(t *testing.T) {
	tm := newTestModel(t, nil)
	tm.setTab(tm.runTab())

	tm.press(space) // steps: login
	assert.Equal(t, "python main.py --steps login", tm.preview)
	tm.press(keyType(tea.KeyRight), keyType(tea.KeyRight), space) // and items
	assert.Equal(t, "python main.py --steps login items", tm.preview)

	cmd := tm.press(keyType(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, tm.running)
	assert.Nil(t, tm.press(keyType(tea.KeyEnter)), "no second run while one is in flight")

	tm.send(cmd())
	require.Len(t, tm.runs.reqs, 1)
	assert.Equal(t, remote.RunRequest{LogLevel: "INFO", Steps: []string{"login", "items"}, Skip: []string{}}, tm.runs.reqs[0])
	assert.False(t, tm.running)
	require.NotNil(t, tm.lastRun)
	assert.Equal(t, "Pipeline exited with code 0 (v to view output)", tm.status)
	assert.Contains(t, tm.View(), "$ python main.py")
}

func TestRunFailureKeepsLastRun(t *testing.T) {
	tm := newTestModel(t, nil)
	tm.runs.err = &remote.HTTPError{Status: 500, Message: "main.py not found"}
	tm.setTab(tm.runTab())

	cmd := tm.press(keyType(tea.KeyEnter))
	require.NotNil(t, cmd)
	tm.send(cmd())
	assert.Nil(t, tm.lastRun)
	assert.Equal(t, "Run failed: main.py not found (HTTP 500)", tm.status)
}

func TestBusEventsUpdateStatus(t *testing.T) {
	tm := newTestModel(t, nil)

	tm.send(EventMsg{Event: eventbus.CommandFallbackEvent{Script: "export", Err: errors.New("variant: bad")}})
	assert.Equal(t, statusWarning, tm.statusKind)
	assert.Contains(t, tm.status, "variant: bad")

	tm.send(EventMsg{Event: eventbus.ErrorEvent{Message: "Catalog load failed"}})
	assert.Equal(t, statusError, tm.statusKind)
	assert.Equal(t, "Catalog load failed", tm.status)

	tm.send(EventMsg{Event: eventbus.CatalogLoadStartedEvent{Sources: 4}})
	assert.True(t, tm.loading)
}

func TestPagerModeSuspendsInput(t *testing.T) {
	tm := newTestModel(t, nil)
	tm.send(pauseRenderingMsg{})
	assert.Empty(t, tm.View())

	tm.press(space)
	assert.Equal(t, "python Login.py", tm.preview)

	tm.send(resumeRenderingMsg{})
	assert.NotEmpty(t, tm.View())
}

func TestQuitKeys(t *testing.T) {
	tm := newTestModel(t, nil)

	cmd := tm.press(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	cmd = tm.press(keyType(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestInitLoadsWhenConfigured(t *testing.T) {
	tm := newTestModel(t, func(c *config.Config) { c.UI.LoadOnStart = true })
	assert.NotNil(t, tm.Init())
	assert.True(t, tm.loading)
}
