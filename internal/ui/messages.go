package ui

import (
	"opconsole/internal/catalog"
	"opconsole/internal/eventbus"
	"opconsole/internal/ignore"
	"opconsole/internal/remote"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// catalogLoadedMsg carries the result of a catalog sweep
type catalogLoadedMsg struct {
	result *catalog.Result
	err    error
}

// ignoreLoadedMsg signals that the ignore key set was (re)loaded
type ignoreLoadedMsg struct {
	err error
}

// applyDoneMsg carries the result of an ignore apply
type applyDoneMsg struct {
	outcome *ignore.Outcome
	err     error
}

// runDoneMsg carries the result of a remote pipeline run
type runDoneMsg struct {
	resp *remote.RunResponse
	err  error
}

// clipboardMsg reports the outcome of a copy
type clipboardMsg struct {
	err error
}

// pagerMsg reports that the pager exited
type pagerMsg struct {
	err error
}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}
