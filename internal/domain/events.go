package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventCatalogLoadStarted EventType = "CatalogLoadStarted"
	EventCatalogLoaded      EventType = "CatalogLoaded"
	EventIgnoreKeysLoaded   EventType = "IgnoreKeysLoaded"
	EventSelectionChanged   EventType = "SelectionChanged"
	EventIgnoreApplied      EventType = "IgnoreApplied"
	EventRunCompleted       EventType = "RunCompleted"
	EventCommandFallback    EventType = "CommandFallback"
	EventError              EventType = "Error"
	EventConfigSaved        EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// CatalogLoadStartedEvent is emitted when a sweep begins
type CatalogLoadStartedEvent struct {
	Sources int
}

func (e CatalogLoadStartedEvent) Type() EventType { return EventCatalogLoadStarted }

// CatalogLoadedEvent is emitted when a sweep finishes, including partial failures
type CatalogLoadedEvent struct {
	State LoadState
}

func (e CatalogLoadedEvent) Type() EventType { return EventCatalogLoaded }

// IgnoreKeysLoadedEvent is emitted whenever the ignore key set is replaced
type IgnoreKeysLoadedEvent struct {
	Count        int
	ErrorSources []string
}

func (e IgnoreKeysLoadedEvent) Type() EventType { return EventIgnoreKeysLoaded }

// SelectionChangedEvent is emitted after the selection is mutated
type SelectionChangedEvent struct {
	Added   []Identity
	Removed []Identity
	Total   int
}

func (e SelectionChangedEvent) Type() EventType { return EventSelectionChanged }

// IgnoreAppliedEvent is emitted after a successful apply round-trip
type IgnoreAppliedEvent struct {
	Added   int
	Updated int
	Exists  int
	Failed  int
}

func (e IgnoreAppliedEvent) Type() EventType { return EventIgnoreApplied }

// RunCompletedEvent is emitted when the remote run-script call returns
type RunCompletedEvent struct {
	ReturnCode int
	Command    string
}

func (e RunCompletedEvent) Type() EventType { return EventRunCompleted }

// CommandFallbackEvent is emitted when a builder failed and its default was used
type CommandFallbackEvent struct {
	Script string
	Err    error
}

func (e CommandFallbackEvent) Type() EventType { return EventCommandFallback }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
