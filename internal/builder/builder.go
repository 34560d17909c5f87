// Package builder turns form state into shell lines for the external script set.
//
// Each builder honors its script's flag contract: optional flags are only
// emitted when they differ from the script's own default, multi-valued fields
// repeat the flag once per value, and toggles are bare flags or absent.
package builder

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"opconsole/internal/domain"
	"opconsole/internal/eventbus"
	"opconsole/internal/form"
	"opconsole/internal/shell"
)

// ErrUnknownScript is returned for a script id with no registered builder
var ErrUnknownScript = errors.New("unknown script")

// ScriptID names one external script
type ScriptID string

const (
	ScriptLogin    ScriptID = "login"
	ScriptSync     ScriptID = "sync"
	ScriptItems    ScriptID = "items"
	ScriptExport   ScriptID = "export"
	ScriptHTML     ScriptID = "html"
	ScriptKill     ScriptID = "kill"
	ScriptClean    ScriptID = "clean"
	ScriptPipeline ScriptID = "pipeline"
)

// Input is everything a builder may read
type Input struct {
	Form      form.Form
	Selection []domain.SelectionEntry
}

// Builder assembles one script invocation
type Builder interface {
	Script() ScriptID
	Title() string
	// Default is the fixed invocation used when building fails
	Default() string
	Build(in Input) (string, error)
}

// Registry holds one builder per script
type Registry struct {
	builders map[ScriptID]Builder
	order    []ScriptID
	logger   *zap.Logger
	bus      eventbus.EventBus
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used to report fallbacks
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithBus publishes a CommandFallbackEvent whenever a default is used
func WithBus(bus eventbus.EventBus) Option {
	return func(r *Registry) {
		r.bus = bus
	}
}

// NewRegistry creates a registry with every known builder. python is the
// interpreter placed in front of each script name.
func NewRegistry(python string, opts ...Option) *Registry {
	if python == "" {
		python = DefaultPython
	}
	r := &Registry{
		builders: make(map[ScriptID]Builder),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.Register(NewLoginBuilder(python))
	r.Register(NewSyncBuilder(python))
	r.Register(NewItemsBuilder(python))
	r.Register(NewExportBuilder(python))
	r.Register(NewHTMLBuilder(python))
	r.Register(NewKillBuilder(python))
	r.Register(NewCleanBuilder(python))
	r.Register(NewPipelineBuilder(python))
	return r
}

// Register adds or replaces a builder
func (r *Registry) Register(b Builder) {
	if _, exists := r.builders[b.Script()]; !exists {
		r.order = append(r.order, b.Script())
	}
	r.builders[b.Script()] = b
}

// Get returns the builder for a script
func (r *Registry) Get(id ScriptID) (Builder, bool) {
	b, ok := r.builders[id]
	return b, ok
}

// Scripts returns the registered script ids in registration order
func (r *Registry) Scripts() []ScriptID {
	return append([]ScriptID(nil), r.order...)
}

// SortedScripts returns the registered script ids alphabetically
func (r *Registry) SortedScripts() []ScriptID {
	ids := r.Scripts()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Build assembles the command for a script without any fallback
func (r *Registry) Build(id ScriptID, in Input) (line string, err error) {
	b, ok := r.builders[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownScript, id)
	}
	defer func() {
		if rec := recover(); rec != nil {
			line = ""
			err = fmt.Errorf("builder %s panicked: %v", id, rec)
		}
	}()
	if in.Form == nil {
		in.Form = form.Values{}
	}
	return b.Build(in)
}

// Preview assembles the command for a script. When building fails for any
// reason the script's default invocation is returned instead; the failure is
// logged and never reaches the caller.
func (r *Registry) Preview(id ScriptID, in Input) string {
	b, ok := r.builders[id]
	if !ok {
		r.logger.Warn("preview requested for unknown script", zap.String("script", string(id)))
		return ""
	}
	line, err := r.Build(id, in)
	if err != nil {
		r.logger.Warn("command build failed, using default",
			zap.String("script", string(id)),
			zap.Error(err))
		if r.bus != nil {
			r.bus.Publish(eventbus.CommandFallbackEvent{Script: string(id), Err: err})
		}
		return b.Default()
	}
	return line
}

// argv accumulates tokens for one command line
type argv struct {
	tokens []any
}

func newArgv(python, script string) *argv {
	return &argv{tokens: []any{python, script}}
}

func (a *argv) add(tokens ...any) {
	a.tokens = append(a.tokens, tokens...)
}

// flag appends a bare flag when on
func (a *argv) flag(name string, on bool) {
	if on {
		a.tokens = append(a.tokens, name)
	}
}

// option appends "name value" unless value is empty or equals def
func (a *argv) option(name, value, def string) {
	if value == "" || value == def {
		return
	}
	a.tokens = append(a.tokens, name, value)
}

// repeat appends "name value" once per value, in order
func (a *argv) repeat(name string, values []string) {
	for _, v := range values {
		if v == "" {
			continue
		}
		a.tokens = append(a.tokens, name, v)
	}
}

// list appends "name v1 v2 ..." with the flag given once, for options that
// take several values after a single flag. Nothing is appended without values.
func (a *argv) list(name string, values []string) {
	var set []any
	for _, v := range values {
		if v != "" {
			set = append(set, v)
		}
	}
	if len(set) > 0 {
		a.tokens = append(append(a.tokens, name), set...)
	}
}

// intOption appends "name n" when the field holds an integer
func (a *argv) intOption(name string, f form.Form, field string) {
	if n, ok := f.Int(field); ok {
		a.tokens = append(a.tokens, name, n)
	}
}

func (a *argv) String() string {
	return shell.Join(a.tokens...)
}

func defaultLine(python, script string) string {
	return shell.Join(python, script)
}

// choice validates value against the allowed set. Empty is always allowed.
func choice(field, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q (allowed: %v)", field, value, allowed)
}
