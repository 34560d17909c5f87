// Package catalog loads the factory catalog from several JSON sources.
//
// A Loader runs at most one sweep at a time. Callers arriving while a sweep is
// in flight share its result, and a finished sweep is memoized until Reset.
// Failing sources are recorded and contribute nothing; they never abort the
// other sources. A sweep in which every source failed is returned but not
// memoized, so the next LoadAll tries again.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"opconsole/internal/domain"
	"opconsole/internal/eventbus"
)

const flightKey = "catalog"

// Source is one catalog document
type Source struct {
	Type  domain.SourceType
	Label string
	URL   string
}

// Result is the outcome of one sweep
type Result struct {
	Catalog domain.Catalog
	Failed  []string // labels of the sources that failed, in source order
	Errors  map[string]error
	Loaded  bool
}

// State converts the result to the shared LoadState shape
func (r *Result) State() domain.LoadState {
	return domain.LoadState{
		Loaded:       r.Loaded,
		ErrorSources: append([]string(nil), r.Failed...),
		Catalog:      r.Catalog,
	}
}

// Loader fetches, normalizes, merges and memoizes the catalog
type Loader struct {
	client  *http.Client
	sources []Source
	logger  *zap.Logger
	bus     eventbus.EventBus

	group   singleflight.Group
	mu      sync.Mutex
	cached  *Result
	gen     uint64 // bumped by Reset; a sweep started under an older gen is not stored
	fetches atomic.Int64
	sweeps  atomic.Int64
}

// Option configures a Loader
type Option func(*Loader)

// WithLogger sets the loader's logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithBus publishes sweep start/finish events on bus
func WithBus(bus eventbus.EventBus) Option {
	return func(l *Loader) {
		l.bus = bus
	}
}

// NewLoader creates a loader over the given sources
func NewLoader(client *http.Client, sources []Source, opts ...Option) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	l := &Loader{
		client:  client,
		sources: append([]Source(nil), sources...),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named("catalog")
	return l
}

// Sources returns the configured sources
func (l *Loader) Sources() []Source {
	return append([]Source(nil), l.sources...)
}

// LoadAll returns the memoized catalog, joins the sweep in flight, or starts a
// new one. The sweep itself is not tied to ctx: it runs to completion even if
// this caller stops waiting.
func (l *Loader) LoadAll(ctx context.Context) (*Result, error) {
	if r := l.Cached(); r != nil {
		return r, nil
	}

	sweepCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(flightKey, func() (any, error) {
		return l.sweep(sweepCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Result), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Reload drops the memoized catalog and loads again
func (l *Loader) Reload(ctx context.Context) (*Result, error) {
	l.Reset()
	return l.LoadAll(ctx)
}

// Cached returns the memoized result, or nil
func (l *Loader) Cached() *Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cached
}

// Reset clears the memoized result so the next LoadAll sweeps again
func (l *Loader) Reset() {
	l.mu.Lock()
	l.cached = nil
	l.gen++
	l.mu.Unlock()
	l.group.Forget(flightKey)
}

// Fetches returns the number of source requests issued so far
func (l *Loader) Fetches() int64 {
	return l.fetches.Load()
}

// Sweeps returns the number of sweeps started so far
func (l *Loader) Sweeps() int64 {
	return l.sweeps.Load()
}

func (l *Loader) sweep(ctx context.Context) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("catalog sweep panicked", zap.Any("panic", r))
			res, err = nil, fmt.Errorf("catalog sweep failed: %v", r)
			l.publish(eventbus.ErrorEvent{Message: "Catalog load failed", Err: err})
		}
	}()

	// A sweep that finished between the caller's cache check and joining
	// the flight has already stored its result.
	l.mu.Lock()
	cached, gen := l.cached, l.gen
	l.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	l.sweeps.Add(1)
	l.publish(eventbus.CatalogLoadStartedEvent{Sources: len(l.sources)})
	l.logger.Info("catalog sweep started", zap.Int("sources", len(l.sources)))

	parts := make([][]domain.CatalogEntry, len(l.sources))
	errs := make([]error, len(l.sources))

	var g errgroup.Group
	for i, src := range l.sources {
		g.Go(func() error {
			parts[i], errs[i] = l.loadSource(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	res = &Result{Errors: make(map[string]error), Loaded: true}
	for i, src := range l.sources {
		if errs[i] != nil {
			label := src.label()
			res.Failed = append(res.Failed, label)
			res.Errors[label] = errs[i]
			l.logger.Warn("catalog source failed",
				zap.String("source", label),
				zap.String("url", src.URL),
				zap.Error(errs[i]))
			continue
		}
		res.Catalog = append(res.Catalog, parts[i]...)
	}
	Sort(res.Catalog)

	l.store(gen, res)

	l.logger.Info("catalog sweep finished",
		zap.Int("entries", len(res.Catalog)),
		zap.Strings("failed", res.Failed))
	l.publish(eventbus.CatalogLoadedEvent{State: res.State()})
	return res, nil
}

func (l *Loader) store(gen uint64, res *Result) {
	if len(l.sources) > 0 && len(res.Failed) == len(l.sources) {
		l.logger.Warn("every catalog source failed, not caching the result")
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		l.logger.Debug("catalog reset during sweep, discarding result")
		return
	}
	l.cached = res
}

func (l *Loader) loadSource(ctx context.Context, src Source) (entries []domain.CatalogEntry, err error) {
	defer func() {
		if r := recover(); r != nil {
			entries, err = nil, fmt.Errorf("source %s: %v", src.label(), r)
		}
	}()

	l.fetches.Add(1)
	elements, err := FetchArray(ctx, l.client, src.URL)
	if err != nil {
		return nil, err
	}

	entries = make([]domain.CatalogEntry, 0, len(elements))
	skipped := 0
	for _, raw := range elements {
		entry, ok := Normalize(src.Type, raw)
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, entry)
	}
	if skipped > 0 {
		l.logger.Debug("skipped elements without id",
			zap.String("source", src.label()),
			zap.Int("skipped", skipped))
	}
	return entries, nil
}

func (l *Loader) publish(event eventbus.DomainEvent) {
	if l.bus != nil {
		l.bus.Publish(event)
	}
}

func (s Source) label() string {
	if s.Label != "" {
		return s.Label
	}
	return string(s.Type)
}
