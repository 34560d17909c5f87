package ignore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"opconsole/internal/domain"
	"opconsole/internal/eventbus"
	"opconsole/internal/remote"
	"opconsole/internal/selection"
)

var (
	// ErrApplyInProgress is returned when Apply is called while an earlier
	// apply has not finished
	ErrApplyInProgress = errors.New("ignore apply already in progress")
	// ErrNothingToApply is returned for an empty batch
	ErrNothingToApply = errors.New("no entries to apply")
)

// Applier submits a batch to the apply-ignore endpoint
type Applier interface {
	ApplyIgnore(ctx context.Context, req remote.ApplyRequest) (*remote.ApplyResponse, error)
}

// Outcome summarizes one successful apply
type Outcome struct {
	Results []remote.ApplyResult
	Added   int
	Updated int
	Exists  int
	Failed  int
	// FromServer is true when the key set was replaced from the response
	// rather than reloaded from the ignore sources
	FromServer bool
}

// Sync owns the current ignore key set
type Sync struct {
	loader  *Loader
	applier Applier
	bus     eventbus.EventBus
	logger  *zap.Logger

	mu      sync.RWMutex
	keys    KeySet
	failed  []string
	loaded  bool
	pending atomic.Bool
}

// NewSync creates a sync with an empty key set. bus and logger may be nil.
func NewSync(loader *Loader, applier Applier, bus eventbus.EventBus, logger *zap.Logger) *Sync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sync{
		loader:  loader,
		applier: applier,
		bus:     bus,
		logger:  logger.Named("ignore"),
	}
}

// Load replaces the key set from the ignore sources
func (s *Sync) Load(ctx context.Context) error {
	res, err := s.loader.Load(ctx)
	if err != nil {
		s.publish(domain.ErrorEvent{Message: "Ignore list load failed", Err: err})
		return err
	}
	s.replace(res.Keys, res.Failed)
	return nil
}

// Keys returns the current key set
func (s *Sync) Keys() KeySet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys
}

// Failed returns the labels of sources that failed in the last load
func (s *Sync) Failed() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.failed...)
}

// Loaded reports whether the key set has been populated at least once
func (s *Sync) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Contains reports whether id is already ignored
func (s *Sync) Contains(id domain.Identity) bool {
	return s.Keys().Contains(id)
}

// Pending reports whether an apply is in flight
func (s *Sync) Pending() bool {
	return s.pending.Load()
}

// AnnotateSelection marks each selected entry that is already ignored
func (s *Sync) AnnotateSelection(sel selection.Selection) []selection.Annotated[domain.SelectionEntry] {
	keys := s.Keys()
	return sel.Annotate(func(e domain.SelectionEntry) selection.Annotation {
		return selection.Annotation{Ignored: keys.Contains(e.Identity())}
	})
}

// Apply submits entries to the ignore list. Only one apply may run at a time.
// A non-2xx response fails the whole batch and leaves the key set untouched.
// On success the key set is replaced from the response's ignore_keys when
// present, otherwise reloaded from the ignore sources.
func (s *Sync) Apply(ctx context.Context, overwrite bool, entries []domain.SelectionEntry) (*Outcome, error) {
	if !s.pending.CompareAndSwap(false, true) {
		return nil, ErrApplyInProgress
	}
	defer s.pending.Store(false)

	if len(entries) == 0 {
		return nil, ErrNothingToApply
	}

	req := remote.ApplyRequest{Overwrite: overwrite}
	for _, e := range entries {
		req.Selections = append(req.Selections, remote.ApplySelection{
			Type: string(e.Type),
			ID:   e.ID,
			Name: e.Name,
		})
	}

	s.logger.Info("applying ignore entries",
		zap.Int("entries", len(entries)),
		zap.Bool("overwrite", overwrite))

	resp, err := s.applier.ApplyIgnore(ctx, req)
	if err != nil {
		err = fmt.Errorf("failed to apply ignore entries: %w", err)
		s.logger.Warn("apply failed", zap.Error(err))
		s.publish(domain.ErrorEvent{Message: "Apply failed", Err: err})
		return nil, err
	}

	out := &Outcome{Results: resp.Results}
	for _, r := range resp.Results {
		switch r.Status {
		case remote.StatusAdded:
			out.Added++
		case remote.StatusUpdated:
			out.Updated++
		case remote.StatusExists:
			out.Exists++
		default:
			out.Failed++
		}
	}

	if resp.IgnoreKeys != nil {
		keys, invalid := ParseKeys(resp.IgnoreKeys)
		if len(invalid) > 0 {
			s.logger.Warn("server sent unparseable ignore keys", zap.Strings("keys", invalid))
		}
		s.replace(keys, nil)
		out.FromServer = true
	} else if err := s.Load(ctx); err != nil {
		// the apply itself succeeded; the stale key set stays until the
		// next load
		s.logger.Warn("reload after apply failed", zap.Error(err))
	}

	s.publish(domain.IgnoreAppliedEvent{
		Added:   out.Added,
		Updated: out.Updated,
		Exists:  out.Exists,
		Failed:  out.Failed,
	})
	return out, nil
}

func (s *Sync) replace(keys KeySet, failed []string) {
	s.mu.Lock()
	s.keys = keys
	s.failed = append([]string(nil), failed...)
	s.loaded = true
	s.mu.Unlock()

	s.publish(domain.IgnoreKeysLoadedEvent{Count: keys.Len(), ErrorSources: failed})
}

func (s *Sync) publish(event eventbus.DomainEvent) {
	if s.bus != nil {
		s.bus.Publish(event)
	}
}
