package ignore

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"opconsole/internal/catalog"
	"opconsole/internal/domain"
)

// LoadResult is the outcome of loading every ignore source
type LoadResult struct {
	Keys   KeySet
	Failed []string
}

// Loader reads the per-type ignore files. Only the id of each element is
// used; the source's type supplies the rest of the identity.
type Loader struct {
	client  *http.Client
	sources []catalog.Source
	logger  *zap.Logger
}

// NewLoader creates a loader over the given ignore sources
func NewLoader(client *http.Client, sources []catalog.Source, logger *zap.Logger) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		client:  client,
		sources: append([]catalog.Source(nil), sources...),
		logger:  logger.Named("ignore"),
	}
}

// Load fetches every source concurrently. A failing source is recorded and
// contributes no keys.
func (l *Loader) Load(ctx context.Context) (res *LoadResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("failed to load ignore list: %v", r)
		}
	}()

	parts := make([][]domain.Identity, len(l.sources))
	errs := make([]error, len(l.sources))

	var g errgroup.Group
	for i, src := range l.sources {
		g.Go(func() error {
			parts[i], errs[i] = l.loadSource(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	var ids []domain.Identity
	res = &LoadResult{}
	for i, src := range l.sources {
		if errs[i] != nil {
			label := src.Label
			if label == "" {
				label = string(src.Type)
			}
			res.Failed = append(res.Failed, label)
			l.logger.Warn("ignore source failed",
				zap.String("source", label),
				zap.String("url", src.URL),
				zap.Error(errs[i]))
			continue
		}
		ids = append(ids, parts[i]...)
	}
	res.Keys = NewKeySet(ids...)

	l.logger.Info("ignore list loaded",
		zap.Int("keys", res.Keys.Len()),
		zap.Strings("failed", res.Failed))
	return res, nil
}

func (l *Loader) loadSource(ctx context.Context, src catalog.Source) ([]domain.Identity, error) {
	elements, err := catalog.FetchArray(ctx, l.client, src.URL)
	if err != nil {
		return nil, err
	}
	ids := make([]domain.Identity, 0, len(elements))
	for _, raw := range elements {
		id, ok := catalog.NormalizeID(raw)
		if !ok {
			continue
		}
		ids = append(ids, domain.Identity{Type: src.Type, ID: id})
	}
	return ids, nil
}
