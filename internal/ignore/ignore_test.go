package ignore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opconsole/internal/catalog"
	"opconsole/internal/domain"
	"opconsole/internal/remote"
	"opconsole/internal/selection"
)

func TestParseCompositeKey(t *testing.T) {
	tests := []struct {
		key     string
		want    domain.Identity
		wantErr bool
	}{
		{key: "JV_F_L::42", want: domain.Identity{Type: domain.SourceJVCollections, ID: "42"}},
		{key: "XL_F_L:7", want: domain.Identity{Type: domain.SourceXLCollections, ID: "7"}},
		{key: " JV_F_L :: a:b ", want: domain.Identity{Type: domain.SourceJVCollections, ID: "a:b"}},
		{key: "JV_F_L", wantErr: true},
		{key: "::1", wantErr: true},
		{key: "JV_F_L::", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := ParseCompositeKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKeys(t *testing.T) {
	keys, invalid := ParseKeys([]string{"JV_F_L::1", "bogus", "XL_F_L::2", "JV_F_L::1"})
	assert.Equal(t, []string{"bogus"}, invalid)
	assert.Equal(t, 2, keys.Len())
	assert.Equal(t, map[domain.SourceType]int{
		domain.SourceJVCollections: 1,
		domain.SourceXLCollections: 1,
	}, keys.CountByType())
	assert.Equal(t, []domain.Identity{
		{Type: domain.SourceJVCollections, ID: "1"},
		{Type: domain.SourceXLCollections, ID: "2"},
	}, keys.Identities())

	var zero KeySet
	assert.False(t, zero.Contains(domain.Identity{Type: domain.SourceJVCollections, ID: "1"}))
	assert.True(t, zero.Equal(NewKeySet()))
}

// ignoreServer serves the ignore files and the apply endpoint. jvBody is
// swapped by the apply handler to simulate the server writing the file.
type ignoreServer struct {
	*httptest.Server
	jvBody   atomic.Value
	sendKeys atomic.Bool
	status   atomic.Int32
}

func newIgnoreServer(t *testing.T) *ignoreServer {
	t.Helper()
	s := &ignoreServer{}
	s.status.Store(http.StatusOK)
	s.jvBody.Store(`[{"id":"1","name":"one"}]`)

	mux := http.NewServeMux()
	mux.HandleFunc("/Ignore/JV_L.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(s.jvBody.Load().(string)))
	})
	mux.HandleFunc("/Ignore/XL_L.json", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc(remote.DefaultApplyPath, func(w http.ResponseWriter, r *http.Request) {
		if status := int(s.status.Load()); status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"disk full"}`))
			return
		}
		s.jvBody.Store(`[{"id":"1","name":"one"},{"id":2,"name":"two"}]`)
		body := `{"results":[{"type":"JV_F_L","id":"2","name":"two","status":"added"},{"type":"JV_F_L","id":"1","name":"one","status":"exists"}]`
		if s.sendKeys.Load() {
			body += `,"ignore_keys":["JV_F_L::1","JV_F_L::2"]`
		}
		_, _ = w.Write([]byte(body + "}"))
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *ignoreServer) sync(t *testing.T) *Sync {
	t.Helper()
	client, err := remote.NewClient(s.URL, s.Client())
	require.NoError(t, err)
	loader := NewLoader(s.Client(), []catalog.Source{
		{Type: domain.SourceJVCollections, Label: "JV", URL: client.Resolve("Ignore/JV_L.json")},
		{Type: domain.SourceXLCollections, Label: "XL", URL: client.Resolve("Ignore/XL_L.json")},
	}, nil)
	return NewSync(loader, client, nil, nil)
}

func TestSyncLoadRecordsFailures(t *testing.T) {
	srv := newIgnoreServer(t)
	sync := srv.sync(t)

	require.NoError(t, sync.Load(context.Background()))
	assert.True(t, sync.Loaded())
	assert.Equal(t, []string{"XL"}, sync.Failed())
	assert.True(t, sync.Contains(domain.Identity{Type: domain.SourceJVCollections, ID: "1"}))
	assert.Equal(t, 1, sync.Keys().Len())
}

func TestApplyPathsConverge(t *testing.T) {
	entries := []domain.SelectionEntry{
		{Type: domain.SourceJVCollections, ID: "2", Name: "two"},
		{Type: domain.SourceJVCollections, ID: "1", Name: "one"},
	}

	var sets []KeySet
	for _, sendKeys := range []bool{true, false} {
		srv := newIgnoreServer(t)
		srv.sendKeys.Store(sendKeys)
		sync := srv.sync(t)
		require.NoError(t, sync.Load(context.Background()))

		out, err := sync.Apply(context.Background(), false, entries)
		require.NoError(t, err)
		assert.Equal(t, sendKeys, out.FromServer)
		assert.Equal(t, 1, out.Added)
		assert.Equal(t, 1, out.Exists)
		assert.Equal(t, 0, out.Failed)
		assert.False(t, sync.Pending())

		sets = append(sets, sync.Keys())
	}

	require.Len(t, sets, 2)
	assert.True(t, sets[0].Equal(sets[1]))
	assert.Equal(t, 2, sets[0].Len())
}

func TestApplyFailureKeepsKeys(t *testing.T) {
	srv := newIgnoreServer(t)
	srv.status.Store(http.StatusInternalServerError)
	sync := srv.sync(t)
	require.NoError(t, sync.Load(context.Background()))
	before := sync.Keys()

	_, err := sync.Apply(context.Background(), true, []domain.SelectionEntry{{Type: domain.SourceJVCollections, ID: "9"}})
	require.Error(t, err)

	httpErr, ok := remote.IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, "disk full", httpErr.Message)
	assert.True(t, before.Equal(sync.Keys()))
	assert.False(t, sync.Pending())

	// retryable
	srv.status.Store(http.StatusOK)
	_, err = sync.Apply(context.Background(), true, []domain.SelectionEntry{{Type: domain.SourceJVCollections, ID: "9"}})
	assert.NoError(t, err)
}

func TestApplyEmptyBatch(t *testing.T) {
	sync := NewSync(NewLoader(nil, nil, nil), nil, nil, nil)
	_, err := sync.Apply(context.Background(), false, nil)
	assert.ErrorIs(t, err, ErrNothingToApply)
}

type blockingApplier struct {
	release chan struct{}
}

func (a *blockingApplier) ApplyIgnore(ctx context.Context, req remote.ApplyRequest) (*remote.ApplyResponse, error) {
	<-a.release
	return &remote.ApplyResponse{IgnoreKeys: []string{}}, nil
}

func TestApplyReentrancyGuard(t *testing.T) {
	applier := &blockingApplier{release: make(chan struct{})}
	sync := NewSync(NewLoader(nil, nil, nil), applier, nil, nil)
	batch := []domain.SelectionEntry{{Type: domain.SourceJVCollections, ID: "1"}}

	done := make(chan error, 1)
	go func() {
		_, err := sync.Apply(context.Background(), false, batch)
		done <- err
	}()

	require.Eventually(t, sync.Pending, time.Second, 5*time.Millisecond)
	_, err := sync.Apply(context.Background(), false, batch)
	assert.True(t, errors.Is(err, ErrApplyInProgress))

	close(applier.release)
	require.NoError(t, <-done)
	assert.False(t, sync.Pending())
	assert.True(t, sync.Loaded())
	assert.Equal(t, 0, sync.Keys().Len())
}

func TestAnnotateSelection(t *testing.T) {
	sync := NewSync(NewLoader(nil, nil, nil), &blockingApplier{}, nil, nil)
	sync.replace(NewKeySet(domain.Identity{Type: domain.SourceJVCollections, ID: "1"}), nil)

	sel := selection.New(nil)
	sel.Add(domain.SelectionEntry{Type: domain.SourceJVCollections, ID: "1"})
	sel.Add(domain.SelectionEntry{Type: domain.SourceJVCollections, ID: "2"})

	rows := sync.AnnotateSelection(sel)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Ignored)
	assert.False(t, rows[1].Ignored)
	assert.True(t, rows[1].Selected)
}
