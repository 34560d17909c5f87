package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opconsole/internal/domain"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	svc := NewConfigService(filepath.Join(t.TempDir(), "absent.toml"))
	cfg, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFromPathKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
url = "https://console.internal:8443/"
timeout_seconds = 5

[scripts]
python = "  python3  "
`), 0o644))

	cfg, err := NewConfigService(path).LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "https://console.internal:8443/", cfg.Server.URL)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "python3", cfg.Scripts.Python)
	assert.Equal(t, "/api/add-ignore", cfg.Server.ApplyPath)
	assert.Equal(t, "Ignore/JV_L.json", cfg.Ignore[string(domain.SourceJVCollections)])
	assert.Len(t, cfg.Catalog, 4)
}

func TestLoadFromPathRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[server\nurl ="), 0o644))
	_, err := NewConfigService(bad).LoadFromPath(bad)
	assert.ErrorContains(t, err, "failed to parse config")

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte(`
[server]
url = "localhost"

[ignore]
ZZ_F_L = "Ignore/ZZ_L.json"
`), 0o644))
	_, err = NewConfigService(unknown).LoadFromPath(unknown)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an absolute URL")
	assert.Contains(t, err.Error(), `unknown source type "ZZ_F_L"`)

	_, err = NewConfigService("").LoadFromPath(filepath.Join(dir, "missing.toml"))
	assert.ErrorContains(t, err, "config file not found")
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	svc := NewConfigService(path)

	cfg := DefaultConfig()
	cfg.Server.URL = "http://10.0.0.5:5000"
	cfg.Log.Level = "debug"
	delete(cfg.Catalog, string(domain.SourceXLProducts))

	require.NoError(t, svc.Save(cfg))

	loaded, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:5000", loaded.Server.URL)
	assert.Equal(t, "debug", loaded.Log.Level)
	assert.Equal(t, path, svc.Path())
}

func TestSourcesFollowSourceTypeOrder(t *testing.T) {
	cfg := DefaultConfig()
	sources := cfg.CatalogSources(func(p string) string { return "http://srv/" + p })

	require.Len(t, sources, 4)
	for i, src := range sources {
		assert.Equal(t, domain.SourceTypes[i], src.Type)
		assert.Equal(t, string(src.Type), src.Label)
	}
	assert.Equal(t, "http://srv/Fabriks/JV_F_P/factories.json", sources[0].URL)

	ignore := cfg.IgnoreSources(nil)
	require.Len(t, ignore, 2)
	assert.Equal(t, domain.SourceJVCollections, ignore[0].Type)
	assert.Equal(t, "Ignore/JV_L.json", ignore[0].URL)
}
