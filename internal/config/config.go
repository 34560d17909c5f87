package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"opconsole/internal/catalog"
	"opconsole/internal/domain"
	"opconsole/internal/eventbus"
)

// FileName is the config file looked up in the working directory
const FileName = ".opconsole.toml"

// Config represents the application configuration
type Config struct {
	Version int               `toml:"version"`
	Server  ServerSettings    `toml:"server"`
	Scripts ScriptSettings    `toml:"scripts"`
	Catalog map[string]string `toml:"catalog"` // source type -> server-relative path
	Ignore  map[string]string `toml:"ignore"`  // source type -> server-relative path
	Log     LogSettings       `toml:"log"`
	UI      UISettings        `toml:"ui"`
}

// ServerSettings locates the console server
type ServerSettings struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	ApplyPath      string `toml:"apply_path"`
	RunPath        string `toml:"run_path"`
}

// ScriptSettings configures the generated command lines
type ScriptSettings struct {
	Python string `toml:"python"`
}

// LogSettings configures the log file
type LogSettings struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	LoadOnStart  bool `toml:"load_on_start"`
	ConfirmApply bool `toml:"confirm_apply"`
}

// Timeout returns the HTTP timeout; zero disables it
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// CatalogSources returns the configured catalog sources in source-type order.
// resolve maps a server-relative path to a URL.
func (c *Config) CatalogSources(resolve func(string) string) []catalog.Source {
	return sources(c.Catalog, resolve)
}

// IgnoreSources returns the configured ignore sources in source-type order
func (c *Config) IgnoreSources(resolve func(string) string) []catalog.Source {
	return sources(c.Ignore, resolve)
}

func sources(paths map[string]string, resolve func(string) string) []catalog.Source {
	var out []catalog.Source
	for _, t := range domain.SourceTypes {
		path, ok := paths[string(t)]
		if !ok || path == "" {
			continue
		}
		if resolve != nil {
			path = resolve(path)
		}
		out = append(out, catalog.Source{Type: t, Label: string(t), URL: path})
	}
	return out
}

// Validate checks the fields the console cannot run without
func (c *Config) Validate() error {
	var errs []error
	if c.Server.URL == "" {
		errs = append(errs, errors.New("server.url is required"))
	} else if u, err := url.Parse(c.Server.URL); err != nil || u.Scheme == "" {
		errs = append(errs, fmt.Errorf("server.url %q is not an absolute URL", c.Server.URL))
	}
	if c.Server.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("server.timeout_seconds must not be negative"))
	}
	for name, section := range map[string]map[string]string{"catalog": c.Catalog, "ignore": c.Ignore} {
		for key := range section {
			if !domain.SourceType(key).Valid() {
				errs = append(errs, fmt.Errorf("%s: unknown source type %q", name, key))
			}
		}
	}
	return errors.Join(errs...)
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a config service for path. An empty path uses
// FileName in the working directory.
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = FileName
	}
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(path string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file, returning defaults when the file
// does not exist
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return cs.LoadFromPath(cs.filePath)
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path. Missing keys keep
// their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Server.URL = strings.TrimSpace(c.Server.URL)
	c.Scripts.Python = strings.TrimSpace(c.Scripts.Python)
	if c.Scripts.Python == "" {
		c.Scripts.Python = "python"
	}
	if c.Catalog == nil {
		c.Catalog = make(map[string]string)
	}
	if c.Ignore == nil {
		c.Ignore = make(map[string]string)
	}
}

// DefaultConfig returns the default configuration, matching the server's
// directory layout
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerSettings{
			URL:            "http://127.0.0.1:5000",
			TimeoutSeconds: 30,
			ApplyPath:      "/api/add-ignore",
			RunPath:        "/api/run-main",
		},
		Scripts: ScriptSettings{Python: "python"},
		Catalog: map[string]string{
			string(domain.SourceJVProducts):    "Fabriks/JV_F_P/factories.json",
			string(domain.SourceXLProducts):    "Fabriks/XL_F_P/factories.json",
			string(domain.SourceJVCollections): "Fabriks/JV_F_L/collections.json",
			string(domain.SourceXLCollections): "Fabriks/XL_F_L/collections.json",
		},
		Ignore: map[string]string{
			string(domain.SourceJVCollections): "Ignore/JV_L.json",
			string(domain.SourceXLCollections): "Ignore/XL_L.json",
		},
		Log: LogSettings{
			File:  "opconsole.log",
			Level: "info",
		},
		UI: UISettings{
			LoadOnStart:  true,
			ConfirmApply: true,
		},
	}
}
