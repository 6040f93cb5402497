package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/env"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/logger"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/paths"
)

// Upstream holds the base URLs of the hosted services the composer
// exchanges configurations with.
type Upstream struct {
	PresetsURL     string `yaml:"presets_url"`
	StremioAPIURL  string `yaml:"stremio_api_url"`
	AIOStreamsURL  string `yaml:"aiostreams_url"`
	AIOListsURL    string `yaml:"aiolists_url"`
	AIOMetadataURL string `yaml:"aiometadata_url"`
	MediaFusionURL string `yaml:"mediafusion_url"`

	// AIOStreams base templates, one per flavor.
	AIOStreamsP2PTemplateURL    string `yaml:"aiostreams_p2p_template_url"`
	AIOStreamsDebridTemplateURL string `yaml:"aiostreams_debrid_template_url"`
}

// Advanced holds server-side default keys for the optional power-user
// features. A per-request key always wins over these.
type Advanced struct {
	RPDBAPIKey string `yaml:"rpdb_api_key"`
	TMDBAPIKey string `yaml:"tmdb_api_key"`
}

// Config holds application configuration
type Config struct {
	Port     int    `yaml:"port"`
	BaseURL  string `yaml:"base_url"`
	LogLevel string `yaml:"log_level"`

	Upstream Upstream `yaml:"upstream"`
	Advanced Advanced `yaml:"advanced"`

	// Hosted exchange budget and preset document cache TTL.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
	PresetsCacheTTL       int `yaml:"presets_cache_ttl_seconds"`

	// Internal - where was this config loaded from?
	LoadedPath string `yaml:"-"`
}

// RequestTimeout returns the hosted exchange budget as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// DocumentTTL returns the preset document cache TTL as a duration.
func (c *Config) DocumentTTL() time.Duration {
	return time.Duration(c.PresetsCacheTTL) * time.Second
}

// Load is intended for startup only. It loads configuration from
// config.yaml, applies environment variable overrides once, then saves
// the merged config. Environment variables are not read again after
// startup; subsequent reloads use only the saved config.
// Priority: Environment variables (if not empty) > config.yaml > defaults
func Load() (*Config, error) {
	dataDir := paths.GetDataDir()
	configPath := filepath.Join(dataDir, "config.yaml")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logger.Warn("Failed to create data directory", "dir", dataDir, "err", err)
	}

	cfg := &Config{
		// Set defaults
		Port:     7050,
		BaseURL:  "http://localhost:7050",
		LogLevel: "INFO",
		Upstream: Upstream{
			PresetsURL:                  "https://presets.stremio-addons.com/presets.json",
			StremioAPIURL:               "https://api.strem.io",
			AIOStreamsURL:               "https://aiostreams.elfhosted.com",
			AIOListsURL:                 "https://aiolists.elfhosted.com",
			AIOMetadataURL:              "https://aiometadata.hayd.uk",
			MediaFusionURL:              "https://mediafusion.elfhosted.com",
			AIOStreamsP2PTemplateURL:    "https://presets.stremio-addons.com/aiostreams-p2p.json",
			AIOStreamsDebridTemplateURL: "https://presets.stremio-addons.com/aiostreams-debrid.json",
		},
		RequestTimeoutSeconds: 15,
		PresetsCacheTTL:       300,
		LoadedPath:            configPath,
	}

	if err := cfg.LoadFile(configPath); err != nil {
		if os.IsNotExist(err) {
			logger.Info("No config found, creating new one", "path", configPath)
		} else {
			logger.Warn("Failed to load config, using defaults", "path", configPath, "err", err)
		}
	} else {
		logger.Info("Loaded configuration", "path", configPath)
	}

	// Override with environment variables (single source: pkg/env)
	overrides, keys := env.ReadConfigOverrides()
	ApplyEnvOverrides(cfg, overrides, keys)

	// Save the merged configuration
	if err := cfg.Save(); err != nil {
		logger.Warn("Failed to save config on startup", "err", err)
	} else {
		logger.Info("Saved merged configuration", "path", configPath)
	}

	return cfg, nil
}

// LoadFile overrides config with values from a YAML file
func (c *Config) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, c)
}

// Save saves the current configuration to the file it was loaded from
func (c *Config) Save() error {
	path := c.LoadedPath
	if path == "" {
		path = "config.yaml"
	}
	return c.SaveFile(path)
}

// SaveFile saves the current configuration to a YAML file
func (c *Config) SaveFile(path string) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

// keySet returns true if s is in list.
func keySet(list []string, s string) bool {
	for _, k := range list {
		if k == s {
			return true
		}
	}
	return false
}

// ApplyEnvOverrides applies environment-derived overrides to cfg (used
// at startup only). Only fields present in keys are applied, so env
// vars override file values per setting.
func ApplyEnvOverrides(cfg *Config, o env.ConfigOverrides, keys []string) {
	if keySet(keys, env.KeyPort) {
		cfg.Port = o.Port
	}
	if keySet(keys, env.KeyBaseURL) {
		cfg.BaseURL = o.BaseURL
	}
	if keySet(keys, env.KeyLogLevel) {
		cfg.LogLevel = o.LogLevel
	}
	if keySet(keys, env.KeyPresetsURL) {
		cfg.Upstream.PresetsURL = o.PresetsURL
	}
	if keySet(keys, env.KeyStremioAPIURL) {
		cfg.Upstream.StremioAPIURL = o.StremioAPIURL
	}
	if keySet(keys, env.KeyAIOStreamsURL) {
		cfg.Upstream.AIOStreamsURL = o.AIOStreamsURL
	}
	if keySet(keys, env.KeyAIOListsURL) {
		cfg.Upstream.AIOListsURL = o.AIOListsURL
	}
	if keySet(keys, env.KeyAIOMetadataURL) {
		cfg.Upstream.AIOMetadataURL = o.AIOMetadataURL
	}
	if keySet(keys, env.KeyMediaFusionURL) {
		cfg.Upstream.MediaFusionURL = o.MediaFusionURL
	}
	if keySet(keys, env.KeyRequestTimeout) {
		cfg.RequestTimeoutSeconds = o.RequestTimeout
	}
	if keySet(keys, env.KeyDocumentTTL) {
		cfg.PresetsCacheTTL = o.DocumentTTL
	}
	if keySet(keys, env.KeyRPDBAPIKey) {
		cfg.Advanced.RPDBAPIKey = o.RPDBAPIKey
	}
	if keySet(keys, env.KeyTMDBAPIKey) {
		cfg.Advanced.TMDBAPIKey = o.TMDBAPIKey
	}
}

// GetEnvOverrideKeys returns config YAML keys that have environment
// variable overrides set. These values will be overwritten on next
// restart. Used by the UI to show warnings.
func GetEnvOverrideKeys() []string {
	return env.OverrideKeys()
}
