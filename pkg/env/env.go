// Package env consolidates all environment variable reading for the
// application. Config overrides are applied only at startup (see
// config.Load).
package env

import (
	"os"
	"strconv"
)

// Environment variable names (single source of truth)
const (
	PortVar              = "PORT"
	BaseURLVar           = "BASE_URL"
	LOGLevel             = "LOG_LEVEL"
	PresetsURLVar        = "PRESETS_URL"
	StremioAPIURLVar     = "STREMIO_API_URL"
	AIOStreamsURLVar     = "AIOSTREAMS_URL"
	AIOListsURLVar       = "AIOLISTS_URL"
	AIOMetadataURLVar    = "AIOMETADATA_URL"
	MediaFusionURLVar    = "MEDIAFUSION_URL"
	RequestTimeoutVar    = "REQUEST_TIMEOUT_SECONDS"
	DocumentTTLVar       = "PRESETS_CACHE_TTL_SECONDS"
	RPDBAPIKeyVar        = "RPDB_API_KEY"
	TMDBAPIKeyVar        = "TMDB_API_KEY"
	TZVar                = "TZ"
)

// Config YAML keys returned by OverrideKeys (for UI warnings)
const (
	KeyPort           = "port"
	KeyBaseURL        = "base_url"
	KeyLogLevel       = "log_level"
	KeyPresetsURL     = "presets_url"
	KeyStremioAPIURL  = "stremio_api_url"
	KeyAIOStreamsURL  = "aiostreams_url"
	KeyAIOListsURL    = "aiolists_url"
	KeyAIOMetadataURL = "aiometadata_url"
	KeyMediaFusionURL = "mediafusion_url"
	KeyRequestTimeout = "request_timeout_seconds"
	KeyDocumentTTL    = "presets_cache_ttl_seconds"
	KeyRPDBAPIKey     = "rpdb_api_key"
	KeyTMDBAPIKey     = "tmdb_api_key"
)

// TZ returns the TZ environment variable (e.g. for logger timezone).
func TZ() string {
	return os.Getenv(TZVar)
}

// LogLevel returns LOG_LEVEL with default "INFO" (for early logger
// init before config).
func LogLevel() string {
	if v := os.Getenv(LOGLevel); v != "" {
		return v
	}
	return "INFO"
}

// ConfigOverrides holds all config values that can be set via
// environment variables. Used at startup by config.Load.
type ConfigOverrides struct {
	Port           int
	BaseURL        string
	LogLevel       string
	PresetsURL     string
	StremioAPIURL  string
	AIOStreamsURL  string
	AIOListsURL    string
	AIOMetadataURL string
	MediaFusionURL string
	RequestTimeout int
	DocumentTTL    int
	RPDBAPIKey     string
	TMDBAPIKey     string
}

// ReadConfigOverrides reads all relevant environment variables once
// and returns overrides to apply to config plus the list of config
// YAML keys that were set (for UI "overwritten on restart" warnings).
func ReadConfigOverrides() (ConfigOverrides, []string) {
	var o ConfigOverrides
	var keys []string

	if v := os.Getenv(PortVar); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			o.Port = port
			keys = append(keys, KeyPort)
		}
	}
	if v := os.Getenv(BaseURLVar); v != "" {
		o.BaseURL = v
		keys = append(keys, KeyBaseURL)
	}
	if v := os.Getenv(LOGLevel); v != "" {
		o.LogLevel = v
		keys = append(keys, KeyLogLevel)
	}
	if v := os.Getenv(PresetsURLVar); v != "" {
		o.PresetsURL = v
		keys = append(keys, KeyPresetsURL)
	}
	if v := os.Getenv(StremioAPIURLVar); v != "" {
		o.StremioAPIURL = v
		keys = append(keys, KeyStremioAPIURL)
	}
	if v := os.Getenv(AIOStreamsURLVar); v != "" {
		o.AIOStreamsURL = v
		keys = append(keys, KeyAIOStreamsURL)
	}
	if v := os.Getenv(AIOListsURLVar); v != "" {
		o.AIOListsURL = v
		keys = append(keys, KeyAIOListsURL)
	}
	if v := os.Getenv(AIOMetadataURLVar); v != "" {
		o.AIOMetadataURL = v
		keys = append(keys, KeyAIOMetadataURL)
	}
	if v := os.Getenv(MediaFusionURLVar); v != "" {
		o.MediaFusionURL = v
		keys = append(keys, KeyMediaFusionURL)
	}
	if v := os.Getenv(RequestTimeoutVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			o.RequestTimeout = n
			keys = append(keys, KeyRequestTimeout)
		}
	}
	if v := os.Getenv(DocumentTTLVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			o.DocumentTTL = n
			keys = append(keys, KeyDocumentTTL)
		}
	}
	if v := os.Getenv(RPDBAPIKeyVar); v != "" {
		o.RPDBAPIKey = v
		keys = append(keys, KeyRPDBAPIKey)
	}
	if v := os.Getenv(TMDBAPIKeyVar); v != "" {
		o.TMDBAPIKey = v
		keys = append(keys, KeyTMDBAPIKey)
	}

	return o, keys
}

// OverrideKeys returns the config YAML keys that have environment
// overrides set. Used by the API to tell the UI which settings show
// "overwritten on restart" warnings.
func OverrideKeys() []string {
	_, keys := ReadConfigOverrides()
	return keys
}
