package addons

import (
	"context"
	"fmt"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/debrid"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/language"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/remote"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/sizeconv"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
)

// AIOStreamsAPI is the hosted exchange for AIOStreams: a base template
// (P2P or debrid flavored) is fetched, filled in and posted back to
// create a hosted user.
type AIOStreamsAPI interface {
	FetchTemplate(ctx context.Context, kind remote.TemplateKind) (map[string]any, error)
	CreateUser(ctx context.Context, config map[string]any) (remote.AddonConfig, error)
}

// AIOStreams configures the AIOStreams aggregator. All credentials go
// into one hosted configuration, so the entry never fans out.
type AIOStreams struct {
	API AIOStreamsAPI
}

func (AIOStreams) Key() string { return "aiostreams" }

func (a AIOStreams) Transform(ctx context.Context, addon stremio.Addon, rc Context) Result {
	isDebridUser := len(rc.Debrid) > 0

	kind := remote.TemplateP2P
	if isDebridUser {
		kind = remote.TemplateDebrid
	}
	template, err := a.API.FetchTemplate(ctx, kind)
	if err != nil {
		return Removed(err.Error())
	}

	config, _ := template["config"].(map[string]any)
	if config == nil {
		return Removed("aiostreams template has no config object")
	}

	services := make([]any, 0, len(rc.Debrid))
	hasTorbox := false
	for _, e := range rc.Debrid {
		if e.Service == debrid.TorBox {
			hasTorbox = true
		}
		services = append(services, map[string]any{
			"id":          string(e.Service),
			"enabled":     true,
			"credentials": map[string]any{"apiKey": e.Key},
		})
	}

	presets, _ := config["presets"].([]any)

	// The TorBox search scraper only works for TorBox account holders.
	for _, p := range presets {
		if preset, ok := p.(map[string]any); ok && preset["type"] == "torbox-search" {
			preset["enabled"] = hasTorbox
		}
	}

	presets = append(presets, languageScrapers(rc.Language, isDebridUser)...)

	// The template's webstreamr entry is replaced by one carrying the
	// locale's providers.
	kept := presets[:0]
	for _, p := range presets {
		if preset, ok := p.(map[string]any); ok && preset["type"] == "webstreamr" {
			continue
		}
		kept = append(kept, p)
	}
	presets = append(kept, webStreamrPreset(rc.Language))
	config["presets"] = presets

	config["services"] = services
	config["excludedQualities"] = []any{"CAM", "TS", "TC", "SCR"}

	excludedResolutions := []any{}
	if rc.No4K {
		excludedResolutions = append(excludedResolutions, "2160p", "1440p")
	}
	excludedResolutions = append(excludedResolutions, "360p", "240p", "144p")
	config["excludedResolutions"] = excludedResolutions

	if rc.Language != "en" {
		name := language.Name(rc.Language)
		preferred, _ := config["preferredLanguages"].([]any)
		config["preferredLanguages"] = append([]any{name}, preferred...)
		config["includedStreamExpressions"] = []any{map[string]any{
			"expression": languagePassthrough(name),
			"enabled":    true,
		}}
	}

	if gb, ok := sizeconv.ParseGB(rc.MaxSize); ok {
		limit := []any{0, sizeconv.GBToBytes(gb)}
		config["size"] = map[string]any{
			"global": map[string]any{
				"movies": limit,
				"series": limit,
				"anime":  limit,
			},
		}
	}
	if rc.Cached {
		config["excludeUncached"] = true
	}

	config["formatter"] = map[string]any{"id": "lightgdrive"}
	config["tmdbAccessToken"] = ""
	config["tvdbApiKey"] = ""
	config["tmdbApiKey"] = rc.Advanced.TMDBKey
	if rc.Advanced.TMDBKey == "" {
		// Matching features need a TMDB key to work; leave them off
		// rather than let them fail per request.
		config["yearMatching"] = map[string]any{"enabled": false}
		config["titleMatching"] = map[string]any{"enabled": false}
		config["digitalReleaseFilter"] = map[string]any{"enabled": false}
		config["bitrate"] = map[string]any{"useMetadataRuntime": false}
	}

	template["config"] = config
	template["password"] = rc.Password

	result, err := a.API.CreateUser(ctx, template)
	if err != nil {
		return Removed(err.Error())
	}

	if result.Manifest != nil {
		name := "AIOStreams"
		if rc.DebridServiceName != "" {
			name += " | " + rc.DebridServiceName
		}
		result.Manifest.Name = name
	}
	addon.TransportURL = result.TransportURL
	addon.Manifest = result.Manifest
	return Mutated(addon)
}

// languagePassthrough builds the stream expression that floats a few
// streams in the user's language to the top of every list.
func languagePassthrough(languageName string) string {
	return fmt.Sprintf("/*yourLanguage*/  passthrough(slice(language(merge(cached(streams), type(streams,'p2p','http')), '%s'), 0, 5), 'title', 'excluded')", languageName)
}

// languageScrapers returns the extra scraper presets certain locales
// get regardless of user selection.
func languageScrapers(lang string, isDebridUser bool) []any {
	cometa := map[string]any{
		"type":       "comet",
		"instanceId": "c25",
		"enabled":    true,
		"options": map[string]any{
			"name":                        "Cometa",
			"timeout":                     15000,
			"resources":                   []any{"stream"},
			"url":                         "https://cometa.stremx.net",
			"includeP2P":                  !isDebridUser,
			"removeTrash":                 false,
			"scrapeDebridAccountTorrents": false,
			"useMultipleInstances":        false,
			"mediaTypes":                  []any{},
		},
	}

	switch lang {
	case "es-MX":
		return []any{cometa}
	case "es-ES":
		scrapers := []any{cometa}
		if isDebridUser {
			scrapers = append(scrapers, map[string]any{
				"type":       "peerflix",
				"instanceId": "c7e",
				"enabled":    true,
				"options": map[string]any{
					"name":                 "Peerflix",
					"timeout":              15000,
					"resources":            []any{"stream"},
					"mediaTypes":           []any{},
					"useMultipleInstances": false,
					"showTorrentLinks":     false,
				},
			})
		}
		return scrapers
	case "pt-BR":
		return []any{map[string]any{
			"type":       "brazuca-torrents",
			"instanceId": "0cc",
			"enabled":    true,
			"options": map[string]any{
				"name":      "Brazuca Torrents",
				"timeout":   15000,
				"resources": []any{"stream"},
			},
		}}
	case "fr":
		return []any{map[string]any{
			"type":       "comet",
			"instanceId": "6dc",
			"enabled":    true,
			"options": map[string]any{
				"name":                        "CometFR",
				"timeout":                     15000,
				"resources":                   []any{"stream"},
				"url":                         "https://comet.stremiofr.com",
				"includeP2P":                  !isDebridUser,
				"removeTrash":                 false,
				"scrapeDebridAccountTorrents": false,
				"useMultipleInstances":        false,
				"mediaTypes":                  []any{},
			},
		}}
	}
	return nil
}

// webStreamrPreset builds the webstreamr scraper entry with the
// locale's providers on top of the multi/en base set.
func webStreamrPreset(lang string) map[string]any {
	providers := []any{"multi", "en"}
	switch lang {
	case "es-MX":
		providers = append(providers, "mx")
	case "es-ES":
		providers = append(providers, "es")
	case "it":
		providers = append(providers, "it")
	case "fr":
		providers = append(providers, "fr")
	case "de":
		providers = append(providers, "de")
	}

	return map[string]any{
		"type":       "webstreamr",
		"instanceId": "645",
		"enabled":    true,
		"options": map[string]any{
			"name":                "WebStreamr",
			"timeout":             7000,
			"resources":           []any{"stream"},
			"mediaTypes":          []any{},
			"providers":           providers,
			"includeExternalUrls": false,
			"showErrors":          false,
		},
	}
}
