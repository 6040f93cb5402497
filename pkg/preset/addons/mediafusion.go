package addons

import (
	"context"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/debrid"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/sizeconv"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
)

// MediaFusionAPI is the hosted exchange MediaFusion requires: the full
// configuration is encrypted server-side and only the resulting opaque
// transport URL is installable.
type MediaFusionAPI interface {
	EncryptUserData(ctx context.Context, config map[string]any) (string, error)
}

// MediaFusion configures the MediaFusion addon from the preset
// document's base configuration blob. Every variant (P2P and one per
// credential) needs its own encrypt exchange.
type MediaFusion struct {
	API MediaFusionAPI
	// Base is the mediafusion default configuration from the preset
	// document. Transformed copies are made per exchange.
	Base map[string]any
}

var mediaFusionLanguages = map[string]string{
	"es-MX": "Latino",
	"es-ES": "Spanish",
	"pt-BR": "Portuguese",
	"fr":    "French",
	"it":    "Italian",
	"de":    "German",
	"nl":    "Dutch",
}

func (MediaFusion) Key() string { return "mediafusion" }

func (m MediaFusion) prepare(rc Context) map[string]any {
	config := cloneMap(m.Base)

	if preferred, ok := mediaFusionLanguages[rc.Language]; ok {
		sorting, _ := config["language_sorting"].([]any)
		sorting = without(sorting, preferred)
		config["language_sorting"] = append([]any{preferred}, sorting...)
	}

	if rc.No4K {
		resolutions, _ := config["selected_resolutions"].([]any)
		for _, token := range []any{"4k", "2160p", "1440p"} {
			resolutions = without(resolutions, token)
		}
		config["selected_resolutions"] = resolutions
	}

	if gb, ok := sizeconv.ParseGB(rc.MaxSize); ok {
		config["max_size"] = sizeconv.GBToBytes(gb)
	}
	return config
}

func (m MediaFusion) Transform(ctx context.Context, addon stremio.Addon, rc Context) Result {
	if len(rc.Debrid) == 0 {
		transportURL, err := m.API.EncryptUserData(ctx, m.prepare(rc))
		if err != nil {
			return Removed(err.Error())
		}
		addon.TransportURL = transportURL
		return Mutated(addon)
	}

	return fanOutDebrid("mediafusion", addon, rc.Debrid, true, func(a *stremio.Addon, e debrid.Entry) error {
		config := m.prepare(rc)
		config["streaming_provider"] = map[string]any{
			"service":                   string(e.Service),
			"token":                     e.Key,
			"enable_watchlist_catalogs": false,
			"download_via_browser":      false,
			"only_show_cached_streams":  rc.Cached,
		}

		transportURL, err := m.API.EncryptUserData(ctx, config)
		if err != nil {
			return err
		}
		a.TransportURL = transportURL
		return nil
	})
}

// cloneMap deep-copies a decoded JSON object so prepared configs never
// share nested state with the document blob.
func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
