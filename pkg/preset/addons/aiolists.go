package addons

import (
	"context"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/remote"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
)

// AIOListsAPI is the hosted exchange for AIOLists configurations.
type AIOListsAPI interface {
	CreateConfig(ctx context.Context, config map[string]any) (remote.AddonConfig, error)
}

// AIOLists configures the AIOLists catalog addon. The preset document
// carries a standard and a kids base blob plus per-locale overlays;
// the chosen blob is localized, filled in and exchanged for a hosted
// config hash.
type AIOLists struct {
	API AIOListsAPI
	// Base and KidsBase are the aiolists configuration blobs from the
	// preset document.
	Base     map[string]any
	KidsBase map[string]any
}

func (AIOLists) Key() string { return "aiolists" }

func (a AIOLists) Transform(ctx context.Context, addon stremio.Addon, rc Context) Result {
	source := a.Base
	if rc.Preset == "kids" {
		source = a.KidsBase
	}
	if source == nil {
		return Removed("no aiolists configuration in preset document")
	}
	blob := cloneMap(source)

	config, _ := blob["config"].(map[string]any)
	if config == nil {
		config = map[string]any{}
	}

	switch rc.Language {
	case "es-MX", "es-ES":
		config["tmdbLanguage"] = "es"
	default:
		config["tmdbLanguage"] = rc.Language
	}

	if rc.Language != "en" {
		if overlay, ok := blob[rc.Language].(map[string]any); ok {
			config = overlayMap(config, overlay)
		}
	}

	if rc.Advanced.RPDBKey != "" {
		config["rpdbApiKey"] = rc.Advanced.RPDBKey
		connected, _ := config["isConnected"].(map[string]any)
		if connected == nil {
			connected = map[string]any{}
		}
		connected["rpdb"] = true
		config["isConnected"] = connected
	}

	blob["config"] = config

	result, err := a.API.CreateConfig(ctx, blob)
	if err != nil {
		return Removed(err.Error())
	}
	addon.TransportURL = result.TransportURL
	addon.Manifest = result.Manifest
	return Mutated(addon)
}

// overlayMap merges overlay into base recursively; overlay values win
// on conflicts and nested objects are merged key by key. Used for the
// per-locale configuration overlays of the opaque service blobs.
func overlayMap(base, overlay map[string]any) map[string]any {
	out := cloneMap(base)
	for k, v := range overlay {
		if baseChild, ok := out[k].(map[string]any); ok {
			if overlayChild, ok := v.(map[string]any); ok {
				out[k] = overlayMap(baseChild, overlayChild)
				continue
			}
		}
		out[k] = cloneValue(v)
	}
	return out
}
