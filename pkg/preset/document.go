package preset

import (
	"encoding/json"
	"fmt"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
)

// Document is the static preset document: base addon entries per
// locale, the named preset bundles, optional extras and the default
// configuration blobs of the services that need a hosted exchange.
// A Document is read-only; compositions work on copies of its entries.
type Document struct {
	Languages map[string]map[string]stremio.Addon `json:"languages"`
	Presets   map[string][]string                 `json:"presets"`
	Extras    map[string]stremio.Addon            `json:"extras"`

	MediaFusionConfig  map[string]any `json:"mediafusionConfig"`
	AIOListsConfig     map[string]any `json:"aiolistsConfig"`
	AIOListsKidsConfig map[string]any `json:"aiolistsKidsConfig"`
	AIOMetadataConfig  map[string]any `json:"aioMetadataConfig"`
}

// ParseDocument decodes a raw preset document.
func ParseDocument(raw json.RawMessage) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse preset document: %w", err)
	}
	return &doc, nil
}

// defaultLocale is the locale every other locale overlays onto.
const defaultLocale = "en"

// selectAddon resolves the entry for one addon key under a locale:
// the locale overlay wins field by field over the default-locale base,
// absent fields inherit. For the default locale no merge happens.
func (d *Document) selectAddon(key, locale string) (stremio.Addon, bool) {
	base, hasBase := d.Languages[defaultLocale][key]
	if locale == defaultLocale {
		if !hasBase {
			return stremio.Addon{}, false
		}
		return base.Clone(), true
	}

	overlay, hasOverlay := d.Languages[locale][key]
	switch {
	case !hasBase && !hasOverlay:
		return stremio.Addon{}, false
	case !hasOverlay:
		return base.Clone(), true
	case !hasBase:
		return overlay.Clone(), true
	}
	return mergeAddon(base, overlay), true
}

// mergeAddon overlays a locale entry onto the default-locale entry.
// Non-empty overlay fields win; manifests merge field by field.
func mergeAddon(base, overlay stremio.Addon) stremio.Addon {
	out := base.Clone()
	if overlay.TransportURL != "" {
		out.TransportURL = overlay.TransportURL
	}
	out.Manifest = mergeManifest(out.Manifest, overlay.Manifest)
	return out
}

func mergeManifest(base, overlay *stremio.Manifest) *stremio.Manifest {
	if overlay == nil {
		return base
	}
	if base == nil {
		return overlay.Clone()
	}

	out := base.Clone()
	if overlay.ID != "" {
		out.ID = overlay.ID
	}
	if overlay.Version != "" {
		out.Version = overlay.Version
	}
	if overlay.Name != "" {
		out.Name = overlay.Name
	}
	if overlay.Description != "" {
		out.Description = overlay.Description
	}
	for k, v := range overlay.Extra {
		if out.Extra == nil {
			out.Extra = map[string]json.RawMessage{}
		}
		raw := make(json.RawMessage, len(v))
		copy(raw, v)
		out.Extra[k] = raw
	}
	return out
}
