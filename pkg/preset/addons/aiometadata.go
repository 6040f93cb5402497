package addons

import (
	"context"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/remote"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
)

// AIOMetadataAPI is the hosted exchange for AIOMetadata configurations.
type AIOMetadataAPI interface {
	SaveConfig(ctx context.Context, config map[string]any) (remote.AddonConfig, error)
}

// AIOMetadata configures the AIOMetadata addon: the catalog set (kids
// or standard), interface language and optional RPDB key are filled
// into the document blob before the hosted save exchange.
type AIOMetadata struct {
	API AIOMetadataAPI
	// Base is the aioMetadataConfig blob from the preset document. It
	// holds a "config" object plus "catalogs" with the standard and
	// kids catalog sets.
	Base map[string]any
}

func (AIOMetadata) Key() string { return "aiometadata" }

func (a AIOMetadata) Transform(ctx context.Context, addon stremio.Addon, rc Context) Result {
	if a.Base == nil {
		return Removed("no aiometadata configuration in preset document")
	}
	blob := cloneMap(a.Base)

	config, _ := blob["config"].(map[string]any)
	if config == nil {
		config = map[string]any{}
	}
	catalogs, _ := blob["catalogs"].(map[string]any)

	config["language"] = rc.Language

	if rc.Preset == "kids" {
		if catalogs != nil {
			config["catalogs"] = cloneValue(catalogs["kids"])
		}
		config["ageRating"] = "G"
		search, _ := config["search"].(map[string]any)
		if search == nil {
			search = map[string]any{}
		}
		engines, _ := search["engineEnabled"].(map[string]any)
		if engines == nil {
			engines = map[string]any{}
		}
		engines["kitsu.search.series"] = false
		engines["kitsu.search.movie"] = false
		search["engineEnabled"] = engines
		config["search"] = search
	} else if catalogs != nil {
		config["catalogs"] = cloneValue(catalogs["standard"])
	}

	if rc.Advanced.RPDBKey != "" {
		apiKeys, _ := config["apiKeys"].(map[string]any)
		if apiKeys == nil {
			apiKeys = map[string]any{}
		}
		apiKeys["rpdb"] = rc.Advanced.RPDBKey
		config["apiKeys"] = apiKeys
	}

	result, err := a.API.SaveConfig(ctx, map[string]any{
		"config":   config,
		"password": rc.Password,
	})
	if err != nil {
		return Removed(err.Error())
	}

	if result.Manifest != nil {
		result.Manifest.Name = "AIOMetadata"
	}
	addon.TransportURL = result.TransportURL
	addon.Manifest = result.Manifest
	return Mutated(addon)
}
