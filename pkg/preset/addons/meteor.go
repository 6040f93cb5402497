package addons

import (
	"context"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/debrid"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/sizeconv"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/transporturl"
)

// Meteor configures the meteor addon. Its schema buckets the size
// filter into coarse steps and takes a preferred-language list; with
// no credentials it runs in plain torrent mode.
type Meteor struct{}

func (Meteor) Key() string { return "meteor" }

// meteorSizeBucket maps the user's max size in GB onto the coarse
// buckets meteor's schema accepts. Above 30 GB the filter is disabled.
func meteorSizeBucket(size string) any {
	gb, ok := sizeconv.ParseGB(size)
	if !ok {
		return 0
	}
	switch {
	case gb <= 10:
		return 10
	case gb < 20:
		return 20
	case gb <= 30:
		return 50
	default:
		return ""
	}
}

func (Meteor) Transform(_ context.Context, addon stremio.Addon, rc Context) Result {
	languageCode := rc.Language
	if len(languageCode) >= 2 {
		languageCode = languageCode[:2]
	}
	if languageCode == "" {
		languageCode = "en"
	}
	maxSize := meteorSizeBucket(rc.MaxSize)

	prepare := func(config map[string]any) {
		languages, _ := config["languages"].(map[string]any)
		if languages == nil {
			languages = map[string]any{}
		}
		if _, ok := languages["preferred"]; !ok {
			languages["preferred"] = []any{languageCode, "multi"}
		}
		config["languages"] = languages
		config["cachedOnly"] = rc.Cached
		config["maxResultsPerRes"] = rc.Limit
		config["maxSize"] = maxSize

		resolutions, _ := config["resolutions"].([]any)
		if rc.No4K {
			resolutions = without(resolutions, "4k")
		} else if resolutions == nil {
			resolutions = []any{}
		}
		config["resolutions"] = resolutions
	}

	if len(rc.Debrid) == 0 {
		updated, err := transporturl.Update(addon.TransportURL, transporturl.Base64JSON, func(config map[string]any) map[string]any {
			prepare(config)
			config["debridApiKey"] = ""
			config["debridService"] = "torrent"
			return config
		})
		if err != nil {
			return Removed(err.Error())
		}
		addon.TransportURL = updated
		return Mutated(addon)
	}

	return fanOutDebrid("meteor", addon, rc.Debrid, true, func(a *stremio.Addon, e debrid.Entry) error {
		updated, err := transporturl.Update(a.TransportURL, transporturl.Base64JSON, func(config map[string]any) map[string]any {
			prepare(config)
			config["debridApiKey"] = e.Key
			config["debridService"] = string(e.Service)
			return config
		})
		if err != nil {
			return err
		}
		a.TransportURL = updated
		return nil
	})
}
