package addons

import (
	"context"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/sizeconv"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/transporturl"
)

// Comet configures the comet addon. Its base64 JSON payload carries
// every debrid credential at once, so the entry never fans out; with
// no credentials it falls back to plain torrent streaming.
type Comet struct{}

func (Comet) Key() string { return "comet" }

func (Comet) Transform(_ context.Context, addon stremio.Addon, rc Context) Result {
	services := make([]any, 0, len(rc.Debrid))
	for _, e := range rc.Debrid {
		services = append(services, map[string]any{
			"service": string(e.Service),
			"apiKey":  e.Key,
		})
	}

	var maxSize int64
	if gb, ok := sizeconv.ParseGB(rc.MaxSize); ok {
		maxSize = sizeconv.GBToBytes(gb)
	}

	updated, err := transporturl.Update(addon.TransportURL, transporturl.Base64JSON, func(config map[string]any) map[string]any {
		config["debridServices"] = services
		config["cachedOnly"] = rc.Cached
		config["enableTorrent"] = len(services) == 0
		config["maxResultsPerResolution"] = rc.Limit
		config["maxSize"] = maxSize

		resolutions, _ := config["resolutions"].(map[string]any)
		if resolutions == nil {
			resolutions = map[string]any{}
		}
		resolutions["r2160p"] = !rc.No4K
		config["resolutions"] = resolutions
		return config
	})
	if err != nil {
		return Removed(err.Error())
	}

	addon.TransportURL = updated
	suffixManifestName(&addon, rc.DebridServiceName)
	return Mutated(addon)
}
