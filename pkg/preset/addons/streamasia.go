package addons

import (
	"context"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/debrid"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/transporturl"
)

// StreamAsia configures the StreamAsia addon. Debrid-only; providers
// are identified by display name in its config schema.
type StreamAsia struct{}

var streamAsiaProviders = map[debrid.Service]string{
	debrid.RealDebrid: "Real Debrid",
	debrid.AllDebrid:  "AllDebrid",
	debrid.Premiumize: "Premiumize",
	debrid.DebridLink: "Debrid-Link",
	debrid.TorBox:     "Torbox",
}

func (StreamAsia) Key() string { return "streamasia" }

func (StreamAsia) Transform(_ context.Context, addon stremio.Addon, rc Context) Result {
	if len(rc.Debrid) == 0 {
		return Removed("requires a debrid service")
	}

	providers := make([]any, 0, len(rc.Debrid))
	for _, e := range rc.Debrid {
		name, ok := streamAsiaProviders[e.Service]
		if !ok {
			name = string(e.Service)
		}
		providers = append(providers, map[string]any{
			"debridProvider": name,
			"token":          e.Key,
		})
	}

	updated, err := transporturl.Update(addon.TransportURL, transporturl.Base64JSON, func(config map[string]any) map[string]any {
		config["debridConfig"] = providers
		return config
	})
	if err != nil {
		return Removed(err.Error())
	}

	addon.TransportURL = updated
	suffixManifestName(&addon, rc.DebridServiceName)
	return Mutated(addon)
}
