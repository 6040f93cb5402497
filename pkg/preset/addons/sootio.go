package addons

import (
	"context"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/debrid"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/sizeconv"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/transporturl"
)

// Sootio configures the sootio addon. Its payload is URL-encoded JSON
// rather than base64, it does not support DebridLink, and its size
// filter defaults to 200 GB when the user has none.
type Sootio struct{}

var sootioProviders = map[debrid.Service]string{
	debrid.RealDebrid: "RealDebrid",
	debrid.AllDebrid:  "AllDebrid",
	debrid.Premiumize: "Premiumize",
	debrid.TorBox:     "TorBox",
}

func (Sootio) Key() string { return "sootio" }

func (Sootio) Transform(_ context.Context, addon stremio.Addon, rc Context) Result {
	var supported []debrid.Entry
	for _, e := range rc.Debrid {
		if e.Service != debrid.DebridLink {
			supported = append(supported, e)
		}
	}
	if len(supported) == 0 {
		return Removed("requires a debrid service other than DebridLink")
	}

	services := make([]any, 0, len(supported))
	for _, e := range supported {
		provider, ok := sootioProviders[e.Service]
		if !ok {
			provider = string(e.Service)
		}
		services = append(services, map[string]any{
			"provider": provider,
			"apiKey":   e.Key,
		})
	}

	maxSize := any(float64(200))
	if gb, ok := sizeconv.ParseGB(rc.MaxSize); ok {
		maxSize = gb
	}

	updated, err := transporturl.Update(addon.TransportURL, transporturl.URLEncodedJSON, func(config map[string]any) map[string]any {
		config["DebridServices"] = services
		config["maxSize"] = maxSize
		return config
	})
	if err != nil {
		return Removed(err.Error())
	}

	addon.TransportURL = updated
	suffixManifestName(&addon, rc.DebridServiceName)
	return Mutated(addon)
}
