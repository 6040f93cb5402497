package addons

import (
	"context"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/debrid"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/transporturl"
)

// Jackettio configures the jackettio addon. Debrid-only: without a
// credential the addon is removed from the composition.
type Jackettio struct{}

func (Jackettio) Key() string { return "jackettio" }

func (Jackettio) Transform(_ context.Context, addon stremio.Addon, rc Context) Result {
	if len(rc.Debrid) == 0 {
		return Removed("requires a debrid service")
	}

	return fanOutDebrid("jackettio", addon, rc.Debrid, true, func(a *stremio.Addon, e debrid.Entry) error {
		updated, err := transporturl.Update(a.TransportURL, transporturl.Base64JSON, func(config map[string]any) map[string]any {
			config["debridEntries"] = []any{map[string]any{"service": string(e.Service), "key": e.Key}}
			config["debridApiKey"] = e.Key
			config["debridId"] = string(e.Service)
			config["hideUncached"] = rc.Cached
			if rc.No4K {
				config["qualities"] = without(config["qualities"], float64(2160))
			}
			return config
		})
		if err != nil {
			return err
		}
		a.TransportURL = updated
		return nil
	})
}

// without returns the list minus every occurrence of value. A non-list
// input yields an empty list.
func without(list any, value any) []any {
	items, _ := list.([]any)
	out := make([]any, 0, len(items))
	for _, item := range items {
		if item != value {
			out = append(out, item)
		}
	}
	return out
}
