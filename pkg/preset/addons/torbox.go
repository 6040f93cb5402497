package addons

import (
	"context"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/debrid"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/transporturl"
)

// Torbox configures the native TorBox addon. It is only useful to
// TorBox account holders: the API key is substituted straight into the
// transport URL, and without a TorBox credential the addon is removed.
type Torbox struct{}

func (Torbox) Key() string { return "torbox" }

func (Torbox) Transform(_ context.Context, addon stremio.Addon, rc Context) Result {
	for _, e := range rc.Debrid {
		if e.Service == debrid.TorBox {
			addon.TransportURL = transporturl.Render(addon.TransportURL, transporturl.Params{
				TransportURL: e.Key,
			})
			return Mutated(addon)
		}
	}
	return Removed("requires a TorBox credential")
}
