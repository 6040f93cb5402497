package addons

import (
	"context"
	"fmt"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/debrid"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/transporturl"
)

// Peerflix configures the peerflix addon, a template-style URL like
// torrentio but with pre-escaped pipe separators and a sort parameter
// that flips from seeders to size once a debrid service is attached.
type Peerflix struct{}

func (Peerflix) Key() string { return "peerflix" }

func (Peerflix) Transform(_ context.Context, addon stremio.Addon, rc Context) Result {
	no4k := ""
	if rc.No4K {
		no4k = ",remux4k,4k,micro4k"
	}

	if len(rc.Debrid) == 0 {
		addon.TransportURL = transporturl.Render(addon.TransportURL, transporturl.Params{
			No4K: no4k,
			Sort: ",seed-desc",
		})
		return Mutated(addon)
	}

	template := addon.TransportURL
	return fanOutDebrid("peerflix", addon, rc.Debrid, true, func(a *stremio.Addon, e debrid.Entry) error {
		cached := ""
		if rc.Cached {
			cached = ",nodownloadlinks"
		}
		a.TransportURL = transporturl.Render(template, transporturl.Params{
			TransportURL: fmt.Sprintf("%%7Cdebridoptions=nocatalog%s%%7C%s=%s", cached, e.Service, e.Key),
			No4K:         no4k,
			Sort:         ",size-desc",
		})
		return nil
	})
}
