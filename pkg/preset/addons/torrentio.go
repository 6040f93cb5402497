package addons

import (
	"context"
	"fmt"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/debrid"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/transporturl"
)

// Torrentio configures the torrentio addon. Its transport URL is
// template-style: the options string, quality filter, result limit and
// size filter are substituted into URL placeholders instead of a JSON
// payload.
type Torrentio struct{}

func (Torrentio) Key() string { return "torrentio" }

func (Torrentio) Transform(_ context.Context, addon stremio.Addon, rc Context) Result {
	params := transporturl.Params{
		Limit: rc.Limit,
	}
	if rc.No4K {
		params.No4K = "4k,"
	}
	if rc.MaxSize != "" {
		params.MaxSize = fmt.Sprintf("|sizefilter=%sGB", rc.MaxSize)
	}

	if len(rc.Debrid) == 0 {
		// P2P path: render without debrid options.
		addon.TransportURL = transporturl.Render(addon.TransportURL, params)
		return Mutated(addon)
	}

	template := addon.TransportURL
	return fanOutDebrid("torrentio", addon, rc.Debrid, true, func(a *stremio.Addon, e debrid.Entry) error {
		p := params
		cached := ""
		if rc.Cached {
			cached = "nodownloadlinks,"
		}
		p.TransportURL = fmt.Sprintf("|sort=qualitysize|debridoptions=%snocatalog|%s=%s", cached, e.Service, e.Key)
		a.TransportURL = transporturl.Render(template, p)
		return nil
	})
}
