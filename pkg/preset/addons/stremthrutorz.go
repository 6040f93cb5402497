package addons

import (
	"context"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/debrid"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/transporturl"
)

// StremThruTorz configures the StremThru Torz addon. Every credential
// becomes a store entry in one payload; without credentials it falls
// back to the P2P store.
type StremThruTorz struct{}

var stremThruStoreCodes = map[debrid.Service]string{
	debrid.RealDebrid: "rd",
	debrid.AllDebrid:  "ad",
	debrid.Premiumize: "pm",
	debrid.DebridLink: "dl",
	debrid.TorBox:     "tb",
}

func (StremThruTorz) Key() string { return "stremthrutorz" }

func (StremThruTorz) Transform(_ context.Context, addon stremio.Addon, rc Context) Result {
	stores := make([]any, 0, len(rc.Debrid))
	for _, e := range rc.Debrid {
		code, ok := stremThruStoreCodes[e.Service]
		if !ok {
			code = string(e.Service)
		}
		stores = append(stores, map[string]any{"c": code, "t": e.Key})
	}
	if len(stores) == 0 {
		stores = append(stores, map[string]any{"c": "p2p", "t": ""})
	}

	updated, err := transporturl.Update(addon.TransportURL, transporturl.Base64JSON, func(config map[string]any) map[string]any {
		config["stores"] = stores
		config["cached"] = rc.Cached
		return config
	})
	if err != nil {
		return Removed(err.Error())
	}

	addon.TransportURL = updated
	if len(rc.Debrid) > 0 {
		suffixManifestName(&addon, rc.DebridServiceName)
	}
	return Mutated(addon)
}
