package addons

import (
	"context"
	"strconv"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/sizeconv"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/transporturl"
)

// TorrentsDB configures the TorrentsDB addon. Like comet it embeds all
// credentials in one payload, each under its own per-service field.
// The size filter is expressed in megabytes and "no 4K" extends the
// addon's quality exclude list.
type TorrentsDB struct{}

var no4kQualityTokens = []any{"4k", "brremux", "hdrall", "dolbyvisionwithhdr", "dolbyvision"}

func (TorrentsDB) Key() string { return "torrentsdb" }

func (TorrentsDB) Transform(_ context.Context, addon stremio.Addon, rc Context) Result {
	sizeFilter := ""
	if gb, ok := sizeconv.ParseGB(rc.MaxSize); ok {
		sizeFilter = strconv.FormatInt(sizeconv.GBToMegabytes(gb), 10)
	}

	updated, err := transporturl.Update(addon.TransportURL, transporturl.Base64JSON, func(config map[string]any) map[string]any {
		config["sizefilter"] = sizeFilter

		filters, _ := config["qualityfilter"].([]any)
		if filters == nil {
			filters = []any{}
		}
		if rc.No4K {
			filters = append(filters, no4kQualityTokens...)
		}
		config["qualityfilter"] = filters

		if len(rc.Debrid) > 0 {
			config["sort"] = "qualitysize"
			for _, e := range rc.Debrid {
				config[string(e.Service)] = e.Key
			}
		}
		return config
	})
	if err != nil {
		return Removed(err.Error())
	}

	addon.TransportURL = updated
	suffixManifestName(&addon, rc.DebridServiceName)
	return Mutated(addon)
}
