package addons

import (
	"context"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
)

// TPBPlus removes the TPB+ addon for debrid users: its raw torrent
// streams are redundant once a debrid-backed scraper is installed.
type TPBPlus struct{}

func (TPBPlus) Key() string { return "tpbplus" }

func (TPBPlus) Transform(_ context.Context, _ stremio.Addon, rc Context) Result {
	if len(rc.Debrid) > 0 {
		return Removed("redundant for debrid users")
	}
	return Unchanged()
}
